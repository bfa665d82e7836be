package flate

// deflateQuick is the level 1 driver. It looks at a single candidate per
// position, the head of the hash chain, and writes symbols straight out
// with the fixed codes instead of tallying them.
func (c *Compressor) deflateQuick(flush Flush) blockState {
	last := flush == Finish
	if last && c.blockOpen != 2 {
		// Close the previous block; the rest goes into a final one.
		if c.quickEnd(false) {
			return needMore
		}
	}

	for {
		if c.pending()+8 >= c.pendingLimit {
			c.flushPending()
			if c.availOut() == 0 {
				if last && c.inPos == len(c.in) && c.bw.nbits == 0 && c.blockOpen == 0 {
					return finishStarted
				}
				return needMore
			}
		}

		if c.lookahead < minLookahead {
			c.fillWindow()
			if c.lookahead < minLookahead && flush == NoFlush {
				return needMore
			}
			if c.lookahead == 0 {
				break
			}
		}

		// Blocks are only opened once there is data for them, so that
		// the block structure does not depend on how input arrived.
		if c.blockOpen == 0 {
			c.quickStart(last)
		}

		if c.lookahead >= c.hashLen {
			head := c.quickInsert(c.strstart)
			dist := c.strstart - head
			if head != 0 && dist > 0 && dist <= c.maxDist {
				s := c.strstart
				n := min(maxMatch, c.lookahead)
				if load16(c.window, s) == load16(c.window, head) {
					length := c.k.MatchLen(c.window[s:s+n], c.window[head:head+n])
					if length >= c.hashLen {
						c.quickMatch(dist, length)
						c.strstart += length
						c.lookahead -= length
						continue
					}
				}
			}
		}

		c.quickLiteral(c.window[c.strstart])
		c.strstart++
		c.lookahead--
	}

	c.insert = min(c.strstart, c.hashLen-1)
	if last {
		if c.blockOpen == 0 {
			// The stream always ends with a final block, even if empty.
			c.quickStart(true)
		}
		if c.quickEnd(true) {
			return finishStarted
		}
		return finishDone
	}
	if c.quickEnd(false) {
		return needMore
	}
	return blockDone
}

// quickStart opens a fixed-code block.
func (c *Compressor) quickStart(last bool) {
	if !c.record {
		c.bw.writeFixedHeader(last)
	}
	c.blockOpen = 1
	if last {
		c.blockOpen = 2
	}
	c.blockStart = c.strstart
}

// quickEnd closes the open block, if any, and reports whether dst is full.
func (c *Compressor) quickEnd(last bool) bool {
	if c.blockOpen == 0 {
		return false
	}
	if !c.record {
		c.bw.writeCode(fixedLiteralEncoding.codes[endBlockMarker])
		if last {
			c.bw.align()
		}
		c.stats.FixedBlocks++
		c.logf("flate: quick block, %d bytes, last=%v", c.strstart-c.blockStart, last)
	}
	c.blockOpen = 0
	c.blockStart = c.strstart
	c.flushPending()
	return c.availOut() == 0
}

func (c *Compressor) quickLiteral(b byte) {
	c.stats.Literals++
	if c.record {
		c.recordLiteral()
		return
	}
	c.bw.writeLiteral(fixedLiteralEncoding.codes, b)
}

func (c *Compressor) quickMatch(dist, length int) {
	c.stats.Matches++
	if c.record {
		c.recordMatch(dist, length)
		return
	}
	c.bw.writeMatch(fixedLiteralEncoding.codes, fixedOffsetEncoding.codes, length, dist)
}
