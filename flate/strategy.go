package flate

// Every driver runs until it needs more input (needMore), has flushed a
// block at the caller's request (blockDone), or has finished the stream.
// When the output buffer fills up mid-block it returns needMore (or
// finishStarted) and picks up where it left off on the next call.

// deflateStored copies the input into stored blocks of exactly
// min(maxStoreBlockSize, maxDist) bytes.
func (c *Compressor) deflateStored(flush Flush) blockState {
	size := min(maxStoreBlockSize, c.maxDist)
	for {
		if c.lookahead == 0 {
			c.fillWindow()
			if c.lookahead == 0 {
				if flush == NoFlush {
					return needMore
				}
				break
			}
		}

		n := min(c.lookahead, size-(c.strstart-c.blockStart))
		c.strstart += n
		c.lookahead -= n
		if c.strstart-c.blockStart >= size {
			if c.flushBlock(false) {
				return needMore
			}
		}
	}
	c.insert = 0
	if flush == Finish {
		if c.flushBlock(true) {
			return finishStarted
		}
		return finishDone
	}
	if c.strstart > c.blockStart {
		if c.flushBlock(false) {
			return needMore
		}
	}
	return blockDone
}

// deflateFast is the greedy driver: take the longest match at each
// position, without looking at the next one. Only short matches have
// every position inserted into the hash chains.
func (c *Compressor) deflateFast(flush Flush) blockState {
	for {
		if c.lookahead < minLookahead {
			c.fillWindow()
			if c.lookahead < minLookahead && flush == NoFlush {
				return needMore
			}
			if c.lookahead == 0 {
				break
			}
		}

		hashHead := 0
		if c.lookahead >= c.hashLen {
			hashHead = c.insertOne(c.strstart)
		}

		matchLen := 0
		if hashHead != 0 && hashHead < c.strstart && c.strstart-hashHead <= c.maxDist {
			matchLen = c.longestMatch(hashHead)
		}

		var full bool
		if matchLen >= minMatch {
			full = c.tallyMatch(c.strstart-c.matchStart, matchLen)
			c.strstart += matchLen
			c.lookahead -= matchLen
			if matchLen <= c.level.lazy && c.lookahead >= minMatch {
				c.insertString(c.strstart-matchLen+1, matchLen-1)
			}
		} else {
			full = c.tallyLit(c.window[c.strstart])
			c.strstart++
			c.lookahead--
		}
		if full && c.flushBlock(false) {
			return needMore
		}
	}
	c.insert = min(c.strstart, c.hashLen-1)
	return c.endBlock(flush)
}

// deflateSlow is the lazy driver: a match is only taken if the match
// starting one byte later is not longer.
func (c *Compressor) deflateSlow(flush Flush) blockState {
	for {
		if c.lookahead < minLookahead {
			c.fillWindow()
			if c.lookahead < minLookahead && flush == NoFlush {
				return needMore
			}
			if c.lookahead == 0 {
				break
			}
		}

		hashHead := 0
		if c.lookahead >= c.hashLen {
			hashHead = c.insertOne(c.strstart)
		}

		c.prevLength = c.matchLength
		c.prevMatch = c.matchStart
		c.matchLength = minMatch - 1

		if hashHead != 0 && hashHead < c.strstart && c.prevLength < c.level.lazy && c.strstart-hashHead <= c.maxDist {
			c.matchLength = c.longestMatch(hashHead)
			if c.matchLength <= 5 && (c.cfg.Strategy == Filtered ||
				(c.matchLength == minMatch && c.strstart-c.matchStart > tooFar)) {
				// A short match far away costs more than its literals.
				c.matchLength = minMatch - 1
			}
		}

		switch {
		case c.prevLength >= minMatch && c.matchLength <= c.prevLength:
			// The previous match is at least as good: emit it.
			maxInsert := c.strstart + c.lookahead - c.hashLen
			full := c.tallyMatch(c.strstart-1-c.prevMatch, c.prevLength)

			// Insert the positions covered by the match, except the two
			// already inserted.
			c.lookahead -= c.prevLength - 1
			for n := c.prevLength - 2; n > 0; n-- {
				c.strstart++
				if c.strstart <= maxInsert {
					c.insertOne(c.strstart)
				}
			}
			c.matchAvailable = false
			c.matchLength = minMatch - 1
			c.strstart++

			if full && c.flushBlock(false) {
				return needMore
			}

		case c.matchAvailable:
			// No better match here: emit the previous byte as a literal.
			if c.tallyLit(c.window[c.strstart-1]) {
				c.flushBlockOnly(false)
			}
			c.strstart++
			c.lookahead--
			if c.availOut() == 0 {
				return needMore
			}

		default:
			// Wait for the next step to decide.
			c.matchAvailable = true
			c.strstart++
			c.lookahead--
		}
	}

	if c.matchAvailable {
		c.tallyLit(c.window[c.strstart-1])
		c.matchAvailable = false
	}
	c.insert = min(c.strstart, c.hashLen-1)
	return c.endBlock(flush)
}

// deflateRLE looks only for runs of the previous byte.
func (c *Compressor) deflateRLE(flush Flush) blockState {
	for {
		// Need maxMatch+1 bytes for the longest run, plus one for the
		// byte after it.
		if c.lookahead <= maxMatch {
			c.fillWindow()
			if c.lookahead <= maxMatch && flush == NoFlush {
				return needMore
			}
			if c.lookahead == 0 {
				break
			}
		}

		runLen := 0
		if c.lookahead >= minMatch && c.strstart > 0 {
			n := min(maxMatch, c.lookahead)
			s := c.strstart
			runLen = c.k.MatchLen(c.window[s:s+n], c.window[s-1:s-1+n])
		}

		var full bool
		if runLen >= minMatch {
			full = c.tallyMatch(1, runLen)
			c.strstart += runLen
			c.lookahead -= runLen
		} else {
			full = c.tallyLit(c.window[c.strstart])
			c.strstart++
			c.lookahead--
		}
		if full && c.flushBlock(false) {
			return needMore
		}
	}
	c.insert = 0
	return c.endBlock(flush)
}

// deflateHuff does no matching at all.
func (c *Compressor) deflateHuff(flush Flush) blockState {
	for {
		if c.lookahead == 0 {
			c.fillWindow()
			if c.lookahead == 0 {
				if flush == NoFlush {
					return needMore
				}
				break
			}
		}
		full := c.tallyLit(c.window[c.strstart])
		c.strstart++
		c.lookahead--
		if full && c.flushBlock(false) {
			return needMore
		}
	}
	c.insert = 0
	return c.endBlock(flush)
}

// endBlock closes out a driver run once the input is used up: the last
// block for Finish, otherwise whatever has been tallied.
func (c *Compressor) endBlock(flush Flush) blockState {
	if flush == Finish {
		if c.flushBlock(true) {
			return finishStarted
		}
		return finishDone
	}
	if len(c.tally.tokens) > 0 {
		if c.flushBlock(false) {
			return needMore
		}
	}
	return blockDone
}
