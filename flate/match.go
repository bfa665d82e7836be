package flate

// longestMatch walks the hash chain starting at cur and returns the length
// of the longest match for the string at strstart, setting matchStart.
// The result is never more than lookahead. If no candidate beats
// prevLength, the result is prevLength (or less, near the end of input)
// and matchStart is left alone.
func (c *Compressor) longestMatch(cur int) int {
	win := c.window
	scan := c.strstart
	maxLen := min(maxMatch, c.lookahead)

	best := max(c.prevLength, 1)
	if best >= maxLen {
		return maxLen
	}
	chain := c.level.chain
	if best >= c.level.good {
		chain >>= 1
	}
	nice := min(c.level.nice, maxLen)
	limit := max(scan-c.maxDist, 0)
	earlyExit := c.levelNo < earlyExitTriggerLevel
	offsetSearch := c.level.chain > offsetSearchChain

	// Candidates are compared at cur-offset; offset is nonzero only while
	// following a chain found by the offset search.
	offset := 0
	scanStart := load16(win, scan)
	scanEnd := load16(win, scan+best-1)

	for chain > 0 {
		cand := cur - offset
		if cand >= scan {
			break
		}
		if load16(win, cand+best-1) == scanEnd && load16(win, cand) == scanStart {
			n := c.k.MatchLen(win[scan:scan+maxLen], win[cand:cand+maxLen])
			if n > best {
				c.matchStart = cand
				best = n
				if n >= nice {
					break
				}
				scanEnd = load16(win, scan+best-1)
				if offsetSearch && n > minMatch && cand+n < scan {
					next, off, ok := c.offsetChain(cand, n, limit)
					if !ok {
						break
					}
					cur, offset = next, off
					continue
				}
			} else if earlyExit {
				break
			}
		}
		chain--
		if chain == 0 {
			break
		}
		cur = int(c.prev[cur&c.wMask])
		if cur <= limit+offset {
			break
		}
	}
	return min(best, c.lookahead)
}

// offsetChain looks for a chain that reaches further back than the one
// that produced a match of length n at cand. It tries the chains of every
// position inside the match, and the chain of the last few bytes of the
// match, and returns the chain position to continue from with the offset
// of that position inside the match. ok is false when no chain reaches
// past limit.
func (c *Compressor) offsetChain(cand, n, limit int) (next, offset int, ok bool) {
	next = cand
	for i := 0; i <= n-minMatch; i++ {
		p := int(c.prev[(cand+i)&c.wMask])
		if p < next {
			if p <= limit+i {
				return 0, 0, false
			}
			next = p
			offset = i
		}
	}

	// The hash of the bytes ending one past the current match includes
	// the byte that would extend it.
	end := c.strstart + n - (minMatch + 1)
	if end+c.hashLen <= c.strstart+c.lookahead {
		p := int(c.head[c.hashAt(end)])
		if p < next {
			off := n - (minMatch + 1)
			if p <= limit+off {
				return 0, 0, false
			}
			next = p
			offset = off
		}
	}
	return next, offset, true
}
