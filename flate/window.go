package flate

import "encoding/binary"

// fillWindow reads input into the window until there are at least
// minLookahead bytes ahead of strstart or the input runs out. When
// strstart gets too close to the end of the window, the upper half is
// moved down and the hash tables rebased.
func (c *Compressor) fillWindow() {
	for {
		more := c.windowSize - c.lookahead - c.strstart

		if c.strstart > c.wSize+c.maxDist {
			c.slide()
			more += c.wSize
		}
		if c.inPos == len(c.in) {
			break
		}

		end := c.strstart + c.lookahead
		c.lookahead += c.readBuf(c.window[end : end+more])

		// Hash the positions left over from the last flush, now that the
		// bytes after them have arrived.
		str := c.strstart - c.insert
		for c.insert > 0 && str+c.hashLen <= c.strstart+c.lookahead {
			c.insertOne(str)
			str++
			c.insert--
		}

		if c.lookahead >= minLookahead || c.inPos == len(c.in) {
			break
		}
	}

	// Keep winInit bytes after the valid data zeroed.
	if c.highWater < c.windowSize {
		curr := c.strstart + c.lookahead
		switch {
		case c.highWater < curr:
			init := min(c.windowSize-curr, winInit)
			clear(c.window[curr : curr+init])
			c.highWater = curr + init
		case c.highWater < curr+winInit:
			init := min(curr+winInit-c.highWater, c.windowSize-c.highWater)
			clear(c.window[c.highWater : c.highWater+init])
			c.highWater += init
		}
	}
}

// slide moves the upper half of the window down by wSize and rebases every
// position that refers to it.
func (c *Compressor) slide() {
	w := c.wSize
	copy(c.window, c.window[w:2*w])
	if c.matchStart >= w {
		c.matchStart -= w
	} else {
		c.matchStart = 0
	}
	c.strstart -= w
	c.blockStart -= w
	if c.insert > c.strstart {
		c.insert = c.strstart
	}
	c.k.SlideHash(c.head, uint16(w))
	c.k.SlideHash(c.prev, uint16(w))

	// The bytes after the valid data are stale copies now. Zero them again
	// so that what lies there never depends on how the input was split.
	c.highWater = c.strstart + c.lookahead

	if debugDeflate {
		c.checkChains()
	}
}

// checkChains panics if any hash table entry points at or past the end of
// the valid data.
func (c *Compressor) checkChains() {
	end := c.strstart + c.lookahead
	for _, p := range c.head {
		if int(p) >= end && p != 0 {
			panic("flate: head entry past the window")
		}
	}
	for _, p := range c.prev {
		if int(p) >= end && p != 0 {
			panic("flate: prev entry past the window")
		}
	}
}

func (c *Compressor) hashAt(pos int) uint32 {
	return c.k.Hash(c.window[pos:pos+c.hashLen], c.hashBits)
}

// insertOne adds pos to its hash chain and returns the previous head of the
// chain.
func (c *Compressor) insertOne(pos int) int {
	h := c.hashAt(pos)
	head := c.head[h]
	if int(head) != pos {
		c.prev[pos&c.wMask] = head
		c.head[h] = uint16(pos)
	}
	return int(head)
}

// insertString adds count positions starting at pos to the hash chains,
// skipping any whose prefix is not yet in the window.
func (c *Compressor) insertString(pos, count int) {
	end := min(pos+count, c.strstart+c.lookahead-c.hashLen+1)
	for i := pos; i < end; i++ {
		c.insertOne(i)
	}
}

// quickInsert makes pos the head of its chain without linking it, and
// returns the previous head.
func (c *Compressor) quickInsert(pos int) int {
	h := c.hashAt(pos)
	head := c.head[h]
	c.head[h] = uint16(pos)
	return int(head)
}

func load16(b []byte, i int) uint16 {
	return binary.LittleEndian.Uint16(b[i:])
}
