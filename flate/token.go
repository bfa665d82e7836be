// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

const (
	// 2 bits:   type   0 = literal  1 = match
	// 8 bits:   xlength = length - minMatch
	// 22 bits:  xoffset = distance - 1, or literal
	lengthShift = 22
	offsetMask  = 1<<lengthShift - 1
	matchType   = 1 << 30

	endBlockMarker   = 256
	lengthCodesStart = 257
	maxNumLit        = 286
	offsetCodeCount  = 30
	codegenCodeCount = 19
)

// The length code for length X (minMatch <= X <= maxMatch)
// is lengthCodes[X - minMatch].
var lengthCodes = [256]uint8{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 12, 12,
	13, 13, 13, 13, 14, 14, 14, 14, 15, 15,
	15, 15, 16, 16, 16, 16, 16, 16, 16, 16,
	17, 17, 17, 17, 17, 17, 17, 17, 18, 18,
	18, 18, 18, 18, 18, 18, 19, 19, 19, 19,
	19, 19, 19, 19, 20, 20, 20, 20, 20, 20,
	20, 20, 20, 20, 20, 20, 20, 20, 20, 20,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21,
	21, 21, 21, 21, 21, 21, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
	22, 22, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	25, 25, 25, 25, 25, 25, 25, 25, 25, 25,
	25, 25, 25, 25, 25, 25, 25, 25, 25, 25,
	25, 25, 25, 25, 25, 25, 25, 25, 25, 25,
	25, 25, 26, 26, 26, 26, 26, 26, 26, 26,
	26, 26, 26, 26, 26, 26, 26, 26, 26, 26,
	26, 26, 26, 26, 26, 26, 26, 26, 26, 26,
	26, 26, 26, 26, 27, 27, 27, 27, 27, 27,
	27, 27, 27, 27, 27, 27, 27, 27, 27, 27,
	27, 27, 27, 27, 27, 27, 27, 27, 27, 27,
	27, 27, 27, 27, 27, 28,
}

var offsetCodes = [256]uint8{
	0, 1, 2, 3, 4, 4, 5, 5, 6, 6, 6, 6, 7, 7, 7, 7,
	8, 8, 8, 8, 8, 8, 8, 8, 9, 9, 9, 9, 9, 9, 9, 9,
	10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10,
	11, 11, 11, 11, 11, 11, 11, 11, 11, 11, 11, 11, 11, 11, 11, 11,
	12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12,
	12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12,
	13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13,
	13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13,
	14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14,
	14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14,
	14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14,
	14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14,
	15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15,
}

// Extra bits and base values, indexed by length code and offset code.
// Bases are relative to minMatch and to a distance of 1.
var (
	lengthExtraBits = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	lengthBase = [29]uint16{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 12, 14, 16, 20, 24, 28,
		32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 255,
	}
	offsetExtraBits = [offsetCodeCount]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
	offsetBase = [offsetCodeCount]uint16{
		0, 1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 48, 64, 96, 128, 192,
		256, 384, 512, 768, 1024, 1536, 2048, 3072, 4096, 6144, 8192, 12288, 16384, 24576,
	}
)

type token uint32

func literalToken(c byte) token {
	return token(c)
}

func matchToken(length, dist int) token {
	return matchType | token(length-minMatch)<<lengthShift | token(dist-1)
}

func (t token) isMatch() bool { return t >= matchType }

func (t token) literal() byte { return byte(t) }

// length returns the match length minus minMatch.
func (t token) length() uint8 { return uint8(t >> lengthShift) }

// offset returns the match distance minus 1.
func (t token) offset() uint32 { return uint32(t) & offsetMask }

func lengthCode(xlength uint8) uint8 { return lengthCodes[xlength] }

// offsetCode returns the distance code for a distance minus 1.
func offsetCode(off uint32) uint32 {
	if off < 256 {
		return uint32(offsetCodes[off])
	}
	return uint32(offsetCodes[off>>7]) + 14
}

// A tally accumulates the symbols of one block, with their histograms,
// until the entropy coder takes them.
type tally struct {
	tokens  []token
	litFreq [maxNumLit]uint32
	offFreq [offsetCodeCount]uint32
	limit   int
}

func newTally(size int) *tally {
	t := &tally{
		tokens: make([]token, 0, size),
		limit:  size - 1,
	}
	t.reset()
	return t
}

func (t *tally) reset() {
	t.tokens = t.tokens[:0]
	clear(t.litFreq[:])
	clear(t.offFreq[:])
	t.litFreq[endBlockMarker] = 1
}

// lit records a literal and reports whether the block is full.
func (t *tally) lit(c byte) bool {
	t.tokens = append(t.tokens, literalToken(c))
	t.litFreq[c]++
	return len(t.tokens) == t.limit
}

// match records a match and reports whether the block is full.
func (t *tally) match(dist, length int) bool {
	tok := matchToken(length, dist)
	t.tokens = append(t.tokens, tok)
	t.litFreq[lengthCodesStart+int(lengthCode(tok.length()))]++
	t.offFreq[offsetCode(tok.offset())]++
	return len(t.tokens) == t.limit
}

// covered returns the number of input bytes the tallied symbols stand for.
func (t *tally) covered() int {
	n := 0
	for _, tok := range t.tokens {
		if tok.isMatch() {
			n += int(tok.length()) + minMatch
		} else {
			n++
		}
	}
	return n
}
