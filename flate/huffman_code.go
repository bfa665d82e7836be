package flate

/* Copyright 2010 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Length-limited canonical Huffman codes. */

import (
	"cmp"
	"math"
	"math/bits"
	"slices"
)

/* A node of a Huffman tree. */
type huffmanTree struct {
	totalCount        uint32
	indexLeft         int16
	indexRightOrValue int16
}

// An hcode is a bit-reversed code, ready to be written LSB first.
type hcode struct {
	code uint16
	len  uint8
}

type huffmanEncoder struct {
	codes []hcode
	depth []byte
	tree  []huffmanTree
}

func newHuffmanEncoder(size int) *huffmanEncoder {
	return &huffmanEncoder{
		codes: make([]hcode, size),
		depth: make([]byte, size),
		tree:  make([]huffmanTree, 2*size+1),
	}
}

// generate builds a code for the symbols with nonzero frequency in freq,
// with no code longer than maxBits.
func (h *huffmanEncoder) generate(freq []uint32, maxBits int) {
	depth := h.depth[:len(freq)]
	clear(depth)
	createHuffmanTree(freq, maxBits, h.tree, depth)
	convertBitDepthsToSymbols(depth, h.codes[:len(freq)])
}

// bitLength returns the number of bits needed to code freq with h.
func (h *huffmanEncoder) bitLength(freq []uint32) int {
	total := 0
	for i, f := range freq {
		total += int(f) * int(h.codes[i].len)
	}
	return total
}

/* Build a Huffman tree for data with no code longer than treeLimit. When the
   tree is too deep, small counts are raised to countLimit and the tree is
   rebuilt, doubling countLimit each time, until it fits. */
func createHuffmanTree(data []uint32, treeLimit int, tree []huffmanTree, depth []byte) {
	sentinel := huffmanTree{math.MaxUint32, -1, -1}
	for countLimit := uint32(1); ; countLimit *= 2 {
		n := 0
		for i := len(data) - 1; i >= 0; i-- {
			if data[i] != 0 {
				tree[n] = huffmanTree{max(data[i], countLimit), -1, int16(i)}
				n++
			}
		}

		switch n {
		case 0:
			return
		case 1:
			depth[tree[0].indexRightOrValue] = 1 /* Only one element. */
			return
		}

		slices.SortFunc(tree[:n], func(a, b huffmanTree) int {
			if a.totalCount != b.totalCount {
				return cmp.Compare(a.totalCount, b.totalCount)
			}
			return cmp.Compare(b.indexRightOrValue, a.indexRightOrValue)
		})

		/* The nodes are:
		   [0, n): the sorted leaf nodes that we start with.
		   [n]: we add a sentinel here.
		   [n + 1, 2n): new parent nodes are added here, starting from
		                (n+1). These are naturally in ascending order.
		   [2n]: we add a sentinel at the end as well.
		   There will be (2n+1) elements at the end. */
		tree[n] = sentinel
		tree[n+1] = sentinel

		i := 0     /* Points to the next leaf node. */
		j := n + 1 /* Points to the next non-leaf node. */
		for k := n - 1; k != 0; k-- {
			var left, right int
			if tree[i].totalCount <= tree[j].totalCount {
				left = i
				i++
			} else {
				left = j
				j++
			}
			if tree[i].totalCount <= tree[j].totalCount {
				right = i
				i++
			} else {
				right = j
				j++
			}

			/* The sentinel node becomes the parent node. */
			jEnd := 2*n - k
			tree[jEnd] = huffmanTree{tree[left].totalCount + tree[right].totalCount, int16(left), int16(right)}

			/* Add back the last sentinel node. */
			tree[jEnd+1] = sentinel
		}

		if setDepth(2*n-1, tree, depth, treeLimit) {
			return
		}
	}
}

/* Returns true if assignment of depths succeeded. */
func setDepth(p0 int, pool []huffmanTree, depth []byte, maxDepth int) bool {
	var stack [16]int
	level := 0
	p := p0
	stack[0] = -1
	for {
		if pool[p].indexLeft >= 0 {
			level++
			if level > maxDepth {
				return false
			}
			stack[level] = int(pool[p].indexRightOrValue)
			p = int(pool[p].indexLeft)
			continue
		}
		depth[pool[p].indexRightOrValue] = byte(level)

		for level >= 0 && stack[level] == -1 {
			level--
		}
		if level < 0 {
			return true
		}
		p = stack[level]
		stack[level] = -1
	}
}

func reverseBits(code uint16, n uint8) uint16 {
	return bits.Reverse16(code) >> (16 - n)
}

/* 0..15 are values for bits */
const maxHuffmanBits = 16

/* Get the actual bit values for a tree of bit depths. */
func convertBitDepthsToSymbols(depth []byte, codes []hcode) {
	var blCount [maxHuffmanBits]uint16
	var nextCode [maxHuffmanBits]uint16

	for _, d := range depth {
		blCount[d]++
	}
	blCount[0] = 0

	code := 0
	for i := 1; i < maxHuffmanBits; i++ {
		code = (code + int(blCount[i-1])) << 1
		nextCode[i] = uint16(code)
	}

	for i, d := range depth {
		if d == 0 {
			codes[i] = hcode{}
			continue
		}
		codes[i] = hcode{code: reverseBits(nextCode[d], d), len: d}
		nextCode[d]++
	}
}

// Fixed codes from RFC 1951 section 3.2.6.
var (
	fixedLiteralEncoding = generateFixedLiteralEncoding()
	fixedOffsetEncoding  = generateFixedOffsetEncoding()
)

func generateFixedLiteralEncoding() *huffmanEncoder {
	h := newHuffmanEncoder(288)
	for ch := uint16(0); ch < 288; ch++ {
		var code uint16
		var size uint8
		switch {
		case ch < 144:
			// size 8, 00110000 .. 10111111
			code = ch + 48
			size = 8
		case ch < 256:
			// size 9, 110010000 .. 111111111
			code = ch + 400 - 144
			size = 9
		case ch < 280:
			// size 7, 0000000 .. 0010111
			code = ch - 256
			size = 7
		default:
			// size 8, 11000000 .. 11000111
			code = ch + 192 - 280
			size = 8
		}
		h.codes[ch] = hcode{code: reverseBits(code, size), len: size}
	}
	return h
}

func generateFixedOffsetEncoding() *huffmanEncoder {
	h := newHuffmanEncoder(offsetCodeCount)
	for ch := range h.codes {
		h.codes[ch] = hcode{code: reverseBits(uint16(ch), 5), len: 5}
	}
	return h
}
