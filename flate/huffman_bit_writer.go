// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

import "encoding/binary"

const (
	// The largest number of bytes a stored block can hold.
	maxStoreBlockSize = 65535

	maxLitBits     = 15
	maxCodegenBits = 7
)

// The order in which code length code lengths are written (RFC 1951, 3.2.7).
var codegenOrder = [codegenCodeCount]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// A bitWriter packs bits LSB first into buf.
type bitWriter struct {
	buf   []byte
	bits  uint64
	nbits uint
}

func (w *bitWriter) writeBits(b uint32, nb uint) {
	w.bits |= uint64(b) << w.nbits
	w.nbits += nb
	if w.nbits >= 32 {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(w.bits))
		w.bits >>= 32
		w.nbits -= 32
	}
}

func (w *bitWriter) writeCode(c hcode) {
	w.writeBits(uint32(c.code), uint(c.len))
}

// align writes out any partial byte, padding it with zero bits.
func (w *bitWriter) align() {
	for w.nbits > 0 {
		w.buf = append(w.buf, byte(w.bits))
		w.bits >>= 8
		if w.nbits < 8 {
			w.nbits = 0
		} else {
			w.nbits -= 8
		}
	}
	w.bits = 0
}

func (w *bitWriter) reset() {
	w.buf = w.buf[:0]
	w.bits = 0
	w.nbits = 0
}

// writeStoredBlock writes data as one or more stored blocks. An empty data
// slice still produces one (empty) block, which is how a sync flush marker
// is made.
func (w *bitWriter) writeStoredBlock(data []byte, last bool) {
	for {
		n := min(len(data), maxStoreBlockSize)
		final := last && n == len(data)
		var flag uint32
		if final {
			flag = 1
		}
		w.writeBits(flag, 3)
		w.align()
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(n))
		w.buf = binary.LittleEndian.AppendUint16(w.buf, ^uint16(n))
		w.buf = append(w.buf, data[:n]...)
		data = data[n:]
		if len(data) == 0 {
			return
		}
	}
}

func (w *bitWriter) writeFixedHeader(last bool) {
	// BTYPE = 01
	value := uint32(2)
	if last {
		value |= 1
	}
	w.writeBits(value, 3)
}

func (w *bitWriter) writeLiteral(lit []hcode, c byte) {
	w.writeCode(lit[c])
}

func (w *bitWriter) writeMatch(lit, off []hcode, length, dist int) {
	xlength := uint8(length - minMatch)
	lc := lengthCode(xlength)
	w.writeCode(lit[lengthCodesStart+int(lc)])
	if extra := uint(lengthExtraBits[lc]); extra > 0 {
		w.writeBits(uint32(uint16(xlength)-lengthBase[lc]), extra)
	}
	xoff := uint32(dist - 1)
	oc := offsetCode(xoff)
	w.writeCode(off[oc])
	if extra := uint(offsetExtraBits[oc]); extra > 0 {
		w.writeBits(xoff-uint32(offsetBase[oc]), extra)
	}
}

func (w *bitWriter) writeTokens(tokens []token, lit, off []hcode) {
	for _, t := range tokens {
		if !t.isMatch() {
			w.writeCode(lit[t.literal()])
			continue
		}
		w.writeMatch(lit, off, int(t.length())+minMatch, int(t.offset())+1)
	}
	w.writeCode(lit[endBlockMarker])
}

// Block kinds, as chosen by a blockEncoder.
type blockKind int

const (
	storedBlock blockKind = iota
	fixedBlock
	dynamicBlock
)

func (k blockKind) String() string {
	switch k {
	case storedBlock:
		return "stored"
	case fixedBlock:
		return "fixed"
	case dynamicBlock:
		return "dynamic"
	}
	return "unknown"
}

// A blockEncoder turns a tally into a block, choosing the cheapest
// block type.
type blockEncoder struct {
	litEnc     *huffmanEncoder
	offEnc     *huffmanEncoder
	codegenEnc *huffmanEncoder

	codegen     []uint8
	codegenFreq [codegenCodeCount]uint32
	numLit      int
	numOff      int
	numCodegens int
}

func newBlockEncoder() *blockEncoder {
	return &blockEncoder{
		litEnc:     newHuffmanEncoder(maxNumLit),
		offEnc:     newHuffmanEncoder(offsetCodeCount),
		codegenEnc: newHuffmanEncoder(codegenCodeCount),
		codegen:    make([]uint8, 0, maxNumLit+offsetCodeCount+1),
	}
}

// atLeastTwo makes sure at least two symbols have nonzero frequency, so that
// every generated code is complete.
func atLeastTwo(freq []uint32) {
	n := 0
	for _, f := range freq {
		if f != 0 {
			n++
		}
	}
	for i := 0; n < 2 && i < len(freq); i++ {
		if freq[i] == 0 {
			freq[i] = 1
			n++
		}
	}
}

// extraBits returns the number of length and distance extra bits in t.
func extraBits(t *tally) int {
	total := 0
	for lc, f := range t.litFreq[lengthCodesStart:] {
		total += int(f) * int(lengthExtraBits[lc])
	}
	for oc, f := range t.offFreq {
		total += int(f) * int(offsetExtraBits[oc])
	}
	return total
}

func fixedSize(t *tally, extra int) int {
	return 3 + fixedLiteralEncoding.bitLength(t.litFreq[:]) +
		fixedOffsetEncoding.bitLength(t.offFreq[:]) + extra
}

// buildDynamic generates the codes for t and returns the size of the
// dynamic block in bits, including its header.
func (e *blockEncoder) buildDynamic(t *tally, extra int) int {
	litFreq := t.litFreq
	offFreq := t.offFreq
	atLeastTwo(litFreq[:])
	atLeastTwo(offFreq[:])

	e.litEnc.generate(litFreq[:], maxLitBits)
	e.offEnc.generate(offFreq[:], maxLitBits)

	e.numLit = maxNumLit
	for e.numLit > 257 && e.litEnc.codes[e.numLit-1].len == 0 {
		e.numLit--
	}
	e.numOff = offsetCodeCount
	for e.numOff > 1 && e.offEnc.codes[e.numOff-1].len == 0 {
		e.numOff--
	}

	e.generateCodegen()
	e.codegenEnc.generate(e.codegenFreq[:], maxCodegenBits)

	e.numCodegens = codegenCodeCount
	for e.numCodegens > 4 && e.codegenEnc.codes[codegenOrder[e.numCodegens-1]].len == 0 {
		e.numCodegens--
	}

	header := 3 + 5 + 5 + 4 + 3*e.numCodegens +
		e.codegenEnc.bitLength(e.codegenFreq[:]) +
		int(e.codegenFreq[16])*2 +
		int(e.codegenFreq[17])*3 +
		int(e.codegenFreq[18])*7
	return header + e.litEnc.bitLength(t.litFreq[:]) + e.offEnc.bitLength(t.offFreq[:]) + extra
}

// generateCodegen run-length encodes the literal and offset code lengths
// into e.codegen, using the repeat codes 16, 17 and 18. Repeat counts are
// stored in the byte after the code.
func (e *blockEncoder) generateCodegen() {
	clear(e.codegenFreq[:])
	lengths := e.codegen[:0]
	for _, c := range e.litEnc.codes[:e.numLit] {
		lengths = append(lengths, c.len)
	}
	for _, c := range e.offEnc.codes[:e.numOff] {
		lengths = append(lengths, c.len)
	}
	n := len(lengths)

	// Encode in place; the output never gets ahead of the input.
	out := make([]uint8, 0, 2*n)
	for i := 0; i < n; {
		size := lengths[i]
		count := 1
		for i+count < n && lengths[i+count] == size {
			count++
		}
		i += count

		if size == 0 {
			for count >= 11 {
				k := min(count, 138)
				out = append(out, 18, uint8(k-11))
				e.codegenFreq[18]++
				count -= k
			}
			if count >= 3 {
				out = append(out, 17, uint8(count-3))
				e.codegenFreq[17]++
				count = 0
			}
		} else {
			out = append(out, size)
			e.codegenFreq[size]++
			count--
			for count >= 3 {
				k := min(count, 6)
				out = append(out, 16, uint8(k-3))
				e.codegenFreq[16]++
				count -= k
			}
		}
		for ; count > 0; count-- {
			out = append(out, size)
			e.codegenFreq[size]++
		}
	}
	e.codegen = out
}

func (e *blockEncoder) writeDynamic(w *bitWriter, t *tally, last bool) {
	// BTYPE = 10
	value := uint32(4)
	if last {
		value |= 1
	}
	w.writeBits(value, 3)
	w.writeBits(uint32(e.numLit-257), 5)
	w.writeBits(uint32(e.numOff-1), 5)
	w.writeBits(uint32(e.numCodegens-4), 4)
	for _, sym := range codegenOrder[:e.numCodegens] {
		w.writeBits(uint32(e.codegenEnc.codes[sym].len), 3)
	}

	cg := e.codegen
	for i := 0; i < len(cg); i++ {
		sym := cg[i]
		w.writeCode(e.codegenEnc.codes[sym])
		switch sym {
		case 16:
			i++
			w.writeBits(uint32(cg[i]), 2)
		case 17:
			i++
			w.writeBits(uint32(cg[i]), 3)
		case 18:
			i++
			w.writeBits(uint32(cg[i]), 7)
		}
	}
	w.writeTokens(t.tokens, e.litEnc.codes, e.offEnc.codes)
}

// writeBlock writes the symbols of t as one block. data holds the input
// bytes the block stands for, or is nil if they are no longer available.
// storedOnly is set for level 0; fixedOnly for the Fixed strategy.
func (e *blockEncoder) writeBlock(w *bitWriter, t *tally, data []byte, last, storedOnly, fixedOnly bool) blockKind {
	storable := data != nil
	storedLen := len(data)

	var optLenb, staticLenb int
	if storedOnly {
		optLenb = storedLen + 5
		staticLenb = optLenb
	} else {
		extra := extraBits(t)
		staticLenb = (fixedSize(t, extra) + 7) >> 3
		optLenb = staticLenb
		if !fixedOnly {
			optLenb = (e.buildDynamic(t, extra) + 7) >> 3
			if staticLenb <= optLenb {
				optLenb = staticLenb
			}
		}
	}

	switch {
	case storable && storedLen+4 <= optLenb:
		w.writeStoredBlock(data, last)
		return storedBlock
	case staticLenb == optLenb:
		w.writeFixedHeader(last)
		w.writeTokens(t.tokens, fixedLiteralEncoding.codes, fixedOffsetEncoding.codes)
		return fixedBlock
	default:
		e.writeDynamic(w, t, last)
		return dynamicBlock
	}
}
