package kernel

import (
	"encoding/binary"
	"math/bits"
)

func matchLenBytewise(a, b []byte) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	b = b[:len(a)]
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return len(a)
}

// matchLen64 compares 8 bytes at a time.
func matchLen64(a, b []byte) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	var checked int
	for len(a) >= 8 {
		if diff := binary.LittleEndian.Uint64(a) ^ binary.LittleEndian.Uint64(b); diff != 0 {
			return checked + bits.TrailingZeros64(diff)>>3
		}
		checked += 8
		a = a[8:]
		b = b[8:]
	}
	return checked + matchLenBytewise(a, b)
}

// matchLen32 compares 4 bytes at a time, for 32-bit targets.
func matchLen32(a, b []byte) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	var checked int
	for len(a) >= 4 {
		if diff := binary.LittleEndian.Uint32(a) ^ binary.LittleEndian.Uint32(b); diff != 0 {
			return checked + bits.TrailingZeros32(diff)>>3
		}
		checked += 4
		a = a[4:]
		b = b[4:]
	}
	return checked + matchLenBytewise(a, b)
}
