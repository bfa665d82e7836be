package kernel

import "hash/crc32"

const prime4bytes = 2654435761

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func load(b []byte) uint32 {
	var v uint32
	for i, c := range b[:min(len(b), 4)] {
		v |= uint32(c) << (8 * i)
	}
	return v
}

// hashShift is the incremental shift/xor hash from zlib:
// h = ((h << shift) ^ c) & mask, applied to the first three bytes.
func hashShift(b []byte, bits uint) uint32 {
	shift := (bits + 2) / 3
	mask := uint32(1)<<bits - 1
	var h uint32
	for _, c := range b[:3] {
		h = ((h << shift) ^ uint32(c)) & mask
	}
	return h
}

func hashMultiply(b []byte, bits uint) uint32 {
	return (load(b) * prime4bytes) >> (32 - bits)
}

// hashCRC32C takes the high bits of the CRC-32C of b. hash/crc32 uses the
// CRC32 instruction for the Castagnoli polynomial when it is available.
func hashCRC32C(b []byte, bits uint) uint32 {
	return crc32.Update(0, castagnoli, b) >> (32 - bits)
}
