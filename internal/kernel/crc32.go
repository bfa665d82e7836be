package kernel

import "hash/crc32"

// crc32Stdlib uses hash/crc32, which already carries the SSE4.2/PCLMULQDQ,
// arm64 CRC and slicing-by-8 implementations and picks one at init.
func crc32Stdlib(crc uint32, p []byte) uint32 {
	return crc32.Update(crc, crc32.IEEETable, p)
}

func crc32Bytewise(crc uint32, p []byte) uint32 {
	tab := crc32.IEEETable
	crc = ^crc
	for _, v := range p {
		crc = tab[byte(crc)^v] ^ (crc >> 8)
	}
	return ^crc
}
