package kernel

func chunkCopyBytewise(dst []byte, dist, n int) []byte {
	for ; n > 0; n-- {
		dst = append(dst, dst[len(dst)-dist])
	}
	return dst
}

// chunkCopyDoubling copies in chunks. The first chunk is dist bytes long;
// each chunk after that is twice as long as the one before, since the bytes
// just written repeat the same period.
func chunkCopyDoubling(dst []byte, dist, n int) []byte {
	start := len(dst) - dist
	for n > 0 {
		k := len(dst) - start
		if k > n {
			k = n
		}
		dst = append(dst, dst[start:start+k]...)
		n -= k
	}
	return dst
}
