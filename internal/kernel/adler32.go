package kernel

const (
	adlerMod = 65521
	// adlerNMax is the largest n such that
	// 255 * n * (n+1) / 2 + (n+1) * (adlerMod-1) <= 2^32-1.
	adlerNMax = 5552
)

func adler32Scalar(adler uint32, p []byte) uint32 {
	s1, s2 := adler&0xffff, adler>>16
	for len(p) > 0 {
		var q []byte
		if len(p) > adlerNMax {
			p, q = p[:adlerNMax], p[adlerNMax:]
		}
		for _, x := range p {
			s1 += uint32(x)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		p = q
	}
	return s2<<16 | s1
}

func adler32Unrolled(adler uint32, p []byte) uint32 {
	s1, s2 := adler&0xffff, adler>>16
	for len(p) > 0 {
		var q []byte
		if len(p) > adlerNMax {
			p, q = p[:adlerNMax], p[adlerNMax:]
		}
		for len(p) >= 16 {
			s1 += uint32(p[0])
			s2 += s1
			s1 += uint32(p[1])
			s2 += s1
			s1 += uint32(p[2])
			s2 += s1
			s1 += uint32(p[3])
			s2 += s1
			s1 += uint32(p[4])
			s2 += s1
			s1 += uint32(p[5])
			s2 += s1
			s1 += uint32(p[6])
			s2 += s1
			s1 += uint32(p[7])
			s2 += s1
			s1 += uint32(p[8])
			s2 += s1
			s1 += uint32(p[9])
			s2 += s1
			s1 += uint32(p[10])
			s2 += s1
			s1 += uint32(p[11])
			s2 += s1
			s1 += uint32(p[12])
			s2 += s1
			s1 += uint32(p[13])
			s2 += s1
			s1 += uint32(p[14])
			s2 += s1
			s1 += uint32(p[15])
			s2 += s1
			p = p[16:]
		}
		for _, x := range p {
			s1 += uint32(x)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		p = q
	}
	return s2<<16 | s1
}
