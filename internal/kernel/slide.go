package kernel

func slideHashScalar(tab []uint16, w uint16) {
	for i, v := range tab {
		if v >= w {
			tab[i] = v - w
		} else {
			tab[i] = 0
		}
	}
}

func sub(v, w uint16) uint16 {
	if v >= w {
		return v - w
	}
	return 0
}

func slideHashUnrolled(tab []uint16, w uint16) {
	for len(tab) >= 8 {
		t := tab[:8]
		t[0] = sub(t[0], w)
		t[1] = sub(t[1], w)
		t[2] = sub(t[2], w)
		t[3] = sub(t[3], w)
		t[4] = sub(t[4], w)
		t[5] = sub(t[5], w)
		t[6] = sub(t[6], w)
		t[7] = sub(t[7], w)
		tab = tab[8:]
	}
	for i, v := range tab {
		tab[i] = sub(v, w)
	}
}
