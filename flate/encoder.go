package flate

import "github.com/andybalholm/zpack"

// The largest distance a DEFLATE match can have.
const maxDistance = 32768

// An Encoder implements zpack.Encoder, writing each call's data as one or
// more raw DEFLATE blocks. Matches that DEFLATE cannot represent are
// written as literals, and matches longer than 258 bytes are split.
type Encoder struct {
	// Fixed makes every block use the fixed Huffman codes.
	Fixed bool

	bw    bitWriter
	enc   *blockEncoder
	tally *tally
}

// NewEncoder returns an Encoder for raw DEFLATE.
func NewEncoder() *Encoder {
	return &Encoder{
		enc:   newBlockEncoder(),
		tally: newTally(1 << 14),
	}
}

func (e *Encoder) Reset() {
	e.bw.reset()
	e.tally.reset()
}

func (e *Encoder) Encode(dst []byte, src []byte, matches []zpack.Match, lastBlock bool) []byte {
	start, pos := 0, 0
	flush := func(last bool) {
		e.enc.writeBlock(&e.bw, e.tally, src[start:pos], last, false, e.Fixed)
		e.tally.reset()
		start = pos
	}
	literals := func(n int) {
		for end := pos + n; pos < end; {
			full := e.tally.lit(src[pos])
			pos++
			if full {
				flush(false)
			}
		}
	}

	for _, m := range matches {
		literals(m.Unmatched)
		if m.Distance < 1 || m.Distance > maxDistance || m.Length < minMatch {
			literals(m.Length)
			continue
		}
		for length := m.Length; length > 0; {
			n := min(length, maxMatch)
			if rest := length - n; rest > 0 && rest < minMatch {
				n = length - minMatch
			}
			full := e.tally.match(m.Distance, n)
			pos += n
			length -= n
			if full {
				flush(false)
			}
		}
	}
	literals(len(src) - pos)

	if lastBlock || len(e.tally.tokens) > 0 {
		flush(lastBlock)
	}
	if lastBlock {
		e.bw.align()
	}
	dst = append(dst, e.bw.buf...)
	e.bw.buf = e.bw.buf[:0]
	return dst
}
