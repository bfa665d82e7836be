package zpack

import "strconv"

// A TextEncoder is an Encoder that produces a human-readable representation of
// the LZ77 compression. Matches are replaced with <Length,Distance> symbols,
// and a literal '<' is doubled.
type TextEncoder struct {
	// BlockMarks adds a '|' after every block.
	BlockMarks bool
}

func (t TextEncoder) Reset() {}

func (t TextEncoder) Encode(dst []byte, src []byte, matches []Match, lastBlock bool) []byte {
	pos := 0
	for _, m := range matches {
		dst = appendLiterals(dst, src[pos:pos+m.Unmatched])
		pos += m.Unmatched
		if m.Length > 0 {
			dst = append(dst, '<')
			dst = strconv.AppendInt(dst, int64(m.Length), 10)
			dst = append(dst, ',')
			dst = strconv.AppendInt(dst, int64(m.Distance), 10)
			dst = append(dst, '>')
			pos += m.Length
		}
	}
	dst = appendLiterals(dst, src[pos:])
	if t.BlockMarks {
		dst = append(dst, '|')
	}
	return dst
}

func appendLiterals(dst, lits []byte) []byte {
	for _, c := range lits {
		if c == '<' {
			dst = append(dst, '<')
		}
		dst = append(dst, c)
	}
	return dst
}
