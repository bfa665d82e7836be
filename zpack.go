// Package zpack is a modular toolkit for DEFLATE compression.
//
// A compressor has two halves:
//   - something that looks for repeated sequences of bytes (LZ77), and
//   - an encoder for the compressed format (an entropy coder).
//
// This package defines the intermediate representation that passes between
// the two halves, so that match finders and encoders can be mixed, tested,
// and inspected separately. The DEFLATE match finder and encoder live in the
// flate subpackage.
package zpack

// A Match is the basic unit of LZ77 compression.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and returns dst.
	// Matches may refer back into data passed to earlier calls.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to be used with
	// a new stream.
	Reset()
}

// An Encoder encodes the data in its final format.
type Encoder interface {
	// Encode appends the encoded format of src to dst, using the match
	// information from matches. The first call after Reset also writes any
	// stream header; the call with lastBlock set writes the trailer.
	Encode(dst []byte, src []byte, matches []Match, lastBlock bool) []byte

	// Reset clears any internal state, preparing the Encoder to be used with
	// a new stream.
	Reset()
}

// AutoReset wraps a MatchFinder so that every block is compressed
// independently of the ones before it.
type AutoReset struct {
	MatchFinder
}

func (a AutoReset) FindMatches(dst []Match, src []byte) []Match {
	a.Reset()
	return a.MatchFinder.FindMatches(dst, src)
}
