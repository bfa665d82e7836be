package zpack

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/andybalholm/zpack/internal/kernel"
)

var (
	ErrMatchLength   = errors.New("zpack: match length out of range")
	ErrMatchDistance = errors.New("zpack: match distance out of range")
	ErrOverrun       = errors.New("zpack: matches cover more bytes than the block")
	ErrMismatch      = errors.New("zpack: replayed data differs from the input")
)

// Limits describes the matches a format can represent. Zero fields are not
// checked.
type Limits struct {
	MinLength   int
	MaxLength   int
	MaxDistance int
}

// Replay reconstructs a block from its matches. history holds the data that
// came before the block (matches may reach back into it); the reconstructed
// block is appended to history and the result returned. Literal bytes are
// taken from src.
func Replay(history, src []byte, matches []Match) ([]byte, error) {
	copyMatch := kernel.Default().ChunkCopy
	dst := history
	pos := 0
	for i, m := range matches {
		if m.Unmatched < 0 || pos+m.Unmatched+m.Length > len(src) {
			return dst, fmt.Errorf("match %d: %w", i, ErrOverrun)
		}
		dst = append(dst, src[pos:pos+m.Unmatched]...)
		pos += m.Unmatched
		if m.Length == 0 {
			continue
		}
		if m.Distance <= 0 || m.Distance > len(dst) {
			return dst, fmt.Errorf("match %d: distance %d with %d bytes of history: %w", i, m.Distance, len(dst), ErrMatchDistance)
		}
		dst = copyMatch(dst, m.Distance, m.Length)
		pos += m.Length
	}
	return append(dst, src[pos:]...), nil
}

// Verify checks that matches are a faithful encoding of src within lim,
// given the preceding history. It reports every violation it finds.
func Verify(history, src []byte, matches []Match, lim Limits) error {
	var result *multierror.Error
	for i, m := range matches {
		if m.Length == 0 {
			continue
		}
		if (lim.MinLength > 0 && m.Length < lim.MinLength) || (lim.MaxLength > 0 && m.Length > lim.MaxLength) {
			result = multierror.Append(result, fmt.Errorf("match %d: length %d: %w", i, m.Length, ErrMatchLength))
		}
		if lim.MaxDistance > 0 && m.Distance > lim.MaxDistance {
			result = multierror.Append(result, fmt.Errorf("match %d: distance %d: %w", i, m.Distance, ErrMatchDistance))
		}
	}

	out, err := Replay(append([]byte(nil), history...), src, matches)
	if err != nil {
		result = multierror.Append(result, err)
	} else if !bytes.Equal(out[len(history):], src) {
		result = multierror.Append(result, ErrMismatch)
	}
	return result.ErrorOrNil()
}
