package zpack

import (
	"errors"
	"io"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("zpack: write after close")

// A Writer connects a MatchFinder and an Encoder into an io.WriteCloser.
// Data is collected into blocks of BlockSize bytes; each block goes through
// the MatchFinder and then the Encoder, and the result is written to Dest.
type Writer struct {
	Dest        io.Writer
	MatchFinder MatchFinder
	Encoder     Encoder
	BlockSize   int

	inBuf   []byte
	outBuf  []byte
	matches []Match
	err     error
	closed  bool
}

func (w *Writer) blockSize() int {
	if w.BlockSize <= 0 {
		return 1 << 16
	}
	return w.BlockSize
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, ErrClosed
	}
	size := w.blockSize()
	if w.inBuf == nil {
		w.inBuf = make([]byte, 0, size)
	}

	for len(p) > 0 {
		k := copy(w.inBuf[len(w.inBuf):size], p)
		w.inBuf = w.inBuf[:len(w.inBuf)+k]
		p = p[k:]
		n += k
		if len(w.inBuf) == size {
			if err := w.encodeBlock(false); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (w *Writer) encodeBlock(lastBlock bool) error {
	w.matches = w.MatchFinder.FindMatches(w.matches[:0], w.inBuf)
	w.outBuf = w.Encoder.Encode(w.outBuf[:0], w.inBuf, w.matches, lastBlock)
	w.inBuf = w.inBuf[:0]
	if len(w.outBuf) == 0 {
		return nil
	}
	if _, err := w.Dest.Write(w.outBuf); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close compresses any buffered data as the last block. It does not close
// Dest.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return nil
	}
	w.closed = true
	return w.encodeBlock(true)
}

// Reset discards the Writer's state and prepares it to write a new stream
// to dst.
func (w *Writer) Reset(dst io.Writer) {
	w.Dest = dst
	w.MatchFinder.Reset()
	w.Encoder.Reset()
	w.inBuf = w.inBuf[:0]
	w.matches = w.matches[:0]
	w.err = nil
	w.closed = false
}
