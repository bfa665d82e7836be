package flate

import (
	"errors"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/andybalholm/zpack"
)

// ErrClosed is returned by Write and Flush after Close.
var ErrClosed = errors.New("flate: writer is closed")

// NewWriter returns a Writer that compresses data at the given level, in
// raw DEFLATE format. Levels 0-9 and DefaultCompression are available;
// levels outside this range will be replaced with the closest level
// available.
func NewWriter(w io.Writer, level int) *Writer {
	return newWriter(w, level, Raw)
}

// NewZlibWriter is like NewWriter, but writes zlib format.
func NewZlibWriter(w io.Writer, level int) *Writer {
	return newWriter(w, level, Zlib)
}

// NewGZIPWriter is like NewWriter, but writes gzip format.
func NewGZIPWriter(w io.Writer, level int) *Writer {
	return newWriter(w, level, Gzip)
}

func clampLevel(level int) int {
	return min(max(level, DefaultCompression), BestCompression)
}

func newWriter(w io.Writer, level int, format Format) *Writer {
	cfg := DefaultConfig()
	cfg.Level = clampLevel(level)
	cfg.Format = format
	c := new(Compressor)
	c.init(cfg)
	c.Reset()
	return &Writer{c: c, dest: w}
}

// NewWriterConfig returns a Writer for an arbitrary configuration.
func NewWriterConfig(w io.Writer, cfg Config) (*Writer, error) {
	c, err := NewCompressor(cfg)
	if err != nil {
		return nil, err
	}
	return &Writer{c: c, dest: w}, nil
}

// A Writer is an io.WriteCloser that compresses what is written to it with
// a Compressor.
type Writer struct {
	c      *Compressor
	dest   io.Writer
	buf    []byte
	err    error
	closed bool
}

// Compressor returns the Compressor behind w.
func (w *Writer) Compressor() *Compressor {
	return w.c
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, ErrClosed
	}
	for len(p) > 0 {
		nDst, nSrc, err := w.c.Deflate(w.outBuf(), p, NoFlush)
		n += nSrc
		p = p[nSrc:]
		if err := w.emit(nDst); err != nil {
			return n, err
		}
		if err != nil {
			w.err = err
			return n, err
		}
	}
	return n, nil
}

func (w *Writer) outBuf() []byte {
	if w.buf == nil {
		w.buf = make([]byte, 1<<16)
	}
	return w.buf
}

func (w *Writer) emit(n int) error {
	if n == 0 {
		return nil
	}
	if _, err := w.dest.Write(w.buf[:n]); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Flush writes out everything written so far, ending with a sync flush
// marker, so that a reader can decode all of it.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrClosed
	}
	nDst, _, err := w.c.Deflate(w.outBuf(), nil, SyncFlush)
	if errors.Is(err, ErrNoProgress) {
		// Nothing written since the last flush.
		return nil
	}
	for {
		if err2 := w.emit(nDst); err2 != nil {
			return err2
		}
		if err != nil {
			w.err = err
			return err
		}
		if nDst < len(w.buf) {
			return nil
		}
		// The buffer filled up; drain what is still pending.
		nDst, _, err = w.c.Deflate(w.buf, nil, NoFlush)
		if errors.Is(err, ErrNoProgress) {
			return nil
		}
	}
}

// Close finishes the stream and writes out the rest of it. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	var result *multierror.Error
	if w.err != nil {
		result = multierror.Append(result, w.err)
	}
	for {
		nDst, _, err := w.c.Deflate(w.outBuf(), nil, Finish)
		if err2 := w.emit(nDst); err2 != nil {
			result = multierror.Append(result, err2)
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			result = multierror.Append(result, err)
			break
		}
	}
	w.err = result.ErrorOrNil()
	return w.err
}

// Reset discards the Writer's state and prepares it to write a new stream
// to dst, with the same configuration.
func (w *Writer) Reset(dst io.Writer) {
	w.c.Reset()
	w.dest = dst
	w.err = nil
	w.closed = false
}

// NewMatchFinder returns a zpack.MatchFinder that finds the matches the
// Compressor would use at the given level. Levels outside 1-9 are
// replaced with the closest level.
func NewMatchFinder(level int) zpack.MatchFinder {
	cfg := DefaultConfig()
	cfg.Level = min(max(level, BestSpeed), BestCompression)
	c := new(Compressor)
	c.init(cfg)
	c.Reset()
	return c
}
