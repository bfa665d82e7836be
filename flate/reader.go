package flate

import (
	"io"

	kflate "github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// NewReader returns a reader that decompresses raw DEFLATE data from r.
func NewReader(r io.Reader) io.ReadCloser {
	return kflate.NewReader(r)
}

// NewReaderDict is like NewReader, with a preset dictionary.
func NewReaderDict(r io.Reader, dict []byte) io.ReadCloser {
	return kflate.NewReaderDict(r, dict)
}

// NewZlibReader returns a reader that decompresses zlib data from r and
// verifies its checksum.
func NewZlibReader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

// NewZlibReaderDict is like NewZlibReader, with a preset dictionary.
func NewZlibReaderDict(r io.Reader, dict []byte) (io.ReadCloser, error) {
	return zlib.NewReaderDict(r, dict)
}

// NewGZIPReader returns a reader that decompresses gzip data from r and
// verifies its checksum and length.
func NewGZIPReader(r io.Reader) (*gzip.Reader, error) {
	return gzip.NewReader(r)
}
