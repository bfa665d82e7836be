package flate

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"testing"

	kflate "github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

var words = []string{
	"the", "light", "of", "rays", "which", "are", "refracted", "by", "prism",
	"colours", "and", "in", "that", "is", "reflected", "from", "a", "glass",
	"experiment", "white", "red", "violet", "body", "bodies", "through",
	"hole", "window", "shutter", "dark", "chamber", "lens", "image", "paper",
	"angle", "incidence", "sine", "proportion", "Newton", "Opticks", "book",
}

// testText returns n bytes of English-like text, the same every time.
// If the Opticks corpus is available, it is used instead.
func testText(n int) []byte {
	if b, err := os.ReadFile("../testdata/Isaac.Newton-Opticks.txt"); err == nil && len(b) >= n {
		return b[:n]
	}
	r := rand.New(rand.NewSource(1))
	var buf bytes.Buffer
	for buf.Len() < n {
		buf.WriteString(words[r.Intn(len(words))])
		switch r.Intn(12) {
		case 0:
			buf.WriteString(".\n")
		case 1:
			buf.WriteString(", ")
		default:
			buf.WriteByte(' ')
		}
	}
	return buf.Bytes()[:n]
}

// testRandom returns n incompressible bytes, the same every time.
func testRandom(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(2)).Read(b)
	return b
}

// testRuns returns n bytes made of runs of repeated bytes.
func testRuns(n int) []byte {
	r := rand.New(rand.NewSource(3))
	b := make([]byte, 0, n)
	for len(b) < n {
		c := byte('a' + r.Intn(6))
		for k := r.Intn(300) + 1; k > 0 && len(b) < n; k-- {
			b = append(b, c)
		}
	}
	return b
}

type testInput struct {
	name string
	data []byte
}

func testInputs() []testInput {
	return []testInput{
		{"empty", nil},
		{"byte", []byte{'x'}},
		{"short", []byte("hello, hello, hello")},
		{"text", testText(150000)},
		{"random", testRandom(70000)},
		{"zeros", make([]byte, 100000)},
		{"runs", testRuns(60000)},
	}
}

// decode decompresses b with the klauspost readers, which check the
// container checksums.
func decode(t *testing.T, format Format, dict, b []byte) []byte {
	t.Helper()
	var r io.ReadCloser
	var err error
	switch format {
	case Raw:
		r = kflate.NewReaderDict(bytes.NewReader(b), dict)
	case Zlib:
		r, err = zlib.NewReaderDict(bytes.NewReader(b), dict)
	case Gzip:
		r, err = gzip.NewReader(bytes.NewReader(b))
	}
	require.NoError(t, err, "error opening the compressed stream")
	out, err := io.ReadAll(r)
	require.NoError(t, err, "error decompressing")
	require.NoError(t, r.Close())
	return out
}

// compress compresses src in one go through a Writer.
func compress(t *testing.T, cfg Config, src []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriterConfig(&buf, cfg)
	require.NoError(t, err)
	_, err = w.Write(src)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// deflateStream drives c directly, offering at most srcStep bytes of input
// and dstSize bytes of output per call.
func deflateStream(t *testing.T, c *Compressor, src []byte, srcStep, dstSize int) []byte {
	t.Helper()
	var out []byte
	dst := make([]byte, dstSize)
	for len(src) > 0 {
		n, m, err := c.Deflate(dst, src[:min(srcStep, len(src))], NoFlush)
		require.NoError(t, err)
		out = append(out, dst[:n]...)
		src = src[m:]
	}
	for {
		n, _, err := c.Deflate(dst, nil, Finish)
		out = append(out, dst[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}
