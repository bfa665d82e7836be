package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andybalholm/zpack/flate"
)

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseOutput(t *testing.T) {
	errClose := errors.New("disk full")
	errWrite := errors.New("write failed")

	assert.NoError(t, closeOutput(failingCloser{}, nil))
	assert.ErrorIs(t, closeOutput(failingCloser{errClose}, nil), errClose, "a failed close must not be lost")
	assert.ErrorIs(t, closeOutput(failingCloser{errClose}, errWrite), errWrite, "the first error wins")

	// Closing a file twice fails, and the failure is reported.
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.ErrorIs(t, closeOutput(f, nil), os.ErrClosed)
}

func TestCompressFile(t *testing.T) {
	data := []byte(strings.Repeat("It is not my design to explain the properties of light by hypotheses. ", 300))
	path := filepath.Join(t.TempDir(), "data.gz")

	for _, format := range []flate.Format{flate.Raw, flate.Zlib, flate.Gzip} {
		cfg := flate.DefaultConfig()
		cfg.Format = format
		out, err := os.Create(path)
		require.NoError(t, err)
		st, err := compressStream(out, bytes.NewReader(data), cfg)
		require.NoError(t, closeOutput(out, err))
		assert.EqualValues(t, len(data), st.TotalIn)

		in, err := os.Open(path)
		require.NoError(t, err)
		var got bytes.Buffer
		require.NoError(t, decompressStream(&got, in, format), "%v", format)
		in.Close()
		assert.Equal(t, data, got.Bytes(), "%v", format)
	}
}
