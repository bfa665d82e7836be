package flate

import (
	"bytes"
	stdflate "compress/flate"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripLevels(t *testing.T) {
	for _, format := range []Format{Raw, Zlib, Gzip} {
		for level := DefaultCompression; level <= BestCompression; level++ {
			for _, in := range testInputs() {
				t.Run(fmt.Sprintf("%v/%d/%s", format, level, in.name), func(t *testing.T) {
					cfg := DefaultConfig()
					cfg.Level = level
					cfg.Format = format
					out := decode(t, format, nil, compress(t, cfg, in.data))
					assert.Equal(t, len(in.data), len(out))
					assert.True(t, bytes.Equal(in.data, out), "decompressed data is wrong")
				})
			}
		}
	}
}

func TestRoundTripStrategies(t *testing.T) {
	for _, strategy := range []Strategy{DefaultStrategy, Filtered, HuffmanOnly, RLE, Fixed} {
		for _, level := range []int{1, 2, 4, 6, 9} {
			for _, in := range testInputs() {
				t.Run(fmt.Sprintf("%v/%d/%s", strategy, level, in.name), func(t *testing.T) {
					cfg := DefaultConfig()
					cfg.Level = level
					cfg.Strategy = strategy
					compressed := compress(t, cfg, in.data)
					assert.True(t, bytes.Equal(in.data, decode(t, Raw, nil, compressed)), "decompressed data is wrong")
				})
			}
		}
	}
}

func TestRoundTripWindowAndMemory(t *testing.T) {
	data := testText(100000)
	for wbits := 8; wbits <= 15; wbits++ {
		for _, memLevel := range []int{1, 5, 9} {
			for _, level := range []int{0, 1, 3, 6, 9} {
				t.Run(fmt.Sprintf("w%d/m%d/l%d", wbits, memLevel, level), func(t *testing.T) {
					cfg := Config{Level: level, WindowBits: wbits, MemLevel: memLevel, Format: Zlib}
					compressed := compress(t, cfg, data)
					assert.True(t, bytes.Equal(data, decode(t, Zlib, nil, compressed)), "decompressed data is wrong")
				})
			}
		}
	}
}

// The standard library decoder agrees with the klauspost one.
func TestStdlibDecoder(t *testing.T) {
	data := testText(80000)
	for level := 0; level <= 9; level++ {
		compressed := compress(t, Config{Level: level, WindowBits: 15, MemLevel: 8}, data)
		out, err := io.ReadAll(stdflate.NewReader(bytes.NewReader(compressed)))
		require.NoError(t, err, "level %d", level)
		assert.True(t, bytes.Equal(data, out), "level %d: decompressed data is wrong", level)
	}
}

func TestRepeatedByte(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 100000)
	compressed := compress(t, Config{Level: BestCompression, WindowBits: 15, MemLevel: 8}, data)
	assert.LessOrEqual(t, len(compressed), 200)
	assert.Equal(t, data, decode(t, Raw, nil, compressed))
}

func TestEmptyInput(t *testing.T) {
	for _, format := range []Format{Raw, Zlib, Gzip} {
		for level := 0; level <= 9; level++ {
			cfg := DefaultConfig()
			cfg.Level = level
			cfg.Format = format
			c, err := NewCompressor(cfg)
			require.NoError(t, err)

			dst := make([]byte, 100)
			n, m, err := c.Deflate(dst, nil, Finish)
			assert.Equal(t, io.EOF, err, "%v level %d", format, level)
			assert.Zero(t, m)
			assert.Empty(t, decode(t, format, nil, dst[:n]))
		}
	}
	// A minimal raw stream is a single empty final block.
	c, err := NewCompressor(DefaultConfig())
	require.NoError(t, err)
	dst := make([]byte, 10)
	n, _, err := c.Deflate(dst, nil, Finish)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []byte{0x03, 0x00}, dst[:n])
}

func TestOneByteAtATime(t *testing.T) {
	inputs := []testInput{
		{"text", testText(40000)},
		{"random", testRandom(3000)},
		{"short", []byte("abcabcabcabcabd")},
	}
	configs := []Config{
		{WindowBits: 15, MemLevel: 8, Format: Zlib},
		{WindowBits: 9, MemLevel: 8, Format: Gzip},
		{WindowBits: 10, MemLevel: 2, Format: Raw},
	}
	for _, base := range configs {
		for level := 0; level <= 9; level++ {
			for _, strategy := range []Strategy{DefaultStrategy, RLE, Fixed} {
				for _, in := range inputs {
					cfg := base
					cfg.Level = level
					cfg.Strategy = strategy
					name := fmt.Sprintf("%v/w%d/%d/%v/%s", cfg.Format, cfg.WindowBits, level, strategy, in.name)
					t.Run(name, func(t *testing.T) {
						bulk, err := NewCompressor(cfg)
						require.NoError(t, err)
						want := deflateStream(t, bulk, in.data, len(in.data), 1<<20)

						single, err := NewCompressor(cfg)
						require.NoError(t, err)
						got := deflateStream(t, single, in.data, 1, 1)

						require.Equal(t, want, got)
						assert.True(t, bytes.Equal(in.data, decode(t, cfg.Format, nil, got)))
					})
				}
			}
		}
	}
}

func TestSmallOutputBuffers(t *testing.T) {
	data := testText(50000)
	for level := 0; level <= 9; level++ {
		cfg := DefaultConfig()
		cfg.Level = level
		cfg.Format = Gzip
		c, err := NewCompressor(cfg)
		require.NoError(t, err)
		want := deflateStream(t, c, data, len(data), 1<<20)

		for _, size := range []int{1, 7, 100, 4096} {
			c.Reset()
			got := deflateStream(t, c, data, 1000, size)
			assert.Equal(t, want, got, "level %d, output buffer %d", level, size)
		}
	}
}

func TestReset(t *testing.T) {
	data := testText(90000)
	other := testRandom(20000)
	for level := 0; level <= 9; level++ {
		cfg := DefaultConfig()
		cfg.Level = level
		cfg.Format = Zlib
		cfg.Dictionary = testText(1000)

		fresh, err := NewCompressor(cfg)
		require.NoError(t, err)
		want := deflateStream(t, fresh, data, len(data), 1<<20)

		reused, err := NewCompressor(cfg)
		require.NoError(t, err)
		deflateStream(t, reused, other, 777, 1<<20)
		reused.Reset()
		got := deflateStream(t, reused, data, len(data), 1<<20)
		assert.Equal(t, want, got, "level %d", level)

		reused.Reset()
		got = deflateStream(t, reused, data, len(data), 1<<20)
		assert.Equal(t, want, got, "level %d, second reset", level)
	}
}

func TestDistanceBeyondWindow(t *testing.T) {
	const wSize = 1 << 15
	marker := []byte{0xf0, 0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7}
	var data []byte
	data = append(data, marker...)
	data = append(data, testText(wSize+100-len(marker))...)
	second := len(data)
	data = append(data, marker...)
	data = append(data, testText(500)...)

	for level := 1; level <= 9; level++ {
		mf := NewMatchFinder(level)
		matches := mf.FindMatches(nil, data)
		pos := 0
		for _, m := range matches {
			pos += m.Unmatched
			if m.Length > 0 {
				assert.LessOrEqual(t, m.Distance, wSize-minLookahead, "level %d", level)
				overlaps := pos < second+len(marker) && pos+m.Length > second
				assert.False(t, overlaps, "level %d: match %+v at %d covers the repeated marker", level, m, pos)
			}
			pos += m.Length
		}
		assert.Equal(t, len(data), pos)

		compressed := compress(t, Config{Level: level, WindowBits: 15, MemLevel: 8}, data)
		assert.True(t, bytes.Equal(data, decode(t, Raw, nil, compressed)))
	}
}

func TestSyncFlush(t *testing.T) {
	part1 := testText(30000)
	part2 := testText(45000)[30000:]
	for level := 0; level <= 9; level++ {
		var buf bytes.Buffer
		w := NewWriter(&buf, level)
		_, err := w.Write(part1)
		require.NoError(t, err)
		require.NoError(t, w.Flush())

		// Everything written so far can be decoded from what has been
		// output so far.
		r := stdflate.NewReader(bytes.NewReader(buf.Bytes()))
		got := make([]byte, len(part1))
		_, err = io.ReadFull(r, got)
		require.NoError(t, err, "level %d", level)
		assert.True(t, bytes.Equal(part1, got), "level %d", level)

		// Flushing again with nothing new is harmless.
		require.NoError(t, w.Flush())

		_, err = w.Write(part2)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		assert.True(t, bytes.Equal(append(part1, part2...), decode(t, Raw, nil, buf.Bytes())), "level %d", level)
	}
}

func TestFullFlush(t *testing.T) {
	part := testText(40000)
	for level := 1; level <= 9; level++ {
		for _, strategy := range []Strategy{DefaultStrategy, RLE} {
			cfg := DefaultConfig()
			cfg.Level = level
			cfg.Strategy = strategy
			c, err := NewCompressor(cfg)
			require.NoError(t, err)

			dst := make([]byte, 1<<20)
			n, m, err := c.Deflate(dst, part, FullFlush)
			require.NoError(t, err)
			require.Equal(t, len(part), m)
			first := append([]byte(nil), dst[:n]...)

			second := deflateStream(t, c, part, len(part), 1<<20)

			// The second half refers to nothing before the flush, so it
			// decodes on its own.
			assert.True(t, bytes.Equal(part, decode(t, Raw, nil, second)), "level %d %v", level, strategy)
			whole := append(first, second...)
			assert.True(t, bytes.Equal(append(part, part...), decode(t, Raw, nil, whole)), "level %d %v", level, strategy)
		}
	}
}

func TestDictionary(t *testing.T) {
	dict := testText(20000)
	data := dict[5000:15000]
	for _, format := range []Format{Raw, Zlib} {
		for level := 1; level <= 9; level++ {
			cfg := DefaultConfig()
			cfg.Level = level
			cfg.Format = format
			plain := compress(t, cfg, data)

			cfg.Dictionary = dict
			withDict := compress(t, cfg, data)
			// Level 1 only tries the head of each chain.
			bound := len(plain) / 4
			if level == 1 {
				bound = len(plain) * 3 / 4
			}
			assert.Less(t, len(withDict), bound, "%v level %d", format, level)
			assert.True(t, bytes.Equal(data, decode(t, format, dict, withDict)), "%v level %d", format, level)
		}
	}

	// A dictionary longer than the window keeps its tail.
	cfg := Config{Level: 6, WindowBits: 10, MemLevel: 8}
	cfg.Dictionary = dict
	compressed := compress(t, cfg, dict[len(dict)-500:])
	assert.True(t, bytes.Equal(dict[len(dict)-500:], decode(t, Raw, dict, compressed)))
}

func TestSetDictionaryErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = Gzip
	c, err := NewCompressor(cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetDictionary([]byte("abc")), ErrDictionaryFormat)

	cfg.Format = Zlib
	c, err = NewCompressor(cfg)
	require.NoError(t, err)
	_, _, err = c.Deflate(make([]byte, 100), []byte("some data"), NoFlush)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetDictionary([]byte("abc")), ErrDictionaryState)
}

func TestStrategies(t *testing.T) {
	data := append(testRuns(20000), testText(20000)...)

	t.Run("rle", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strategy = RLE
		c, err := NewCompressor(cfg)
		require.NoError(t, err)
		matches := c.FindMatches(nil, data)
		require.NotEmpty(t, matches)
		for _, m := range matches {
			if m.Length > 0 {
				assert.Equal(t, 1, m.Distance)
			}
		}
	})

	t.Run("huffman", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strategy = HuffmanOnly
		c, err := NewCompressor(cfg)
		require.NoError(t, err)
		matches := c.FindMatches(nil, data)
		for _, m := range matches {
			assert.Zero(t, m.Length)
		}
	})

	t.Run("fixed", func(t *testing.T) {
		for level := 2; level <= 9; level++ {
			cfg := DefaultConfig()
			cfg.Level = level
			cfg.Strategy = Fixed
			var buf bytes.Buffer
			w, err := NewWriterConfig(&buf, cfg)
			require.NoError(t, err)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			st := w.Compressor().Stats()
			assert.Zero(t, st.DynamicBlocks, "level %d", level)
			assert.NotZero(t, st.FixedBlocks, "level %d", level)
		}
	})

	t.Run("filtered", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strategy = Filtered
		c, err := NewCompressor(cfg)
		require.NoError(t, err)
		for _, m := range c.FindMatches(nil, data) {
			if m.Length > 0 {
				assert.Greater(t, m.Length, 5)
			}
		}
	})
}

func TestStats(t *testing.T) {
	data := testText(100000)
	for level := 0; level <= 9; level++ {
		var buf bytes.Buffer
		w := NewGZIPWriter(&buf, level)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		st := w.Compressor().Stats()
		assert.EqualValues(t, len(data), st.TotalIn, "level %d", level)
		assert.EqualValues(t, buf.Len(), st.TotalOut, "level %d", level)
		if level == 0 {
			assert.NotZero(t, st.StoredBlocks)
			assert.Zero(t, st.Matches)
		} else {
			assert.NotZero(t, st.Matches, "level %d", level)
		}
	}
}

func TestDeflateErrors(t *testing.T) {
	c, err := NewCompressor(DefaultConfig())
	require.NoError(t, err)
	dst := make([]byte, 1000)

	_, _, err = c.Deflate(nil, []byte("abc"), NoFlush)
	assert.ErrorIs(t, err, ErrNoProgress)
	_, _, err = c.Deflate(dst, nil, Flush(9))
	assert.ErrorIs(t, err, ErrInvalidFlush)

	_, _, err = c.Deflate(dst, nil, NoFlush)
	assert.NoError(t, err)
	_, _, err = c.Deflate(dst, nil, NoFlush)
	assert.ErrorIs(t, err, ErrNoProgress, "a repeated call with nothing to do")

	_, _, err = c.Deflate(dst, []byte("abc"), Finish)
	assert.Equal(t, io.EOF, err)
	_, _, err = c.Deflate(dst, []byte("more"), Finish)
	assert.ErrorIs(t, err, ErrStreamFinished)
	_, _, err = c.Deflate(dst, nil, SyncFlush)
	assert.ErrorIs(t, err, ErrFlushAfterFinish)
	_, _, err = c.Deflate(dst, nil, Finish)
	assert.Equal(t, io.EOF, err)

	// Finish started, with the trailer still pending.
	cfg := DefaultConfig()
	cfg.Format = Zlib
	data := testText(5000)
	c, err = NewCompressor(cfg)
	require.NoError(t, err)
	whole := deflateStream(t, c, data, len(data), 1<<20)

	c.Reset()
	dst = make([]byte, len(whole))
	n, m, err := c.Deflate(dst[:len(whole)-2], data, Finish)
	require.NoError(t, err)
	assert.Equal(t, len(data), m)
	assert.Equal(t, len(whole)-2, n)
	_, _, err = c.Deflate(dst, nil, NoFlush)
	assert.ErrorIs(t, err, ErrFlushAfterFinish)
	n, _, err = c.Deflate(dst, nil, Finish)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, whole[len(whole)-2:], dst[:n])
}

func TestZlibHeader(t *testing.T) {
	for _, tc := range []struct {
		level    int
		wbits    int
		strategy Strategy
		dict     bool
		want     []byte
	}{
		{6, 15, DefaultStrategy, false, []byte{0x78, 0x9c}},
		{1, 15, DefaultStrategy, false, []byte{0x78, 0x01}},
		{9, 15, DefaultStrategy, false, []byte{0x78, 0xda}},
		{3, 15, DefaultStrategy, false, []byte{0x78, 0x5e}},
		{6, 15, HuffmanOnly, false, []byte{0x78, 0x01}},
		{6, 15, DefaultStrategy, true, []byte{0x78, 0xbb}},
		{6, 9, DefaultStrategy, false, []byte{0x18, 0x95}},
		{1, 15, DefaultStrategy, true, []byte{0x78, 0x20}},
	} {
		got := appendZlibHeader(nil, tc.wbits, tc.level, tc.strategy, tc.dict)
		assert.Equal(t, tc.want, got, "%+v", tc)
	}

	// Window bits 8 is written as 9.
	compressed := compress(t, Config{Level: 6, WindowBits: 8, MemLevel: 8, Format: Zlib}, []byte("hello"))
	assert.Equal(t, []byte{0x18, 0x95}, compressed[:2])
}

func TestGzipHeader(t *testing.T) {
	h := &GzipHeader{
		Name:    "opticks.txt",
		Comment: "Traité de la lumière",
		ModTime: time.Unix(1700000000, 0),
		Extra:   []byte("xx\x02\x00hi"),
		OS:      3,
	}
	cfg := DefaultConfig()
	cfg.Format = Gzip
	cfg.Level = BestCompression
	cfg.Header = h
	data := testText(10000)
	compressed := compress(t, cfg, data)

	r, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
	assert.Equal(t, h.Name, r.Name)
	assert.Equal(t, h.Comment, r.Comment)
	assert.Equal(t, h.Extra, r.Extra)
	assert.Equal(t, h.ModTime.Unix(), r.ModTime.Unix())
	assert.Equal(t, h.OS, r.OS)
	assert.Equal(t, byte(2), compressed[8], "XFL for level 9")

	// Without a header, the OS is unknown and there is no timestamp.
	cfg.Header = nil
	cfg.Level = 1
	compressed = compress(t, cfg, data)
	assert.Equal(t, []byte{0x1f, 0x8b, 8, 0, 0, 0, 0, 0, 4, 255}, compressed[:10])
}
