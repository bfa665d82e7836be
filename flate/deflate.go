// Copyright 2009 The Go Authors. All rights reserved.
// Copyright (c) 2015 Klaus Post
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

import (
	"encoding/binary"
	"io"
	"log"
	"math"

	"github.com/andybalholm/zpack"
	"github.com/andybalholm/zpack/internal/kernel"
)

type blockState int

const (
	needMore      blockState = iota // block not completed, need more input or more output
	blockDone                       // block flush performed
	finishStarted                   // finish started, need only more output at next call
	finishDone                      // finish done, accept no more input or output
)

type streamStatus int

const (
	initState streamStatus = iota
	busyState
	finishState
	doneState
)

// Stats holds cumulative counters for a stream.
type Stats struct {
	TotalIn       int64
	TotalOut      int64
	StoredBlocks  int
	FixedBlocks   int
	DynamicBlocks int
	Literals      int64
	Matches       int64
}

// A Compressor is a streaming DEFLATE compressor, producing raw, zlib or
// gzip output. It is not safe for concurrent use.
//
// A Compressor also implements zpack.MatchFinder, reporting the matches it
// would encode instead of encoding them.
type Compressor struct {
	cfg     Config
	level   compressionLevel
	levelNo int
	drive   driver
	k       *kernel.Table
	log     *log.Logger

	wBits   int
	wSize   int
	wMask   int
	maxDist int

	// The window holds 2*wSize bytes; padding follows, always zero.
	window     []byte
	windowSize int
	highWater  int // window[strstart+lookahead:highWater] is zero

	// head[h] is the most recent position whose prefix hashes to h.
	// prev[pos&wMask] is the previous position on pos's chain. 0 is NIL.
	head     []uint16
	prev     []uint16
	hashBits uint
	hashLen  int

	strstart       int // start of the string to insert
	blockStart     int // window position where the current block starts; may be negative after a slide
	lookahead      int // valid bytes ahead of strstart
	insert         int // positions before strstart still to be hashed
	matchStart     int
	matchLength    int
	prevMatch      int
	prevLength     int
	matchAvailable bool

	tally *tally
	enc   *blockEncoder

	// Pending output is bw.buf[pendingOut:].
	bw           bitWriter
	pendingOut   int
	pendingLimit int
	blockOpen    int // quick: 0 = no block, 1 = block, 2 = last block

	status    streamStatus
	lastFlush int
	in        []byte
	inPos     int
	out       []byte
	outPos    int
	checksum  uint32
	dictID    uint32
	hasDict   bool
	loading   bool // reading a dictionary: no checksum, no counting
	trailered bool

	// Set by FindMatches.
	record    bool
	matches   []zpack.Match
	unmatched int

	stats Stats
}

// NewCompressor returns a Compressor for cfg.
func NewCompressor(cfg Config) (*Compressor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := new(Compressor)
	c.init(cfg)
	c.Reset()
	return c, nil
}

func (c *Compressor) init(cfg Config) {
	if cfg.Level == DefaultCompression {
		cfg.Level = 6
	}
	if cfg.WindowBits == 8 {
		cfg.WindowBits = 9
	}
	c.cfg = cfg
	c.levelNo = cfg.Level
	c.level = levels[cfg.Level]
	c.drive = c.level.drive
	if c.drive != driveStored {
		switch cfg.Strategy {
		case HuffmanOnly:
			c.drive = driveHuff
		case RLE:
			c.drive = driveRLE
		}
	}

	c.k = cfg.Kernels
	if c.k == nil {
		c.k = kernel.Default()
	}
	c.log = cfg.Logger

	c.wBits = cfg.WindowBits
	c.wSize = 1 << c.wBits
	c.wMask = c.wSize - 1
	c.maxDist = c.wSize - minLookahead
	c.windowSize = 2 * c.wSize
	c.window = make([]byte, c.windowSize+8)
	c.prev = make([]uint16, c.wSize)

	c.hashBits = uint(cfg.MemLevel + 7)
	c.head = make([]uint16, 1<<c.hashBits)
	c.hashLen = 4
	if c.levelNo >= earlyExitTriggerLevel {
		c.hashLen = 3
	}

	litBufSize := 1 << (cfg.MemLevel + 6)
	c.tally = newTally(litBufSize)
	c.enc = newBlockEncoder()
	c.pendingLimit = 4 * litBufSize
}

// Reset discards the stream state, so that c can compress a new stream
// with the same configuration. The output is the same as from a new
// Compressor.
func (c *Compressor) Reset() {
	c.status = initState
	if c.cfg.Format == Raw {
		c.status = busyState
	}
	c.lastFlush = -2
	c.checksum = 0
	if c.cfg.Format == Zlib {
		c.checksum = 1
	}
	c.hasDict = false
	c.dictID = 0
	c.trailered = false
	c.stats = Stats{}

	c.tally.reset()
	c.bw.reset()
	c.pendingOut = 0
	c.blockOpen = 0

	clear(c.head)
	clear(c.prev)
	c.highWater = 0
	c.strstart = 0
	c.blockStart = 0
	c.lookahead = 0
	c.insert = 0
	c.matchStart = 0
	c.matchLength = minMatch - 1
	c.prevLength = minMatch - 1
	c.prevMatch = 0
	c.matchAvailable = false

	c.record = false
	c.matches = nil
	c.unmatched = 0

	if c.cfg.Dictionary != nil {
		// Validate has already checked the format and state.
		c.SetDictionary(c.cfg.Dictionary)
	}
}

// Stats returns the counters for the current stream.
func (c *Compressor) Stats() Stats {
	return c.stats
}

// Level returns the compression level in use (DefaultCompression resolved).
func (c *Compressor) Level() int {
	return c.levelNo
}

func (c *Compressor) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}

func (c *Compressor) pending() int {
	return len(c.bw.buf) - c.pendingOut
}

func (c *Compressor) availOut() int {
	if c.record {
		return math.MaxInt
	}
	return len(c.out) - c.outPos
}

// flushPending copies as much pending output as fits into dst.
func (c *Compressor) flushPending() {
	if c.record {
		c.bw.buf = c.bw.buf[:0]
		c.pendingOut = 0
		return
	}
	n := copy(c.out[c.outPos:], c.bw.buf[c.pendingOut:])
	c.outPos += n
	c.pendingOut += n
	c.stats.TotalOut += int64(n)
	if c.pendingOut == len(c.bw.buf) {
		c.bw.buf = c.bw.buf[:0]
		c.pendingOut = 0
	}
}

// readBuf copies input into p, updating the checksum, and returns the
// number of bytes copied.
func (c *Compressor) readBuf(p []byte) int {
	n := copy(p, c.in[c.inPos:])
	if n == 0 {
		return 0
	}
	c.inPos += n
	if c.loading || c.record {
		return n
	}
	switch c.cfg.Format {
	case Zlib:
		c.checksum = c.k.Adler32(c.checksum, p[:n])
	case Gzip:
		c.checksum = c.k.CRC32(c.checksum, p[:n])
	}
	c.stats.TotalIn += int64(n)
	return n
}

// Deflate compresses as much of src as it can into dst, and returns the
// number of bytes written to dst and consumed from src. It can be called
// with buffers of any size; when dst fills up, call it again with more
// space and the rest of the input.
//
// Once the stream is finished and every byte delivered, Deflate returns
// io.EOF.
func (c *Compressor) Deflate(dst, src []byte, flush Flush) (nDst, nSrc int, err error) {
	if flush < NoFlush || flush > Finish {
		return 0, 0, ErrInvalidFlush
	}
	if c.status == doneState {
		if len(src) > 0 {
			return 0, 0, ErrStreamFinished
		}
		if flush != Finish {
			return 0, 0, ErrFlushAfterFinish
		}
		return 0, 0, io.EOF
	}
	if c.status == finishState && flush != Finish {
		return 0, 0, ErrFlushAfterFinish
	}
	if len(dst) == 0 {
		return 0, 0, ErrNoProgress
	}

	c.out, c.outPos = dst, 0
	c.in, c.inPos = src, 0
	defer func() {
		c.out, c.in = nil, nil
	}()

	oldFlush := c.lastFlush
	c.lastFlush = int(flush)

	if c.pending() > 0 {
		c.flushPending()
		if c.availOut() == 0 {
			// Make sure the next call can make progress even without
			// new input.
			c.lastFlush = -1
			return c.outPos, c.inPos, nil
		}
	} else if len(src) == 0 && int(flush) <= oldFlush && flush != Finish {
		return 0, 0, ErrNoProgress
	}

	if c.status == finishState && len(src) > 0 {
		return c.outPos, 0, ErrStreamFinished
	}

	if c.status == initState {
		c.writeHeader()
		c.status = busyState
		c.flushPending()
		if c.pending() > 0 {
			c.lastFlush = -1
			return c.outPos, c.inPos, nil
		}
	}

	if len(src) > 0 || c.lookahead != 0 || (flush != NoFlush && c.status != finishState) {
		bstate := c.runDriver(flush)
		if bstate == finishStarted || bstate == finishDone {
			c.status = finishState
		}
		if bstate == needMore || bstate == finishStarted {
			if c.availOut() == 0 {
				c.lastFlush = -1
			}
			return c.outPos, c.inPos, nil
		}
		if bstate == blockDone {
			if flush == SyncFlush || flush == FullFlush {
				c.bw.writeStoredBlock(nil, false)
				c.stats.StoredBlocks++
				if flush == FullFlush {
					clear(c.head)
					if c.lookahead == 0 {
						c.strstart = 0
						c.blockStart = 0
						c.insert = 0
						c.highWater = 0
					}
				}
			}
			c.flushPending()
			if c.availOut() == 0 {
				c.lastFlush = -1
				return c.outPos, c.inPos, nil
			}
		}
	}

	if flush != Finish {
		return c.outPos, c.inPos, nil
	}
	if !c.trailered {
		c.writeTrailer()
		c.trailered = true
		c.flushPending()
	}
	if c.pending() > 0 {
		return c.outPos, c.inPos, nil
	}
	c.status = doneState
	return c.outPos, c.inPos, io.EOF
}

func (c *Compressor) runDriver(flush Flush) blockState {
	switch c.drive {
	case driveStored:
		return c.deflateStored(flush)
	case driveQuick:
		return c.deflateQuick(flush)
	case driveFast:
		return c.deflateFast(flush)
	case driveHuff:
		return c.deflateHuff(flush)
	case driveRLE:
		return c.deflateRLE(flush)
	}
	return c.deflateSlow(flush)
}

func (c *Compressor) writeHeader() {
	switch c.cfg.Format {
	case Zlib:
		c.bw.buf = appendZlibHeader(c.bw.buf, c.wBits, c.levelNo, c.cfg.Strategy, c.hasDict)
		if c.hasDict {
			c.bw.buf = binary.BigEndian.AppendUint32(c.bw.buf, c.dictID)
		}
	case Gzip:
		c.bw.buf = appendGzipHeader(c.bw.buf, c.cfg.Header, c.levelNo, c.cfg.Strategy)
	}
}

func (c *Compressor) writeTrailer() {
	switch c.cfg.Format {
	case Zlib:
		c.bw.buf = binary.BigEndian.AppendUint32(c.bw.buf, c.checksum)
	case Gzip:
		c.bw.buf = binary.LittleEndian.AppendUint32(c.bw.buf, c.checksum)
		c.bw.buf = binary.LittleEndian.AppendUint32(c.bw.buf, uint32(c.stats.TotalIn))
	}
}

// SetDictionary loads dict into the window, so that the data that follows
// can refer back into it. For Zlib streams it must be called before the
// first call to Deflate; the dictionary's Adler-32 is recorded in the
// header. Gzip streams have no dictionaries.
func (c *Compressor) SetDictionary(dict []byte) error {
	if c.cfg.Format == Gzip {
		return ErrDictionaryFormat
	}
	if (c.cfg.Format == Zlib && c.status != initState) || c.lookahead != 0 {
		return ErrDictionaryState
	}
	if c.cfg.Format == Zlib {
		c.dictID = c.k.Adler32(1, dict)
		c.hasDict = true
	}

	if len(dict) >= c.wSize {
		if c.cfg.Format == Raw {
			clear(c.head)
			c.strstart = 0
			c.blockStart = 0
			c.insert = 0
		}
		dict = dict[len(dict)-c.wSize:]
	}

	in, inPos := c.in, c.inPos
	c.in, c.inPos = dict, 0
	c.loading = true
	c.fillWindow()
	for c.lookahead >= c.hashLen {
		str := c.strstart
		n := c.lookahead - (c.hashLen - 1)
		for ; n > 0; n-- {
			c.insertOne(str)
			str++
		}
		c.strstart = str
		c.lookahead = c.hashLen - 1
		c.fillWindow()
	}
	c.strstart += c.lookahead
	c.blockStart = c.strstart
	c.insert = c.lookahead
	c.lookahead = 0
	c.matchLength = minMatch - 1
	c.prevLength = minMatch - 1
	c.matchAvailable = false
	c.loading = false
	c.in, c.inPos = in, inPos
	return nil
}

// FindMatches runs the match search over src and appends what it finds to
// dst, without encoding anything. Matches may refer back into data from
// earlier calls. A Compressor that has been used this way should not be
// used with Deflate until it is Reset.
func (c *Compressor) FindMatches(dst []zpack.Match, src []byte) []zpack.Match {
	c.record = true
	c.matches = dst
	c.unmatched = 0
	c.in, c.inPos = src, 0
	for c.inPos < len(c.in) || c.lookahead > 0 {
		c.runDriver(SyncFlush)
	}
	c.bw.reset()
	c.pendingOut = 0
	if c.unmatched > 0 {
		c.matches = append(c.matches, zpack.Match{Unmatched: c.unmatched})
	}
	dst = c.matches
	c.matches = nil
	c.unmatched = 0
	c.in = nil
	return dst
}

func (c *Compressor) recordLiteral() {
	c.unmatched++
}

func (c *Compressor) recordMatch(dist, length int) {
	c.matches = append(c.matches, zpack.Match{
		Unmatched: c.unmatched,
		Length:    length,
		Distance:  dist,
	})
	c.unmatched = 0
}

// flushBlockOnly hands the tallied symbols to the entropy coder and
// starts a new block.
func (c *Compressor) flushBlockOnly(last bool) {
	blockLen := c.strstart - c.blockStart
	if c.record {
		for _, t := range c.tally.tokens {
			if t.isMatch() {
				c.recordMatch(int(t.offset())+1, int(t.length())+minMatch)
			} else {
				c.recordLiteral()
			}
		}
		c.unmatched += blockLen - c.tally.covered()
	} else {
		var data []byte
		// Blocks longer than maxDist are never stored, so that the choice
		// does not depend on when the window slid.
		if c.blockStart >= 0 && blockLen <= c.maxDist {
			data = c.window[c.blockStart:c.strstart]
		}
		kind := c.enc.writeBlock(&c.bw, c.tally, data, last, c.drive == driveStored, c.cfg.Strategy == Fixed)
		switch kind {
		case storedBlock:
			c.stats.StoredBlocks += max(1, (blockLen+maxStoreBlockSize-1)/maxStoreBlockSize)
		case fixedBlock:
			c.stats.FixedBlocks++
		case dynamicBlock:
			c.stats.DynamicBlocks++
		}
		if last {
			c.bw.align()
		}
		c.logf("flate: %v block, %d bytes, %d symbols, last=%v", kind, blockLen, len(c.tally.tokens), last)
	}
	c.blockStart = c.strstart
	c.tally.reset()
	c.flushPending()
}

// flushBlock ends the current block and reports whether dst is full.
func (c *Compressor) flushBlock(last bool) bool {
	c.flushBlockOnly(last)
	return c.availOut() == 0
}

func (c *Compressor) tallyLit(b byte) bool {
	c.stats.Literals++
	return c.tally.lit(b)
}

func (c *Compressor) tallyMatch(dist, length int) bool {
	if debugDeflate {
		if length < minMatch || length > maxMatch || dist < 1 || dist > c.maxDist+minLookahead || dist > c.strstart {
			panic("flate: invalid match")
		}
	}
	c.stats.Matches++
	return c.tally.match(dist, length)
}
