package flate

const (
	minMatch     = 3   // The shortest match DEFLATE can encode
	maxMatch     = 258 // The longest match DEFLATE can encode
	minLookahead = maxMatch + minMatch + 1

	// Bytes past the end of the input that are kept zeroed.
	winInit = maxMatch

	// Matches of length 3 are discarded if their distance exceeds tooFar.
	tooFar = 4096

	// Levels below this stop walking a chain at the first candidate that
	// does not improve the match, and hash four bytes instead of three.
	earlyExitTriggerLevel = 5

	// Chains longer than this use the offset search.
	offsetSearchChain = 1024

	debugDeflate = false
)

type driver uint8

const (
	driveStored driver = iota
	driveQuick
	driveFast
	driveSlow
	driveHuff
	driveRLE
)

var driverNames = [...]string{"stored", "quick", "fast", "slow", "huffman", "rle"}

func (d driver) String() string { return driverNames[d] }

type compressionLevel struct {
	good, lazy, nice, chain int
	drive                   driver
}

// For the fast driver, lazy is the longest match whose positions are all
// added to the hash chains.
var levels = [10]compressionLevel{
	{0, 0, 0, 0, driveStored}, // 0
	{0, 0, 0, 0, driveQuick},  // 1
	{4, 4, 8, 4, driveFast},   // 2
	{4, 6, 32, 32, driveFast}, // 3
	{4, 4, 16, 16, driveSlow}, // 4
	{8, 16, 32, 32, driveSlow},
	{8, 16, 128, 128, driveSlow},
	{8, 32, 128, 256, driveSlow},
	{32, 128, 258, 1024, driveSlow},
	{32, 258, 258, 4096, driveSlow}, // 9
}
