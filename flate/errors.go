package flate

import "errors"

// Errors returned by Compressor.Deflate.
var (
	// ErrNoProgress is returned when a call could do nothing: dst is empty,
	// or there is no new input and no stronger flush than the last call.
	ErrNoProgress = errors.New("flate: no progress possible")
	// ErrStreamFinished is returned when input is given after Finish.
	ErrStreamFinished = errors.New("flate: input after finish")
	// ErrFlushAfterFinish is returned when a flush other than Finish is
	// requested once the stream is finishing.
	ErrFlushAfterFinish = errors.New("flate: flush after finish")
	// ErrInvalidFlush is returned for an unknown flush mode.
	ErrInvalidFlush = errors.New("flate: invalid flush mode")
)

// Errors reported by Config.Validate and SetDictionary.
var (
	ErrInvalidLevel      = errors.New("flate: invalid compression level")
	ErrInvalidWindowBits = errors.New("flate: invalid window bits")
	ErrInvalidMemLevel   = errors.New("flate: invalid memory level")
	ErrInvalidStrategy   = errors.New("flate: invalid strategy")
	ErrInvalidFormat     = errors.New("flate: invalid format")
	ErrDictionaryFormat  = errors.New("flate: preset dictionary not supported by format")
	ErrDictionaryState   = errors.New("flate: dictionary set after compression began")
	ErrHeaderField       = errors.New("flate: invalid gzip header field")
)
