package squeeze

import "errors"

// Error kinds. Errors returned by the codec, the resampler, the sinks and the
// strategies wrap at least one of them.
var (
	// ErrInvalidDimension indicates a zero or negative width or height.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrDecode indicates source bytes are not a valid or complete image.
	ErrDecode = errors.New("decode failed")
	// ErrEncode indicates the encoder rejected its input.
	ErrEncode = errors.New("encode failed")
	// ErrIO indicates a sink or source could not be opened, written or flushed.
	ErrIO = errors.New("i/o failed")
)

// Detail errors. Pipeline failures join them with one of the kinds above;
// request and strategy-name validation returns them alone.
var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrQualityRange indicates a quality outside [0,100].
	ErrQualityRange = errors.New("quality out of range")
	// ErrUnsupportedChannels indicates a pixel layout the codec cannot encode.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	// ErrPixelLength indicates pixel data length disagrees with dimensions.
	ErrPixelLength = errors.New("pixel data length mismatch")
	// ErrEmptyInput indicates a zero-length byte sequence.
	ErrEmptyInput = errors.New("empty input")
	// ErrSourceTooLarge indicates a source exceeding the configured pixel limit.
	ErrSourceTooLarge = errors.New("source image too large")
	// ErrInvalidRatio indicates a downscale ratio below 1.
	ErrInvalidRatio = errors.New("invalid downscale ratio")
	// ErrInvalidSampleFactor indicates a sub-sample factor below 1.
	ErrInvalidSampleFactor = errors.New("invalid sample factor")
	// ErrAmbiguousSource indicates a request with both or neither of buffer and path.
	ErrAmbiguousSource = errors.New("exactly one of source buffer and source path is required")
	// ErrMissingSink indicates a request without a destination.
	ErrMissingSink = errors.New("missing sink")
	// ErrUnknownStrategy indicates an unrecognised strategy name or value.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrOpenFile indicates a file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrRemoveFile indicates an existing destination could not be removed.
	ErrRemoveFile = errors.New("remove existing file failed")
	// ErrWriteFile indicates writing encoded bytes failed.
	ErrWriteFile = errors.New("write file failed")
	// ErrSyncFile indicates flushing a file to storage failed.
	ErrSyncFile = errors.New("sync file failed")
	// ErrCloseFile indicates closing a file failed.
	ErrCloseFile = errors.New("close file failed")
	// ErrReadFile indicates reading a source file failed.
	ErrReadFile = errors.New("read file failed")
)
