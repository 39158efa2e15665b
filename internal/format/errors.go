package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a record.
	ErrTruncated = errors.New("format: truncated record")
	// ErrRecordTooLarge indicates a payload exceeding the 16-bit record length.
	ErrRecordTooLarge = errors.New("format: record too large")
	// ErrOddLength indicates a record header declaring an odd or undersized length.
	ErrOddLength = errors.New("format: invalid record length")
	// ErrTooManyVertices indicates a boundary exceeding the XY record capacity.
	ErrTooManyVertices = errors.New("format: too many vertices")
	// ErrInvalidName indicates a structure name that readers would reject.
	ErrInvalidName = errors.New("format: invalid structure name")
	// ErrRealRange indicates a value that cannot be represented as REAL8.
	ErrRealRange = errors.New("format: real8 out of range")
)
