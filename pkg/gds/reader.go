package gds

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
)

// ErrMalformed indicates a stream that breaks the GDSII record grammar.
var ErrMalformed = errors.New("gds: malformed stream")

// Reader decodes records one at a time.
type Reader struct {
	r   *bufio.Reader
	hdr [format.RecordHeaderSize]byte
	off int64
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16)}
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int64 { return r.off }

// Next returns the next record. It returns io.EOF at a clean end of input.
// The record's payload is owned by the caller.
func (r *Reader) Next() (format.Record, error) {
	if _, err := io.ReadFull(r.r, r.hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return format.Record{}, io.EOF
		}
		return format.Record{}, fmt.Errorf("gds: offset %d: %w", r.off, format.ErrTruncated)
	}
	rt, dt, n, err := format.ParseRecordHeader(r.hdr[:])
	if err != nil {
		return format.Record{}, fmt.Errorf("gds: offset %d: %w", r.off, err)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return format.Record{}, fmt.Errorf("gds: offset %d: %s: %w", r.off, format.RecordName(rt), format.ErrTruncated)
	}
	r.off += int64(format.RecordHeaderSize + n)
	return format.Record{Type: rt, DataType: dt, Data: data}, nil
}

// rest reports whether only zero bytes remain.
func (r *Reader) rest() (int64, error) {
	var n int64
	for {
		b, err := r.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if b != 0 {
			return n, fmt.Errorf("gds: offset %d: data after ENDLIB: %w", r.off+n, ErrMalformed)
		}
		n++
	}
}
