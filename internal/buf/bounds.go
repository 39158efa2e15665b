package buf

import "fmt"

// Elements returns the number of elementSize byte elements in payload, or
// an error when payload is ragged.
func Elements(payload []byte, elementSize int) (int, error) {
	if elementSize <= 0 {
		return 0, fmt.Errorf("buf: element size %d", elementSize)
	}
	if len(payload)%elementSize != 0 {
		return 0, fmt.Errorf("buf: %d bytes is not a multiple of %d", len(payload), elementSize)
	}
	return len(payload) / elementSize, nil
}

// Slice returns b[off:off+n] with its capacity clipped, or false when the
// range is out of bounds.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) || n > len(b)-off {
		return nil, false
	}
	return b[off : off+n : off+n], true
}
