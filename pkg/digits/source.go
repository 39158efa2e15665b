package digits

import (
	"fmt"

	"github.com/bigjosh/gotham-pi-maker/internal/mmfile"
)

// Source is random access to the symbol stream. Slices returned by a
// Source are read-only views and must not be modified.
type Source interface {
	Len() int64
	Slice(off, n int64) ([]byte, error)
}

// Bytes is an in-memory Source.
type Bytes []byte

// FromBytes wraps b without copying.
func FromBytes(b []byte) Bytes { return Bytes(b) }

// FromString returns a Source over s.
func FromString(s string) Bytes { return Bytes(s) }

// Len implements Source.
func (b Bytes) Len() int64 { return int64(len(b)) }

// Slice implements Source.
func (b Bytes) Slice(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(b)) {
		return nil, fmt.Errorf("slice [%d, %d) of %d symbols: %w", off, off+n, len(b), ErrShortStream)
	}
	return b[off : off+n : off+n], nil
}

// Mapped is a Source backed by a read-only memory mapping.
type Mapped struct {
	Bytes
	region *mmfile.Region
}

// Open memory maps the file at path. The caller must Close the result once
// every slice handed out is no longer used.
func Open(path string) (*Mapped, error) {
	r, err := mmfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("digits: open %s: %w", path, err)
	}
	return &Mapped{Bytes: Bytes(r.Bytes()), region: r}, nil
}

// Close releases the mapping.
func (m *Mapped) Close() error {
	m.Bytes = nil
	if m.region == nil {
		return nil
	}
	return m.region.Close()
}
