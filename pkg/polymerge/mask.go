// Package polymerge converts pixel masks into simple polygons.
//
// Each 4-connected component of filled pixels becomes one closed
// counter-clockwise polygon. A component that encloses background is
// turned from an annulus into a single simple polygon by zero-width bridges
// joining every hole to the outer contour, so the result can be written as
// one boundary element.
package polymerge

import (
	"errors"
	"fmt"

	"github.com/bigjosh/gotham-pi-maker/pkg/font"
)

var (
	// ErrTooManyVertices indicates a polygon above the boundary vertex limit.
	ErrTooManyVertices = errors.New("polymerge: too many vertices")
	// ErrBridgeNotFound indicates a hole no outer edge could be bridged to.
	ErrBridgeNotFound = errors.New("polymerge: no bridge target for hole")
	// ErrMaskSize indicates a mask whose bit count disagrees with its size.
	ErrMaskSize = errors.New("polymerge: mask size mismatch")
)

// Mask is a W x H bitmap, row-major with row 0 at the bottom (y up).
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask returns an empty mask.
func NewMask(w, h int) Mask {
	return Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

// At reports whether pixel (x, y) is filled.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

// Set fills or clears pixel (x, y).
func (m Mask) Set(x, y int, v bool) { m.Bits[y*m.W+x] = v }

// Equal reports whether m and o have the same size and pixels.
func (m Mask) Equal(o Mask) bool {
	if m.W != o.W || m.H != o.H || len(m.Bits) != len(o.Bits) {
		return false
	}
	for i := range m.Bits {
		if m.Bits[i] != o.Bits[i] {
			return false
		}
	}
	return true
}

// String draws the mask top row first, 'X' for filled.
func (m Mask) String() string {
	out := make([]byte, 0, (m.W+1)*m.H)
	for y := m.H - 1; y >= 0; y-- {
		for x := 0; x < m.W; x++ {
			if m.At(x, y) {
				out = append(out, 'X')
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

// FromGlyph converts a font glyph (row 0 at the top) into a y-up mask.
func FromGlyph(g *font.Glyph) Mask {
	m := NewMask(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			m.Set(x, g.Height-1-y, g.At(x, y))
		}
	}
	return m
}

func (m Mask) validate() error {
	if m.W < 0 || m.H < 0 || len(m.Bits) != m.W*m.H {
		return fmt.Errorf("%dx%d mask with %d bits: %w", m.W, m.H, len(m.Bits), ErrMaskSize)
	}
	return nil
}
