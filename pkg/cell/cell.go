// Package cell is the format-agnostic cell graph: cells hold boundaries
// and references to other cells by handle.
//
// Handles identify cells for the whole run. Pixel, glyph and shared window
// cells have fixed handles; row, block and top cells are allocated from a
// per-chunk LocalSpace. A cell may only reference handles a Sink already
// accepted, so the graph is acyclic by construction.
package cell

import (
	"errors"
	"fmt"

	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
)

// Handle is a run-wide cell identity.
type Handle uint64

const (
	// PixelHandle is the single square pixel cell.
	PixelHandle Handle = 1

	glyphBase = 2
	dedupBase = glyphBase + 14
	localBits = 40
)

// GlyphHandle returns the handle of a symbol's glyph cell.
func GlyphHandle(sym byte) Handle {
	ord, ok := digits.Ordinal(sym)
	if !ok {
		panic(fmt.Sprintf("cell: glyph handle for non-symbol %q", sym))
	}
	return Handle(glyphBase + ord)
}

// DedupHandle returns the handle of the shared cell of a promoted window.
func DedupHandle(rank int) Handle {
	return Handle(dedupBase + rank)
}

// LocalSpace allocates chunk-local handles.
type LocalSpace struct {
	base Handle
	next Handle
}

// NewLocalSpace returns the handle space of a chunk.
func NewLocalSpace(chunk int) *LocalSpace {
	return &LocalSpace{base: Handle(chunk+1) << localBits}
}

// Next returns a fresh handle.
func (s *LocalSpace) Next() Handle {
	s.next++
	return s.base | s.next
}

// Kind is the role of a cell in the hierarchy.
type Kind uint8

// Cell kinds, leaf first.
const (
	KindPixel Kind = iota
	KindGlyph
	KindDedup
	KindRow
	KindBlock
	KindTop
)

func (k Kind) String() string {
	switch k {
	case KindPixel:
		return "pixel"
	case KindGlyph:
		return "glyph"
	case KindDedup:
		return "dedup"
	case KindRow:
		return "row"
	case KindBlock:
		return "block"
	case KindTop:
		return "top"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Point is a coordinate in database units.
type Point struct {
	X, Y int32
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Boundary is a closed polygon. The closing vertex is implicit.
type Boundary struct {
	Layer    int16
	Datatype int16
	Points   []Point
}

// Rect returns the boundary of [x0, x1) x [y0, y1), counter-clockwise.
func Rect(layer, datatype int16, x0, y0, x1, y1 int32) Boundary {
	return Boundary{
		Layer:    layer,
		Datatype: datatype,
		Points:   []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
	}
}

// Reference places Target at Origin. When Cols > 0 it is an array of Cols
// by Rows placements at Origin + i*ColStep + j*RowStep.
type Reference struct {
	Target  Handle
	Origin  Point
	Cols    int
	Rows    int
	ColStep Point
	RowStep Point
}

// IsArray reports whether r is an array reference.
func (r Reference) IsArray() bool { return r.Cols > 0 }

// Count returns the number of placements r makes.
func (r Reference) Count() int {
	if !r.IsArray() {
		return 1
	}
	return r.Cols * r.Rows
}

// Cell is one structure definition.
type Cell struct {
	Handle     Handle
	Kind       Kind
	Name       string // fixed name, empty to let the file assign one
	Boundaries []Boundary
	Refs       []Reference
}

var (
	// ErrUndefinedReference indicates a reference to a cell not yet defined.
	ErrUndefinedReference = errors.New("cell: reference to undefined cell")
	// ErrDuplicateCell indicates a second definition of a handle.
	ErrDuplicateCell = errors.New("cell: duplicate cell definition")
)

// Sink accepts cells children first.
type Sink interface {
	Define(c *Cell) error
}
