package layout

import (
	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
)

// PaddableSymbol is the only symbol that absorbs padding. Its stroke leaves
// unused columns on both sides, so extra advance does not look like a gap.
const PaddableSymbol = '1'

// PlacedSymbol is one symbol with its resolved position inside a row.
type PlacedSymbol struct {
	Symbol  byte
	Row     int // grid row
	Col     int // grid column, in symbols
	X       int // pixel offset from the row origin
	Advance int // nominal advance plus padding
	Padding int
}

// Row is one block line justified to the row pixel width.
type Row struct {
	GridRow  int
	BlockCol int
	// Text is the raw stream slice. It is a read-only view of the source.
	Text    []byte
	Symbols []PlacedSymbol
}

// Width returns the sum of advances.
func (r *Row) Width() int {
	w := 0
	for i := range r.Symbols {
		w += r.Symbols[i].Advance
	}
	return w
}

// Justify places symbols as the block line at grid row row and block column
// col. The deficit between RowPixelWidth and the nominal width is dealt one
// pixel at a time, round-robin from the left, onto the interior '1' symbols;
// the first and last symbol are never padded.
func (g *Grid) Justify(symbols []byte, row, col int) (Row, error) {
	var r Row
	err := g.justifyInto(&r, symbols, row, col)
	return r, err
}

func (g *Grid) justifyInto(r *Row, symbols []byte, row, col int) error {
	n := len(symbols)
	r.GridRow, r.BlockCol, r.Text = row, col, symbols
	if cap(r.Symbols) < n {
		r.Symbols = make([]PlacedSymbol, n)
	}
	r.Symbols = r.Symbols[:n]

	base := col * g.cfg.BlockWidth
	nominal, candidates := 0, 0
	for i, s := range symbols {
		adv := g.advances[s]
		r.Symbols[i] = PlacedSymbol{Symbol: s, Row: row, Col: base + i, Advance: adv}
		nominal += adv
		if i > 0 && i < n-1 && s == PaddableSymbol {
			candidates++
		}
	}

	deficit := g.cfg.RowPixelWidth - nominal
	if deficit < 0 || deficit > candidates*g.cfg.MaxPadding {
		return &LayoutCapacityError{
			Row:        row,
			Col:        col,
			Deficit:    deficit,
			Candidates: candidates,
			MaxPadding: g.cfg.MaxPadding,
		}
	}
	if deficit > 0 {
		each, extra := deficit/candidates, deficit%candidates
		seen := 0
		for i := 1; i < n-1; i++ {
			if symbols[i] != PaddableSymbol {
				continue
			}
			pad := each
			if seen < extra {
				pad++
			}
			seen++
			r.Symbols[i].Padding = pad
			r.Symbols[i].Advance += pad
		}
	}

	x := 0
	for i := range r.Symbols {
		r.Symbols[i].X = x
		x += r.Symbols[i].Advance
	}
	return nil
}

// Line reads and justifies the block line at grid row row and block column
// col from src.
func (g *Grid) Line(src digits.Source, row, col int) (Row, error) {
	var r Row
	err := g.LineInto(&r, src, row, col)
	return r, err
}

// LineInto is Line reusing the storage of r.
func (g *Grid) LineInto(r *Row, src digits.Source, row, col int) error {
	off := g.SegmentOffset(row, col)
	text, err := src.Slice(off, int64(g.cfg.BlockWidth))
	if err != nil {
		return err
	}
	if err := digits.Validate(text, off); err != nil {
		return err
	}
	return g.justifyInto(r, text, row, col)
}
