package dedup

import "github.com/bigjosh/gotham-pi-maker/pkg/layout"

// PlacementKind distinguishes shared-cell placements from single glyphs.
type PlacementKind uint8

const (
	// PlaceGlyph places one symbol's glyph cell.
	PlaceGlyph PlacementKind = iota
	// PlaceShared places a promoted window's shared cell.
	PlaceShared
)

// Placement is one reference a row cell makes, in stream order.
type Placement struct {
	Kind   PlacementKind
	Symbol byte // PlaceGlyph only
	Rank   int  // PlaceShared only
	Index  int  // index of the first symbol in the row
	X      int  // pixel offset from the row origin
}

// Place cuts row into windows and returns its placements appended to dst.
// A promoted window becomes a shared placement only when none of its first
// L-1 symbols carries padding, since the shared cell lays its glyphs out at
// nominal advances; otherwise it is expanded into glyphs and counted in the
// second result. A nil or disabled index places every symbol as a glyph.
func (idx *Index) Place(row *layout.Row, dst []Placement) ([]Placement, int) {
	l := idx.Length()
	syms := row.Symbols
	i, demoted := 0, 0
	if l > 0 && len(idx.keys) > 0 {
		for ; i+l <= len(syms); i += l {
			k, err := EncodeKey(row.Text[i : i+l])
			if err == nil {
				if r, ok := idx.rank[k]; ok {
					if unpadded(syms[i : i+l-1]) {
						dst = append(dst, Placement{Kind: PlaceShared, Rank: int(r), Index: i, X: syms[i].X})
						continue
					}
					demoted++
				}
			}
			dst = appendGlyphs(dst, syms, i, i+l)
		}
	}
	return appendGlyphs(dst, syms, i, len(syms)), demoted
}

func unpadded(syms []layout.PlacedSymbol) bool {
	for i := range syms {
		if syms[i].Padding != 0 {
			return false
		}
	}
	return true
}

func appendGlyphs(dst []Placement, syms []layout.PlacedSymbol, from, to int) []Placement {
	for i := from; i < to; i++ {
		dst = append(dst, Placement{Kind: PlaceGlyph, Symbol: syms[i].Symbol, Index: i, X: syms[i].X})
	}
	return dst
}

// Expand concatenates the symbols the placements stand for.
func Expand(placements []Placement, idx *Index) []byte {
	var out []byte
	for _, p := range placements {
		if p.Kind == PlaceShared {
			out = append(out, DecodeKey(idx.keys[p.Rank], idx.length)...)
			continue
		}
		out = append(out, p.Symbol)
	}
	return out
}
