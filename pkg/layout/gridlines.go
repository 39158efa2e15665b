package layout

// Rect is an axis-aligned rectangle in pixels, [X0, X1) x [Y0, Y1).
type Rect struct {
	X0, Y0, X1, Y1 int64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// separator returns the thickness of the separator following block index i.
func (g *Grid) separator(i int) int {
	if g.cfg.ThickEvery > 0 && (i+1)%g.cfg.ThickEvery == 0 {
		return g.cfg.ThickLine
	}
	return g.cfg.ThinLine
}

// RowSeparator returns the slice of the vertical separator drawn to the
// right of every row in block column col, relative to the row origin. There
// is none after the last column.
func (g *Grid) RowSeparator(col int) (Rect, bool) {
	if col >= g.cfg.BlockCols-1 {
		return Rect{}, false
	}
	th := g.separator(col)
	if th == 0 {
		return Rect{}, false
	}
	x0 := int64(g.cfg.RowPixelWidth + (g.cfg.GutterX-th)/2)
	return Rect{X0: x0, Y0: 0, X1: x0 + int64(th), Y1: int64(g.cfg.GlyphHeight)}, true
}

// BlockSeparators returns the gridline geometry a block carries relative to
// its origin: the horizontal separator in the gutter below it, spanning the
// block pitch, and the piece of the vertical separator that crosses that
// gutter. Blocks in the last processed block row carry nothing.
func (g *Grid) BlockSeparators(blockRow, blockCol int) []Rect {
	if blockRow >= g.ProcessedBlockRows()-1 {
		return nil
	}
	bottom := -int64(g.cfg.BlockHeight) * int64(g.cfg.GlyphHeight)
	gutterBottom := bottom - int64(g.cfg.GutterY)
	lastCol := blockCol >= g.cfg.BlockCols-1

	var out []Rect
	thY := int64(g.separator(blockRow))
	hTop := bottom - int64(g.cfg.GutterY-int(thY))/2
	hBottom := hTop - thY
	if thY > 0 {
		span := int64(g.cfg.RowPixelWidth)
		if !lastCol {
			span = int64(g.PitchX())
		}
		out = append(out, Rect{X0: 0, Y0: hBottom, X1: span, Y1: hTop})
	}

	if v, ok := g.RowSeparator(blockCol); ok && !lastCol {
		pieces := []Rect{{X0: v.X0, Y0: gutterBottom, X1: v.X1, Y1: bottom}}
		if thY > 0 {
			pieces = []Rect{
				{X0: v.X0, Y0: hTop, X1: v.X1, Y1: bottom},
				{X0: v.X0, Y0: gutterBottom, X1: v.X1, Y1: hBottom},
			}
		}
		for _, p := range pieces {
			if !p.Empty() {
				out = append(out, p)
			}
		}
	}
	return out
}
