package layout

import "fmt"

// Grid is a validated Config with its derived geometry. It is immutable
// and safe for concurrent use.
type Grid struct {
	cfg      Config
	rows     int
	advances [256]int
}

// NewGrid validates cfg.
func NewGrid(cfg Config) (*Grid, error) {
	positive := []struct {
		name string
		v    int
	}{
		{"block_cols", cfg.BlockCols},
		{"block_rows", cfg.BlockRows},
		{"block_width", cfg.BlockWidth},
		{"block_height", cfg.BlockHeight},
		{"glyph_width", cfg.GlyphWidth},
		{"glyph_height", cfg.GlyphHeight},
		{"nominal_advance", cfg.NominalAdvance},
		{"row_pixel_width", cfg.RowPixelWidth},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d: %w", p.name, p.v, ErrInvalidConfig)
		}
	}
	nonNegative := []struct {
		name string
		v    int
	}{
		{"max_padding", cfg.MaxPadding},
		{"gutter_x", cfg.GutterX},
		{"gutter_y", cfg.GutterY},
		{"thin_line", cfg.ThinLine},
		{"thick_line", cfg.ThickLine},
		{"thick_every", cfg.ThickEvery},
		{"rows", cfg.Rows},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return nil, fmt.Errorf("%s must not be negative, got %d: %w", p.name, p.v, ErrInvalidConfig)
		}
	}
	widest := max(cfg.ThinLine, cfg.ThickLine)
	if widest > cfg.GutterX || widest > cfg.GutterY {
		return nil, fmt.Errorf("separator thickness %d exceeds gutter %dx%d: %w", widest, cfg.GutterX, cfg.GutterY, ErrInvalidConfig)
	}
	if cfg.ChunkRows <= 0 || cfg.ChunkRows%cfg.BlockHeight != 0 {
		return nil, &ChunkBoundaryError{Field: "chunk_rows", Rows: cfg.ChunkRows, BlockHeight: cfg.BlockHeight}
	}
	total := cfg.BlockRows * cfg.BlockHeight
	rows := cfg.Rows
	if rows == 0 {
		rows = total
	}
	if rows%cfg.BlockHeight != 0 {
		return nil, &ChunkBoundaryError{Field: "rows", Rows: rows, BlockHeight: cfg.BlockHeight}
	}
	if rows > total {
		return nil, fmt.Errorf("rows %d exceed the grid's %d rows: %w", rows, total, ErrInvalidConfig)
	}

	g := &Grid{cfg: cfg, rows: rows}
	for i := range g.advances {
		g.advances[i] = cfg.NominalAdvance
	}
	for sym, adv := range cfg.AdvanceOverrides {
		if len(sym) != 1 {
			return nil, fmt.Errorf("advance override key %q is not a single symbol: %w", sym, ErrInvalidConfig)
		}
		if adv <= 0 {
			return nil, fmt.Errorf("advance override for %q must be positive, got %d: %w", sym, adv, ErrInvalidConfig)
		}
		g.advances[sym[0]] = adv
	}
	return g, nil
}

// Config returns the configuration the grid was built from.
func (g *Grid) Config() Config { return g.cfg }

// Advance returns the nominal advance of sym.
func (g *Grid) Advance(sym byte) int { return g.advances[sym] }

// TotalRows returns the number of grid rows processed.
func (g *Grid) TotalRows() int { return g.rows }

// ProcessedBlockRows returns the number of block rows processed.
func (g *Grid) ProcessedBlockRows() int { return g.rows / g.cfg.BlockHeight }

// SymbolCount returns the number of stream symbols consumed.
func (g *Grid) SymbolCount() int64 {
	return int64(g.rows) * int64(g.cfg.BlockCols) * int64(g.cfg.BlockWidth)
}

// SegmentOffset returns the stream offset of the block line at grid row
// row and block column col.
func (g *Grid) SegmentOffset(row, col int) int64 {
	return (int64(row)*int64(g.cfg.BlockCols) + int64(col)) * int64(g.cfg.BlockWidth)
}

// PitchX is the horizontal distance between block origins.
func (g *Grid) PitchX() int { return g.cfg.RowPixelWidth + g.cfg.GutterX }

// PitchY is the vertical distance between block origins.
func (g *Grid) PitchY() int { return g.cfg.BlockHeight*g.cfg.GlyphHeight + g.cfg.GutterY }

// BlockOrigin returns the top-left corner of a block.
func (g *Grid) BlockOrigin(blockRow, blockCol int) (x, y int64) {
	return int64(blockCol) * int64(g.PitchX()), -int64(blockRow) * int64(g.PitchY())
}

// RowOffset returns the y offset of the i-th row of a block relative to the
// block origin. The row's glyphs extend GlyphHeight upward from there.
func (g *Grid) RowOffset(i int) int64 {
	return -int64(i+1) * int64(g.cfg.GlyphHeight)
}

// Extent returns the width and height in pixels of the processed grid.
func (g *Grid) Extent() (w, h int64) {
	w = int64(g.cfg.BlockCols)*int64(g.PitchX()) - int64(g.cfg.GutterX)
	h = int64(g.ProcessedBlockRows())*int64(g.PitchY()) - int64(g.cfg.GutterY)
	return w, h
}
