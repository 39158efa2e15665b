// Package hierarchy turns justified rows into a cell graph.
//
// Each chunk is emitted bottom-up into a cell.Sink: the pixel cell, the
// glyph cells, the shared window cells it uses, then each block's row cells
// followed by the block cell, and finally the top cell. Shared cells are
// defined again in every chunk that uses them, so each chunk file stands on
// its own and all chunk files overlay at global coordinates.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
	"github.com/bigjosh/gotham-pi-maker/pkg/cell"
	"github.com/bigjosh/gotham-pi-maker/pkg/dedup"
	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/font"
	"github.com/bigjosh/gotham-pi-maker/pkg/layout"
	"github.com/bigjosh/gotham-pi-maker/pkg/polymerge"
)

var (
	// ErrCoordinateRange indicates a layout whose extent overflows int32
	// database units.
	ErrCoordinateRange = errors.New("hierarchy: coordinates exceed int32")
	// ErrFontMismatch indicates a font whose glyph size differs from the grid.
	ErrFontMismatch = errors.New("hierarchy: font does not match grid")
)

// DefaultTopName is the fixed name of every chunk's top cell.
const DefaultTopName = "TOP_CELL"

// Options controls cell emission.
type Options struct {
	// Merge emits each glyph as merged polygons instead of pixel arrays.
	Merge bool

	// PixelSize is the edge of one font pixel in database units.
	PixelSize int32

	GlyphLayer    int16
	GlyphDatatype int16
	GridLayer     int16
	GridDatatype  int16

	// TopName names the top cell. Empty uses DefaultTopName.
	TopName string

	// Progress, when set, is called after each block row with the number
	// of grid rows of the chunk emitted so far.
	Progress func(chunk layout.Chunk, rows int)
}

// DefaultOptions returns 1000 unit pixels on layer 1, gridlines on layer 2.
func DefaultOptions() Options {
	return Options{
		PixelSize:  1000,
		GlyphLayer: 1,
		GridLayer:  2,
		TopName:    DefaultTopName,
	}
}

// ChunkStats counts what one chunk emitted.
type ChunkStats struct {
	Chunk       int          `json:"chunk"`
	Rows        int          `json:"rows"`
	Blocks      int          `json:"blocks"`
	Cells       int          `json:"cells"`
	SharedCells int          `json:"shared_cells"`
	GlyphCells  int          `json:"glyph_cells"`
	DedupCells  int          `json:"dedup_cells"`
	DedupRefs   int64        `json:"dedup_refs"`
	GlyphRefs   int64        `json:"glyph_refs"`
	Demoted     int64        `json:"demoted_windows"`
	Usage       *dedup.Usage `json:"-"`
}

// Builder emits chunks. It is immutable after NewBuilder and safe for
// concurrent BuildChunk calls.
type Builder struct {
	grid   *layout.Grid
	index  *dedup.Index
	opts   Options
	pixel  *cell.Cell
	glyphs map[byte]*cell.Cell
}

// NewBuilder prepares the glyph cells of table for grid. A nil index
// places every symbol as a glyph.
func NewBuilder(grid *layout.Grid, table *font.Table, index *dedup.Index, opts Options) (*Builder, error) {
	if opts.PixelSize <= 0 {
		return nil, fmt.Errorf("hierarchy: pixel size %d must be positive: %w", opts.PixelSize, layout.ErrInvalidConfig)
	}
	if opts.TopName == "" {
		opts.TopName = DefaultTopName
	}
	if err := format.ValidName(opts.TopName); err != nil {
		return nil, fmt.Errorf("hierarchy: top cell: %w", err)
	}
	cfg := grid.Config()
	if table.Width() != cfg.GlyphWidth || table.Height() != cfg.GlyphHeight {
		return nil, fmt.Errorf("hierarchy: font %dx%d, grid %dx%d: %w",
			table.Width(), table.Height(), cfg.GlyphWidth, cfg.GlyphHeight, ErrFontMismatch)
	}
	if err := table.Validate(digits.Alphabet); err != nil {
		return nil, err
	}
	w, h := grid.Extent()
	if span := max(w, h) + int64(max(cfg.GutterX, cfg.GutterY)); span > math.MaxInt32/int64(opts.PixelSize) {
		return nil, fmt.Errorf("hierarchy: extent %dx%d pixels of %d units: %w", w, h, opts.PixelSize, ErrCoordinateRange)
	}

	b := &Builder{grid: grid, index: index, opts: opts, glyphs: make(map[byte]*cell.Cell, digits.NumSymbols)}
	ps := opts.PixelSize
	b.pixel = &cell.Cell{
		Handle:     cell.PixelHandle,
		Kind:       cell.KindPixel,
		Boundaries: []cell.Boundary{cell.Rect(opts.GlyphLayer, opts.GlyphDatatype, 0, 0, ps, ps)},
	}
	for _, sym := range []byte(digits.Alphabet) {
		g, _ := table.Glyph(sym)
		c, err := b.glyphCell(g)
		if err != nil {
			return nil, fmt.Errorf("hierarchy: glyph %q: %w", sym, err)
		}
		b.glyphs[sym] = c
	}
	return b, nil
}

// TopName returns the fixed name of the top cell of every chunk.
func (b *Builder) TopName() string { return b.opts.TopName }

// glyphCell draws g with its bottom-left corner at the origin.
func (b *Builder) glyphCell(g *font.Glyph) (*cell.Cell, error) {
	c := &cell.Cell{Handle: cell.GlyphHandle(g.Symbol), Kind: cell.KindGlyph}
	ps := b.opts.PixelSize
	if b.opts.Merge {
		polys, err := polymerge.Merge(polymerge.FromGlyph(g))
		if err != nil {
			return nil, err
		}
		for _, p := range polys {
			pts := make([]cell.Point, len(p))
			for i, v := range p {
				pts[i] = cell.Point{X: int32(v.X) * ps, Y: int32(v.Y) * ps}
			}
			c.Boundaries = append(c.Boundaries, cell.Boundary{Layer: b.opts.GlyphLayer, Datatype: b.opts.GlyphDatatype, Points: pts})
		}
		return c, nil
	}
	for y := 0; y < g.Height; y++ {
		up := int32(g.Height-1-y) * ps
		for x := 0; x < g.Width; {
			if !g.At(x, y) {
				x++
				continue
			}
			run := 1
			for x+run < g.Width && g.At(x+run, y) {
				run++
			}
			ref := cell.Reference{Target: cell.PixelHandle, Origin: cell.Point{X: int32(x) * ps, Y: up}}
			if run > 1 {
				ref.Cols, ref.Rows, ref.ColStep = run, 1, cell.Point{X: ps}
			}
			c.Refs = append(c.Refs, ref)
			x += run
		}
	}
	return c, nil
}

// usedSet is what a chunk references.
type usedSet struct {
	glyphs [digits.NumSymbols]bool
	ranks  []bool
}

// BuildChunk emits chunk into sink.
func (b *Builder) BuildChunk(ctx context.Context, chunk layout.Chunk, src digits.Source, sink cell.Sink) (ChunkStats, error) {
	st := ChunkStats{Chunk: chunk.Index, Rows: chunk.Rows(), Usage: dedup.NewUsage(b.index)}
	used, err := b.scan(ctx, chunk, src, &st)
	if err != nil {
		return st, err
	}
	define := func(c *cell.Cell) error {
		if err := sink.Define(c); err != nil {
			return fmt.Errorf("hierarchy: chunk %d: %w", chunk.Index, err)
		}
		st.Cells++
		return nil
	}

	if !b.opts.Merge {
		if err := define(b.pixel); err != nil {
			return st, err
		}
		st.SharedCells++
	}
	for ord, ok := range used.glyphs {
		if !ok {
			continue
		}
		if err := define(b.glyphs[digits.FromOrdinal(ord)]); err != nil {
			return st, err
		}
		st.SharedCells++
		st.GlyphCells++
	}
	for r, ok := range used.ranks {
		if !ok {
			continue
		}
		if err := define(b.dedupCell(r)); err != nil {
			return st, err
		}
		st.SharedCells++
		st.DedupCells++
	}

	cfg := b.grid.Config()
	ps := b.opts.PixelSize
	local := cell.NewLocalSpace(chunk.Index)
	firstBlock, endBlock := b.grid.BlockRange(chunk)
	top := &cell.Cell{Handle: local.Next(), Kind: cell.KindTop, Name: b.opts.TopName}
	var (
		line       layout.Row
		placements []dedup.Placement
	)
	rowHandles := make([]cell.Handle, cfg.BlockHeight)
	for br := firstBlock; br < endBlock; br++ {
		for bc := 0; bc < cfg.BlockCols; bc++ {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			for i := 0; i < cfg.BlockHeight; i++ {
				if err := b.grid.LineInto(&line, src, br*cfg.BlockHeight+i, bc); err != nil {
					return st, err
				}
				placements, _ = b.index.Place(&line, placements[:0])
				row := b.rowCell(local.Next(), bc, placements)
				if err := define(row); err != nil {
					return st, err
				}
				rowHandles[i] = row.Handle
			}
			block := &cell.Cell{Handle: local.Next(), Kind: cell.KindBlock}
			for i, h := range rowHandles {
				block.Refs = append(block.Refs, cell.Reference{Target: h, Origin: cell.Point{Y: int32(b.grid.RowOffset(i)) * ps}})
			}
			for _, r := range b.grid.BlockSeparators(br, bc) {
				block.Boundaries = append(block.Boundaries, b.gridRect(r))
			}
			if err := define(block); err != nil {
				return st, err
			}
			x, y := b.grid.BlockOrigin(br, bc)
			top.Refs = append(top.Refs, cell.Reference{Target: block.Handle, Origin: cell.Point{X: int32(x) * ps, Y: int32(y) * ps}})
			st.Blocks++
		}
		if b.opts.Progress != nil {
			b.opts.Progress(chunk, (br-firstBlock+1)*cfg.BlockHeight)
		}
	}
	top.Refs = cell.CompactRefs(top.Refs)
	if err := define(top); err != nil {
		return st, err
	}
	return st, nil
}

// scan justifies and places every row of chunk once to find the shared cells
// it uses and count its placements.
func (b *Builder) scan(ctx context.Context, chunk layout.Chunk, src digits.Source, st *ChunkStats) (*usedSet, error) {
	used := &usedSet{ranks: make([]bool, b.index.Promoted())}
	var placements []dedup.Placement
	it := b.grid.Rows(src, chunk.FirstRow, chunk.EndRow)
	for n := 0; it.Next(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var demoted int
		placements, demoted = b.index.Place(it.Row(), placements[:0])
		st.Usage.Record(placements, demoted)
		for _, p := range placements {
			if p.Kind == dedup.PlaceShared {
				if !used.ranks[p.Rank] {
					used.ranks[p.Rank] = true
					for _, sym := range dedup.DecodeKey(b.index.Key(p.Rank), b.index.Length()) {
						ord, _ := digits.Ordinal(sym)
						used.glyphs[ord] = true
					}
				}
				continue
			}
			ord, _ := digits.Ordinal(p.Symbol)
			used.glyphs[ord] = true
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("hierarchy: chunk %d: %w", chunk.Index, err)
	}
	st.DedupRefs = st.Usage.SharedPlacements
	st.GlyphRefs = st.Usage.GlyphPlacements
	st.Demoted = st.Usage.Demoted
	return used, nil
}

// dedupCell lays out the glyphs of a promoted window at nominal advances.
func (b *Builder) dedupCell(rank int) *cell.Cell {
	c := &cell.Cell{Handle: cell.DedupHandle(rank), Kind: cell.KindDedup}
	x := int32(0)
	for _, sym := range dedup.DecodeKey(b.index.Key(rank), b.index.Length()) {
		c.Refs = append(c.Refs, cell.Reference{Target: cell.GlyphHandle(sym), Origin: cell.Point{X: x}})
		x += int32(b.grid.Advance(sym)) * b.opts.PixelSize
	}
	c.Refs = cell.CompactRefs(c.Refs)
	return c
}

func (b *Builder) rowCell(h cell.Handle, blockCol int, placements []dedup.Placement) *cell.Cell {
	c := &cell.Cell{Handle: h, Kind: cell.KindRow, Refs: make([]cell.Reference, 0, len(placements))}
	for _, p := range placements {
		target := cell.DedupHandle(p.Rank)
		if p.Kind == dedup.PlaceGlyph {
			target = cell.GlyphHandle(p.Symbol)
		}
		c.Refs = append(c.Refs, cell.Reference{Target: target, Origin: cell.Point{X: int32(p.X) * b.opts.PixelSize}})
	}
	c.Refs = cell.CompactRefs(c.Refs)
	if sep, ok := b.grid.RowSeparator(blockCol); ok {
		c.Boundaries = append(c.Boundaries, b.gridRect(sep))
	}
	return c
}

func (b *Builder) gridRect(r layout.Rect) cell.Boundary {
	ps := int64(b.opts.PixelSize)
	return cell.Rect(b.opts.GridLayer, b.opts.GridDatatype,
		int32(r.X0*ps), int32(r.Y0*ps), int32(r.X1*ps), int32(r.Y1*ps))
}
