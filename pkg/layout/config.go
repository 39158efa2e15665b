// Package layout arranges the symbol stream on the block grid.
//
// The grid is BlockCols x BlockRows blocks of BlockWidth x BlockHeight
// symbols. The stream is read row-major across the full grid width, so the
// block line at grid row r and block column c starts at stream offset
// (r*BlockCols + c)*BlockWidth. Each block line is justified to exactly
// RowPixelWidth pixels by padding interior '1' symbols.
//
// Coordinates are in font pixels with y pointing up. A block's origin is
// its top-left corner; grid row r of a block sits between y = -(r+1)*H and
// y = -r*H where H is the glyph height. Macro gridlines are drawn in the
// gutters between blocks.
package layout

// Config describes the grid. All values are in symbols or font pixels.
type Config struct {
	// BlockCols and BlockRows are the number of blocks across and down.
	BlockCols int `yaml:"block_cols" json:"block_cols"`
	BlockRows int `yaml:"block_rows" json:"block_rows"`

	// BlockWidth is the number of symbols in one block line.
	BlockWidth int `yaml:"block_width" json:"block_width"`

	// BlockHeight is the number of grid rows in one block.
	BlockHeight int `yaml:"block_height" json:"block_height"`

	// GlyphWidth and GlyphHeight must match the font.
	GlyphWidth  int `yaml:"glyph_width" json:"glyph_width"`
	GlyphHeight int `yaml:"glyph_height" json:"glyph_height"`

	// NominalAdvance is the advance of a symbol before padding.
	NominalAdvance int `yaml:"nominal_advance" json:"nominal_advance"`

	// AdvanceOverrides replaces NominalAdvance for individual symbols,
	// keyed by the one-character symbol.
	AdvanceOverrides map[string]int `yaml:"advance_overrides,omitempty" json:"advance_overrides,omitempty"`

	// RowPixelWidth is the exact width every block line is justified to.
	RowPixelWidth int `yaml:"row_pixel_width" json:"row_pixel_width"`

	// MaxPadding is the most padding a single symbol may absorb.
	MaxPadding int `yaml:"max_padding" json:"max_padding"`

	// GutterX is the gap between block columns, GutterY between block rows.
	GutterX int `yaml:"gutter_x" json:"gutter_x"`
	GutterY int `yaml:"gutter_y" json:"gutter_y"`

	// ThinLine and ThickLine are separator thicknesses. Every ThickEvery-th
	// separator is thick. Zero thickness disables the separator.
	ThinLine   int `yaml:"thin_line" json:"thin_line"`
	ThickLine  int `yaml:"thick_line" json:"thick_line"`
	ThickEvery int `yaml:"thick_every" json:"thick_every"`

	// ChunkRows is the number of grid rows written to one output file. It
	// must be a positive multiple of BlockHeight.
	ChunkRows int `yaml:"chunk_rows" json:"chunk_rows"`

	// Rows limits processing to the first Rows grid rows (0 = all). It must
	// be a multiple of BlockHeight.
	Rows int `yaml:"rows" json:"rows"`
}

// DefaultConfig returns the 40 x 25 grid of 1000 x 1000 symbol blocks
// rendered with a 4x6 font, one block row per output file.
func DefaultConfig() Config {
	return Config{
		BlockCols:      40,
		BlockRows:      25,
		BlockWidth:     1000,
		BlockHeight:    1000,
		GlyphWidth:     4,
		GlyphHeight:    6,
		NominalAdvance: 4,
		RowPixelWidth:  4050,
		MaxPadding:     2,
		GutterX:        16,
		GutterY:        16,
		ThinLine:       2,
		ThickLine:      8,
		ThickEvery:     10,
		ChunkRows:      1000,
	}
}
