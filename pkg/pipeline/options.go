package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
	"github.com/bigjosh/gotham-pi-maker/pkg/cellname"
	"github.com/bigjosh/gotham-pi-maker/pkg/dedup"
	"github.com/bigjosh/gotham-pi-maker/pkg/hierarchy"
	"github.com/bigjosh/gotham-pi-maker/pkg/layout"
)

// ErrInvalidConfig indicates options Run cannot use.
var ErrInvalidConfig = layout.ErrInvalidConfig

// Options configures a run. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	Grid  layout.Config `yaml:"grid" json:"grid"`
	Dedup dedup.Config  `yaml:"dedup" json:"dedup"`

	// Merge draws glyphs as merged polygons rather than pixel arrays.
	Merge bool `yaml:"merge" json:"merge"`

	// Workers bounds the chunks encoded at once. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers"`

	// Output is the file written for a single chunk, and the name the
	// part files derive from otherwise.
	Output    string `yaml:"output" json:"output"`
	Gzip      bool   `yaml:"gzip" json:"gzip"`
	GzipLevel int    `yaml:"gzip_level" json:"gzip_level"`
	Sync      bool   `yaml:"sync" json:"sync"`

	LibName  string  `yaml:"lib_name" json:"lib_name"`
	UserUnit float64 `yaml:"user_unit" json:"user_unit"`
	DBUnit   float64 `yaml:"db_unit" json:"db_unit"`

	// PixelSize is the edge of a font pixel in user units. It must be a
	// whole number of database units.
	PixelSize float64 `yaml:"pixel_size" json:"pixel_size"`

	GlyphLayer    int16 `yaml:"glyph_layer" json:"glyph_layer"`
	GlyphDatatype int16 `yaml:"glyph_datatype" json:"glyph_datatype"`
	GridLayer     int16 `yaml:"grid_layer" json:"grid_layer"`
	GridDatatype  int16 `yaml:"grid_datatype" json:"grid_datatype"`

	TopName       string `yaml:"top_name" json:"top_name"`
	MaxNameLength int    `yaml:"max_name_length" json:"max_name_length"`

	// ProgressEvery logs progress each time this many grid rows finish.
	// Zero disables progress logging.
	ProgressEvery int `yaml:"progress_every" json:"progress_every"`

	// Timestamp is stamped into every file. Zero uses the start of the run.
	Timestamp time.Time `yaml:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// DefaultOptions returns the full grid in 1 micron pixels written to
// pi.gds, one file per 1000 grid rows.
func DefaultOptions() Options {
	return Options{
		Grid:          layout.DefaultConfig(),
		Dedup:         dedup.DefaultConfig(),
		Output:        "pi.gds",
		LibName:       "PI",
		UserUnit:      1e-3,
		DBUnit:        1e-9,
		PixelSize:     1,
		GlyphLayer:    1,
		GridLayer:     2,
		TopName:       hierarchy.DefaultTopName,
		MaxNameLength: cellname.DefaultMaxLength,
		ProgressEvery: 1000,
	}
}

// pixelUnits converts PixelSize to database units.
func (o Options) pixelUnits() (int32, error) {
	if o.UserUnit <= 0 || o.DBUnit <= 0 || o.PixelSize <= 0 {
		return 0, fmt.Errorf("pipeline: units %g/%g and pixel size %g must be positive: %w", o.UserUnit, o.DBUnit, o.PixelSize, ErrInvalidConfig)
	}
	db := o.PixelSize / o.UserUnit
	n := math.Round(db)
	if n < 1 || n > math.MaxInt32 || math.Abs(db-n) > 1e-6*n {
		return 0, fmt.Errorf("pipeline: pixel size %g is %g database units, not a whole int32: %w", o.PixelSize, db, ErrInvalidConfig)
	}
	return int32(n), nil
}

func (o Options) validate() error {
	if o.Output == "" {
		return fmt.Errorf("pipeline: output path is empty: %w", ErrInvalidConfig)
	}
	if o.Workers < 0 || o.ProgressEvery < 0 {
		return fmt.Errorf("pipeline: workers %d and progress_every %d must not be negative: %w", o.Workers, o.ProgressEvery, ErrInvalidConfig)
	}
	if o.MaxNameLength < 1 {
		return fmt.Errorf("pipeline: max_name_length %d must be positive: %w", o.MaxNameLength, ErrInvalidConfig)
	}
	if o.TopName != "" {
		if err := format.ValidName(o.TopName); err != nil {
			return fmt.Errorf("pipeline: top_name: %w: %w", err, ErrInvalidConfig)
		}
	}
	return nil
}
