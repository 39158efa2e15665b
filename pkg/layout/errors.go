package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a grid configuration that cannot be laid out.
var ErrInvalidConfig = errors.New("layout: invalid configuration")

// LayoutCapacityError reports a block line that cannot be padded to the
// exact row width.
type LayoutCapacityError struct {
	Row        int // grid row
	Col        int // block column
	Deficit    int // target width minus the nominal width
	Candidates int // interior '1' symbols
	MaxPadding int
}

func (e *LayoutCapacityError) Error() string {
	return fmt.Sprintf("layout: row %d block column %d: deficit %d cannot be absorbed by %d interior '1' symbols with max padding %d",
		e.Row, e.Col, e.Deficit, e.Candidates, e.MaxPadding)
}

// ChunkBoundaryError reports a row count that is not aligned to blocks.
type ChunkBoundaryError struct {
	Field       string
	Rows        int
	BlockHeight int
}

func (e *ChunkBoundaryError) Error() string {
	return fmt.Sprintf("layout: %s %d is not a positive multiple of block height %d", e.Field, e.Rows, e.BlockHeight)
}
