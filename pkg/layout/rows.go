package layout

import "github.com/bigjosh/gotham-pi-maker/pkg/digits"

// RowIter walks the justified block lines of grid rows [first, end), grid
// row major and then block column. The Row returned by Row is reused by the
// next call to Next.
type RowIter struct {
	g           *Grid
	src         digits.Source
	first, end  int
	row, col    int
	cur         Row
	err         error
	initialized bool
}

// Rows returns an iterator over grid rows [first, end).
func (g *Grid) Rows(src digits.Source, first, end int) *RowIter {
	return &RowIter{g: g, src: src, first: first, end: end}
}

// Next advances to the next block line. It returns false at the end or on
// the first error.
func (it *RowIter) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.initialized {
		it.row, it.col, it.initialized = it.first, 0, true
	} else if it.col++; it.col == it.g.cfg.BlockCols {
		it.row, it.col = it.row+1, 0
	}
	if it.row >= it.end {
		return false
	}
	if err := it.g.LineInto(&it.cur, it.src, it.row, it.col); err != nil {
		it.err = err
		return false
	}
	return true
}

// Row returns the current block line.
func (it *RowIter) Row() *Row { return &it.cur }

// Err returns the error that stopped iteration, if any.
func (it *RowIter) Err() error { return it.err }

// Reset restarts the iteration from the first row.
func (it *RowIter) Reset() {
	it.initialized = false
	it.err = nil
}
