package layout

// Chunk is a block-aligned run of grid rows [FirstRow, EndRow) written to
// one output file.
type Chunk struct {
	Index    int
	FirstRow int
	EndRow   int
}

// Rows returns the number of grid rows in the chunk.
func (c Chunk) Rows() int { return c.EndRow - c.FirstRow }

// Chunks partitions the processed rows into chunks of ChunkRows rows. The
// final chunk holds the remainder.
func (g *Grid) Chunks() []Chunk {
	n := g.ChunkCount()
	out := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		first := i * g.cfg.ChunkRows
		out = append(out, Chunk{Index: i, FirstRow: first, EndRow: min(first+g.cfg.ChunkRows, g.rows)})
	}
	return out
}

// ChunkCount returns the number of chunks.
func (g *Grid) ChunkCount() int {
	return (g.rows + g.cfg.ChunkRows - 1) / g.cfg.ChunkRows
}

// BlockRange returns the block rows [first, end) covered by c.
func (g *Grid) BlockRange(c Chunk) (first, end int) {
	return c.FirstRow / g.cfg.BlockHeight, c.EndRow / g.cfg.BlockHeight
}
