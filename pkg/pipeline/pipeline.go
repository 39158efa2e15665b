// Package pipeline runs the whole build: validate, count windows, then
// encode chunk files in parallel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bigjosh/gotham-pi-maker/internal/writer"
	"github.com/bigjosh/gotham-pi-maker/pkg/dedup"
	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/font"
	"github.com/bigjosh/gotham-pi-maker/pkg/gds"
	"github.com/bigjosh/gotham-pi-maker/pkg/hierarchy"
	"github.com/bigjosh/gotham-pi-maker/pkg/layout"
)

// StatsKeys is the number of most and least frequent keys kept in Result.
const StatsKeys = 10

// ChunkResult describes one written file.
type ChunkResult struct {
	hierarchy.ChunkStats
	Path      string `json:"path"`
	Bytes     int64  `json:"bytes"`      // uncompressed stream
	FileBytes int64  `json:"file_bytes"` // on disk
}

// Result summarizes a run.
type Result struct {
	Files      []string         `json:"files"`
	Chunks     []ChunkResult    `json:"chunks"`
	Rows       int              `json:"rows"`
	Symbols    int64            `json:"symbols"`
	Dedup      dedup.Stats      `json:"dedup"`
	Usage      *dedup.Usage     `json:"usage"`
	UniqueUsed int              `json:"unique_used"`
	TopUsed    []dedup.KeyCount `json:"top_used,omitempty"`
	Bytes      int64            `json:"bytes"`
	FileBytes  int64            `json:"file_bytes"`
	Elapsed    time.Duration    `json:"elapsed"`
}

// Run builds the layout of src with table (the built-in font when nil).
// On error no output file of this run is left behind.
func Run(ctx context.Context, opts Options, table *font.Table, src digits.Source) (*Result, error) {
	start := time.Now()
	log := Logger()
	p := message.NewPrinter(language.English)

	if err := opts.validate(); err != nil {
		return nil, err
	}
	grid, err := layout.NewGrid(opts.Grid)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	ps, err := opts.pixelUnits()
	if err != nil {
		return nil, err
	}
	if table == nil {
		table = font.Default()
	}
	if err := table.Validate(digits.Alphabet); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if n, need := src.Len(), grid.SymbolCount(); n < need {
		return nil, fmt.Errorf("pipeline: stream holds %d of %d symbols: %w", n, need, digits.ErrShortStream)
	}
	stamp := opts.Timestamp
	if stamp.IsZero() {
		stamp = start
	}
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log.Info("counting windows",
		"rows", p.Sprintf("%d", grid.TotalRows()),
		"symbols", p.Sprintf("%d", grid.SymbolCount()),
		"length", opts.Dedup.Length,
		"threshold", opts.Dedup.Threshold)
	idx, err := dedup.Build(ctx, grid, src, opts.Dedup)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	dst := idx.Stats(StatsKeys)
	log.Info("windows counted",
		"windows", p.Sprintf("%d", dst.Windows),
		"distinct", p.Sprintf("%d", dst.Distinct),
		"promoted", p.Sprintf("%d", dst.Promoted),
		"elapsed", time.Since(start).Round(time.Millisecond))

	var done atomic.Int64
	hopts := hierarchy.Options{
		Merge:         opts.Merge,
		PixelSize:     ps,
		GlyphLayer:    opts.GlyphLayer,
		GlyphDatatype: opts.GlyphDatatype,
		GridLayer:     opts.GridLayer,
		GridDatatype:  opts.GridDatatype,
		TopName:       opts.TopName,
	}
	if every := int64(opts.ProgressEvery); every > 0 {
		step := int64(opts.Grid.BlockHeight)
		total := grid.TotalRows()
		hopts.Progress = func(layout.Chunk, int) {
			n := done.Add(step)
			if n/every != (n-step)/every {
				log.Info("progress",
					"rows", p.Sprintf("%d", n),
					"total", p.Sprintf("%d", total),
					"elapsed", time.Since(start).Round(time.Second))
			}
		}
	}
	builder, err := hierarchy.NewBuilder(grid, table, idx, hopts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	chunks := grid.Chunks()
	res := &Result{
		Files:   make([]string, len(chunks)),
		Chunks:  make([]ChunkResult, len(chunks)),
		Rows:    grid.TotalRows(),
		Symbols: grid.SymbolCount(),
		Dedup:   dst,
	}
	var (
		mu        sync.Mutex
		committed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ch := range chunks {
		path := ChunkPath(opts.Output, ch.Index, len(chunks))
		g.Go(func() error {
			cr, err := writeChunk(gctx, builder, ch, src, path, opts, stamp)
			if err != nil {
				return err
			}
			mu.Lock()
			committed = append(committed, path)
			mu.Unlock()
			res.Files[ch.Index] = path
			res.Chunks[ch.Index] = cr
			log.Debug("chunk written",
				"chunk", ch.Index,
				"path", path,
				"cells", cr.Cells,
				"bytes", p.Sprintf("%d", cr.FileBytes))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, path := range committed {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn("remove output after failure", "path", path, "error", rmErr)
			}
		}
		return nil, err
	}

	res.Usage = dedup.NewUsage(idx)
	for _, cr := range res.Chunks {
		res.Usage.Merge(cr.Usage)
		res.Bytes += cr.Bytes
		res.FileBytes += cr.FileBytes
	}
	res.UniqueUsed = res.Usage.UniqueUsed()
	res.TopUsed, _ = res.Usage.Extremes(idx, StatsKeys)
	res.Elapsed = time.Since(start)
	log.Info("done",
		"files", len(res.Files),
		"bytes", p.Sprintf("%d", res.FileBytes),
		"shared_refs", p.Sprintf("%d", res.Usage.SharedPlacements),
		"glyph_refs", p.Sprintf("%d", res.Usage.GlyphPlacements),
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func writeChunk(ctx context.Context, b *hierarchy.Builder, ch layout.Chunk, src digits.Source, path string, opts Options, stamp time.Time) (ChunkResult, error) {
	f, err := writer.Create(path, writer.Options{Gzip: opts.Gzip, GzipLevel: opts.GzipLevel, Sync: opts.Sync})
	if err != nil {
		return ChunkResult{}, fmt.Errorf("pipeline: chunk %d: %w", ch.Index, err)
	}
	defer func() { _ = f.Abort() }()

	enc := gds.NewEncoder(f, gds.EncoderOptions{
		LibName:       opts.LibName,
		UserUnit:      opts.UserUnit,
		DBUnit:        opts.DBUnit,
		Timestamp:     stamp,
		MaxNameLength: opts.MaxNameLength,
		PadTo:         gds.DefaultEncoderOptions().PadTo,
		Reserved:      []string{b.TopName()},
	})
	if err := enc.Begin(); err != nil {
		return ChunkResult{}, err
	}
	st, err := b.BuildChunk(ctx, ch, src, enc)
	if err != nil {
		return ChunkResult{}, err
	}
	if err := enc.Close(); err != nil {
		return ChunkResult{}, err
	}
	if err := f.Commit(); err != nil {
		return ChunkResult{}, fmt.Errorf("pipeline: chunk %d: %w", ch.Index, err)
	}
	cr := ChunkResult{ChunkStats: st, Path: path, Bytes: enc.Stats().Bytes}
	if fi, err := os.Stat(path); err == nil {
		cr.FileBytes = fi.Size()
	}
	return cr, nil
}
