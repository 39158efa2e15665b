// Package writer exposes sinks for GDSII emission.
package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Options controls how a File is written.
type Options struct {
	// Gzip compresses the stream. Layout viewers open .gds.gz directly.
	Gzip bool

	// GzipLevel is the compression level (gzip.DefaultCompression when 0).
	GzipLevel int

	// Sync flushes file data to disk before the rename makes it visible.
	Sync bool
}

// File streams bytes into a temporary file next to Path and makes them
// visible at Path atomically on Commit. Abort (or a failed Commit) removes
// the temporary file, so a failed chunk never leaves a partial output.
type File struct {
	Path string

	tmp  *os.File
	out  io.Writer
	gz   *gzip.Writer
	opts Options
	done bool
}

// Create opens a temporary file in the directory of path.
func Create(path string, opts Options) (*File, error) {
	// Create temp file in same directory to ensure atomic rename
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pigds-tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	f := &File{Path: path, tmp: tmp, out: tmp, opts: opts}
	if opts.Gzip {
		level := opts.GzipLevel
		if level == 0 {
			level = gzip.DefaultCompression
		}
		gz, gzErr := gzip.NewWriterLevel(tmp, level)
		if gzErr != nil {
			_ = f.Abort()
			return nil, fmt.Errorf("gzip writer: %w", gzErr)
		}
		gz.Name = filepath.Base(trimGz(path))
		f.gz = gz
		f.out = gz
	}
	return f, nil
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	if f.done {
		return 0, errors.New("writer: write after close")
	}
	return f.out.Write(p)
}

// Commit finishes the stream and renames the temp file onto Path.
func (f *File) Commit() error {
	if f.done {
		return errors.New("writer: already closed")
	}
	if f.gz != nil {
		if err := f.gz.Close(); err != nil {
			_ = f.Abort()
			return fmt.Errorf("close gzip stream: %w", err)
		}
	}
	if f.opts.Sync {
		if err := syncFile(f.tmp); err != nil {
			_ = f.Abort()
			return fmt.Errorf("sync temp file: %w", err)
		}
	}
	tmpPath := f.tmp.Name()
	// Close before rename
	if err := f.tmp.Close(); err != nil {
		f.done = true
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	f.done = true
	// Atomic rename
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Abort discards everything written so far. It is safe to call after
// Commit, in which case it does nothing.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	tmpPath := f.tmp.Name()
	closeErr := f.tmp.Close()
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return closeErr
}

func trimGz(path string) string {
	if ext := filepath.Ext(path); ext == ".gz" {
		return path[:len(path)-len(ext)]
	}
	return path
}
