//go:build !linux && !freebsd

package writer

import "os"

// syncFile falls back to a full fsync where fdatasync is unavailable.
func syncFile(f *os.File) error {
	return f.Sync()
}
