//go:build unix

package mmfile

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps the file at path read-only. The stream is read front to back,
// so the kernel is asked for aggressive read-ahead.
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// The mapping outlives the descriptor.
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	switch {
	case size == 0:
		return &Region{data: []byte{}}, nil
	case size > math.MaxInt:
		return nil, fmt.Errorf("mmfile: %s: %d bytes cannot be mapped", path, size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	// Advisory only: a kernel that rejects the hint still serves the
	// mapping with default read-ahead.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	return &Region{data: data, unmap: unix.Munmap}, nil
}
