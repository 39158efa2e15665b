//go:build !unix

package mmfile

import "os"

// Open reads the whole file into memory.
func Open(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Region{data: data}, nil
}
