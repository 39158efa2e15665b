// Package mmfile opens whole files as read-only byte regions, memory
// mapped where the platform allows it.
package mmfile

// Region is the contents of one file. The bytes stay valid until Close.
type Region struct {
	data  []byte
	unmap func([]byte) error
}

// Bytes returns the file contents. The slice must not be written to.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the file size.
func (r *Region) Len() int { return len(r.data) }

// Close releases the region. Calling it again does nothing.
func (r *Region) Close() error {
	data, unmap := r.data, r.unmap
	r.data, r.unmap = nil, nil
	if unmap == nil || len(data) == 0 {
		return nil
	}
	return unmap(data)
}
