// Package cellname allocates short structure names, shortest first.
//
// The sequence is A..Z, A0..A9, AA..AZ, B0..ZZ, A00, ...: the first
// character is a letter and later characters are drawn from 0-9 then A-Z.
// Every name of one length is used before the next length begins.
package cellname

import (
	"fmt"
)

const (
	leading  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	trailing = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// DefaultMaxLength keeps every name within one even-padded 8 byte payload.
const DefaultMaxLength = 8

// NameExhaustionError reports a request beyond the name space.
type NameExhaustionError struct {
	Index     uint64
	MaxLength int
}

func (e *NameExhaustionError) Error() string {
	return fmt.Sprintf("cellname: name %d exceeds the %d names of at most %d characters",
		e.Index, Capacity(e.MaxLength), e.MaxLength)
}

// Capacity returns the number of names of at most maxLen characters. It
// saturates at the largest uint64.
func Capacity(maxLen int) uint64 {
	var total uint64
	for l := 1; l <= maxLen; l++ {
		n := levelSize(l)
		if n == 0 || total+n < total {
			return ^uint64(0)
		}
		total += n
	}
	return total
}

// levelSize returns the number of names of exactly l characters, or 0 on
// overflow.
func levelSize(l int) uint64 {
	n := uint64(len(leading))
	for i := 1; i < l; i++ {
		next := n * uint64(len(trailing))
		if next/uint64(len(trailing)) != n {
			return 0
		}
		n = next
	}
	return n
}

// NameAt returns the n-th name (from 0).
func NameAt(n uint64, maxLen int) (string, error) {
	idx := n
	for l := 1; l <= maxLen; l++ {
		size := levelSize(l)
		if size == 0 || idx < size {
			return spell(idx, l), nil
		}
		idx -= size
	}
	return "", &NameExhaustionError{Index: n, MaxLength: maxLen}
}

func spell(idx uint64, l int) string {
	buf := make([]byte, l)
	for i := l - 1; i > 0; i-- {
		buf[i] = trailing[idx%uint64(len(trailing))]
		idx /= uint64(len(trailing))
	}
	buf[0] = leading[idx]
	return string(buf)
}

// Registry maps identities to names within one output file. Names are
// handed out in request order, so callers request the most referenced
// identities first.
type Registry[K comparable] struct {
	maxLen   int
	next     uint64
	names    map[K]string
	reserved map[string]struct{}
}

// NewRegistry returns an empty registry for names of at most maxLen
// characters.
func NewRegistry[K comparable](maxLen int) *Registry[K] {
	return &Registry[K]{maxLen: maxLen, names: make(map[K]string), reserved: make(map[string]struct{})}
}

// Reserve marks name as taken so it is never generated. Reserving a name
// twice reports false.
func (r *Registry[K]) Reserve(name string) bool {
	if _, ok := r.reserved[name]; ok {
		return false
	}
	r.reserved[name] = struct{}{}
	return true
}

// Name returns the name of id, allocating the next free one on first use.
func (r *Registry[K]) Name(id K) (string, error) {
	if name, ok := r.names[id]; ok {
		return name, nil
	}
	for {
		name, err := NameAt(r.next, r.maxLen)
		if err != nil {
			return "", err
		}
		r.next++
		if _, taken := r.reserved[name]; taken {
			continue
		}
		r.reserved[name] = struct{}{}
		r.names[id] = name
		return name, nil
	}
}

// Bind assigns a caller chosen name to id. The name should have been
// reserved first so it is never generated.
func (r *Registry[K]) Bind(id K, name string) {
	r.reserved[name] = struct{}{}
	r.names[id] = name
}

// Lookup returns the name of id if one was allocated.
func (r *Registry[K]) Lookup(id K) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// Len returns the number of allocated names.
func (r *Registry[K]) Len() int { return len(r.names) }
