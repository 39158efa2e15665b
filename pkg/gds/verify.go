package gds

import (
	"fmt"
	"io"
	"sort"
)

// Report summarizes a verified file.
type Report struct {
	Library    string   `json:"library"`
	UserUnit   float64  `json:"user_unit"`
	DBUnit     float64  `json:"db_unit"`
	Structures int      `json:"structures"`
	Boundaries int      `json:"boundaries"`
	SRefs      int      `json:"srefs"`
	ARefs      int      `json:"arefs"`
	Placements int64    `json:"placements"`
	Padding    int64    `json:"padding"`
	Roots      []string `json:"roots"`
}

// Verify streams a file and checks that it is well formed, that structure
// names are unique and that every reference names a structure defined
// earlier in the file. Roots lists the structures nothing references.
func Verify(r io.Reader) (*Report, error) {
	rep := &Report{}
	defined := map[string]bool{}
	referenced := map[string]bool{}
	var order []string
	lib, err := decode(r, func(s *Structure) error {
		if defined[s.Name] {
			return fmt.Errorf("gds: structure %s: %w", s.Name, ErrDuplicateCell)
		}
		for _, ref := range s.Refs {
			if !defined[ref.Target] {
				return fmt.Errorf("gds: structure %s references %s: %w", s.Name, ref.Target, ErrUndefinedReference)
			}
			referenced[ref.Target] = true
			if ref.IsArray() {
				rep.ARefs++
			} else {
				rep.SRefs++
			}
			rep.Placements += int64(ref.Count())
		}
		defined[s.Name] = true
		order = append(order, s.Name)
		rep.Structures++
		rep.Boundaries += len(s.Boundaries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	rep.Library, rep.UserUnit, rep.DBUnit, rep.Padding = lib.Name, lib.UserUnit, lib.DBUnit, lib.Padding
	for _, name := range order {
		if !referenced[name] {
			rep.Roots = append(rep.Roots, name)
		}
	}
	sort.Strings(rep.Roots)
	return rep, nil
}
