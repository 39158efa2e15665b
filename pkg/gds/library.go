package gds

import (
	"errors"
	"fmt"
	"io"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
	"github.com/bigjosh/gotham-pi-maker/pkg/cell"
)

// Library is a decoded GDSII file.
type Library struct {
	Name       string
	UserUnit   float64
	DBUnit     float64
	Structures []*Structure
	// Padding is the number of zero bytes after ENDLIB.
	Padding int64
}

// Structure is one decoded structure. References keep the target name.
type Structure struct {
	Name       string
	Boundaries []cell.Boundary
	Refs       []Ref
}

// Ref is a decoded SREF or AREF.
type Ref struct {
	Target string
	cell.Reference
}

// ReadLibrary decodes a whole file.
func ReadLibrary(r io.Reader) (*Library, error) {
	var structs []*Structure
	lib, err := decode(r, func(s *Structure) error {
		structs = append(structs, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	lib.Structures = structs
	return lib, nil
}

// Structure returns the structure named name.
func (l *Library) Structure(name string) (*Structure, bool) {
	for _, s := range l.Structures {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Collector rebuilds the cell graph with one handle per structure, in file
// order. The handles map gives the handle of every structure name.
func (l *Library) Collector() (*cell.Collector, map[string]cell.Handle, error) {
	col := cell.NewCollector()
	handles := make(map[string]cell.Handle, len(l.Structures))
	for i, s := range l.Structures {
		h := cell.Handle(i + 1)
		c := &cell.Cell{Handle: h, Name: s.Name, Boundaries: s.Boundaries}
		for _, r := range s.Refs {
			t, ok := handles[r.Target]
			if !ok {
				return nil, nil, fmt.Errorf("gds: structure %s references %s: %w", s.Name, r.Target, ErrUndefinedReference)
			}
			ref := r.Reference
			ref.Target = t
			c.Refs = append(c.Refs, ref)
		}
		if err := col.Define(c); err != nil {
			return nil, nil, err
		}
		handles[s.Name] = h
	}
	return col, handles, nil
}

// decode walks the record grammar
//
//	HEADER BGNLIB LIBNAME UNITS {BGNSTR STRNAME {element} ENDSTR} ENDLIB
//
// and hands every structure to fn.
func decode(r io.Reader, fn func(*Structure) error) (*Library, error) {
	rd := NewReader(r)
	next := func(want byte) (format.Record, error) {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return rec, fmt.Errorf("gds: missing %s: %w", format.RecordName(want), format.ErrTruncated)
		}
		if err != nil {
			return rec, err
		}
		if want != anyRecord && rec.Type != want {
			return rec, fmt.Errorf("gds: offset %d: %s where %s expected: %w", rd.Offset(), rec.Name(), format.RecordName(want), ErrMalformed)
		}
		return rec, nil
	}

	lib := &Library{}
	for _, want := range []byte{format.RecHeader, format.RecBgnLib, format.RecLibName, format.RecUnits} {
		rec, err := next(want)
		if err != nil {
			return nil, err
		}
		switch want {
		case format.RecLibName:
			lib.Name = rec.String()
		case format.RecUnits:
			units, err := rec.Real8s()
			if err != nil || len(units) != 2 {
				return nil, fmt.Errorf("gds: UNITS: %w", ErrMalformed)
			}
			lib.UserUnit, lib.DBUnit = units[0], units[1]
		}
	}

	for {
		rec, err := next(anyRecord)
		if err != nil {
			return nil, err
		}
		if rec.Type == format.RecEndLib {
			break
		}
		if rec.Type != format.RecBgnStr {
			return nil, fmt.Errorf("gds: offset %d: %s outside a structure: %w", rd.Offset(), rec.Name(), ErrMalformed)
		}
		name, err := next(format.RecStrName)
		if err != nil {
			return nil, err
		}
		s := &Structure{Name: name.String()}
		if err := decodeElements(next, s); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		if err := fn(s); err != nil {
			return nil, err
		}
	}
	pad, err := rd.rest()
	if err != nil {
		return nil, err
	}
	lib.Padding = pad
	return lib, nil
}

const anyRecord = 0xFF

func decodeElements(next func(byte) (format.Record, error), s *Structure) error {
	for {
		rec, err := next(anyRecord)
		if err != nil {
			return err
		}
		switch rec.Type {
		case format.RecEndStr:
			return nil
		case format.RecBoundary:
			layer, err := int16Record(next, format.RecLayer)
			if err != nil {
				return err
			}
			dt, err := int16Record(next, format.RecDatatype)
			if err != nil {
				return err
			}
			pts, err := xyRecord(next)
			if err != nil {
				return err
			}
			if len(pts) < 4 || pts[0] != pts[len(pts)-1] {
				return fmt.Errorf("boundary not closed: %w", ErrMalformed)
			}
			s.Boundaries = append(s.Boundaries, cell.Boundary{Layer: layer, Datatype: dt, Points: pts[:len(pts)-1]})
		case format.RecSRef, format.RecARef:
			ref, err := decodeRef(next, rec.Type == format.RecARef)
			if err != nil {
				return err
			}
			s.Refs = append(s.Refs, ref)
			continue
		default:
			return fmt.Errorf("unsupported element %s: %w", rec.Name(), ErrMalformed)
		}
		if _, err := next(format.RecEndEl); err != nil {
			return err
		}
	}
}

func decodeRef(next func(byte) (format.Record, error), array bool) (Ref, error) {
	sname, err := next(format.RecSName)
	if err != nil {
		return Ref{}, err
	}
	ref := Ref{Target: sname.String()}
	if array {
		cr, err := next(format.RecColRow)
		if err != nil {
			return Ref{}, err
		}
		v, err := cr.Int16s()
		if err != nil || len(v) != 2 || v[0] < 1 || v[1] < 1 {
			return Ref{}, fmt.Errorf("COLROW: %w", ErrMalformed)
		}
		ref.Cols, ref.Rows = int(v[0]), int(v[1])
	}
	pts, err := xyRecord(next)
	if err != nil {
		return Ref{}, err
	}
	switch {
	case !array && len(pts) == 1:
		ref.Origin = pts[0]
	case array && len(pts) == 3:
		ref.Origin = pts[0]
		c, r := int32(ref.Cols), int32(ref.Rows)
		ref.ColStep = cell.Point{X: (pts[1].X - pts[0].X) / c, Y: (pts[1].Y - pts[0].Y) / c}
		ref.RowStep = cell.Point{X: (pts[2].X - pts[0].X) / r, Y: (pts[2].Y - pts[0].Y) / r}
	default:
		return Ref{}, fmt.Errorf("reference XY of %d points: %w", len(pts), ErrMalformed)
	}
	if _, err := next(format.RecEndEl); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

func int16Record(next func(byte) (format.Record, error), rt byte) (int16, error) {
	rec, err := next(rt)
	if err != nil {
		return 0, err
	}
	v, err := rec.Int16s()
	if err != nil || len(v) != 1 {
		return 0, fmt.Errorf("%s: %w", rec.Name(), ErrMalformed)
	}
	return v[0], nil
}

func xyRecord(next func(byte) (format.Record, error)) ([]cell.Point, error) {
	rec, err := next(format.RecXY)
	if err != nil {
		return nil, err
	}
	v, err := rec.Int32s()
	if err != nil || len(v)%2 != 0 {
		return nil, fmt.Errorf("XY: %w", ErrMalformed)
	}
	pts := make([]cell.Point, len(v)/2)
	for i := range pts {
		pts[i] = cell.Point{X: v[2*i], Y: v[2*i+1]}
	}
	return pts, nil
}
