// Package gds writes and reads GDSII stream files.
//
// The Encoder is a cell.Sink: cells are written as structures in the order
// they are defined, and every reference must name a structure already
// written to the same file. Structure names come from a per-file
// cellname.Registry, so the first cells defined get the shortest names.
package gds

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
	"github.com/bigjosh/gotham-pi-maker/pkg/cell"
	"github.com/bigjosh/gotham-pi-maker/pkg/cellname"
)

var (
	// ErrUndefinedReference indicates a reference to a structure not yet
	// written to the file.
	ErrUndefinedReference = cell.ErrUndefinedReference
	// ErrDuplicateCell indicates a cell or structure name defined twice.
	ErrDuplicateCell = cell.ErrDuplicateCell
	// ErrInvalidName indicates a structure name readers would reject.
	ErrInvalidName = format.ErrInvalidName
	// ErrState indicates calls out of Begin, Define, Close order.
	ErrState = errors.New("gds: encoder used out of order")
	// ErrArrayTooLarge indicates an array reference beyond 32767 columns or rows.
	ErrArrayTooLarge = errors.New("gds: array reference too large")
	// ErrDegenerate indicates a boundary with fewer than three points.
	ErrDegenerate = errors.New("gds: degenerate boundary")
)

// EncoderOptions configures the library header.
type EncoderOptions struct {
	// LibName is written into LIBNAME.
	LibName string

	// UserUnit is the size of a database unit in user units.
	UserUnit float64

	// DBUnit is the size of a database unit in metres.
	DBUnit float64

	// Timestamp is written as the modification and access time of the
	// library and of every structure. Zero uses the current time.
	Timestamp time.Time

	// MaxNameLength bounds generated structure names.
	MaxNameLength int

	// PadTo pads the file with zeros after ENDLIB to a multiple of PadTo
	// bytes. Zero disables padding.
	PadTo int

	// Reserved lists fixed structure names defined later in the library.
	// They are withheld from generated names from the start.
	Reserved []string
}

// DefaultEncoderOptions returns nanometre database units with micron user
// units, eight character names and 2048 byte padding.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		LibName:       "PI",
		UserUnit:      1e-3,
		DBUnit:        1e-9,
		MaxNameLength: cellname.DefaultMaxLength,
		PadTo:         format.BlockSize,
	}
}

// EncoderStats counts what an Encoder wrote.
type EncoderStats struct {
	Structures int   `json:"structures"`
	Boundaries int   `json:"boundaries"`
	SRefs      int   `json:"srefs"`
	ARefs      int   `json:"arefs"`
	Bytes      int64 `json:"bytes"`
}

// Encoder streams one library.
type Encoder struct {
	w     *bufio.Writer
	opts  EncoderOptions
	names *cellname.Registry[cell.Handle]
	fixed map[string]bool
	stamp []int16
	buf   []byte
	stats EncoderStats
	err   error
	state int
}

const (
	stateNew = iota
	stateOpen
	stateClosed
)

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts EncoderOptions) *Encoder {
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = cellname.DefaultMaxLength
	}
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	one := []int16{
		int16(ts.Year()), int16(ts.Month()), int16(ts.Day()),
		int16(ts.Hour()), int16(ts.Minute()), int16(ts.Second()),
	}
	return &Encoder{
		w:     bufio.NewWriterSize(w, 1<<16),
		opts:  opts,
		names: cellname.NewRegistry[cell.Handle](opts.MaxNameLength),
		fixed: make(map[string]bool),
		stamp: append(one, one...),
	}
}

// Begin writes HEADER, BGNLIB, LIBNAME and UNITS.
func (e *Encoder) Begin() error {
	if e.state != stateNew {
		return ErrState
	}
	e.state = stateOpen
	for _, name := range e.opts.Reserved {
		if err := format.ValidName(name); err != nil {
			return e.fail(fmt.Errorf("gds: reserved name: %w", err))
		}
		if !e.names.Reserve(name) {
			return e.fail(fmt.Errorf("gds: reserved name %q listed twice: %w", name, ErrDuplicateCell))
		}
		e.fixed[name] = true
	}
	rb := records{b: e.buf[:0]}
	rb.int16s(format.RecHeader, format.StreamVersion)
	rb.int16s(format.RecBgnLib, e.stamp...)
	rb.str(format.RecLibName, e.opts.LibName)
	rb.real8s(format.RecUnits, e.opts.UserUnit, e.opts.DBUnit)
	if rb.err != nil {
		return e.fail(fmt.Errorf("gds: library header: %w", rb.err))
	}
	return e.flushRecords(rb.b)
}

// Define writes c as one structure. It implements cell.Sink.
func (e *Encoder) Define(c *cell.Cell) error {
	if e.err != nil {
		return e.err
	}
	if e.state != stateOpen {
		return ErrState
	}
	if _, dup := e.names.Lookup(c.Handle); dup {
		return fmt.Errorf("gds: %s cell %#x: %w", c.Kind, uint64(c.Handle), ErrDuplicateCell)
	}
	// Resolve every reference before allocating this cell's name so a
	// rejected cell leaves the registry untouched.
	targets := make([]string, len(c.Refs))
	for i, r := range c.Refs {
		name, ok := e.names.Lookup(r.Target)
		if !ok {
			return fmt.Errorf("gds: %s cell %#x references %#x: %w", c.Kind, uint64(c.Handle), uint64(r.Target), ErrUndefinedReference)
		}
		targets[i] = name
	}
	for _, bd := range c.Boundaries {
		if n := len(bd.Points) + 1; n > format.MaxBoundaryVertices {
			return fmt.Errorf("gds: %s cell %#x: boundary of %d vertices: %w", c.Kind, uint64(c.Handle), n, format.ErrTooManyVertices)
		}
		if len(bd.Points) < 3 {
			return fmt.Errorf("gds: %s cell %#x: boundary of %d points: %w", c.Kind, uint64(c.Handle), len(bd.Points), ErrDegenerate)
		}
	}
	for _, r := range c.Refs {
		if r.IsArray() && (r.Cols > format.MaxColRow || r.Rows > format.MaxColRow || r.Rows < 1) {
			return fmt.Errorf("gds: %s cell %#x: %d x %d: %w", c.Kind, uint64(c.Handle), r.Cols, r.Rows, ErrArrayTooLarge)
		}
	}
	name, err := e.assignName(c)
	if err != nil {
		return err
	}

	rb := records{b: e.buf[:0]}
	rb.int16s(format.RecBgnStr, e.stamp...)
	rb.str(format.RecStrName, name)
	for _, bd := range c.Boundaries {
		rb.boundary(bd)
		e.stats.Boundaries++
	}
	for i, r := range c.Refs {
		rb.ref(targets[i], r)
		if r.IsArray() {
			e.stats.ARefs++
		} else {
			e.stats.SRefs++
		}
	}
	rb.empty(format.RecEndStr)
	if rb.err != nil {
		return e.fail(fmt.Errorf("gds: structure %s: %w", name, rb.err))
	}
	e.stats.Structures++
	return e.flushRecords(rb.b)
}

func (e *Encoder) assignName(c *cell.Cell) (string, error) {
	if c.Name == "" {
		return e.names.Name(c.Handle)
	}
	if err := format.ValidName(c.Name); err != nil {
		return "", fmt.Errorf("gds: %w", err)
	}
	if e.fixed[c.Name] {
		delete(e.fixed, c.Name)
	} else if !e.names.Reserve(c.Name) {
		return "", fmt.Errorf("gds: structure name %q: %w", c.Name, ErrDuplicateCell)
	}
	e.names.Bind(c.Handle, c.Name)
	return c.Name, nil
}

// Close writes ENDLIB and the zero padding and flushes the output. It does
// not close the underlying writer.
func (e *Encoder) Close() error {
	if e.err != nil {
		return e.err
	}
	if e.state != stateOpen {
		return ErrState
	}
	e.state = stateClosed
	if err := e.flushRecords(format.AppendEmpty(e.buf[:0], format.RecEndLib)); err != nil {
		return err
	}
	if pad := e.opts.PadTo; pad > 0 {
		if rem := e.stats.Bytes % int64(pad); rem != 0 {
			if err := e.write(make([]byte, int64(pad)-rem)); err != nil {
				return err
			}
		}
	}
	if err := e.w.Flush(); err != nil {
		return e.fail(fmt.Errorf("gds: flush: %w", err))
	}
	return nil
}

// Stats returns the counts so far.
func (e *Encoder) Stats() EncoderStats { return e.stats }

// NameOf returns the structure name assigned to h in this file.
func (e *Encoder) NameOf(h cell.Handle) (string, bool) { return e.names.Lookup(h) }

func (e *Encoder) flushRecords(b []byte) error {
	e.buf = b[:0]
	return e.write(b)
}

func (e *Encoder) write(b []byte) error {
	if e.err != nil {
		return e.err
	}
	n, err := e.w.Write(b)
	e.stats.Bytes += int64(n)
	if err != nil {
		return e.fail(fmt.Errorf("gds: write: %w", err))
	}
	return nil
}

func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return err
}

// records appends GDSII records to b, keeping the first error.
type records struct {
	b   []byte
	err error
}

func (r *records) empty(rt byte) {
	if r.err == nil {
		r.b = format.AppendEmpty(r.b, rt)
	}
}

func (r *records) int16s(rt byte, v ...int16) {
	if r.err == nil {
		r.b, r.err = format.AppendInt16(r.b, rt, v...)
	}
}

func (r *records) int32s(rt byte, v ...int32) {
	if r.err == nil {
		r.b, r.err = format.AppendInt32(r.b, rt, v...)
	}
}

func (r *records) real8s(rt byte, v ...float64) {
	if r.err == nil {
		r.b, r.err = format.AppendReal8(r.b, rt, v...)
	}
}

func (r *records) str(rt byte, s string) {
	if r.err == nil {
		r.b, r.err = format.AppendString(r.b, rt, s)
	}
}

// boundary writes BOUNDARY, LAYER, DATATYPE, XY (closed) and ENDEL.
func (r *records) boundary(bd cell.Boundary) {
	xy := make([]int32, 0, 2*len(bd.Points)+2)
	for _, p := range bd.Points {
		xy = append(xy, p.X, p.Y)
	}
	xy = append(xy, bd.Points[0].X, bd.Points[0].Y)
	r.empty(format.RecBoundary)
	r.int16s(format.RecLayer, bd.Layer)
	r.int16s(format.RecDatatype, bd.Datatype)
	r.int32s(format.RecXY, xy...)
	r.empty(format.RecEndEl)
}

// ref writes an SREF, or an AREF whose XY holds the origin, the origin
// displaced by all columns and the origin displaced by all rows.
func (r *records) ref(target string, ref cell.Reference) {
	if !ref.IsArray() {
		r.empty(format.RecSRef)
		r.str(format.RecSName, target)
		r.int32s(format.RecXY, ref.Origin.X, ref.Origin.Y)
		r.empty(format.RecEndEl)
		return
	}
	cols, rows := int32(ref.Cols), int32(ref.Rows)
	r.empty(format.RecARef)
	r.str(format.RecSName, target)
	r.int16s(format.RecColRow, int16(ref.Cols), int16(ref.Rows))
	r.int32s(format.RecXY,
		ref.Origin.X, ref.Origin.Y,
		ref.Origin.X+cols*ref.ColStep.X, ref.Origin.Y+cols*ref.ColStep.Y,
		ref.Origin.X+rows*ref.RowStep.X, ref.Origin.Y+rows*ref.RowStep.Y,
	)
	r.empty(format.RecEndEl)
}
