package cell

import "fmt"

// Collector is an in-memory Sink. It enforces the same ordering rules as
// the file encoder.
type Collector struct {
	cells map[Handle]*Cell
	order []Handle
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{cells: make(map[Handle]*Cell)}
}

// Define implements Sink.
func (c *Collector) Define(cl *Cell) error {
	if _, dup := c.cells[cl.Handle]; dup {
		return fmt.Errorf("handle %#x: %w", uint64(cl.Handle), ErrDuplicateCell)
	}
	for _, r := range cl.Refs {
		if _, ok := c.cells[r.Target]; !ok {
			return fmt.Errorf("%s cell %#x references %#x: %w", cl.Kind, uint64(cl.Handle), uint64(r.Target), ErrUndefinedReference)
		}
	}
	c.cells[cl.Handle] = cl
	c.order = append(c.order, cl.Handle)
	return nil
}

// Cell returns a defined cell.
func (c *Collector) Cell(h Handle) (*Cell, bool) {
	cl, ok := c.cells[h]
	return cl, ok
}

// Cells returns the cells in definition order.
func (c *Collector) Cells() []*Cell {
	out := make([]*Cell, len(c.order))
	for i, h := range c.order {
		out[i] = c.cells[h]
	}
	return out
}

// Len returns the number of defined cells.
func (c *Collector) Len() int { return len(c.order) }

// Flatten calls visit for every boundary reachable from h, translated to
// the coordinates of h.
func (c *Collector) Flatten(h Handle, visit func(b Boundary)) error {
	return c.flatten(h, Point{}, visit)
}

func (c *Collector) flatten(h Handle, at Point, visit func(Boundary)) error {
	cl, ok := c.cells[h]
	if !ok {
		return fmt.Errorf("handle %#x: %w", uint64(h), ErrUndefinedReference)
	}
	for _, b := range cl.Boundaries {
		pts := make([]Point, len(b.Points))
		for i, p := range b.Points {
			pts[i] = p.Add(at)
		}
		visit(Boundary{Layer: b.Layer, Datatype: b.Datatype, Points: pts})
	}
	for _, r := range cl.Refs {
		if !r.IsArray() {
			if err := c.flatten(r.Target, at.Add(r.Origin), visit); err != nil {
				return err
			}
			continue
		}
		for j := 0; j < r.Rows; j++ {
			for i := 0; i < r.Cols; i++ {
				off := Point{
					X: r.Origin.X + int32(i)*r.ColStep.X + int32(j)*r.RowStep.X,
					Y: r.Origin.Y + int32(i)*r.ColStep.Y + int32(j)*r.RowStep.Y,
				}
				if err := c.flatten(r.Target, at.Add(off), visit); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
