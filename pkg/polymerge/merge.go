package polymerge

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"github.com/katalvlaran/lvlath/gridgraph"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
)

// Polygon is a closed vertex list without the repeated closing vertex.
type Polygon []image.Point

type edge struct {
	from, to image.Point
}

func (e edge) dir() image.Point { return sign(e.to.Sub(e.from)) }

func sign(p image.Point) image.Point {
	return image.Point{X: cmp.Compare(p.X, 0), Y: cmp.Compare(p.Y, 0)}
}

// Merge returns one polygon per 4-connected component of m, ordered by the
// component's first pixel in row-major order from the bottom.
func Merge(m Mask) ([]Polygon, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	comps, err := components(m)
	if err != nil {
		return nil, err
	}
	var out []Polygon
	for _, comp := range comps {
		loops := trace(boundaryEdges(m, comp))
		var (
			outer Polygon
			holes []Polygon
		)
		for _, l := range loops {
			l = removeCollinear(l)
			if Area(l) > 0 {
				outer = l
			} else {
				holes = append(holes, l)
			}
		}
		poly, err := bridge(outer, holes)
		if err != nil {
			return nil, err
		}
		if len(poly)+1 > format.MaxBoundaryVertices {
			return nil, fmt.Errorf("%d vertices: %w", len(poly)+1, ErrTooManyVertices)
		}
		out = append(out, poly)
	}
	return out, nil
}

// components labels 4-connected filled pixels. Each component is the list
// of its pixels in row-major order.
func components(m Mask) ([][]image.Point, error) {
	if m.W == 0 || m.H == 0 {
		return nil, nil
	}
	cells := make([][]int, m.H)
	for y := range cells {
		cells[y] = make([]int, m.W)
		for x := range cells[y] {
			if m.At(x, y) {
				cells[y][x] = 1
			}
		}
	}
	gg, err := gridgraph.NewGridGraph(cells, gridgraph.DefaultGridOptions())
	if err != nil {
		return nil, fmt.Errorf("polymerge: %w", err)
	}
	var comps [][]image.Point
	for _, idx := range gg.ConnectedComponents() {
		slices.Sort(idx)
		comp := make([]image.Point, len(idx))
		for i, id := range idx {
			x, y := gg.Coordinate(id)
			comp[i] = image.Pt(x, y)
		}
		comps = append(comps, comp)
	}
	return comps, nil
}

// boundaryEdges returns the unit edges between the component and empty
// pixels, directed with the filled side on the left.
func boundaryEdges(m Mask, pixels []image.Point) []edge {
	var edges []edge
	for _, p := range pixels {
		x, y := p.X, p.Y
		if !m.At(x, y-1) {
			edges = append(edges, edge{image.Pt(x, y), image.Pt(x+1, y)})
		}
		if !m.At(x+1, y) {
			edges = append(edges, edge{image.Pt(x+1, y), image.Pt(x+1, y+1)})
		}
		if !m.At(x, y+1) {
			edges = append(edges, edge{image.Pt(x+1, y+1), image.Pt(x, y+1)})
		}
		if !m.At(x-1, y) {
			edges = append(edges, edge{image.Pt(x, y+1), image.Pt(x, y)})
		}
	}
	return edges
}

// trace links edges into closed loops. Where two loops touch at a vertex
// the trace turns left, keeping diagonal pixels apart.
func trace(edges []edge) []Polygon {
	out := make(map[image.Point][]int, len(edges))
	for i, e := range edges {
		out[e.from] = append(out[e.from], i)
	}
	used := make([]bool, len(edges))
	var loops []Polygon
	for start := range edges {
		if used[start] {
			continue
		}
		var loop Polygon
		cur := start
		for {
			used[cur] = true
			e := edges[cur]
			loop = append(loop, e.from)
			next := pick(edges, out[e.to], used, start, e.dir())
			if next < 0 || next == start {
				break
			}
			cur = next
		}
		loops = append(loops, loop)
	}
	return loops
}

func pick(edges []edge, cands []int, used []bool, start int, d image.Point) int {
	left := image.Point{X: -d.Y, Y: d.X}
	right := image.Point{X: d.Y, Y: -d.X}
	best, bestRank := -1, 4
	for _, c := range cands {
		if used[c] && c != start {
			continue
		}
		var rank int
		switch edges[c].dir() {
		case left:
			rank = 0
		case d:
			rank = 1
		case right:
			rank = 2
		default:
			rank = 3
		}
		if rank < bestRank {
			best, bestRank = c, rank
		}
	}
	return best
}

// removeCollinear keeps only the corners of a rectilinear loop.
func removeCollinear(loop Polygon) Polygon {
	n := len(loop)
	out := make(Polygon, 0, n)
	for i := range loop {
		prev, next := loop[(i+n-1)%n], loop[(i+1)%n]
		if sign(loop[i].Sub(prev)) != sign(next.Sub(loop[i])) {
			out = append(out, loop[i])
		}
	}
	return out
}

// bridge splices every hole into outer, in ascending order of each hole's
// minimum vertex.
func bridge(outer Polygon, holes []Polygon) (Polygon, error) {
	type hole struct {
		loop Polygon
		min  int // index of the minimum vertex
	}
	hs := make([]hole, len(holes))
	for i, h := range holes {
		hs[i] = hole{loop: h, min: minVertex(h)}
	}
	slices.SortFunc(hs, func(a, b hole) int {
		return lessPoint(a.loop[a.min], b.loop[b.min])
	})

	poly := slices.Clone(outer)
	for _, h := range hs {
		m := h.loop[h.min]
		i, q, ok := rayHit(poly, m)
		if !ok {
			return nil, fmt.Errorf("hole at %v: %w", m, ErrBridgeNotFound)
		}
		splice := make(Polygon, 0, len(h.loop)+4)
		splice = append(splice, q, m)
		for k := 1; k < len(h.loop); k++ {
			splice = append(splice, h.loop[(h.min+k)%len(h.loop)])
		}
		splice = append(splice, m, q)
		poly = slices.Insert(poly, i+1, splice...)
		poly = dedupe(poly)
	}
	return poly, nil
}

func lessPoint(a, b image.Point) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

func minVertex(loop Polygon) int {
	best := 0
	for i := range loop {
		if lessPoint(loop[i], loop[best]) < 0 {
			best = i
		}
	}
	return best
}

// rayHit casts a ray from m towards -x and returns the start index of the
// nearest downward vertical edge spanning m.Y and the hit point.
func rayHit(poly Polygon, m image.Point) (int, image.Point, bool) {
	best := -1
	bestX := 0
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if a.X != b.X || a.X >= m.X || b.Y >= a.Y {
			continue
		}
		if m.Y > a.Y || m.Y < b.Y {
			continue
		}
		if best < 0 || a.X > bestX {
			best, bestX = i, a.X
		}
	}
	if best < 0 {
		return 0, image.Point{}, false
	}
	return best, image.Pt(bestX, m.Y), true
}

// dedupe drops consecutive duplicate vertices, including across the wrap.
func dedupe(poly Polygon) Polygon {
	out := poly[:0]
	for _, p := range poly {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
