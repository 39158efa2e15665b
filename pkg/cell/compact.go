package cell

// MaxArrayCount is the largest column or row count of an array reference.
const MaxArrayCount = 32767

// CompactRefs replaces runs of at least two consecutive single references
// to the same target, on the same y and with a uniform non-zero x step, by
// one-row array references. Array references pass through unchanged.
func CompactRefs(refs []Reference) []Reference {
	out := make([]Reference, 0, len(refs))
	for i := 0; i < len(refs); {
		r := refs[i]
		if r.IsArray() || i+1 >= len(refs) {
			out = append(out, r)
			i++
			continue
		}
		step := refs[i+1].Origin.X - r.Origin.X
		j := i + 1
		for j < len(refs) && j-i < MaxArrayCount {
			n := refs[j]
			if n.IsArray() || n.Target != r.Target || n.Origin.Y != r.Origin.Y || n.Origin.X-refs[j-1].Origin.X != step {
				break
			}
			j++
		}
		if run := j - i; run >= 2 && step != 0 {
			out = append(out, Reference{
				Target:  r.Target,
				Origin:  r.Origin,
				Cols:    run,
				Rows:    1,
				ColStep: Point{X: step},
			})
			i = j
			continue
		}
		out = append(out, r)
		i++
	}
	return out
}
