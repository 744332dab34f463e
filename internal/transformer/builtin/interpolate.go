package builtin

import "flowback/pkg/records"

// Interpolate fills gaps in numeric columns. From the first row holding a
// non-zero number onward, cells are coerced to numbers (non-numeric cells
// count as missing), missing values are linearly interpolated between known
// neighbours and missing values after the last known one repeat it. Rows
// before that first non-zero row are left exactly as they were.
type Interpolate struct {
	Columns []string
}

// Apply implements transformer.Transformer.
func (t Interpolate) Apply(in records.Batch) records.Batch {
	out := in.Clone()
	for _, col := range resolve(out, t.Columns) {
		s := coerce(out.Rows, col)
		start := firstNonZero(s)
		if start < 0 {
			continue
		}
		interpolateFrom(s, start)
		s.store(out.Rows[start:], col, start)
	}
	return out
}

func firstNonZero(s series) int {
	for i := range s.vals {
		if s.known[i] && s.vals[i] != 0 {
			return i
		}
	}
	return -1
}

// interpolateFrom fills s in place from index start, which must be known.
func interpolateFrom(s series, start int) {
	prev := start
	for i := start + 1; i < len(s.vals); i++ {
		if s.known[i] {
			if gap := i - prev; gap > 1 {
				step := (s.vals[i] - s.vals[prev]) / float64(gap)
				for j := prev + 1; j < i; j++ {
					s.vals[j] = s.vals[prev] + step*float64(j-prev)
					s.known[j] = true
				}
			}
			prev = i
		}
	}
	for j := prev + 1; j < len(s.vals); j++ {
		s.vals[j] = s.vals[prev]
		s.known[j] = true
	}
}
