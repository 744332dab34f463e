package builtin

import "flowback/pkg/records"

// FillQuality cleans sparse lab readings: values are coerced to numbers,
// non-positive readings count as missing, then gaps are forward filled and
// any leading gap is back filled from the first reading.
type FillQuality struct {
	Columns []string
}

// Apply implements transformer.Transformer.
func (t FillQuality) Apply(in records.Batch) records.Batch {
	out := in.Clone()
	for _, col := range resolve(out, t.Columns) {
		s := coerce(out.Rows, col)
		for i := range s.vals {
			if s.known[i] && s.vals[i] <= 0 {
				s.known[i] = false
			}
		}
		fill(s)
		s.store(out.Rows, col, 0)
	}
	return out
}

func fill(s series) {
	first := -1
	for i := range s.vals {
		if s.known[i] {
			if first < 0 {
				first = i
			}
			continue
		}
		if i > 0 && s.known[i-1] {
			s.vals[i], s.known[i] = s.vals[i-1], true
		}
	}
	for i := 0; i < first; i++ {
		s.vals[i], s.known[i] = s.vals[first], true
	}
}
