// Package builtin contains the reusable batch transformers of the report
// pipeline: numeric cleansing, identifier canonicalization, metadata
// attachment and de-duplication.
package builtin

import (
	"math"
	"strconv"
	"strings"

	"flowback/pkg/records"
)

// parseNumber coerces a cell to a float. Blank, non-numeric, NaN and
// infinite values are missing. Thousands separators are accepted.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if !strings.Contains(s, ",") {
			return 0, false
		}
		v, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// series is one coerced column.
type series struct {
	vals  []float64
	known []bool
}

func coerce(rows []records.Record, col string) series {
	s := series{vals: make([]float64, len(rows)), known: make([]bool, len(rows))}
	for i, r := range rows {
		s.vals[i], s.known[i] = parseNumber(r[col])
	}
	return s
}

// store writes s[offset:] back into rows; missing values become blank.
func (s series) store(rows []records.Record, col string, offset int) {
	for i, r := range rows {
		if s.known[offset+i] {
			r[col] = formatNumber(s.vals[offset+i])
		} else {
			r[col] = ""
		}
	}
}

// resolve maps the requested column names to the names the batch uses,
// skipping names the batch does not carry and duplicates.
func resolve(b records.Batch, columns []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range columns {
		name, ok := b.ColumnName(c)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
