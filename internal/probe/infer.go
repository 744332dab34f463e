package probe

import (
	"strconv"
	"strings"
	"time"
)

// inferColumn classifies a column's values. temporal names the kind
// ("date" or "time") reported when a single layout parses every value; the
// layout is returned with it.
func inferColumn(values []string, layouts []string, temporal string) (kind, layout string) {
	nonEmpty := nonEmptyTrimmed(values)
	if len(nonEmpty) == 0 {
		return "empty", ""
	}
	if l := selectBestLayout(nonEmpty, layouts); l != "" && allMatch(nonEmpty, func(s string) bool {
		_, err := time.Parse(l, s)
		return err == nil
	}) {
		return temporal, l
	}
	if allMatch(nonEmpty, isNumber) {
		return "number", ""
	}
	return "text", ""
}

func nonEmptyTrimmed(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// isNumber accepts decimals with optional thousands separators.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	return err == nil
}

// selectBestLayout scores each layout by how many samples it parses and
// returns the highest scorer; ties go to the earlier layout. It returns ""
// when nothing parses.
func selectBestLayout(samples []string, layouts []string) string {
	best, bestScore := "", 0
	for _, lay := range layouts {
		score := 0
		for _, s := range samples {
			if _, err := time.Parse(lay, s); err == nil {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lay, score
		}
	}
	return best
}
