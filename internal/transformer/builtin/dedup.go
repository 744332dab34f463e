package builtin

import (
	"fmt"
	"strings"

	"flowback/pkg/records"
)

// Duplicate-resolution policies understood by DeDup.
const (
	KeepLast     = "keep-last"
	KeepFirst    = "keep-first"
	MostComplete = "most-complete"
)

// Policies lists the accepted Policy values, default first.
var Policies = []string{KeepLast, KeepFirst, MostComplete}

// DeDup collapses records that share a key and chooses a winner according
// to Policy:
//
//   - "keep-last"    : the latest occurrence (default)
//   - "keep-first"   : the earliest occurrence
//   - "most-complete": the record with the most non-blank fields; ties
//     break by keep-last
//
// Survivors keep their input order. Records KeyFunc cannot key are never
// collapsed.
type DeDup struct {
	// KeyFunc derives the key. ok=false marks a record that cannot be keyed.
	KeyFunc func(records.Record) (key string, ok bool)

	// Policy selects the winner among duplicates.
	Policy string
}

// CheckPolicy returns an error for a policy DeDup does not know. Empty is
// accepted and means keep-last.
func CheckPolicy(p string) error {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return nil
	}
	for _, known := range Policies {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown dedup policy %q (want one of %s)", p, strings.Join(Policies, ", "))
}

// Records de-duplicates in. The returned records are the input records
// themselves, not copies.
func (d DeDup) Records(in []records.Record) []records.Record {
	if len(in) == 0 || d.KeyFunc == nil {
		return append([]records.Record(nil), in...)
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))

	type slot struct {
		index int
		score int
	}
	winners := make(map[string]slot, len(in))
	keep := make([]bool, len(in))

	for i, r := range in {
		key, ok := d.KeyFunc(r)
		if !ok {
			keep[i] = true
			continue
		}
		prev, exists := winners[key]
		switch policy {
		case KeepFirst:
			if exists {
				continue
			}
			winners[key] = slot{index: i}
		case MostComplete:
			s := slot{index: i, score: filled(r)}
			if exists && s.score < prev.score {
				continue
			}
			winners[key] = s
		default:
			winners[key] = slot{index: i}
		}
		if exists {
			keep[prev.index] = false
		}
		keep[i] = true
	}

	out := make([]records.Record, 0, len(winners))
	for i, r := range in {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

func filled(r records.Record) int {
	n := 0
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
