package merge

import (
	"github.com/zeebo/xxh3"

	"flowback/internal/transformer/builtin"
	"flowback/pkg/records"
)

// Result is the outcome of an upsert.
type Result struct {
	Rows []records.Record

	// Retained counts stored rows carried over unchanged.
	Retained int
	// Replaced counts incoming rows whose key was already stored.
	Replaced int
	// Inserted counts incoming rows with a new key.
	Inserted int
	// Collapsed counts rows dropped because another row in the same input
	// carried the same key.
	Collapsed int
}

// Upsert returns existing minus every row whose key appears in incoming,
// followed by incoming in arrival order. Both inputs are first reduced to
// one row per key, the winner chosen by policy (see builtin.DeDup; empty
// means keep-last). Rows without a timestamp are never collapsed or
// replaced; they are kept as they are. For timestamped rows, applying the
// same incoming rows twice yields the same result.
func Upsert(existing, incoming []records.Record, k Keyer, policy string) Result {
	dd := builtin.DeDup{
		KeyFunc: func(r records.Record) (string, bool) {
			key := k.KeyOf(r)
			if !key.Timed() {
				return "", false
			}
			b := key.Hash().Bytes()
			return string(b[:]), true
		},
		Policy: policy,
	}
	existing2 := dd.Records(existing)
	incoming2 := dd.Records(incoming)

	res := Result{
		Collapsed: len(existing) - len(existing2) + len(incoming) - len(incoming2),
	}

	newKeys := make(map[xxh3.Uint128]struct{}, len(incoming2))
	for _, r := range incoming2 {
		if key := k.KeyOf(r); key.Timed() {
			newKeys[key.Hash()] = struct{}{}
		}
	}

	res.Rows = make([]records.Record, 0, len(existing2)+len(incoming2))
	for _, r := range existing2 {
		if key := k.KeyOf(r); key.Timed() {
			if _, hit := newKeys[key.Hash()]; hit {
				res.Replaced++
				continue
			}
		}
		res.Rows = append(res.Rows, r)
		res.Retained++
	}
	res.Inserted = len(incoming2) - res.Replaced
	res.Rows = append(res.Rows, incoming2...)
	return res
}
