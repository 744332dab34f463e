// Package merge folds a run's canonical rows into the persistent dataset.
// Rows are identified by (well identifier, date, time); the incoming rows
// win on collision and every other stored row is kept as is.
package merge

import (
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"flowback/internal/schema"
	"flowback/internal/transformer/builtin"
	"flowback/pkg/records"
)

// Key identifies one observation.
type Key struct {
	WellID string
	Date   string
	Time   string
}

// String joins the parts with a unit separator.
func (k Key) String() string {
	return k.WellID + "\x1f" + k.Date + "\x1f" + k.Time
}

// Hash returns the 128-bit hash used for set membership.
func (k Key) Hash() xxh3.Uint128 {
	return xxh3.HashString128(k.String())
}

// Keyer derives keys. Dates and times are parsed with the first matching
// layout and rendered as 2006-01-02 and 15:04:05, so "01/02/2024" and
// "2024-01-02" key equal. A value no layout accepts is keyed by its trimmed
// text.
type Keyer struct {
	DateLayouts []string
	TimeLayouts []string
}

// Timed reports whether the key carries a timestamp. Rows without one
// cannot be told apart and are never collapsed or replaced.
func (k Key) Timed() bool {
	return k.Date != "" || k.Time != ""
}

// KeyOf returns the key of r. The identifier is canonicalized with FixUWI.
// Reports that only carry the combined Date & Time column are keyed on it:
// a value that parses with a date layout, or a date layout followed by a
// time layout, splits into date and time; anything else is kept raw in
// Date.
func (k Keyer) KeyOf(r records.Record) Key {
	key := Key{
		WellID: builtin.FixUWI(r[schema.ColWellID]),
		Date:   canonicalTime(r[schema.ColDate], k.DateLayouts, "2006-01-02"),
		Time:   canonicalTime(r[schema.ColTime], k.TimeLayouts, "15:04:05"),
	}
	if !key.Timed() {
		key.Date, key.Time = k.splitStamp(r[schema.ColDateTime])
	}
	return key
}

func (k Keyer) splitStamp(v string) (string, string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ""
	}
	try := func(layout string) (string, string, bool) {
		t, err := time.Parse(layout, v)
		if err != nil {
			return "", "", false
		}
		return t.Format("2006-01-02"), t.Format("15:04:05"), true
	}
	for _, dl := range k.DateLayouts {
		if d, tm, ok := try(dl); ok {
			return d, tm
		}
		for _, tl := range k.TimeLayouts {
			if d, tm, ok := try(dl + " " + tl); ok {
				return d, tm
			}
		}
	}
	return v, ""
}

func canonicalTime(v string, layouts []string, out string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return t.Format(out)
		}
	}
	return v
}
