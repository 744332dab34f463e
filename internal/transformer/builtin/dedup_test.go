package builtin

import (
	"reflect"
	"strings"
	"testing"

	"flowback/pkg/records"
)

func byWellAndDate(r records.Record) (string, bool) {
	if r["date"] == "" {
		return "", false
	}
	return r["uwi"] + "\x1f" + r["date"], true
}

func TestDeDupPolicies(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"uwi": "A", "date": "2024-01-01", "ph": ""},
		{"uwi": "A", "date": "2024-01-01", "ph": "7", "sal": "3"},
		{"uwi": "B", "date": "2024-01-01", "ph": "6"},
		{"uwi": "A", "date": "2024-01-01", "ph": "8"},
	}
	cases := []struct {
		policy string
		want   []records.Record
	}{
		{KeepFirst, []records.Record{in[0], in[2]}},
		{KeepLast, []records.Record{in[2], in[3]}},
		{"", []records.Record{in[2], in[3]}},
		{" Most-Complete ", []records.Record{in[1], in[2]}},
	}
	for _, c := range cases {
		d := DeDup{KeyFunc: byWellAndDate, Policy: c.policy}
		if got := d.Records(in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("%q: got %#v want %#v", c.policy, got, c.want)
		}
	}
}

func TestDeDupUnkeyedRecordsStayInPlace(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"uwi": "A", "date": "1", "ph": "1"},
		{"uwi": "A", "date": "", "ph": "x"},
		{"uwi": "A", "date": "", "ph": "y"},
		{"uwi": "A", "date": "1", "ph": "2"},
	}
	got := DeDup{KeyFunc: byWellAndDate}.Records(in)
	want := []records.Record{in[1], in[2], in[3]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestDeDupWithoutKeyFunc(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"a": "1"}, {"a": "1"}}
	got := DeDup{}.Records(in)
	if len(got) != 2 {
		t.Fatalf("records without a key func must pass through, got %d", len(got))
	}
	got[0] = nil
	if in[0] == nil {
		t.Fatalf("result must not alias the input slice")
	}
}

func TestCheckPolicy(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"", "keep-last", "KEEP-FIRST", "most-complete"} {
		if err := CheckPolicy(p); err != nil {
			t.Errorf("CheckPolicy(%q) = %v", p, err)
		}
	}
	if err := CheckPolicy("newest"); err == nil || !strings.Contains(err.Error(), "keep-last") {
		t.Fatalf("CheckPolicy(newest) = %v", err)
	}
}
