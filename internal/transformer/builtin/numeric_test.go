package builtin

import (
	"reflect"
	"testing"

	"flowback/pkg/records"
)

func column(b records.Batch, col string) []string {
	out := make([]string, len(b.Rows))
	for i, r := range b.Rows {
		out[i] = r[col]
	}
	return out
}

func batchOf(col string, vals ...string) records.Batch {
	b := records.Batch{Columns: []string{col}}
	for _, v := range vals {
		b.Rows = append(b.Rows, records.Record{col: v})
	}
	return b
}

func wantColumn(t *testing.T, b records.Batch, col string, want []string) {
	t.Helper()
	if got := column(b, col); !reflect.DeepEqual(got, want) {
		t.Fatalf("%s = %q, want %q", col, got, want)
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{" 12.5 ", 12.5, true},
		{"1,200", 1200, true},
		{"-3", -3, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumber(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	const col = "Static Press (kPa)"
	in := batchOf(col, "", "0", "abc", "10.0", "", "", "40", "", "x")

	out := Interpolate{Columns: []string{" static press (KPA) "}}.Apply(in)

	wantColumn(t, out, col, []string{"", "0", "abc", "10", "20", "30", "40", "40", "40"})
	if in.Rows[3][col] != "10.0" {
		t.Fatalf("input modified: %q", in.Rows[3][col])
	}
}

func TestInterpolate_NothingToAnchor(t *testing.T) {
	t.Parallel()

	in := batchOf("pH", "0", "", "0.0", "junk")
	out := Interpolate{Columns: []string{"pH", "Missing Column"}}.Apply(in)
	wantColumn(t, out, "pH", column(in, "pH"))
}

func TestInterpolate_NeverTouchesRowsBeforeFirstNonZero(t *testing.T) {
	t.Parallel()

	vals := []string{"0", "", "0", "", "5", "", "9"}
	out := Interpolate{Columns: []string{"v"}}.Apply(batchOf("v", vals...))
	wantColumn(t, out, "v", []string{"0", "", "0", "", "5", "7", "9"})
}

var cumCols = []string{"Total Gas Produced (e3m3)", "Condi Cum (m3)", "Water Cum (m3)"}

func cumBatch(rows ...[3]string) records.Batch {
	b := records.Batch{Columns: append([]string{"Time"}, cumCols...)}
	for i, row := range rows {
		r := records.Record{"Time": string(rune('a' + i))}
		for j, c := range cumCols {
			r[c] = row[j]
		}
		b.Rows = append(b.Rows, r)
	}
	return b
}

func TestCollapseCumulative(t *testing.T) {
	t.Parallel()

	in := cumBatch([3]string{"100", "50", "10"}, [3]string{"100", "50", "10"}, [3]string{"100", "50", "11"})
	out := CollapseCumulative{Columns: cumCols}.Apply(in)
	wantColumn(t, out, "Time", []string{"a", "c"})
}

func TestCollapseCumulative_ComparesNumerically(t *testing.T) {
	t.Parallel()

	in := cumBatch(
		[3]string{"100", "50", "10"},
		[3]string{"100.0", "50", "1e1"},
		[3]string{"", "50", "10"},
		[3]string{"", "50", "10"},
	)
	out := CollapseCumulative{Columns: cumCols}.Apply(in)
	// Missing values never compare equal.
	wantColumn(t, out, "Time", []string{"a", "c", "d"})
}

func TestCollapseCumulative_RequiresAllThree(t *testing.T) {
	t.Parallel()

	in := cumBatch([3]string{"1", "1", "1"}, [3]string{"1", "1", "1"})
	in.Columns = in.Columns[:3]
	out := CollapseCumulative{Columns: cumCols}.Apply(in)
	if out.Len() != 2 {
		t.Fatalf("Len = %d, want 2", out.Len())
	}
}

func TestFillQuality(t *testing.T) {
	t.Parallel()

	in := batchOf("pH", "", "-1", "7", "0", "", "7.50", "")
	out := FillQuality{Columns: []string{"PH"}}.Apply(in)
	wantColumn(t, out, "pH", []string{"7", "7", "7", "7", "7", "7.5", "7.5"})

	empty := FillQuality{Columns: []string{"pH"}}.Apply(batchOf("pH", "", "0", "n/a"))
	wantColumn(t, empty, "pH", []string{"", "", ""})
}
