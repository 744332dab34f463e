package csv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"flowback/internal/parser"
	pcsv "flowback/internal/parser/csv"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

var defaultOpt = parser.Options{Lookahead: 10, MinHeaderCells: 6, SkipUnitsRow: true}

func TestRead_Report(t *testing.T) {
	t.Parallel()

	const body = "\ufeffWell Name,Alpha 4-12\r\n" +
		"Unique Well ID: 100/04-12-034-05W5/00\r\n" +
		"Formation,Montney\r\n" +
		"\r\n" +
		"Date,Time,Static Press (kPa),Water Cum\r\n" +
		"yyyy-mm-dd,hh:mm,kPa,m3\r\n" +
		"2024-03-01,08:00,101.5,\r\n" +
		"2024-03-01,09:00,\"1,200\",4\r\n" +
		"short,row\r\n"
	p := writeFile(t, "alpha.csv", body)

	rb, err := pcsv.NewReader(defaultOpt).Read(context.Background(), p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rb.Preamble[0] != "Well Name,Alpha 4-12" {
		t.Fatalf("BOM not stripped or CR kept: %q", rb.Preamble[0])
	}
	wantHeader := []string{"Date", "Time", "Static Press (kPa)", "Water Cum"}
	if !reflect.DeepEqual(rb.Header, wantHeader) {
		t.Fatalf("header = %q", rb.Header)
	}
	wantRows := [][]string{
		{"2024-03-01", "08:00", "101.5", ""},
		{"2024-03-01", "09:00", "1,200", "4"},
	}
	if !reflect.DeepEqual(rb.Rows, wantRows) {
		t.Fatalf("rows = %q", rb.Rows)
	}
	if rb.DroppedRows != 1 {
		t.Fatalf("DroppedRows = %d, want 1", rb.DroppedRows)
	}
}

func TestRead_TabDelimited(t *testing.T) {
	t.Parallel()

	const body = "Well Name\tBeta\nDate\tTime\tpH\n\t\t\n2024-01-01\t10:00\t7\n2024-01-01\t11:00\t\n"
	p := writeFile(t, "beta.csv", body)

	opt := defaultOpt
	opt.SkipUnitsRow = false
	rb, err := pcsv.NewReader(opt).Read(context.Background(), p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	// A line holding only delimiters is blank and skipped.
	if len(rb.Rows) != 2 || rb.Rows[1][1] != "11:00" || rb.Rows[1][2] != "" {
		t.Fatalf("rows = %q", rb.Rows)
	}
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	r := pcsv.NewReader(defaultOpt)

	noHeader := writeFile(t, "x.csv", "a,b\nc,d\n")
	if _, err := r.Read(context.Background(), noHeader); !errors.Is(err, parser.ErrHeaderNotFound) {
		t.Fatalf("want ErrHeaderNotFound, got %v", err)
	}

	onlyUnits := writeFile(t, "y.csv", "Date,Time\nd,t\n")
	if _, err := r.Read(context.Background(), onlyUnits); !errors.Is(err, parser.ErrNoDataRows) {
		t.Fatalf("want ErrNoDataRows, got %v", err)
	}

	if _, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Read(ctx, onlyUnits); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
