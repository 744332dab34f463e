package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"flowback/internal/storage"
	"flowback/pkg/records"
)

func newStore(t *testing.T) storage.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "flowback.db")
	s, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: dsn, Table: "flowback_dataset"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	if _, err := newStore(t).Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStore_ReplaceAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)

	cols := []string{"Unique Well Identifier", "Date", "Salinity (% or ppm)"}
	first := []records.Record{
		{"Unique Well Identifier": "B", "Date": "2024-01-02", "Salinity (% or ppm)": "3"},
		{"Unique Well Identifier": "A", "Date": "2024-01-01"},
	}
	if err := s.Replace(ctx, cols, first); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0]["Unique Well Identifier"] != "B" {
		t.Fatalf("row order lost: %#v", got)
	}
	if got[1]["Salinity (% or ppm)"] != "" {
		t.Fatalf("blank value = %q", got[1]["Salinity (% or ppm)"])
	}
	if len(got[0]) != 3 {
		t.Fatalf("row_order leaked into records: %#v", got[0])
	}

	// A replace with a different column list swaps the whole table.
	if err := s.Replace(ctx, []string{"Date"}, []records.Record{{"Date": "x"}}); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []records.Record{{"Date": "x"}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestStore_ReplaceCanceledKeepsOldData(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if err := s.Replace(context.Background(), []string{"Date"}, []records.Record{{"Date": "keep"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Replace(ctx, []string{"Date"}, []records.Record{{"Date": "lost"}}); err == nil {
		t.Fatalf("expected error from canceled Replace")
	}

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []records.Record{{"Date": "keep"}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "", "t"); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "x.db"), " "); err == nil {
		t.Fatalf("expected error for blank table")
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	got := insertSQL("main.fb", []string{"row_order", "Date"})
	if want := `INSERT INTO "main"."fb" ("row_order", "Date") VALUES (?, ?)`; got != want {
		t.Fatalf("insertSQL = %s", got)
	}
}
