package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalOpen_ReadsReport(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "report.csv")
	const payload = "Well Name,Alpha 1\nDate,Time"
	if err := os.WriteFile(p, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rc, err := NewLocal(p).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("content = %q, want %q", got, payload)
	}
}

func TestLocalOpen_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "present.csv")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		path string
		want error
	}{
		{"missing file", context.Background(), filepath.Join(dir, "missing.csv"), os.ErrNotExist},
		{"canceled before open", canceled, present, context.Canceled},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(c.path).Open(c.ctx)
			if !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
			if rc != nil {
				_ = rc.Close()
				t.Fatalf("got a reader alongside an error")
			}
		})
	}
}

func TestLocalPathAndExt(t *testing.T) {
	t.Parallel()

	l := NewLocal(filepath.Join("in", "Report.XLSX"))
	if l.Path() != filepath.Join("in", "Report.XLSX") {
		t.Fatalf("Path = %q", l.Path())
	}
	if l.Ext() != ".xlsx" {
		t.Fatalf("Ext = %q, want .xlsx", l.Ext())
	}
}
