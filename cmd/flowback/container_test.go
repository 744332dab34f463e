package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowback/internal/config"
	"flowback/internal/parser"
	"flowback/internal/schema"
	"flowback/internal/storage/csvfile"
	"flowback/pkg/records"

	_ "flowback/internal/storage/all"
)

const reportA = "Well Name,Alpha 1\n" +
	"Unique Well ID,100/04-01-079-12W6\n" +
	"Formation,Montney\n" +
	"\n" +
	"Date,Time,Static Press (kPa),Water Cum (m3),Condi Cum (m3),Total Gas Produced (e3m3),pH,Mystery\n" +
	",,kPa,m3,m3,e3m3,,\n" +
	"2024-01-01,06:00,100,1,1,1,7,x\n" +
	"2024-01-01,07:00,,2,2,2,7,x\n" +
	"2024-01-01,08:00,120,3,3,3,7,x\n"

const reportB = "Well Name: Beta 2\n" +
	"UWI: 100/02-07-050-20W4/0\n" +
	"Date,Time,static_press,pH\n" +
	"units,,,\n" +
	"2024-01-01,06:00,90,6.5\n"

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func testConfig(root string) config.Config {
	fix := filepath.Join(root, "fix")
	return config.ApplyDefaults(config.Config{
		Input:   config.Input{Root: filepath.Join(root, "in")},
		Merge:   config.Merge{FixDir: fix},
		Storage: config.Storage{DSN: filepath.Join(fix, "Flowback_database.csv")},
		Runtime: config.Runtime{FileWorkers: 2},
	})
}

func byTime(rows []records.Record) map[string]records.Record {
	out := map[string]records.Record{}
	for _, r := range rows {
		out[r[schema.ColWellID]+" "+r[schema.ColTime]] = r
	}
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFiles(t, cfg.Input.Root, map[string]string{
		"a.csv": reportA,
		"b.csv": reportB,
		"c.xls": "legacy binary workbook",
	})
	require.NoError(t, os.MkdirAll(cfg.Merge.FixDir, 0o755))

	ctx := context.Background()
	sum, err := run(ctx, cfg)
	require.NoError(t, err)

	// Per-file isolation: the unsupported file fails, the others succeed.
	require.Len(t, sum.Files, 3)
	require.Len(t, sum.Failed(), 1)
	assert.Equal(t, "c.xls", sum.Failed()[0].Source)
	assert.True(t, errors.Is(sum.Failed()[0].Err, parser.ErrUnsupportedFormat))

	// b.csv has no formation and is flagged but still processed.
	assert.Equal(t, []string{"b.csv"}, sum.Flagged())
	problems, err := os.ReadFile(filepath.Join(cfg.Input.Root, "problem_files.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b.csv\n", string(problems))
	assert.Equal(t, []string{"Mystery"}, sum.Files[0].Unmapped)

	// Per-file outputs exist.
	for _, name := range []string{"processed_a.csv", "processed_b.csv"} {
		_, err := os.Stat(filepath.Join(cfg.Input.Root, name))
		require.NoError(t, err, name)
	}

	// Both naming variants land in the same canonical column.
	merged, err := csvfile.ReadFile(ctx, filepath.Join(cfg.Input.Root, "Skyline_merged.csv"))
	require.NoError(t, err)
	assert.Equal(t, schema.Canonical, merged.Columns)
	require.Len(t, merged.Rows, 4)

	rows := byTime(merged.Rows)
	a7 := rows["100/04-01-079-12W6/00 07:00"]
	require.NotNil(t, a7)
	assert.Equal(t, "110", a7["Static Press (kPa)"], "gap interpolated")
	assert.Equal(t, "Alpha 1", a7[schema.ColWellName])
	assert.Equal(t, "Montney", a7[schema.ColFormation])
	assert.Equal(t, "a.csv", a7[schema.ColSourceFile])

	b6 := rows["100/02-07-050-20W4/00 06:00"]
	require.NotNil(t, b6)
	assert.Equal(t, "90", b6["Static Press (kPa)"])
	assert.Equal(t, "6.5", b6["pH"])
	assert.Equal(t, "", b6[schema.ColFormation])

	// The empty fix dir is reported, the upsert still runs.
	require.Len(t, sum.StageErrors, 1)
	assert.Equal(t, "fix source", sum.StageErrors[0].Stage)
	require.NotNil(t, sum.Merge)
	assert.Equal(t, 4, sum.Merge.Inserted)

	db, err := csvfile.ReadFile(ctx, cfg.Storage.DSN)
	require.NoError(t, err)
	assert.Len(t, db.Rows, 4)

	// A second run over the same inputs leaves the dataset unchanged.
	sum2, err := run(ctx, cfg)
	require.NoError(t, err)
	assert.Len(t, sum2.Files, 3, "previous outputs must not be picked up as inputs")
	require.NotNil(t, sum2.Merge)
	assert.Equal(t, 4, sum2.Merge.Replaced)
	assert.Equal(t, 0, sum2.Merge.Inserted)

	db2, err := csvfile.ReadFile(ctx, cfg.Storage.DSN)
	require.NoError(t, err)
	assert.Equal(t, db, db2)
}

func TestRun_FixSourceAndExistingDataset(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFiles(t, cfg.Input.Root, map[string]string{"b.csv": reportB})
	writeFiles(t, cfg.Merge.FixDir, map[string]string{
		"Flowback_database.csv": "Unique Well Identifier,Date,Time,static_press\n" +
			"100/02-07-050-20W4/00,2024-01-01,06:00,1\n" +
			"OLD/00,2023-12-31,23:00,5\n",
		"manual_fix.csv": "UWI,Date,Time,pH\n" +
			"X/1,02/01/2024,00:00,8\n",
	})

	ctx := context.Background()
	sum, err := run(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(t, sum.StageErrors)
	assert.Equal(t, filepath.Join(cfg.Merge.FixDir, "manual_fix.csv"), sum.FixSource)

	require.NotNil(t, sum.Merge)
	assert.Equal(t, 1, sum.Merge.Retained)
	assert.Equal(t, 1, sum.Merge.Replaced)
	assert.Equal(t, 1, sum.Merge.Inserted)

	db, err := csvfile.ReadFile(ctx, cfg.Storage.DSN)
	require.NoError(t, err)
	assert.Equal(t, schema.Canonical, db.Columns)
	require.Len(t, db.Rows, 3)

	rows := byTime(db.Rows)
	assert.Equal(t, "5", rows["OLD/00 23:00"]["Static Press (kPa)"], "legacy header conformed")
	assert.Equal(t, "90", rows["100/02-07-050-20W4/00 06:00"]["Static Press (kPa)"], "run row wins")
	assert.Equal(t, "8", rows["X/10 00:00"]["pH"], "fix source UWI canonicalized")

	// b.csv has no formation.
	_, err = os.Stat(filepath.Join(cfg.Input.Root, "problem_files.txt"))
	require.NoError(t, err)
}

func TestRun_MissingInputRootIsFatal(t *testing.T) {
	cfg := testConfig(t.TempDir())
	_, err := run(context.Background(), cfg)
	require.Error(t, err)
}

func TestRun_CanceledSkipsMerge(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFiles(t, cfg.Input.Root, map[string]string{"b.csv": reportB})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := run(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, sum.Failed(), 1)
	assert.ErrorIs(t, sum.Failed()[0].Err, context.Canceled)
	assert.Nil(t, sum.Merge)

	_, err = os.Stat(cfg.Storage.DSN)
	assert.True(t, errors.Is(err, os.ErrNotExist), "dataset must not be written after cancel")
}

func TestRun_SameStemKeepsBothOutputs(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.Input.Patterns = []string{"*.csv", "*.txt"}
	writeFiles(t, cfg.Input.Root, map[string]string{
		"a.csv": reportA,
		"a.txt": reportB,
	})

	sum, err := run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, sum.Processed(), 2)

	outputs := map[string]string{}
	for _, f := range sum.Files {
		outputs[f.Source] = f.Output
	}
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "processed_a.csv"), outputs["a.csv"])
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "processed_a.txt.csv"), outputs["a.txt"])

	for src, out := range outputs {
		b, err := csvfile.ReadFile(context.Background(), out)
		require.NoError(t, err, out)
		require.NotEmpty(t, b.Rows, out)
		for _, r := range b.Rows {
			assert.Equal(t, src, r[schema.ColSourceFile], out)
		}
	}
}

func TestDiscoverInputs_SkipsRunArtifacts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := testConfig(root)
	cfg.Storage.DSN = filepath.Join(cfg.Input.Root, "Flowback_database.csv")
	writeFiles(t, cfg.Input.Root, map[string]string{
		"a.csv":                 "",
		"processed_a.csv":       "",
		"Skyline_merged.csv":    "",
		"Flowback_database.csv": "",
		"notes.txt":             "",
	})

	got, err := discoverInputs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(cfg.Input.Root, "a.csv")}, got)
}
