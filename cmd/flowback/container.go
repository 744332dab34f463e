// Package main wires a flowback run end to end: discover reports, run the
// per-file pipeline concurrently, write the run artifacts, then merge the
// run into the persistent dataset under an advisory lock. Storage backends
// are reached only through the storage registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flowback/internal/config"
	"flowback/internal/datasource/file"
	"flowback/internal/merge"
	"flowback/internal/metadata"
	"flowback/internal/metrics"
	"flowback/internal/parser"
	"flowback/internal/parser/reader"
	"flowback/internal/report"
	"flowback/internal/schema"
	"flowback/internal/storage"
	"flowback/internal/storage/csvfile"
	"flowback/internal/transformer"
	"flowback/internal/transformer/builtin"
	"flowback/pkg/records"
)

// Test seams.
var (
	newStoreFn = storage.New
	nowFn      = time.Now
)

// fileResult is the per-file outcome: a canonical batch or an error, never
// both.
type fileResult struct {
	batch   records.Batch
	summary report.FileSummary
}

// pipeline holds everything the per-file stages need. It is built once per
// run and shared read-only by the workers.
type pipeline struct {
	cfg      config.Config
	columns  []string
	synonyms *schema.Synonyms
	opt      parser.Options
}

// run executes one flowback run. Only startup failures (bad synonyms,
// unreadable input root, output dir) are returned as errors; per-file and
// per-stage failures are recorded in the summary.
func run(ctx context.Context, cfg config.Config) (*report.Summary, error) {
	sum := &report.Summary{
		RunID:   uuid.NewString(),
		Job:     cfg.Job,
		Started: nowFn(),
	}
	defer func() { sum.Duration = nowFn().Sub(sum.Started) }()

	syn, err := schema.NewSynonyms(cfg.Schema.Columns, cfg.Synonyms())
	if err != nil {
		return nil, fmt.Errorf("synonyms: %w", err)
	}
	p := &pipeline{
		cfg:      cfg,
		columns:  cfg.Schema.Columns,
		synonyms: syn,
		opt:      parser.OptionsFrom(cfg.Parser.Options, true),
	}

	files, err := discoverInputs(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	log.Printf("run %s: %d input file(s) under %s", sum.RunID, len(files), cfg.Input.Root)

	results := p.processAll(ctx, files)

	batches := make([]records.Batch, 0, len(results))
	for _, r := range results {
		sum.Files = append(sum.Files, r.summary)
		if r.summary.Err != nil {
			metrics.RecordFile(cfg.Job, "failed")
			continue
		}
		metrics.RecordFile(cfg.Job, "processed")
		if r.summary.Flagged() {
			metrics.RecordFile(cfg.Job, "flagged")
		}
		batches = append(batches, r.batch)
	}

	problemPath := filepath.Join(cfg.Output.Dir, cfg.Output.ProblemReport)
	if wrote, err := report.WriteProblems(problemPath, sum.Flagged()); err != nil {
		sum.AddStageError("problem report", err)
	} else if wrote {
		sum.ProblemPath = problemPath
	}

	runBatch := schema.Concat(p.columns, batches...)
	mergedPath := filepath.Join(cfg.Output.Dir, cfg.Output.MergedName)
	start := nowFn()
	err = report.WriteMerged(ctx, mergedPath, runBatch)
	metrics.RecordStep(cfg.Job, "merged_output", err, nowFn().Sub(start))
	if err != nil {
		sum.AddStageError("merged output", err)
	} else {
		sum.MergedPath = mergedPath
	}

	if cfg.Merge.FixDir != "" {
		fix, path, err := p.readFixSource(ctx)
		if err != nil {
			sum.AddStageError("fix source", err)
		} else {
			sum.FixSource = path
			runBatch = schema.Concat(p.columns, runBatch, fix)
		}
	}

	if err := ctx.Err(); err != nil {
		sum.AddStageError("merge", err)
		return sum, nil
	}
	start = nowFn()
	res, err := p.mergeDataset(ctx, runBatch)
	metrics.RecordStep(cfg.Job, "merge", err, nowFn().Sub(start))
	if err != nil {
		sum.AddStageError("merge", err)
	} else {
		sum.Merge = &res
		metrics.RecordRows(cfg.Job, "merged", int64(res.Inserted+res.Replaced))
	}
	return sum, nil
}

// discoverInputs lists the run's input files, leaving out artifacts that a
// previous run wrote into the same directory.
func discoverInputs(cfg config.Config) ([]string, error) {
	files, err := file.Discover(cfg.Input.Root, cfg.Input.Patterns, cfg.Input.ProcessedPrefix)
	if err != nil {
		return nil, err
	}
	skip := map[string]bool{
		filepath.Clean(filepath.Join(cfg.Output.Dir, cfg.Output.MergedName)):    true,
		filepath.Clean(filepath.Join(cfg.Output.Dir, cfg.Output.ProblemReport)): true,
	}
	if cfg.Storage.Kind == "csv" {
		skip[filepath.Clean(cfg.Storage.DSN)] = true
	}
	out := files[:0]
	for _, f := range files {
		if !skip[filepath.Clean(f)] {
			out = append(out, f)
		}
	}
	return out, nil
}

// processAll runs the per-file pipeline on a bounded worker group. Results
// are stored by index so their order matches discovery order.
func (p *pipeline) processAll(ctx context.Context, files []string) []fileResult {
	workers := p.cfg.Runtime.FileWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]fileResult, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			results[i] = p.processFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// processFile reads one report and turns it into a canonical batch, then
// writes its per-file output. Every failure is captured in the result.
func (p *pipeline) processFile(ctx context.Context, path string) fileResult {
	res := fileResult{summary: report.FileSummary{Source: filepath.Base(path)}}
	fail := func(err error) fileResult {
		res.summary.Err = err
		log.Printf("file %s: %v", res.summary.Source, err)
		return res
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	start := nowFn()
	raw, err := p.read(ctx, path)
	metrics.RecordStep(p.cfg.Job, "parse", err, nowFn().Sub(start))
	if err != nil {
		return fail(err)
	}
	res.summary.DroppedWidth = raw.DroppedRows
	metrics.RecordRows(p.cfg.Job, "parsed", int64(len(raw.Rows)))
	metrics.RecordRows(p.cfg.Job, "dropped_width", int64(raw.DroppedRows))

	meta := metadata.Extract(raw.Preamble, p.opt.Lookahead)
	res.summary.Missing = meta.Missing()

	start = nowFn()
	b, collapsed, unmapped := p.canonical(raw, meta)
	metrics.RecordStep(p.cfg.Job, "cleanse", nil, nowFn().Sub(start))
	res.summary.Unmapped = unmapped
	res.summary.Collapsed = collapsed
	res.summary.Rows = b.Len()
	metrics.RecordRows(p.cfg.Job, "collapsed", int64(collapsed))

	out, err := report.WriteFileOutput(ctx, p.cfg.Output.Dir, p.cfg.Input.ProcessedPrefix, path, b)
	if err != nil {
		return fail(err)
	}
	res.summary.Output = out
	res.batch = b
	return res
}

func (p *pipeline) read(ctx context.Context, path string) (records.RawBatch, error) {
	r, err := reader.For(path, p.opt)
	if err != nil {
		return records.RawBatch{}, err
	}
	return r.Read(ctx, path)
}

// canonical maps, cleanses and projects one file. It returns the batch, the
// number of rows dropped as cumulative duplicates and the unmapped labels.
func (p *pipeline) canonical(raw records.RawBatch, meta records.Metadata) (records.Batch, int, []string) {
	m := p.synonyms.Map(raw)
	b := builtin.Interpolate{Columns: p.cfg.Cleanse.Interpolate}.Apply(m.Batch)

	before := b.Len()
	b = builtin.CollapseCumulative{Columns: p.cfg.Cleanse.Cumulative}.Apply(b)
	collapsed := before - b.Len()

	b = transformer.Chain{
		builtin.FillQuality{Columns: p.cfg.Cleanse.Quality},
		builtin.AttachMetadata{Meta: meta, Source: raw.Source},
		builtin.CanonicalizeUWI{},
	}.Apply(b)
	return schema.Project(b, p.columns), collapsed, m.Unmapped
}

// readFixSource loads the first CSV of the fix directory, excluding the
// dataset itself, and conforms it to the column list.
func (p *pipeline) readFixSource(ctx context.Context) (records.Batch, string, error) {
	var exclude []string
	if p.cfg.Storage.Kind == "csv" {
		exclude = append(exclude, p.cfg.Storage.DSN)
	}
	path, err := file.FirstMatch(p.cfg.Merge.FixDir, "*.csv", exclude...)
	if err != nil {
		return records.Batch{}, "", err
	}
	b, err := csvfile.ReadFile(ctx, path)
	if err != nil {
		return records.Batch{}, "", err
	}

	raw := records.RawBatch{Source: path, Header: b.Columns, Rows: make([][]string, len(b.Rows))}
	for i, r := range b.Rows {
		raw.Rows[i] = r.Values(b.Columns)
	}
	m := p.synonyms.Map(raw)
	if len(m.Unmapped) > 0 {
		log.Printf("fix: %s: unmapped columns dropped: %v", filepath.Base(path), m.Unmapped)
	}
	fixed := builtin.CanonicalizeUWI{}.Apply(m.Batch)
	log.Printf("fix: %s rows=%d", filepath.Base(path), fixed.Len())
	return schema.Project(fixed, p.columns), path, nil
}

// mergeDataset opens the configured store and upserts the run batch.
func (p *pipeline) mergeDataset(ctx context.Context, in records.Batch) (merge.Result, error) {
	st, err := newStoreFn(ctx, storage.Config{
		Kind:  p.cfg.Storage.Kind,
		DSN:   p.cfg.Storage.DSN,
		Table: p.cfg.Storage.Table,
	})
	if err != nil {
		return merge.Result{}, fmt.Errorf("init store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("store close: %v", err)
		}
	}()

	if dir := filepath.Dir(p.cfg.Storage.LockPath); p.cfg.Storage.LockPath != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return merge.Result{}, fmt.Errorf("lock dir: %w", err)
		}
	}
	e := &merge.Engine{
		Store:    st,
		LockPath: p.cfg.Storage.LockPath,
		Columns:  p.columns,
		Synonyms: p.synonyms,
		Keyer: merge.Keyer{
			DateLayouts: p.cfg.Merge.DateLayouts,
			TimeLayouts: p.cfg.Merge.TimeLayouts,
		},
		Policy: p.cfg.Merge.DedupPolicy,
	}
	res, err := e.Run(ctx, in)
	if errors.Is(err, context.Canceled) {
		log.Printf("merge: canceled, dataset left unchanged")
	}
	return res, err
}
