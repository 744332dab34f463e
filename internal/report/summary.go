package report

import (
	"log"
	"strings"
	"time"

	"flowback/internal/merge"
)

// FileSummary is the outcome of processing one input file.
type FileSummary struct {
	Source string
	Output string
	Err    error

	Rows         int
	DroppedWidth int
	Collapsed    int
	// Unmapped lists header labels without a canonical column.
	Unmapped []string
	// Missing lists the empty metadata fields; non-empty flags the file.
	Missing []string
}

// Flagged reports whether the file's metadata was incomplete.
func (f FileSummary) Flagged() bool { return len(f.Missing) > 0 }

// StageError records a failure after per-file processing. Earlier outputs
// stay on disk.
type StageError struct {
	Stage string
	Err   error
}

// Summary describes a whole run.
type Summary struct {
	RunID    string
	Job      string
	Started  time.Time
	Duration time.Duration

	Files []FileSummary

	MergedPath  string
	ProblemPath string
	FixSource   string

	// Merge is nil when the merge stage did not run to completion.
	Merge *merge.Result

	StageErrors []StageError
}

// Processed returns the files that produced output.
func (s *Summary) Processed() []FileSummary {
	var out []FileSummary
	for _, f := range s.Files {
		if f.Err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Failed returns the files that were skipped because of an error.
func (s *Summary) Failed() []FileSummary {
	var out []FileSummary
	for _, f := range s.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Flagged returns the base names of successfully processed files with
// incomplete metadata, in processing order.
func (s *Summary) Flagged() []string {
	var out []string
	for _, f := range s.Processed() {
		if f.Flagged() {
			out = append(out, f.Source)
		}
	}
	return out
}

// AddStageError records a failed stage.
func (s *Summary) AddStageError(stage string, err error) {
	if err == nil {
		return
	}
	s.StageErrors = append(s.StageErrors, StageError{Stage: stage, Err: err})
}

// Log writes the summary to the standard logger.
func (s *Summary) Log() {
	log.Printf("run %s: job=%s files=%d processed=%d failed=%d flagged=%d elapsed=%s",
		s.RunID, s.Job, len(s.Files), len(s.Processed()), len(s.Failed()), len(s.Flagged()),
		s.Duration.Truncate(time.Millisecond))

	for _, f := range s.Files {
		if f.Err != nil {
			log.Printf("  failed  %s: %v", f.Source, f.Err)
			continue
		}
		line := "  ok      " + f.Source
		if f.Flagged() {
			line = "  flagged " + f.Source + " (missing " + strings.Join(f.Missing, ", ") + ")"
		}
		log.Printf("%s rows=%d dropped_width=%d collapsed=%d", line, f.Rows, f.DroppedWidth, f.Collapsed)
		if len(f.Unmapped) > 0 {
			log.Printf("          unmapped: %s", strings.Join(f.Unmapped, " | "))
		}
	}

	if s.FixSource != "" {
		log.Printf("  fix source: %s", s.FixSource)
	}
	if m := s.Merge; m != nil {
		log.Printf("  merge: retained=%d replaced=%d inserted=%d collapsed=%d total=%d",
			m.Retained, m.Replaced, m.Inserted, m.Collapsed, len(m.Rows))
	}
	for _, e := range s.StageErrors {
		log.Printf("  stage %s failed: %v", e.Stage, e.Err)
	}
}
