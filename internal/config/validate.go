package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"flowback/internal/schema"
	"flowback/internal/transformer/builtin"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the JSON config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// KnownStorageKinds are the backends compiled into the binary. Other kinds
// only warn so that new backends can be registered without touching config.
var KnownStorageKinds = []string{"csv", "sqlite", "postgres"}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate performs static validation of a Config (after defaults). It does
// not mutate c; callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     issuePath(fe.Namespace()),
					Message:  fmt.Sprintf("failed %q constraint", fe.Tag()),
				})
			}
		} else {
			issues = append(issues, Issue{Severity: SeverityError, Path: "", Message: err.Error()})
		}
	}

	issues = append(issues, validatePatterns(c.Input)...)
	issues = append(issues, validateSchema(c)...)
	issues = append(issues, validateCleanse(c.Cleanse, c.Schema.Columns)...)
	issues = append(issues, validateStorage(c.Storage)...)

	if err := builtin.CheckPolicy(c.Merge.DedupPolicy); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "merge.dedup_policy",
			Message:  err.Error(),
		})
	}

	if c.Output.Dir != "" && c.Merge.FixDir != "" && filepath.Clean(c.Output.Dir) == filepath.Clean(c.Merge.FixDir) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "merge.fix_dir",
			Message:  "fix_dir equals output.dir; the merged run output may be picked up as the fix source",
		})
	}
	return issues
}

// issuePath turns "Config.storage.kind" into "storage.kind".
func issuePath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validatePatterns(in Input) []Issue {
	var issues []Issue
	for i, p := range in.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("input.patterns[%d]", i),
				Message:  fmt.Sprintf("bad glob %q: %v", p, err),
			})
		}
	}
	return issues
}

func validateSchema(c Config) []Issue {
	var issues []Issue
	s := c.Schema
	seen := map[string]bool{}
	for i, col := range s.Columns {
		if strings.TrimSpace(col) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("schema.columns[%d]", i),
				Message:  "column name must not be empty",
			})
			continue
		}
		if seen[col] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("schema.columns[%d]", i),
				Message:  fmt.Sprintf("duplicate column %q", col),
			})
		}
		seen[col] = true
	}
	for _, required := range []string{schema.ColWellID, schema.ColDate, schema.ColTime} {
		if len(s.Columns) > 0 && !seen[required] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "schema.columns",
				Message:  fmt.Sprintf("merge key column %q missing from the column list", required),
			})
		}
	}

	if _, err := schema.NewSynonyms(s.Columns, c.Synonyms()); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.synonyms",
			Message:  err.Error(),
		})
	}
	return issues
}

func validateCleanse(c Cleanse, columns []string) []Issue {
	var issues []Issue
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[strings.ToLower(strings.TrimSpace(col))] = true
	}
	check := func(path string, cols []string) {
		for i, col := range cols {
			if !known[strings.ToLower(strings.TrimSpace(col))] {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("cleanse.%s[%d]", path, i),
					Message:  fmt.Sprintf("column %q is not in the column list and will never match", col),
				})
			}
		}
	}
	check("interpolate", c.Interpolate)
	check("cumulative", c.Cumulative)
	check("quality", c.Quality)

	if len(c.Cumulative) != 0 && len(c.Cumulative) != 3 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "cleanse.cumulative",
			Message:  fmt.Sprintf("expected exactly 3 cumulative columns, got %d", len(c.Cumulative)),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	known := false
	for _, k := range KnownStorageKinds {
		if s.Kind == k {
			known = true
			break
		}
	}
	if s.Kind != "" && !known {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if (s.Kind == "sqlite" || s.Kind == "postgres") && strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table",
			Message:  fmt.Sprintf("%s storage requires a table", s.Kind),
		})
	}
	return issues
}
