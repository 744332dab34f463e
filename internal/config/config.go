// Package config defines the JSON-serializable run configuration for
// flowback. A single Config value enumerates everything a run needs: where
// the reports are, where outputs and the persistent dataset live, the
// secondary merge source, the canonical column list and the synonym table.
// Components receive the pieces they need at construction; nothing reads
// process-global paths.
//
// Example (trimmed):
//
//	{
//	  "job":     "flowback",
//	  "input":   { "root": "reports/" },
//	  "output":  { "dir": "reports/" },
//	  "merge":   { "fix_dir": "fix/" },
//	  "storage": { "kind": "csv", "dsn": "fix/Flowback_database.csv" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"flowback/internal/schema"
	"flowback/internal/transformer/builtin"
)

// Config is the top-level object decoded from a run configuration file.
type Config struct {
	// Job names the run for logs and metrics.
	Job string `json:"job" validate:"required"`

	Input   Input   `json:"input"`
	Output  Output  `json:"output"`
	Parser  Parser  `json:"parser"`
	Schema  Schema  `json:"schema"`
	Cleanse Cleanse `json:"cleanse"`
	Merge   Merge   `json:"merge"`
	Storage Storage `json:"storage"`
	Runtime Runtime `json:"runtime"`
}

// Input describes where field reports are discovered.
type Input struct {
	// Root is the directory scanned for reports (not recursive).
	Root string `json:"root" validate:"required"`
	// Patterns are filepath.Match globs applied to base names.
	Patterns []string `json:"patterns"`
	// ProcessedPrefix marks files written by a previous run; they are
	// skipped on input and used to name per-file outputs.
	ProcessedPrefix string `json:"processed_prefix"`
}

// Output describes where run artifacts are written.
type Output struct {
	// Dir receives per-file outputs, the merged run file and the problem
	// report. Defaults to Input.Root.
	Dir string `json:"dir"`
	// MergedName is the base name of the run's merged output.
	MergedName string `json:"merged_name"`
	// ProblemReport is the base name of the incomplete-metadata report.
	ProblemReport string `json:"problem_report"`
}

// Parser carries reader options. Keys: metadata_lookahead (int),
// min_header_cells (int), skip_units_row (bool).
type Parser struct {
	Options Options `json:"options"`
}

// Schema selects the canonical column list and extra synonyms.
type Schema struct {
	// Columns overrides the canonical column list. Leave empty for the
	// built-in list.
	Columns []string `json:"columns"`
	// Synonyms adds raw-label → canonical-column entries on top of the
	// built-in table.
	Synonyms map[string]string `json:"synonyms"`
}

// Cleanse lists the canonical columns each numeric pass applies to.
type Cleanse struct {
	Interpolate []string `json:"interpolate"`
	Cumulative  []string `json:"cumulative"`
	Quality     []string `json:"quality"`
}

// Merge configures the upsert stage.
type Merge struct {
	// FixDir is the secondary merge source directory; the first *.csv in it
	// (by name) is appended to the run batch. Empty disables the step.
	FixDir string `json:"fix_dir"`
	// DateLayouts and TimeLayouts are tried in order when deriving merge
	// keys so that differently formatted timestamps key equal.
	DateLayouts []string `json:"date_layouts"`
	TimeLayouts []string `json:"time_layouts"`
	// DedupPolicy picks the surviving row when one input carries the same
	// key twice: "keep-last" (default), "keep-first" or "most-complete".
	DedupPolicy string `json:"dedup_policy"`
}

// Storage selects the dataset backend.
type Storage struct {
	// Kind is one of "csv", "sqlite", "postgres".
	Kind string `json:"kind" validate:"required"`
	// DSN is a file path for csv, a driver DSN otherwise.
	DSN string `json:"dsn" validate:"required"`
	// Table is the table name for database backends.
	Table string `json:"table"`
	// LockPath is the advisory lock file guarding load+replace. Defaults to
	// DSN + ".lock" for csv and <output dir>/.flowback.lock otherwise.
	LockPath string `json:"lock_path"`
}

// Runtime controls concurrency.
type Runtime struct {
	// FileWorkers bounds concurrent per-file processing. 0 = GOMAXPROCS.
	FileWorkers int `json:"file_workers" validate:"gte=0"`
}

// Defaults used when a field is left empty.
var (
	DefaultPatterns    = []string{"*.csv", "*.xlsx", "*.xls"}
	DefaultDateLayouts = []string{
		"2006-01-02", "2006-01-02 15:04:05", "2006/01/02", "01/02/2006", "1/2/2006", "01-02-2006",
		"02-Jan-2006", "2-Jan-06", "Jan 2, 2006", "20060102",
	}
	DefaultTimeLayouts = []string{
		"15:04", "15:04:05", "3:04 PM", "3:04:05 PM", "3:04PM", "1504",
	}
)

// ApplyDefaults fills empty fields with their defaults and returns the
// result. It does not touch fields that are already set.
func ApplyDefaults(c Config) Config {
	if c.Job == "" {
		c.Job = "flowback"
	}
	if len(c.Input.Patterns) == 0 {
		c.Input.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if c.Input.ProcessedPrefix == "" {
		c.Input.ProcessedPrefix = "processed_"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = c.Input.Root
	}
	if c.Output.MergedName == "" {
		c.Output.MergedName = "Skyline_merged.csv"
	}
	if c.Output.ProblemReport == "" {
		c.Output.ProblemReport = "problem_files.txt"
	}
	if c.Parser.Options == nil {
		c.Parser.Options = Options{}
	}
	if len(c.Schema.Columns) == 0 {
		c.Schema.Columns = append([]string(nil), schema.Canonical...)
	}
	if len(c.Cleanse.Interpolate) == 0 {
		c.Cleanse.Interpolate = append([]string(nil), schema.DefaultInterpolate...)
	}
	if len(c.Cleanse.Cumulative) == 0 {
		c.Cleanse.Cumulative = append([]string(nil), schema.DefaultCumulative...)
	}
	if len(c.Cleanse.Quality) == 0 {
		c.Cleanse.Quality = append([]string(nil), schema.DefaultQuality...)
	}
	if len(c.Merge.DateLayouts) == 0 {
		c.Merge.DateLayouts = append([]string(nil), DefaultDateLayouts...)
	}
	if len(c.Merge.TimeLayouts) == 0 {
		c.Merge.TimeLayouts = append([]string(nil), DefaultTimeLayouts...)
	}
	if c.Merge.DedupPolicy == "" {
		c.Merge.DedupPolicy = builtin.KeepLast
	}
	if c.Storage.Kind == "" {
		c.Storage.Kind = "csv"
	}
	if c.Storage.Table == "" {
		c.Storage.Table = "flowback_dataset"
	}
	if c.Storage.LockPath == "" {
		if c.Storage.Kind == "csv" && c.Storage.DSN != "" {
			c.Storage.LockPath = c.Storage.DSN + ".lock"
		} else if c.Output.Dir != "" {
			c.Storage.LockPath = filepath.Join(c.Output.Dir, ".flowback.lock")
		}
	}
	return c
}

// Synonyms merges the built-in synonym table with the configured one.
// Built-in entries whose target is not in the column list are left out;
// configured entries win.
func (c Config) Synonyms() map[string]string {
	cols := c.Schema.Columns
	if len(cols) == 0 {
		cols = schema.Canonical
	}
	inList := make(map[string]bool, len(cols))
	for _, col := range cols {
		inList[col] = true
	}
	out := make(map[string]string, len(schema.DefaultSynonyms)+len(c.Schema.Synonyms))
	for k, v := range schema.DefaultSynonyms {
		if inList[v] {
			out[k] = v
		}
	}
	for k, v := range c.Schema.Synonyms {
		out[k] = v
	}
	return out
}

// Load reads a JSON config file, applies environment overrides and
// defaults. It does not validate; call Validate on the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	c, err = ApplyEnv(c)
	if err != nil {
		return Config{}, err
	}
	return ApplyDefaults(c), nil
}

// Options is a small helper to fetch typed values from free-form JSON maps.
// It performs minimal coercion and returns the provided default when a key is
// absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. encoding/json decodes numbers as
// float64, so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null options object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
