package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoMatch is returned by FirstMatch when the directory holds no matching
// file.
var ErrNoMatch = errors.New("no matching file")

// Discover lists the regular files directly under root whose base name
// matches any of patterns (case-insensitive), skipping names that start with
// skipPrefix. The result is sorted by name so runs are deterministic.
func Discover(root string, patterns []string, skipPrefix string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if skipPrefix != "" && strings.HasPrefix(name, skipPrefix) {
			continue
		}
		ok, err := matchAny(patterns, name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, filepath.Join(root, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// FirstMatch returns the first file in dir (by name) matching pattern,
// ignoring any path in exclude.
func FirstMatch(dir, pattern string, exclude ...string) (string, error) {
	files, err := Discover(dir, []string{pattern}, "")
	if err != nil {
		return "", err
	}
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[filepath.Clean(e)] = true
	}
	for _, f := range files {
		if !skip[filepath.Clean(f)] {
			return f, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", pattern, dir, ErrNoMatch)
}

func matchAny(patterns []string, name string) (bool, error) {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		ok, err := filepath.Match(strings.ToLower(p), lower)
		if err != nil {
			return false, fmt.Errorf("pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
