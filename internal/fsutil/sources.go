package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SourceExtensions are the translation-unit suffixes picked up when a
// directory is listed in a binary's files.
var SourceExtensions = []string{".c", ".cc", ".cpp", ".cxx", ".m"}

// ExpandSources resolves a binary's file list against base. Entries listed
// in excludes are dropped first; directories are then walked recursively and
// contribute only source files. The returned paths keep the form they were
// written in (relative entries stay relative to base), sorted and unique.
func ExpandSources(base string, files, excludes []string) ([]string, error) {
	excluded := make(map[string]struct{}, len(excludes))
	for _, e := range excludes {
		excluded[filepath.Clean(e)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, skip := excluded[p]; skip {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, entry := range files {
		if _, skip := excluded[filepath.Clean(entry)]; skip {
			continue
		}

		abs := Resolve(base, entry)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", entry, err)
		}
		if !info.IsDir() {
			add(entry)
			continue
		}

		found, err := FindFilesByExtension(abs, SourceExtensions...)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", entry, err)
		}
		for _, f := range found {
			rel, err := filepath.Rel(abs, f)
			if err != nil {
				return nil, err
			}
			add(filepath.Join(entry, rel))
		}
	}

	sort.Strings(out)
	return out, nil
}

// Resolve anchors a possibly relative path at base.
func Resolve(base, p string) string {
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}
