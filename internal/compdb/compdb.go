// Package compdb writes a clang compilation database (compile_commands.json)
// describing every translation unit of a build, without compiling anything.
package compdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/cbuild/internal/compile"
)

// DefaultFileName is where the database is written unless told otherwise.
const DefaultFileName = "compile_commands.json"

// Entry is one translation unit in the database.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Output    string   `json:"output"`
}

// Generate returns one entry per unit of every plan. dir is the directory
// the compile commands run in.
func Generate(dir string, plans []*compile.Plan) []Entry {
	entries := []Entry{}
	for _, plan := range plans {
		for _, u := range plan.Units {
			entries = append(entries, Entry{
				Directory: dir,
				File:      u.Source,
				Arguments: u.Command.Argv(),
				Output:    u.Object,
			})
		}
	}
	return entries
}

// WriteFile writes entries to path. The file is replaced atomically so that
// editors watching it never observe a partial database.
func WriteFile(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding compilation database: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
