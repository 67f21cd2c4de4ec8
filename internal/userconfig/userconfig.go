// Package userconfig reads per-user defaults for cbuild.
//
// The file is optional and lives at
//
//	Linux:   $XDG_CONFIG_HOME/cbuild/defaults.hcl or ~/.config/cbuild/defaults.hcl
//	macOS:   ~/Library/Application Support/cbuild/defaults.hcl
//
// Command-line flags and environment variables take precedence over it.
package userconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

const (
	dirName  = "cbuild"
	fileName = "defaults.hcl"
)

// Defaults are the values a user may preset.
type Defaults struct {
	// ToolChain replaces the platform default returned by default_toolchain().
	ToolChain string `hcl:"tool_chain,optional"`
	Jobs      int    `hcl:"jobs,optional"`
	CacheDir  string `hcl:"cache_dir,optional"`
}

// Path is where the defaults file is looked up.
func Path() string {
	return filepath.Join(xdg.ConfigHome, dirName, fileName)
}

// Load decodes the defaults at path. A missing file yields empty defaults.
func Load(path string) (*Defaults, error) {
	var d Defaults
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &d, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading user defaults %s: %w", path, err)
	}

	if err := hclsimple.DecodeFile(path, nil, &d); err != nil {
		return nil, fmt.Errorf("decoding user defaults %s: %w", path, err)
	}
	if d.Jobs < 0 {
		return nil, fmt.Errorf("user defaults %s: jobs must not be negative", path)
	}
	return &d, nil
}
