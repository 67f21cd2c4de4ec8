package app

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/specialistvlad/cbuild/internal/compdb"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/toolchain"
)

// DefaultCacheDir holds objects and the build log, relative to the script.
const DefaultCacheDir = ".cbuild"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Action    config.Action
	InputPath string // build script file or directory
	// Targets are the binaries (build) or run steps (run) to execute.
	// Empty means all of them.
	Targets []string
	// DatabasePath is where gen-database writes. Relative to the script.
	DatabasePath string

	CacheDir    string
	Jobs        int
	FullRebuild bool
	Release     bool
	// ToolChain overrides the platform default seen by default_toolchain().
	ToolChain string

	Verbose   bool
	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Action {
	case config.ActionBuild, config.ActionRun, config.ActionGenDatabase:
	default:
		return nil, fmt.Errorf("unknown action %q", cfg.Action)
	}
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.Action == config.ActionGenDatabase && len(cfg.Targets) > 0 {
		return nil, errors.New("gen-database does not take targets")
	}

	if cfg.Jobs < 0 {
		return nil, fmt.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.NumCPU()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = compdb.DefaultFileName
	}
	if cfg.ToolChain != "" {
		if _, err := toolchain.Parse(cfg.ToolChain); err != nil {
			return nil, err
		}
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "trace", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'trace', 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.Verbose && (cfg.LogLevel == "info" || cfg.LogLevel == "warn" || cfg.LogLevel == "error") {
		cfg.LogLevel = "debug"
	}

	return &cfg, nil
}

// defaultToolChain is what default_toolchain() returns in scripts.
func (c *Config) defaultToolChain() toolchain.ToolChain {
	if c.ToolChain != "" {
		if tc, err := toolchain.Parse(c.ToolChain); err == nil {
			return tc
		}
	}
	return toolchain.PlatformDefault()
}
