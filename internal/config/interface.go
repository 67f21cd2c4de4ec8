package config

import (
	"context"

	"github.com/specialistvlad/cbuild/internal/toolchain"
)

// Action is the CLI sub-command a script is evaluated for.
type Action string

const (
	ActionBuild       Action = "build"
	ActionRun         Action = "run"
	ActionGenDatabase Action = "gen-database"
)

// Env is what a build script can observe about the invocation through its
// built-in functions.
type Env struct {
	Action           Action
	Release          bool
	DefaultToolChain toolchain.ToolChain
	HostOS           string
	GOOS             string
}

// Loader is the interface for a format-specific build-script loader.
type Loader interface {
	// Load reads and evaluates the script at path for the given environment.
	Load(ctx context.Context, path string, env Env) (*Model, error)
}
