package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/specialistvlad/cbuild/internal/app"
	"github.com/specialistvlad/cbuild/internal/compdb"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/userconfig"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Globals are the flags shared by every command.
type Globals struct {
	Input       string `short:"i" default:"build.hcl" env:"CBUILD_INPUT" placeholder:"PATH" help:"Build script file, or a directory of .hcl files."`
	FullRebuild bool   `short:"B" help:"Ignore incremental state and rebuild everything."`
	Release     bool   `short:"r" help:"Make default_opt_level() return release."`
	Verbose     bool   `help:"Print the underlying error on failure and enable debug logs."`
	LogLevel    string `default:"info" enum:"trace,debug,info,warn,error" env:"CBUILD_LOG_LEVEL" help:"Logging level (${enum})."`
	LogFormat   string `default:"text" enum:"text,json" help:"Log output format (${enum})."`
	Jobs        int    `short:"j" env:"CBUILD_JOBS" help:"Maximum concurrent compiler processes. 0 means one per CPU."`
	CacheDir    string `env:"CBUILD_CACHE_DIR" placeholder:"DIR" help:"Object and build log directory, relative to the script (default ${default_cache_dir})."`
}

// BuildCmd builds binaries.
type BuildCmd struct {
	Targets []string `arg:"" optional:"" name:"target" help:"Binaries to build, with their dependencies. All when omitted."`
}

// RunCmd builds and then executes run steps.
type RunCmd struct {
	Steps []string `arg:"" optional:"" name:"run" help:"Run steps to execute, with their dependencies. All enabled steps when omitted."`
}

// GenDatabaseCmd writes a compilation database.
type GenDatabaseCmd struct {
	Output string `short:"o" default:"${default_database}" placeholder:"FILE" help:"Where to write the database, relative to the script."`
}

// Root is the command tree.
type Root struct {
	Globals

	Build       BuildCmd       `cmd:"" default:"withargs" help:"Build binaries (default)."`
	Run         RunCmd         `cmd:"" help:"Build, then execute run steps."`
	GenDatabase GenDatabaseCmd `cmd:"" name:"gen-database" help:"Write compile_commands.json without compiling."`
}

// exitSignal carries kong's exit request out of the parser.
type exitSignal struct{ code int }

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// defaults come from the user defaults file and lose to flags and env vars.
func Parse(args []string, output io.Writer, defaults *userconfig.Defaults) (cfg *app.Config, shouldExit bool, err error) {
	slog.Debug("CLI parser started.")

	var root Root
	parser, err := kong.New(&root,
		kong.Name("cbuild"),
		kong.Description("A declarative build tool for C and C++.\n\nReads an HCL build script, compiles its binaries in parallel and optionally runs them."),
		kong.Writers(output, output),
		kong.Exit(func(code int) { panic(exitSignal{code}) }),
		kong.Vars{
			"default_cache_dir": app.DefaultCacheDir,
			"default_database":  compdb.DefaultFileName,
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("internal error: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(exitSignal)
			if !ok {
				panic(r)
			}
			cfg, shouldExit, err = nil, true, nil
			if sig.code != 0 {
				cfg, shouldExit, err = nil, false, &ExitError{Code: 2, Message: "invalid arguments"}
			}
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			_ = parseErr.Context.PrintUsage(true)
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", kctx.Command())

	appCfg := app.Config{
		InputPath:   root.Input,
		CacheDir:    root.CacheDir,
		Jobs:        root.Jobs,
		FullRebuild: root.FullRebuild,
		Release:     root.Release,
		Verbose:     root.Verbose,
		LogFormat:   root.LogFormat,
		LogLevel:    root.LogLevel,
	}
	if defaults != nil {
		if appCfg.CacheDir == "" {
			appCfg.CacheDir = defaults.CacheDir
		}
		if appCfg.Jobs == 0 {
			appCfg.Jobs = defaults.Jobs
		}
		appCfg.ToolChain = defaults.ToolChain
	}

	switch command := strings.Fields(kctx.Command())[0]; command {
	case "build":
		appCfg.Action = config.ActionBuild
		appCfg.Targets = root.Build.Targets
	case "run":
		appCfg.Action = config.ActionRun
		appCfg.Targets = root.Run.Steps
	case "gen-database":
		appCfg.Action = config.ActionGenDatabase
		appCfg.DatabasePath = root.GenDatabase.Output
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", command)}
	}

	validated, err := app.NewConfig(appCfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "action", validated.Action)
	return validated, false, nil
}
