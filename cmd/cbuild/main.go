package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/specialistvlad/cbuild/internal/app"
	"github.com/specialistvlad/cbuild/internal/cli"
	"github.com/specialistvlad/cbuild/internal/hcl_adapter"
	"github.com/specialistvlad/cbuild/internal/userconfig"
)

// main is the entrypoint for the cbuild application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) (err error) {
	defaults, err := userconfig.Load(userconfig.Path())
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}

	appConfig, shouldExit, err := cli.Parse(args, outW, defaults)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Turn a panic anywhere in the build into a clean failure.
	defer func() {
		if r := recover(); r != nil {
			reportFailure(errW, true, fmt.Errorf("application panicked | %v", r))
			err = &cli.ExitError{Code: 1}
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cbuild := app.NewApp(outW, errW, appConfig, hcl_adapter.NewLoader())
	if err := cbuild.Run(ctx); err != nil {
		reportFailure(errW, appConfig.Verbose, err)
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// reportFailure prints the one-line summary of a failed build. The
// underlying error is only shown when verbose.
func reportFailure(w io.Writer, verbose bool, err error) {
	failed := color.New(color.FgRed, color.Bold).Sprint("build failed")
	if verbose {
		fmt.Fprintf(w, "%s: %v\n", failed, err)
		return
	}
	fmt.Fprintf(w, "%s (rerun with --verbose for details)\n", failed)
}
