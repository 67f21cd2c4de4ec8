package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a new HCL build-script loader.
func NewLoader() *Loader {
	return &Loader{getenv: os.Getenv}
}

// parsedFile pairs a decoded root with the file it came from, for error context.
type parsedFile struct {
	path string
	root fileRoot
}

// Load parses the script at path (a file, or a directory whose .hcl files
// are merged) and evaluates it for env.
func (l *Loader) Load(ctx context.Context, path string, env config.Env) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, dir, err := l.findScriptFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered build script files.", "count", len(files), "dir", dir)

	parser := hclparse.NewParser()
	var parsed []parsedFile
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse build script %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode build script %s: %w", file, diags)
		}
		parsed = append(parsed, parsedFile{path: file, root: root})
	}

	evalCtx := l.newEvalContext(env)

	// Pass one: binary heads.
	var heads []*binaryHead
	seen := make(map[string]string)
	for _, pf := range parsed {
		for _, blk := range pf.root.Binaries {
			if prev, dup := seen["binary."+blk.Name]; dup {
				return nil, fmt.Errorf("%s: binary %q is already declared in %s", pf.path, blk.Name, prev)
			}
			seen["binary."+blk.Name] = pf.path

			head, err := l.decodeBinaryHead(blk, evalCtx, env)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", pf.path, err)
			}
			heads = append(heads, head)
		}
	}
	evalCtx.Variables["binary"] = binaryVariables(heads)
	logger.Debug("Binary heads resolved.", "count", len(heads))

	// Pass two: full decode.
	model := &config.Model{Dir: dir}
	headIdx := 0
	for _, pf := range parsed {
		for _, blk := range pf.root.Binaries {
			bin, err := l.translateBinary(ctx, blk, heads[headIdx], evalCtx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", pf.path, err)
			}
			headIdx++
			model.Binaries = append(model.Binaries, bin)
		}
		for _, blk := range pf.root.Runs {
			if prev, dup := seen["run."+blk.Name]; dup {
				return nil, fmt.Errorf("%s: run %q is already declared in %s", pf.path, blk.Name, prev)
			}
			seen["run."+blk.Name] = pf.path

			run, err := l.translateRun(ctx, blk, evalCtx, env)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", pf.path, err)
			}
			model.Runs = append(model.Runs, run)
		}
		for _, blk := range pf.root.Messages {
			if prev, dup := seen["message."+blk.Name]; dup {
				return nil, fmt.Errorf("%s: message %q is already declared in %s", pf.path, blk.Name, prev)
			}
			seen["message."+blk.Name] = pf.path

			msg, err := l.translateMessage(blk, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", pf.path, err)
			}
			model.Messages = append(model.Messages, msg)
		}
	}

	logger.Debug("HCL loading complete.", "binaries", len(model.Binaries), "runs", len(model.Runs), "messages", len(model.Messages))
	return model, nil
}

// findScriptFiles resolves path to the list of script files and the
// directory that relative paths in them are anchored to.
func (l *Loader) findScriptFiles(path string) ([]string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("error resolving build script path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("error accessing build script %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{abs}, filepath.Dir(abs), nil
	}

	files, err := fsutil.FindFilesByExtension(abs, ".hcl")
	if err != nil {
		return nil, "", fmt.Errorf("error scanning build script directory %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("no .hcl build scripts found in %s", path)
	}
	sort.Strings(files)
	return files, abs, nil
}

// diagError turns a validation failure on an expression into a diagnostic
// that points at the offending source range.
func diagError(summary string, err error, rng hcl.Range) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
		Subject:  rng.Ptr(),
	}}
}
