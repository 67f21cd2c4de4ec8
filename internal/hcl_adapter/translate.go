// This file translates decoded HCL blocks into the format-agnostic model
// defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/nodeid"
	"github.com/specialistvlad/cbuild/internal/toolchain"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

const (
	defaultOutput = "a"
	defaultSrcDir = "src"
	// defaultMessageLevel matches the error level, so a bare message aborts.
	defaultMessageLevel = 4
)

var customToolChainType = cty.Object(map[string]cty.Type{
	"compiler": cty.String,
	"linker":   cty.String,
})

// binaryHead is what pass one learns about a binary.
type binaryHead struct {
	name     string
	output   string
	typ      toolchain.BinaryType
	artifact string
}

func (l *Loader) decodeBinaryHead(blk *labeledBlock, evalCtx *hcl.EvalContext, env config.Env) (*binaryHead, error) {
	if !nodeid.ValidName(blk.Name) {
		return nil, fmt.Errorf("invalid binary name %q", blk.Name)
	}

	content, _, diags := blk.Body.PartialContent(binaryHeaderSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("binary %q: %w", blk.Name, diags)
	}

	head := &binaryHead{name: blk.Name, output: defaultOutput, typ: toolchain.Executable}
	if attr, ok := content.Attributes["output"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, evalCtx, &head.output); diags.HasErrors() {
			return nil, fmt.Errorf("binary %q: %w", blk.Name, diags)
		}
	}
	if attr, ok := content.Attributes["type"]; ok {
		var raw string
		if diags := gohcl.DecodeExpression(attr.Expr, evalCtx, &raw); diags.HasErrors() {
			return nil, fmt.Errorf("binary %q: %w", blk.Name, diags)
		}
		typ, err := toolchain.ParseBinaryType(raw)
		if err != nil {
			return nil, fmt.Errorf("binary %q: %w", blk.Name, diagError("Invalid binary type", err, attr.Expr.Range()))
		}
		head.typ = typ
	}
	head.artifact = toolchain.ArtifactPath(head.output, head.typ, env.GOOS)
	return head, nil
}

// translateBinary decodes a binary block with the full eval context.
func (l *Loader) translateBinary(ctx context.Context, blk *labeledBlock, head *binaryHead, evalCtx *hcl.EvalContext) (*config.Binary, error) {
	logger := ctxlog.FromContext(ctx).With("binary", blk.Name)
	logger.Debug("Translating HCL binary to internal config model.")

	var body binaryBody
	if diags := gohcl.DecodeBody(blk.Body, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("binary %q: %w", blk.Name, diags)
	}

	chain, diags := decodeToolChain(body.ToolChain, evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("binary %q: %w", blk.Name, diags)
	}

	optLevel, err := toolchain.ParseOptLevel(body.OptLevel)
	if err != nil {
		return nil, fmt.Errorf("binary %q: %w", blk.Name, err)
	}

	bin := &config.Binary{
		Name:         blk.Name,
		ToolChain:    chain,
		OptLevel:     optLevel,
		Type:         head.typ,
		Files:        body.Files,
		Excludes:     body.Excludes,
		SrcDir:       defaultSrcDir,
		Includes:     body.Includes,
		Output:       head.output,
		Artifact:     head.artifact,
		Libraries:    body.Libraries,
		LibraryPaths: body.LibraryPaths,
		Links:        body.Links,
	}
	if body.SrcDir != nil {
		bin.SrcDir = *body.SrcDir
	}
	if len(bin.Files) == 0 {
		return nil, fmt.Errorf("binary %q: files must list at least one file or directory", blk.Name)
	}

	if body.Args != nil {
		if bin.Flags.Warnings, err = parseWarnings(body.Args.Warnings); err != nil {
			return nil, fmt.Errorf("binary %q: warnings: %w", blk.Name, err)
		}
		if bin.Flags.NoWarnings, err = parseWarnings(body.Args.NoWarnings); err != nil {
			return nil, fmt.Errorf("binary %q: no_warnings: %w", blk.Name, err)
		}
		bin.Flags.Custom = body.Args.Custom
	}

	deps, err := collectDependencies(blk.Body, body.DependsOn)
	if err != nil {
		return nil, fmt.Errorf("binary %q: %w", blk.Name, err)
	}
	bin.DependsOn = deps

	logger.Debug("Binary translated.", "tool_chain", chain.String(), "opt_level", optLevel, "type", head.typ, "artifact", head.artifact, "depends_on", len(deps))
	return bin, nil
}

// translateRun decodes a run block.
func (l *Loader) translateRun(ctx context.Context, blk *labeledBlock, evalCtx *hcl.EvalContext, env config.Env) (*config.Run, error) {
	logger := ctxlog.FromContext(ctx).With("run", blk.Name)
	if !nodeid.ValidName(blk.Name) {
		return nil, fmt.Errorf("invalid run name %q", blk.Name)
	}

	var body runBody
	if diags := gohcl.DecodeBody(blk.Body, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("run %q: %w", blk.Name, diags)
	}

	// Without an explicit when a step runs only under the run action.
	when := env.Action == config.ActionRun
	if body.When != nil {
		when = *body.When
	}

	deps, err := collectDependencies(blk.Body, body.DependsOn)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", blk.Name, err)
	}

	run := &config.Run{
		Name:         blk.Name,
		Binary:       body.Binary,
		Args:         body.Args,
		Enabled:      when,
		AllowFailure: body.AllowFailure != nil && *body.AllowFailure,
		DependsOn:    deps,
	}
	logger.Debug("Run translated.", "binary", run.Binary, "enabled", run.Enabled, "depends_on", len(deps))
	return run, nil
}

// translateMessage decodes a message block.
func (l *Loader) translateMessage(blk *labeledBlock, evalCtx *hcl.EvalContext) (*config.Message, error) {
	var body messageBody
	if diags := gohcl.DecodeBody(blk.Body, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("message %q: %w", blk.Name, diags)
	}

	msg := &config.Message{
		Name:   blk.Name,
		Text:   body.Text,
		Level:  defaultMessageLevel,
		Active: true,
	}
	if body.Level != nil {
		if *body.Level < 0 {
			return nil, fmt.Errorf("message %q: level must not be negative", blk.Name)
		}
		msg.Level = *body.Level
	}
	if body.When != nil {
		msg.Active = *body.When
	}
	return msg, nil
}

// decodeToolChain accepts either a family name or a {compiler, linker} object.
func decodeToolChain(expr hcl.Expression, evalCtx *hcl.EvalContext) (toolchain.ToolChain, hcl.Diagnostics) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return toolchain.ToolChain{}, diags
	}
	if val.IsNull() || !val.IsKnown() {
		return toolchain.ToolChain{}, diagError("Invalid tool chain", fmt.Errorf("tool_chain must not be null"), expr.Range())
	}

	if val.Type() == cty.String {
		chain, err := toolchain.Parse(val.AsString())
		if err != nil {
			return toolchain.ToolChain{}, diagError("Invalid tool chain", err, expr.Range())
		}
		return chain, nil
	}

	obj, err := convert.Convert(val, customToolChainType)
	if err != nil {
		return toolchain.ToolChain{}, diagError("Invalid tool chain", fmt.Errorf("expected a family name or an object with compiler and linker: %w", err), expr.Range())
	}
	compiler, linker := obj.GetAttr("compiler"), obj.GetAttr("linker")
	if compiler.IsNull() || linker.IsNull() {
		return toolchain.ToolChain{}, diagError("Invalid tool chain", fmt.Errorf("custom tool chain requires both compiler and linker"), expr.Range())
	}
	chain, err := toolchain.NewCustom(compiler.AsString(), linker.AsString())
	if err != nil {
		return toolchain.ToolChain{}, diagError("Invalid tool chain", err, expr.Range())
	}
	return chain, nil
}

func parseWarnings(raw []string) ([]toolchain.WarningFlag, error) {
	var out []toolchain.WarningFlag
	for _, r := range raw {
		w, err := toolchain.ParseWarningFlag(r)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// collectDependencies merges implicit `binary.<name>` references found
// anywhere in body with the explicit depends_on list. The result is sorted
// and free of duplicates.
func collectDependencies(body hcl.Body, dependsOn *hcl.Attribute) ([]nodeid.Address, error) {
	set := make(map[nodeid.Address]struct{})

	for _, traversal := range bodyTraversals(body) {
		if addr, ok := referenceOf(traversal); ok && addr.Kind == nodeid.Binary {
			set[addr] = struct{}{}
		}
	}

	if dependsOn != nil {
		exprs, diags := hcl.ExprList(dependsOn.Expr)
		if diags.HasErrors() {
			return nil, diags
		}
		for _, expr := range exprs {
			traversal, diags := hcl.AbsTraversalForExpr(expr)
			if diags.HasErrors() {
				return nil, diags
			}
			addr, ok := referenceOf(traversal)
			if !ok || len(traversal) != 2 {
				return nil, diagError("Invalid depends_on entry", fmt.Errorf("expected binary.<name> or run.<name>"), expr.Range())
			}
			set[addr] = struct{}{}
		}
	}

	deps := make([]nodeid.Address, 0, len(set))
	for addr := range set {
		deps = append(deps, addr)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].String() < deps[j].String() })
	return deps, nil
}

// referenceOf recognises `binary.<name>...` and `run.<name>` traversals.
func referenceOf(traversal hcl.Traversal) (nodeid.Address, bool) {
	if len(traversal) < 2 {
		return nodeid.Address{}, false
	}
	kind := nodeid.Kind(traversal.RootName())
	if kind != nodeid.Binary && kind != nodeid.Run {
		return nodeid.Address{}, false
	}
	nameAttr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return nodeid.Address{}, false
	}
	return nodeid.Address{Kind: kind, Name: nameAttr.Name}, true
}

// bodyTraversals returns every variable traversal used in body, including
// nested blocks, skipping depends_on which is handled explicitly.
func bodyTraversals(body hcl.Body) []hcl.Traversal {
	var out []hcl.Traversal
	syn, ok := body.(*hclsyntax.Body)
	if !ok {
		attrs, _ := body.JustAttributes()
		for name, attr := range attrs {
			if name != "depends_on" {
				out = append(out, attr.Expr.Variables()...)
			}
		}
		return out
	}
	for name, attr := range syn.Attributes {
		if name != "depends_on" {
			out = append(out, attr.Expr.Variables()...)
		}
	}
	for _, blk := range syn.Blocks {
		out = append(out, bodyTraversals(blk.Body)...)
	}
	return out
}
