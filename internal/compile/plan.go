package compile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/fsutil"
	"github.com/specialistvlad/cbuild/internal/toolchain"
)

// Unit is one translation unit of a binary.
type Unit struct {
	Source  string
	Object  string
	DepFile string
	Command toolchain.Command
}

// Plan is everything needed to build one binary, with paths in the form
// they are passed to the tool chain (relative to the script directory
// unless written as absolute).
type Plan struct {
	Binary   *config.Binary
	Units    []*Unit
	Link     toolchain.Command
	Artifact string
}

// Objects returns the object files of every unit, in unit order.
func (p *Plan) Objects() []string {
	objs := make([]string, len(p.Units))
	for i, u := range p.Units {
		objs[i] = u.Object
	}
	return objs
}

// Plan expands the sources of bin and resolves every command needed to
// build it. It touches the filesystem only to list sources.
func (b *Builder) Plan(bin *config.Binary) (*Plan, error) {
	sources, err := fsutil.ExpandSources(b.opts.Dir, bin.Files, bin.Excludes)
	if err != nil {
		return nil, fmt.Errorf("binary %q: %w", bin.Name, err)
	}

	plan := &Plan{Binary: bin, Artifact: bin.Artifact}
	objDir := filepath.Join(b.opts.CacheDir, "obj", bin.Name)
	for _, src := range sources {
		if isHeader(src) {
			continue
		}
		obj := filepath.Join(objDir, objectStem(src, bin.SrcDir)+bin.ToolChain.ObjExt())
		unit := &Unit{Source: src, Object: obj}
		if bin.ToolChain.EmitsDepFile() {
			unit.DepFile = obj + ".d"
		}
		unit.Command = bin.ToolChain.CompileCommand(toolchain.CompileSpec{
			Source:   src,
			Object:   obj,
			DepFile:  unit.DepFile,
			Type:     bin.Type,
			OptLevel: bin.OptLevel,
			Flags:    bin.Flags,
			Includes: bin.Includes,
		})
		plan.Units = append(plan.Units, unit)
	}
	if len(plan.Units) == 0 {
		return nil, fmt.Errorf("binary %q has no source files to compile", bin.Name)
	}

	plan.Link = bin.ToolChain.LinkCommand(toolchain.LinkSpec{
		Type:         bin.Type,
		Output:       bin.Artifact,
		Objects:      plan.Objects(),
		Libraries:    bin.Libraries,
		LibraryPaths: bin.LibraryPaths,
		Links:        bin.Links,
	})
	return plan, nil
}

var headerExtensions = map[string]struct{}{
	".h": {}, ".hh": {}, ".hpp": {}, ".hxx": {}, ".inl": {},
}

func isHeader(path string) bool {
	_, ok := headerExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// objectStem maps a source to its object path below the binary's object
// directory: the source path relative to srcDir without its extension.
// Sources outside srcDir keep their full path.
func objectStem(source, srcDir string) string {
	rel := source
	if srcDir != "" {
		if r, err := filepath.Rel(filepath.Clean(srcDir), filepath.Clean(source)); err == nil &&
			r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = r
		}
	}
	// Parent segments would escape the object directory.
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		if part == ".." {
			parts[i] = "__"
		}
	}
	rel = filepath.FromSlash(strings.Join(parts, "/"))
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
