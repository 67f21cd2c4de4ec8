package compile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/specialistvlad/cbuild/internal/buildlog"
	"github.com/specialistvlad/cbuild/internal/toolchain"
)

// unitStale reports whether u must be recompiled and why.
func (b *Builder) unitStale(u *Unit) (bool, string, error) {
	if b.opts.FullRebuild {
		return true, "full rebuild", nil
	}

	src, err := os.Stat(b.path(u.Source))
	if err != nil {
		return false, "", fmt.Errorf("source %s: %w", u.Source, err)
	}
	obj, err := os.Stat(b.path(u.Object))
	if err != nil {
		return true, "object missing", nil
	}
	if src.ModTime().After(obj.ModTime()) {
		return true, "source newer than object", nil
	}

	if u.DepFile != "" {
		dep, changed, err := b.headerChanged(u.DepFile, obj.ModTime())
		if err != nil {
			return false, "", err
		}
		if changed {
			return true, "dependency changed: " + dep, nil
		}
	}

	return b.commandChanged(u.Object, u.Command)
}

// headerChanged reads the depfile of an object and reports the first
// prerequisite that is missing or newer than the object. A missing depfile
// carries no information and is not an error.
func (b *Builder) headerChanged(depFile string, objTime time.Time) (string, bool, error) {
	content, err := os.ReadFile(b.path(depFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading depfile %s: %w", depFile, err)
	}

	deps, err := ParseDepFile(content)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", depFile, err)
	}
	for _, dep := range deps {
		info, err := os.Stat(b.path(dep))
		if err != nil || info.ModTime().After(objTime) {
			return dep, true, nil
		}
	}
	return "", false, nil
}

// linkStale reports whether the artifact of plan must be relinked and why.
func (b *Builder) linkStale(plan *Plan) (bool, string, error) {
	if b.opts.FullRebuild {
		return true, "full rebuild", nil
	}

	out, err := os.Stat(b.path(plan.Artifact))
	if err != nil {
		return true, "artifact missing", nil
	}

	inputs := append(plan.Objects(), plan.Binary.Libraries...)
	for _, in := range inputs {
		info, err := os.Stat(b.path(in))
		if err != nil {
			// Let the linker report it.
			return true, "input missing: " + in, nil
		}
		if info.ModTime().After(out.ModTime()) {
			return true, "input changed: " + in, nil
		}
	}

	return b.commandChanged(plan.Artifact, plan.Link)
}

// commandChanged compares c with the command recorded for output.
func (b *Builder) commandChanged(output string, c toolchain.Command) (bool, string, error) {
	if b.opts.Log == nil {
		return false, "", nil
	}
	entry, found, err := b.opts.Log.Lookup(b.logKey(output))
	if err != nil {
		return false, "", err
	}
	if !found {
		return true, "no build log entry", nil
	}
	if entry.Hash != buildlog.Fingerprint(c.Argv()) {
		return true, "command changed", nil
	}
	return false, "", nil
}
