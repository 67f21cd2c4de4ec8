package toolchain

import (
	"path/filepath"
	"strings"
)

// Command is a fully resolved process invocation.
type Command struct {
	Program string
	Args    []string
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// String renders the command the way it is shown in debug logs.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

func (c Command) with(args ...string) Command {
	c.Args = append(append([]string(nil), c.Args...), args...)
	return c
}

// CompileSpec describes one translation unit.
type CompileSpec struct {
	Source  string
	Object  string
	DepFile string
	// Type is the kind of binary the object ends up in.
	Type     BinaryType
	OptLevel OptLevel
	Flags    CompilerFlags
	Includes []string
}

// CompileCommand builds the command that turns spec.Source into spec.Object.
func (t ToolChain) CompileCommand(spec CompileSpec) Command {
	cmd := t.compiler()
	cmd = cmd.with(t.inputFlag(), spec.Source)
	if t.IsMsvc() {
		cmd = cmd.with("/Fo" + spec.Object)
	} else {
		cmd = cmd.with("-o", spec.Object)
	}
	cmd = cmd.with(spec.OptLevel.flags(t)...)
	if spec.Type == DynLib && !t.IsMsvc() {
		// Shared objects must not carry absolute relocations.
		cmd = cmd.with("-fPIC")
	}
	if t.IsMsvc() {
		cmd = cmd.with("/nologo")
	} else {
		// cl.exe has no per-group switch for these names.
		for _, w := range spec.Flags.Warnings {
			cmd = cmd.with("-W" + string(w))
		}
		for _, w := range spec.Flags.NoWarnings {
			cmd = cmd.with("-Wno-" + string(w))
		}
	}
	cmd = cmd.with(spec.Flags.Custom...)
	for _, inc := range spec.Includes {
		cmd = cmd.with(t.includeFlag(), inc)
	}
	if spec.DepFile != "" && t.EmitsDepFile() {
		cmd = cmd.with("-MMD", "-MF", spec.DepFile)
	}
	return cmd
}

// LinkSpec describes the final link (or archive) step of a binary.
type LinkSpec struct {
	Type         BinaryType
	Output       string
	Objects      []string
	Libraries    []string
	LibraryPaths []string
	Links        []string
}

// LinkCommand builds the command that produces spec.Output.
func (t ToolChain) LinkCommand(spec LinkSpec) Command {
	if t.IsMsvc() {
		return t.msvcLink(spec)
	}

	if spec.Type == StaticLib && t.Kind != Custom {
		cmd := Command{Program: "ar"}
		if t.Kind == Zig {
			cmd = Command{Program: "zig", Args: []string{"ar"}}
		}
		return cmd.with("rcs", spec.Output).with(spec.Objects...)
	}

	var cmd Command
	switch t.Kind {
	case Custom:
		cmd = Command{Program: t.Linker}
	default:
		cmd = t.compiler()
	}
	if spec.Type == DynLib {
		cmd = cmd.with("-shared")
	}
	cmd = cmd.with("-o", spec.Output)
	cmd = cmd.with(spec.Objects...)
	if spec.Type == StaticLib {
		return cmd
	}
	cmd = cmd.with(spec.Libraries...)
	for _, dir := range spec.LibraryPaths {
		cmd = cmd.with("-L" + dir)
	}
	for _, l := range spec.Links {
		cmd = cmd.with("-l" + l)
	}
	return cmd
}

func (t ToolChain) msvcLink(spec LinkSpec) Command {
	cmd := Command{Program: "link.exe"}
	switch spec.Type {
	case StaticLib:
		cmd = Command{Program: "lib.exe"}
	case DynLib:
		cmd = cmd.with("/DLL")
	}
	cmd = cmd.with("/OUT:" + spec.Output)
	cmd = cmd.with(spec.Objects...)
	cmd = cmd.with("/nologo")
	if spec.Type == StaticLib {
		return cmd
	}
	cmd = cmd.with(spec.Libraries...)
	for _, dir := range spec.LibraryPaths {
		cmd = cmd.with("/LIBPATH:" + dir)
	}
	for _, l := range spec.Links {
		cmd = cmd.with(l + ".lib")
	}
	return cmd
}

// ArtifactPath maps a declared output to the file the linker writes on goos.
// Executables gain .exe on windows; libraries get the platform prefix and
// suffix (libfoo.a, libfoo.so, libfoo.dylib, foo.lib, foo.dll).
func ArtifactPath(output string, typ BinaryType, goos string) string {
	dir, base := filepath.Split(output)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	switch typ {
	case StaticLib:
		if goos == "windows" {
			return dir + stem + ".lib"
		}
		return dir + libPrefix(stem) + ".a"
	case DynLib:
		switch goos {
		case "windows":
			return dir + stem + ".dll"
		case "darwin":
			return dir + libPrefix(stem) + ".dylib"
		default:
			return dir + libPrefix(stem) + ".so"
		}
	default:
		if goos == "windows" {
			return dir + stem + ".exe"
		}
		return output
	}
}

func libPrefix(stem string) string {
	if strings.HasPrefix(stem, "lib") {
		return stem
	}
	return "lib" + stem
}
