package toolchain

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind names a compiler family.
type Kind string

const (
	Gcc    Kind = "gcc"
	Clang  Kind = "clang"
	Msvc   Kind = "msvc"
	Zig    Kind = "zig"
	Custom Kind = "custom"
)

// ToolChain selects the compiler/linker pair used for a binary. Compiler and
// Linker are only meaningful for the Custom kind.
type ToolChain struct {
	Kind     Kind
	Compiler string
	Linker   string
}

// Parse resolves one of the built-in family names.
func Parse(name string) (ToolChain, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case Gcc, Clang, Msvc, Zig:
		return ToolChain{Kind: k}, nil
	default:
		return ToolChain{}, fmt.Errorf("unknown tool chain %q: expected one of gcc, clang, msvc, zig or a {compiler, linker} object", name)
	}
}

// NewCustom builds a custom tool chain from an explicit compiler/linker pair.
func NewCustom(compiler, linker string) (ToolChain, error) {
	if compiler == "" || linker == "" {
		return ToolChain{}, fmt.Errorf("custom tool chain requires both compiler and linker")
	}
	return ToolChain{Kind: Custom, Compiler: compiler, Linker: linker}, nil
}

// PlatformDefault returns the tool chain a script gets from default_toolchain().
func PlatformDefault() ToolChain {
	return defaultFor(runtime.GOOS)
}

func defaultFor(goos string) ToolChain {
	switch goos {
	case "windows":
		return ToolChain{Kind: Msvc}
	case "darwin":
		return ToolChain{Kind: Clang}
	default:
		return ToolChain{Kind: Gcc}
	}
}

// String returns the family name, or "custom(compiler,linker)".
func (t ToolChain) String() string {
	if t.Kind == Custom {
		return fmt.Sprintf("custom(%s,%s)", t.Compiler, t.Linker)
	}
	return string(t.Kind)
}

// IsMsvc reports whether the chain uses cl.exe-style flags.
func (t ToolChain) IsMsvc() bool {
	return t.Kind == Msvc
}

// ObjExt is the object file extension, including the dot.
func (t ToolChain) ObjExt() string {
	if t.IsMsvc() {
		return ".obj"
	}
	return ".o"
}

// EmitsDepFile reports whether the compiler is asked for a make-style
// dependency file next to each object.
func (t ToolChain) EmitsDepFile() bool {
	switch t.Kind {
	case Gcc, Clang, Zig:
		return true
	default:
		return false
	}
}

// compiler returns the program and any leading sub-command.
func (t ToolChain) compiler() Command {
	switch t.Kind {
	case Gcc:
		return Command{Program: "gcc"}
	case Clang:
		return Command{Program: "clang"}
	case Msvc:
		return Command{Program: "cl.exe"}
	case Zig:
		return Command{Program: "zig", Args: []string{"cc"}}
	default:
		return Command{Program: t.Compiler}
	}
}

func (t ToolChain) inputFlag() string {
	if t.IsMsvc() {
		return "/c"
	}
	return "-c"
}

func (t ToolChain) includeFlag() string {
	if t.IsMsvc() {
		return "/I"
	}
	return "-I"
}
