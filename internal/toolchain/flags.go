package toolchain

import (
	"fmt"
	"strings"
)

// OptLevel is a binary's optimisation level.
type OptLevel string

const (
	OptDebug   OptLevel = "debug"
	OptRelease OptLevel = "release"
	OptO0      OptLevel = "O0"
	OptO1      OptLevel = "O1"
	OptO2      OptLevel = "O2"
	OptO3      OptLevel = "O3"
	OptSize    OptLevel = "Os"
)

// ParseOptLevel accepts the canonical names case-insensitively.
func ParseOptLevel(s string) (OptLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return OptDebug, nil
	case "release":
		return OptRelease, nil
	case "o0":
		return OptO0, nil
	case "o1":
		return OptO1, nil
	case "o2":
		return OptO2, nil
	case "o3":
		return OptO3, nil
	case "os", "osize":
		return OptSize, nil
	}
	return "", fmt.Errorf("unknown opt_level %q: expected debug, release, O0, O1, O2, O3 or Os", s)
}

func (o OptLevel) flags(t ToolChain) []string {
	if t.IsMsvc() {
		switch o {
		case OptDebug:
			return []string{"/Od", "/Zi"}
		case OptRelease, OptO2:
			return []string{"/O2"}
		case OptO0:
			return []string{"/Od"}
		case OptO1, OptSize:
			return []string{"/O1"}
		case OptO3:
			return []string{"/Ox"}
		}
		return nil
	}
	switch o {
	case OptDebug:
		return []string{"-O0", "-g"}
	case OptRelease:
		return []string{"-O2"}
	case OptO0, OptO1, OptO2, OptO3, OptSize:
		return []string{"-" + string(o)}
	}
	return nil
}

// WarningFlag is a portable warning group name.
type WarningFlag string

const (
	WarnError                  WarningFlag = "error"
	WarnPedantic               WarningFlag = "pedantic"
	WarnExtra                  WarningFlag = "extra"
	WarnAll                    WarningFlag = "all"
	WarnDeprecatedDeclarations WarningFlag = "deprecated-declarations"
)

// ParseWarningFlag validates a warning name.
func ParseWarningFlag(s string) (WarningFlag, error) {
	switch w := WarningFlag(strings.ToLower(strings.TrimSpace(s))); w {
	case WarnError, WarnPedantic, WarnExtra, WarnAll, WarnDeprecatedDeclarations:
		return w, nil
	}
	return "", fmt.Errorf("unknown warning %q: expected error, pedantic, extra, all or deprecated-declarations", s)
}

// CompilerFlags is the `args` block of a binary.
type CompilerFlags struct {
	Warnings   []WarningFlag
	NoWarnings []WarningFlag
	Custom     []string
}

// BinaryType is the kind of artifact a binary produces.
type BinaryType string

const (
	Executable BinaryType = "executable"
	DynLib     BinaryType = "dynlib"
	StaticLib  BinaryType = "staticlib"
)

// ParseBinaryType accepts the canonical names case-insensitively.
func ParseBinaryType(s string) (BinaryType, error) {
	switch b := BinaryType(strings.ToLower(strings.TrimSpace(s))); b {
	case Executable, DynLib, StaticLib:
		return b, nil
	}
	return "", fmt.Errorf("unknown binary type %q: expected executable, dynlib or staticlib", s)
}
