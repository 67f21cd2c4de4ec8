package config

import (
	"github.com/specialistvlad/cbuild/internal/nodeid"
	"github.com/specialistvlad/cbuild/internal/toolchain"
)

// Model is the evaluated representation of one build script.
type Model struct {
	// Dir is the directory of the script. Every relative path in the model
	// is relative to it, and every subprocess runs in it.
	Dir      string
	Binaries []*Binary
	Runs     []*Run
	Messages []*Message
}

// Binary is one build target, the binary graph submitted to the builder.
type Binary struct {
	Name      string
	ToolChain toolchain.ToolChain
	OptLevel  toolchain.OptLevel
	Type      toolchain.BinaryType

	Files    []string
	Excludes []string
	SrcDir   string
	Includes []string
	Flags    toolchain.CompilerFlags

	// Output is the path as declared; Artifact is what the linker writes.
	Output   string
	Artifact string

	Libraries    []string
	LibraryPaths []string
	Links        []string

	DependsOn []nodeid.Address
}

// Address returns the node identifier of the binary.
func (b *Binary) Address() nodeid.Address {
	return nodeid.NewBinary(b.Name)
}

// Run executes a built artifact after the build.
type Run struct {
	Name         string
	Binary       string
	Args         []string
	Enabled      bool
	AllowFailure bool
	DependsOn    []nodeid.Address
}

// Address returns the node identifier of the run step.
func (r *Run) Address() nodeid.Address {
	return nodeid.NewRun(r.Name)
}

// Message is a script diagnostic emitted at load time. Levels follow the
// script convention: 0 trace, 1 debug, 2 info, 3 warn, 4 and above error.
// An error-level message that is active aborts the build.
type Message struct {
	Name   string
	Text   string
	Level  int
	Active bool
}

// Fatal reports whether the message aborts the build.
func (m *Message) Fatal() bool {
	return m.Active && m.Level > 3
}
