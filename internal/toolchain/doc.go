// Package toolchain describes the compiler and linker families cbuild can
// drive and translates a target's settings into concrete command lines.
//
// Nothing in this package executes a process. It only produces Command values
// that the compile package runs and that the compdb package serialises, so the
// flag translation can be tested without any compiler installed.
//
// Supported families are gcc, clang, msvc and zig (through `zig cc` and
// `zig ar`), plus a custom compiler/linker pair that speaks gcc-style flags.
package toolchain
