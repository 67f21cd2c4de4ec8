// Package config defines the format-agnostic model of a build script, along
// with the Loader interface that concrete script formats implement.
//
// The Model is the single source of truth for the dag, compile and compdb
// packages. Every value in it is already evaluated: expressions, functions
// and cross-binary references have been resolved by the loader, and the
// references themselves survive only as DependsOn addresses.
package config
