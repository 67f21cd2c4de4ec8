// Package compile turns an evaluated binary into an artifact on disk.
//
// A Builder plans a binary into translation units and one link step, then
// compiles the units concurrently and links the result. Every subprocess,
// across every binary being built at once, takes a slot from one shared job
// semaphore, so -j bounds the whole build rather than each target.
//
// Work is skipped when it is provably up to date: an object is rebuilt when
// it is missing, older than its source or any header recorded in its depfile,
// or when the command that produced it differs from the one in the build log.
// The link step applies the same rules to its objects and libraries.
package compile
