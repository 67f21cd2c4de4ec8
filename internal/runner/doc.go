// Package runner executes the run steps of a build script. Output of the
// launched program is forwarded line by line, each line prefixed with the
// binary path as it was written in the script.
package runner
