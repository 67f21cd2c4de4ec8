// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the build lifecycle (load the script, emit
// its messages, then build, run or describe it), decoupled from any specific
// entrypoint like a CLI.
package app
