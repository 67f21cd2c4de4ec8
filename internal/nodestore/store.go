// Package nodestore defines the interface for storing and retrieving the
// mutable execution state of graph nodes during a build.
//
// The store is kept apart from the immutable graph structure in package dag:
// the executor writes status, outputs and errors while workers read the
// outputs of the nodes they depend on. A binary node's output is the path
// of its artifact, which is how a run step awaits the binary it launches.
//
// # State Transitions
//
// Nodes follow this lifecycle:
//
//	Pending → Running → Done (with output) OR Failed (with error)
//	Pending → Skipped (a dependency failed)
package nodestore

import (
	"context"

	"github.com/specialistvlad/cbuild/internal/nodeid"
)

// Status is the execution state of a node.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusDone
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Store manages the execution state of nodes.
//
// Implementations MUST be safe for concurrent use: workers update and query
// different nodes in parallel.
type Store interface {
	// SetStatus updates the execution status of a node.
	SetStatus(ctx context.Context, id nodeid.Address, status Status) error

	// GetStatus returns StatusPending for nodes that were never set.
	GetStatus(ctx context.Context, id nodeid.Address) (Status, error)

	// SetOutput records the result of a node that completed.
	SetOutput(ctx context.Context, id nodeid.Address, output any) error

	// GetOutput returns nil if the node has not produced output.
	GetOutput(ctx context.Context, id nodeid.Address) (any, error)

	// SetError records why a node failed.
	SetError(ctx context.Context, id nodeid.Address, nodeErr error) error

	// GetError returns nil if the node did not fail.
	GetError(ctx context.Context, id nodeid.Address) (error, error)
}
