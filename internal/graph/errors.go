package graph

import "errors"

// Sentinel errors returned by graph construction and seeding.
var (
	// ErrMissingEndpoint indicates an edge record without a parent or child name.
	ErrMissingEndpoint = errors.New("graph: edge record is missing from_ or to_")

	// ErrNodeNotFound indicates a name that is not registered in the graph.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrNilNode indicates a nil *Node was passed where a node is required.
	ErrNilNode = errors.New("graph: node is nil")

	// ErrBadProbability indicates a probability outside [0, 1].
	ErrBadProbability = errors.New("graph: probability must be in [0, 1]")

	// ErrUnknownRule indicates an unrecognised transmission rule name.
	ErrUnknownRule = errors.New("graph: unknown transmission rule")
)
