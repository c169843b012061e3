// Package store defines the EdgeStore interface for saving and loading
// named graph definitions as edge records.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/graphism/internal/graph"
)

var (
	// ErrGraphNotFound is returned when no graph is stored under a name.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrEmptyName is returned when a graph name is blank.
	ErrEmptyName = errors.New("graph name is required")
)

// GraphInfo describes a stored graph without loading its edges.
type GraphInfo struct {
	Name      string    `json:"name"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EdgeStore persists graph definitions. Only the edge records are stored;
// infection state is never persisted.
type EdgeStore interface {
	// SaveGraph stores records under name, replacing any graph already
	// saved with that name.
	SaveGraph(ctx context.Context, name string, records []graph.Record) error

	// LoadGraph returns the records saved under name, in insertion order.
	LoadGraph(ctx context.Context, name string) ([]graph.Record, error)

	// ListGraphs returns every stored graph, sorted by name.
	ListGraphs(ctx context.Context) ([]GraphInfo, error)

	DeleteGraph(ctx context.Context, name string) error

	Close() error
}
