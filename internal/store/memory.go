package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/graphism/internal/graph"
)

type memoryGraph struct {
	records   []graph.Record
	createdAt time.Time
	updatedAt time.Time
}

// InMemoryEdgeStore implements EdgeStore for testing and for one-off
// simulations that never touch disk.
type InMemoryEdgeStore struct {
	mu     sync.RWMutex
	graphs map[string]memoryGraph
}

// NewInMemoryEdgeStore creates a new in-memory store.
func NewInMemoryEdgeStore() *InMemoryEdgeStore {
	return &InMemoryEdgeStore{graphs: make(map[string]memoryGraph)}
}

// SaveGraph stores a copy of records under name.
func (s *InMemoryEdgeStore) SaveGraph(ctx context.Context, name string, records []graph.Record) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("edge record %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	g := memoryGraph{records: copyRecords(records), createdAt: now, updatedAt: now}
	if existing, ok := s.graphs[name]; ok {
		g.createdAt = existing.createdAt
	}
	s.graphs[name] = g
	return nil
}

// LoadGraph returns a copy of the records stored under name.
func (s *InMemoryEdgeStore) LoadGraph(ctx context.Context, name string) ([]graph.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return copyRecords(g.records), nil
}

// ListGraphs returns every stored graph, sorted by name.
func (s *InMemoryEdgeStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]GraphInfo, 0, len(s.graphs))
	for name, g := range s.graphs {
		infos = append(infos, GraphInfo{
			Name:      name,
			Edges:     len(g.records),
			CreatedAt: g.createdAt,
			UpdatedAt: g.updatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// DeleteGraph removes the named graph.
func (s *InMemoryEdgeStore) DeleteGraph(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if _, ok := s.graphs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	delete(s.graphs, name)
	return nil
}

// Close is a no-op.
func (s *InMemoryEdgeStore) Close() error { return nil }

// copyRecords deep-copies records, including weight pointers.
func copyRecords(records []graph.Record) []graph.Record {
	out := make([]graph.Record, len(records))
	for i, r := range records {
		out[i] = r
		if r.Weight != nil {
			w := *r.Weight
			out[i].Weight = &w
		}
	}
	return out
}
