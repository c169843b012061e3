package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/graphism/internal/graph"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteEdgeStore implements EdgeStore on a single SQLite file.
type SQLiteEdgeStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteEdgeStore opens (creating if needed) the database at dbPath and
// brings its schema up to date.
func NewSQLiteEdgeStore(dbPath string) (*SQLiteEdgeStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteEdgeStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteEdgeStore) Path() string { return s.dbPath }

// SaveGraph replaces the graph stored under name in one transaction. The
// original creation time is kept when a graph is overwritten.
func (s *SQLiteEdgeStore) SaveGraph(ctx context.Context, name string, records []graph.Record) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO graphs (name, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at
	`, name, now, now); err != nil {
		return fmt.Errorf("failed to upsert graph %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE graph_name = ?`, name); err != nil {
		return fmt.Errorf("failed to clear edges of %q: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (graph_name, seq, from_node, to_node, type, weight)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("edge record %d: %w", i, err)
		}
		var weight sql.NullFloat64
		if r.Weight != nil {
			weight = sql.NullFloat64{Float64: *r.Weight, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, name, i, r.From, r.To, r.Type, weight); err != nil {
			return fmt.Errorf("failed to insert edge record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit graph %q: %w", name, err)
	}
	return nil
}

// LoadGraph returns the records of the named graph.
func (s *SQLiteEdgeStore) LoadGraph(ctx context.Context, name string) ([]graph.Record, error) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM graphs WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up graph %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT from_node, to_node, type, weight FROM edges
		WHERE graph_name = ? ORDER BY seq
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	records := make([]graph.Record, 0)
	for rows.Next() {
		var (
			r      graph.Record
			weight sql.NullFloat64
		)
		if err := rows.Scan(&r.From, &r.To, &r.Type, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if weight.Valid {
			w := weight.Float64
			r.Weight = &w
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}
	return records, nil
}

// ListGraphs returns every stored graph with its edge count.
func (s *SQLiteEdgeStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name, g.created_at, g.updated_at, COUNT(e.seq)
		FROM graphs g LEFT JOIN edges e ON e.graph_name = g.name
		GROUP BY g.name
		ORDER BY g.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}
	defer rows.Close()

	infos := make([]GraphInfo, 0)
	for rows.Next() {
		var (
			info             GraphInfo
			created, updated string
		)
		if err := rows.Scan(&info.Name, &created, &updated, &info.Edges); err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		info.CreatedAt = parseTime(created)
		info.UpdatedAt = parseTime(updated)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate graphs: %w", err)
	}
	return infos, nil
}

// DeleteGraph removes the named graph and its edges.
func (s *SQLiteEdgeStore) DeleteGraph(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete graph %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteEdgeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
