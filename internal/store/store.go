// Package store persists account snapshots in PostgreSQL. Each account owns
// a disjoint table set derived through the schema registry in schema.go;
// every reconciliation pass for one entity kind runs in its own transaction.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a PostgreSQL connection pool.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Store provides snapshot persistence for all accounts sharing one pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the account's tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context, ts TableSet) error {
	for _, spec := range ts.Specs() {
		if _, err := s.pool.Exec(ctx, spec.DDL()); err != nil {
			return fmt.Errorf("creating table %s: %w", spec.Name, err)
		}
	}
	return nil
}
