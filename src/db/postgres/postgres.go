// Package postgres implements db.Store on a pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"spendwise-server/src/db"
)

var _ db.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against url, verifies it with a ping and runs
// pending migrations.
func Connect(ctx context.Context, url string) (*Store, error) {
	if err := runMigrations(url); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
