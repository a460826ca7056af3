// Package postgres implements the casestore on PostgreSQL, with pgvector
// holding the embedding cache. Schema changes ship as embedded migrations
// applied on open.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	_ "github.com/lib/pq"
)

func init() {
	casestore.Register("postgres", func(ctx context.Context, target string, opts casestore.Options) (casestore.Store, error) {
		// lib/pq wants the full URI including the scheme.
		return Open(ctx, "postgres://"+target, opts)
	})
}

// Store is a PostgreSQL-backed casestore.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL, configures the connection pool and applies
// pending migrations.
func Open(ctx context.Context, url string, opts casestore.Options) (*Store, error) {
	if url == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool.
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Verify connection.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// caseExists fails with ErrUnknownCase when the slug has no row.
func (s *Store) caseExists(ctx context.Context, slug string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM person_cases WHERE slug = $1)", slug).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check case exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
	}
	return nil
}

// Verify interface compliance
var _ casestore.Store = (*Store)(nil)
var _ casestore.EmbeddingCache = (*Store)(nil)
