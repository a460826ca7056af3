// Package mysql implements the casestore on MySQL or MariaDB. Embeddings
// are stored as packed little-endian float32 blobs since there is no native
// vector type to lean on.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/krizmartin/profile-matcher/internal/casestore"
)

func init() {
	casestore.Register("mysql", func(ctx context.Context, target string, opts casestore.Options) (casestore.Store, error) {
		// The target is a go-sql-driver DSN: user:pass@tcp(host:3306)/dbname
		return Open(ctx, target, opts)
	})
}

// Store is a MySQL-backed casestore.
type Store struct {
	db *sql.DB
}

// Open connects to MySQL, configures the connection pool and applies
// pending migrations.
func Open(ctx context.Context, dsn string, opts casestore.Options) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("MySQL DSN is required")
	}

	db, err := sql.Open("mysql", ensureParseTime(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
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

// ensureParseTime forces parseTime=true so DATETIME columns scan into
// time.Time values.
func ensureParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// caseExists fails with ErrUnknownCase when the slug has no row.
func (s *Store) caseExists(ctx context.Context, slug string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM person_cases WHERE slug = ?)", slug).Scan(&exists)
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
