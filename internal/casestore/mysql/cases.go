package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

func (s *Store) CreateCase(ctx context.Context, c casestore.PersonCase) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT IGNORE INTO person_cases (slug, full_name, reference_image, created_at)
		VALUES (?, ?, ?, ?)
	`, c.Slug, c.FullName, c.ReferenceImage, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert case result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("case %q: %w", c.Slug, casestore.ErrCaseExists)
	}
	return nil
}

func (s *Store) GetCase(ctx context.Context, slug string) (*casestore.PersonCase, error) {
	var c casestore.PersonCase
	err := s.db.QueryRowContext(ctx, `
		SELECT slug, full_name, reference_image, created_at
		FROM person_cases
		WHERE slug = ?
	`, slug).Scan(&c.Slug, &c.FullName, &c.ReferenceImage, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
	}
	if err != nil {
		return nil, fmt.Errorf("query case: %w", err)
	}
	return &c, nil
}

func (s *Store) ListCases(ctx context.Context) ([]casestore.PersonCase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, full_name, reference_image, created_at
		FROM person_cases
		ORDER BY created_at, slug
	`)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var cases []casestore.PersonCase
	for rows.Next() {
		var c casestore.PersonCase
		if err := rows.Scan(&c.Slug, &c.FullName, &c.ReferenceImage, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return cases, nil
}
