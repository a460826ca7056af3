package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

// UpsertCandidate does read-modify-write in a transaction so the photo merge
// rules live in Go instead of dialect-specific upsert SQL.
func (s *Store) UpsertCandidate(ctx context.Context, slug, profileURL, name, photo string) (*casestore.Candidate, error) {
	if err := s.caseExists(ctx, slug); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanCandidateRow(tx.QueryRowContext(ctx, `
		SELECT profile_url, candidate_name, photo,
			score_distance, score_threshold, score_similarity,
			score_verified, score_model, score_detector,
			sort_order, discovered_at
		FROM candidates
		WHERE case_slug = ? AND profile_url = ?
		FOR UPDATE
	`, slug, profileURL))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query candidate: %w", err)
	}

	if existing != nil {
		if name != "" {
			existing.Name = name
		}
		switch {
		case photo == "":
		case photo == casestore.NoImageToken && existing.HasPhoto():
		default:
			existing.Photo = photo
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE candidates SET candidate_name = ?, photo = ?
			WHERE case_slug = ? AND profile_url = ?
		`, existing.Name, existing.Photo, slug, profileURL)
		if err != nil {
			return nil, fmt.Errorf("update candidate: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		return existing, nil
	}

	var position int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM candidates WHERE case_slug = ?
	`, slug).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	discovered := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO candidates (case_slug, profile_url, candidate_name, photo, sort_order, discovered_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, slug, profileURL, name, photo, position, discovered)
	if err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &casestore.Candidate{
		ProfileURL:   profileURL,
		Name:         name,
		Photo:        photo,
		Position:     position,
		DiscoveredAt: discovered,
	}, nil
}

func (s *Store) AttachScore(ctx context.Context, slug, profileURL string, score casestore.FaceScore) error {
	// Verify the candidate exists first (MySQL RowsAffected returns 0 when
	// data is unchanged, so it cannot distinguish missing from identical).
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM candidates WHERE case_slug = ? AND profile_url = ?)
	`, slug, profileURL).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check candidate exists: %w", err)
	}
	if !exists {
		if err := s.caseExists(ctx, slug); err != nil {
			return err
		}
		return fmt.Errorf("candidate %q in case %q: %w", profileURL, slug, casestore.ErrUnknownCandidate)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE candidates SET
			score_distance = ?,
			score_threshold = ?,
			score_similarity = ?,
			score_verified = ?,
			score_model = ?,
			score_detector = ?
		WHERE case_slug = ? AND profile_url = ?
	`, score.Distance, score.Threshold, score.Similarity, score.Verified, score.Model, score.Detector, slug, profileURL)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

func (s *Store) Candidates(ctx context.Context, slug string) ([]casestore.Candidate, error) {
	if err := s.caseExists(ctx, slug); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_url, candidate_name, photo,
			score_distance, score_threshold, score_similarity,
			score_verified, score_model, score_detector,
			sort_order, discovered_at
		FROM candidates
		WHERE case_slug = ?
		ORDER BY sort_order
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []casestore.Candidate
	for rows.Next() {
		candidate, err := scanCandidateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, *candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCandidateRow(row scanner) (*casestore.Candidate, error) {
	var (
		c          casestore.Candidate
		distance   sql.NullFloat64
		threshold  sql.NullFloat64
		similarity sql.NullFloat64
		verified   sql.NullBool
		model      sql.NullString
		detector   sql.NullString
		discovered time.Time
	)

	err := row.Scan(
		&c.ProfileURL,
		&c.Name,
		&c.Photo,
		&distance,
		&threshold,
		&similarity,
		&verified,
		&model,
		&detector,
		&c.Position,
		&discovered,
	)
	if err != nil {
		return nil, err
	}

	c.DiscoveredAt = discovered
	if distance.Valid {
		c.Score = &casestore.FaceScore{
			Distance:   distance.Float64,
			Threshold:  threshold.Float64,
			Similarity: similarity.Float64,
			Verified:   verified.Bool,
			Model:      model.String,
			Detector:   detector.String,
		}
	}
	return &c, nil
}
