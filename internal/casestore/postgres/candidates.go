package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

// The photo CASE mirrors the merge rules documented on casestore.Store:
// empty keeps, the no-image marker only fills an empty slot, a real path
// always wins. $5 carries the marker so the constant lives in one place.
const upsertCandidateQuery = `
	INSERT INTO candidates (case_slug, profile_url, candidate_name, photo, sort_order)
	VALUES ($1, $2, $3, $4,
		(SELECT COALESCE(MAX(sort_order) + 1, 0) FROM candidates WHERE case_slug = $1))
	ON CONFLICT (case_slug, profile_url) DO UPDATE SET
		candidate_name = CASE WHEN $3 <> '' THEN $3 ELSE candidates.candidate_name END,
		photo = CASE
			WHEN $4 = '' THEN candidates.photo
			WHEN $4 = $5 AND candidates.photo <> '' AND candidates.photo <> $5 THEN candidates.photo
			ELSE $4
		END
	RETURNING profile_url, candidate_name, photo,
		score_distance, score_threshold, score_similarity,
		score_verified, score_model, score_detector,
		sort_order, discovered_at
`

func (s *Store) UpsertCandidate(ctx context.Context, slug, profileURL, name, photo string) (*casestore.Candidate, error) {
	if err := s.caseExists(ctx, slug); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, upsertCandidateQuery, slug, profileURL, name, photo, casestore.NoImageToken)
	candidate, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("upsert candidate: %w", err)
	}
	return candidate, nil
}

func (s *Store) AttachScore(ctx context.Context, slug, profileURL string, score casestore.FaceScore) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE candidates SET
			score_distance = $3,
			score_threshold = $4,
			score_similarity = $5,
			score_verified = $6,
			score_model = $7,
			score_detector = $8
		WHERE case_slug = $1 AND profile_url = $2
	`, slug, profileURL, score.Distance, score.Threshold, score.Similarity, score.Verified, score.Model, score.Detector)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update score result: %w", err)
	}
	if affected == 0 {
		if err := s.caseExists(ctx, slug); err != nil {
			return err
		}
		return fmt.Errorf("candidate %q in case %q: %w", profileURL, slug, casestore.ErrUnknownCandidate)
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
		WHERE case_slug = $1
		ORDER BY sort_order
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []casestore.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
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

func scanCandidate(row scanner) (*casestore.Candidate, error) {
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
