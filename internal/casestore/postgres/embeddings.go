package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/pgvector/pgvector-go"
)

func (s *Store) GetEmbedding(ctx context.Context, key, model string) ([]float32, error) {
	var vec pgvector.Vector
	err := s.db.QueryRowContext(ctx, `
		SELECT embedding
		FROM face_embeddings
		WHERE content_key = $1 AND model = $2
	`, key, model).Scan(&vec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casestore.ErrNoEmbedding
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return vec.Slice(), nil
}

func (s *Store) PutEmbedding(ctx context.Context, key, model string, vector []float32) error {
	vec := pgvector.NewVector(vector)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO face_embeddings (content_key, model, embedding)
		VALUES ($1, $2, $3::vector)
		ON CONFLICT (content_key, model) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			created_at = NOW()
	`, key, model, vec)
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

func (s *Store) Embeddings(ctx context.Context) ([]casestore.StoredEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_key, model, embedding, created_at
		FROM face_embeddings
		ORDER BY content_key, model
	`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []casestore.StoredEmbedding
	for rows.Next() {
		var e casestore.StoredEmbedding
		var vec pgvector.Vector
		if err := rows.Scan(&e.Key, &e.Model, &vec, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		e.Vector = vec.Slice()
		embeddings = append(embeddings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return embeddings, nil
}
