package mysql

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

func (s *Store) GetEmbedding(ctx context.Context, key, model string) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT embedding
		FROM face_embeddings
		WHERE content_key = ? AND model = ?
	`, key, model).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casestore.ErrNoEmbedding
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return bytesToVector(blob)
}

func (s *Store) PutEmbedding(ctx context.Context, key, model string, vector []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO face_embeddings (content_key, model, embedding)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE embedding = VALUES(embedding), created_at = NOW()
	`, key, model, vectorToBytes(vector))
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
		var blob []byte
		if err := rows.Scan(&e.Key, &e.Model, &blob, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		vector, err := bytesToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", e.Key, err)
		}
		e.Vector = vector
		embeddings = append(embeddings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return embeddings, nil
}

// vectorToBytes serializes []float32 to 4 bytes per float, little-endian.
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToVector deserializes a packed blob back to []float32.
func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
