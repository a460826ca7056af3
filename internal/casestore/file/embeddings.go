package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

// The embedding cache shares the store root. It is rewritten whole on every
// put, which is fine at the scale of a few hundred candidate photos.

func (s *Store) GetEmbedding(ctx context.Context, key, model string) ([]float32, error) {
	doc, err := s.readEmbeddings()
	if err != nil {
		return nil, err
	}
	for _, e := range doc.Embeddings {
		if e.Key == key && e.Model == model {
			vector := make([]float32, len(e.Vector))
			copy(vector, e.Vector)
			return vector, nil
		}
	}
	return nil, casestore.ErrNoEmbedding
}

func (s *Store) PutEmbedding(ctx context.Context, key, model string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquireLock(); err != nil {
		return err
	}

	doc, err := s.readEmbeddings()
	if err != nil {
		return err
	}

	stored := casestore.StoredEmbedding{
		Key:       key,
		Model:     model,
		Vector:    vector,
		CreatedAt: time.Now().UTC(),
	}
	replaced := false
	for i := range doc.Embeddings {
		if doc.Embeddings[i].Key == key && doc.Embeddings[i].Model == model {
			doc.Embeddings[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Embeddings = append(doc.Embeddings, stored)
	}

	return s.writeEmbeddings(doc)
}

func (s *Store) Embeddings(ctx context.Context) ([]casestore.StoredEmbedding, error) {
	doc, err := s.readEmbeddings()
	if err != nil {
		return nil, err
	}
	return doc.Embeddings, nil
}

func (s *Store) embeddingsPath() string {
	return filepath.Join(s.root, embeddingsFn)
}

func (s *Store) readEmbeddings() (*embeddingsDocument, error) {
	data, err := os.ReadFile(s.embeddingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &embeddingsDocument{}, nil
		}
		return nil, fmt.Errorf("read embeddings: %w", err)
	}

	var doc embeddingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse embeddings: %w", err)
	}
	return &doc, nil
}

func (s *Store) writeEmbeddings(doc *embeddingsDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal embeddings: %w", err)
	}
	if err := writeFileAtomic(s.embeddingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}
	return nil
}
