// Package mock provides an in-memory casestore implementation for testing.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

// MockStore implements casestore.Store and casestore.EmbeddingCache with
// maps. Mutating calls go through the same merge rules as the real backends
// so pipeline tests see faithful semantics.
type MockStore struct {
	mu         sync.RWMutex
	cases      map[string]*casestore.PersonCase
	candidates map[string][]casestore.Candidate
	embeddings map[string]casestore.StoredEmbedding
	order      []string

	// Track calls
	AttachScoreCalls []AttachScoreCall
	UpsertCalls      []UpsertCall

	// Error injection
	CreateCaseError      error
	GetCaseError         error
	ListCasesError       error
	UpsertCandidateError error
	AttachScoreError     error
	CandidatesError      error
	GetEmbeddingError    error
	PutEmbeddingError    error
	EmbeddingsError      error
	CloseError           error
}

// AttachScoreCall tracks an AttachScore call
type AttachScoreCall struct {
	Slug       string
	ProfileURL string
	Score      casestore.FaceScore
}

// UpsertCall tracks an UpsertCandidate call
type UpsertCall struct {
	Slug       string
	ProfileURL string
	Name       string
	Photo      string
}

// NewMockStore creates a new empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		cases:      make(map[string]*casestore.PersonCase),
		candidates: make(map[string][]casestore.Candidate),
		embeddings: make(map[string]casestore.StoredEmbedding),
	}
}

// AddCase seeds a case without going through CreateCase
func (m *MockStore) AddCase(c casestore.PersonCase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.cases[c.Slug]; !exists {
		m.order = append(m.order, c.Slug)
	}
	m.cases[c.Slug] = &c
}

// AddCandidate seeds a candidate without going through UpsertCandidate
func (m *MockStore) AddCandidate(slug string, c casestore.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[slug] = append(m.candidates[slug], c)
}

func (m *MockStore) CreateCase(ctx context.Context, c casestore.PersonCase) error {
	if m.CreateCaseError != nil {
		return m.CreateCaseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.cases[c.Slug]; exists {
		return fmt.Errorf("case %q: %w", c.Slug, casestore.ErrCaseExists)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.cases[c.Slug] = &c
	m.order = append(m.order, c.Slug)
	return nil
}

func (m *MockStore) GetCase(ctx context.Context, slug string) (*casestore.PersonCase, error) {
	if m.GetCaseError != nil {
		return nil, m.GetCaseError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[slug]
	if !ok {
		return nil, fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
	}
	copied := *c
	return &copied, nil
}

func (m *MockStore) ListCases(ctx context.Context) ([]casestore.PersonCase, error) {
	if m.ListCasesError != nil {
		return nil, m.ListCasesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cases := make([]casestore.PersonCase, 0, len(m.order))
	for _, slug := range m.order {
		cases = append(cases, *m.cases[slug])
	}
	return cases, nil
}

func (m *MockStore) UpsertCandidate(ctx context.Context, slug, profileURL, name, photo string) (*casestore.Candidate, error) {
	if m.UpsertCandidateError != nil {
		return nil, m.UpsertCandidateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls = append(m.UpsertCalls, UpsertCall{Slug: slug, ProfileURL: profileURL, Name: name, Photo: photo})

	if _, ok := m.cases[slug]; !ok {
		return nil, fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
	}

	list := m.candidates[slug]
	for i := range list {
		if list[i].ProfileURL != profileURL {
			continue
		}
		if name != "" {
			list[i].Name = name
		}
		switch {
		case photo == "":
		case photo == casestore.NoImageToken && list[i].HasPhoto():
		default:
			list[i].Photo = photo
		}
		stored := list[i]
		return &stored, nil
	}

	candidate := casestore.Candidate{
		ProfileURL:   profileURL,
		Name:         name,
		Photo:        photo,
		Position:     len(list),
		DiscoveredAt: time.Now().UTC(),
	}
	m.candidates[slug] = append(list, candidate)
	return &candidate, nil
}

func (m *MockStore) AttachScore(ctx context.Context, slug, profileURL string, score casestore.FaceScore) error {
	if m.AttachScoreError != nil {
		return m.AttachScoreError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttachScoreCalls = append(m.AttachScoreCalls, AttachScoreCall{Slug: slug, ProfileURL: profileURL, Score: score})

	list := m.candidates[slug]
	for i := range list {
		if list[i].ProfileURL == profileURL {
			list[i].Score = &score
			return nil
		}
	}
	return fmt.Errorf("candidate %q in case %q: %w", profileURL, slug, casestore.ErrUnknownCandidate)
}

func (m *MockStore) Candidates(ctx context.Context, slug string) ([]casestore.Candidate, error) {
	if m.CandidatesError != nil {
		return nil, m.CandidatesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.cases[slug]; !ok {
		return nil, fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
	}
	list := make([]casestore.Candidate, len(m.candidates[slug]))
	copy(list, m.candidates[slug])
	return list, nil
}

func (m *MockStore) Close() error {
	return m.CloseError
}

func (m *MockStore) GetEmbedding(ctx context.Context, key, model string) ([]float32, error) {
	if m.GetEmbeddingError != nil {
		return nil, m.GetEmbeddingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.embeddings[key+"/"+model]
	if !ok {
		return nil, casestore.ErrNoEmbedding
	}
	vector := make([]float32, len(e.Vector))
	copy(vector, e.Vector)
	return vector, nil
}

func (m *MockStore) PutEmbedding(ctx context.Context, key, model string, vector []float32) error {
	if m.PutEmbeddingError != nil {
		return m.PutEmbeddingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings[key+"/"+model] = casestore.StoredEmbedding{
		Key:       key,
		Model:     model,
		Vector:    vector,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *MockStore) Embeddings(ctx context.Context) ([]casestore.StoredEmbedding, error) {
	if m.EmbeddingsError != nil {
		return nil, m.EmbeddingsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]casestore.StoredEmbedding, 0, len(m.embeddings))
	for _, e := range m.embeddings {
		all = append(all, e)
	}
	return all, nil
}

// Verify interface compliance
var _ casestore.Store = (*MockStore)(nil)
var _ casestore.EmbeddingCache = (*MockStore)(nil)
