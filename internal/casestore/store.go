package casestore

import "context"

// Store persists person cases and their scraped candidates. Implementations
// must be safe for concurrent use; the scoring pipeline writes from several
// goroutines at once.
type Store interface {
	// CreateCase adds a new case. Returns ErrCaseExists when the slug is
	// already taken.
	CreateCase(ctx context.Context, c PersonCase) error

	// GetCase returns a case by slug. Returns ErrUnknownCase when missing.
	GetCase(ctx context.Context, slug string) (*PersonCase, error)

	// ListCases returns all cases ordered by creation time.
	ListCases(ctx context.Context) ([]PersonCase, error)

	// UpsertCandidate records a scraped profile under a case, keyed by
	// profile URL. On conflict the name is refreshed and the photo follows
	// merge rules: "" keeps whatever is stored, NoImageToken only fills an
	// empty slot, a real path always wins. Score and Position survive the
	// upsert. Returns the stored candidate after the merge.
	UpsertCandidate(ctx context.Context, slug, profileURL, name, photo string) (*Candidate, error)

	// AttachScore stores the face comparison result for one candidate.
	// Returns ErrUnknownCandidate when the profile URL was never recorded.
	AttachScore(ctx context.Context, slug, profileURL string, score FaceScore) error

	// Candidates returns the candidates of a case in insertion order.
	Candidates(ctx context.Context, slug string) ([]Candidate, error)

	// Close releases underlying resources such as connections or file locks.
	Close() error
}

// EmbeddingCache persists face embeddings keyed by image content hash and
// model name. Every Store implementation also implements this; embed scoring
// mode relies on it to skip repeated represent calls.
type EmbeddingCache interface {
	// GetEmbedding returns the cached vector for a key and model. Returns
	// ErrNoEmbedding on a cache miss.
	GetEmbedding(ctx context.Context, key, model string) ([]float32, error)

	// PutEmbedding stores a vector, replacing any previous value for the
	// same key and model.
	PutEmbedding(ctx context.Context, key, model string, vector []float32) error

	// Embeddings returns every cached embedding. The face similarity index
	// is built from this.
	Embeddings(ctx context.Context) ([]StoredEmbedding, error)
}
