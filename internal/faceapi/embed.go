package faceapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/match"
)

// EmbedScorer pulls one embedding per image from the service and compares
// locally with cosine distance. One HTTP call per distinct image instead
// of one per pair, and cached embeddings survive across runs.
type EmbedScorer struct {
	client    *Client
	model     string
	detector  string
	threshold float64
	steepness float64
	cache     casestore.EmbeddingCache
}

// NewEmbedScorer creates an embedding-based scorer. The threshold is the
// model's cosine distance threshold from the registry. A nil cache
// disables caching.
func NewEmbedScorer(client *Client, model, detector string, threshold, steepness float64, cache casestore.EmbeddingCache) *EmbedScorer {
	return &EmbedScorer{
		client:    client,
		model:     model,
		detector:  detector,
		threshold: threshold,
		steepness: steepness,
		cache:     cache,
	}
}

type representRequest struct {
	Img             string `json:"img"`
	ModelName       string `json:"model_name"`
	DetectorBackend string `json:"detector_backend"`
}

type representResult struct {
	Embedding      []float32 `json:"embedding"`
	FaceConfidence float64   `json:"face_confidence"`
}

type representResponse struct {
	Results []representResult `json:"results"`
}

// Score embeds both images and scores their cosine distance against the
// model's threshold.
func (e *EmbedScorer) Score(ctx context.Context, referenceJPEG, candidateJPEG []byte) (casestore.FaceScore, error) {
	reference, err := e.embedding(ctx, referenceJPEG)
	if err != nil {
		return casestore.FaceScore{}, fmt.Errorf("reference image: %w", err)
	}
	candidate, err := e.embedding(ctx, candidateJPEG)
	if err != nil {
		return casestore.FaceScore{}, fmt.Errorf("candidate image: %w", err)
	}

	distance := CosineDistance(reference, candidate)
	similarity, err := match.Similarity(distance, e.threshold, e.steepness)
	if err != nil {
		return casestore.FaceScore{}, fmt.Errorf("unusable distance: %w", err)
	}

	return casestore.FaceScore{
		Distance:   distance,
		Threshold:  e.threshold,
		Similarity: similarity,
		Verified:   distance <= e.threshold,
		Model:      e.model,
		Detector:   e.detector,
	}, nil
}

// embedding returns the cached embedding for the image or asks the service
// for a fresh one. The cache key is the content hash, so a changed photo
// is re-embedded while a re-run over unchanged photos stays offline.
func (e *EmbedScorer) embedding(ctx context.Context, imageJPEG []byte) ([]float32, error) {
	key := ContentKey(imageJPEG)
	if e.cache != nil {
		vector, err := e.cache.GetEmbedding(ctx, key, e.model)
		if err == nil {
			return vector, nil
		}
		if !errors.Is(err, casestore.ErrNoEmbedding) {
			return nil, fmt.Errorf("embedding cache read: %w", err)
		}
	}

	resp, err := postJSON[representResponse](ctx, e.client, "/represent", representRequest{
		Img:             dataURL(imageJPEG),
		ModelName:       e.model,
		DetectorBackend: e.detector,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("represent returned no faces: %w", ErrFaceNotFound)
	}

	// The service orders detected faces by confidence, first one wins.
	vector := resp.Results[0].Embedding
	if len(vector) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	if e.cache != nil {
		if err := e.cache.PutEmbedding(ctx, key, e.model, vector); err != nil {
			return nil, fmt.Errorf("embedding cache write: %w", err)
		}
	}

	return vector, nil
}

// ContentKey derives the embedding cache key from image bytes. The face
// index in serve mode uses the same key to join stored photos with their
// cached vectors.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify interface compliance
var _ Scorer = (*EmbedScorer)(nil)
