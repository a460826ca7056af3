package faceapi

import (
	"context"
	"fmt"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/match"
)

// VerifyScorer has the service compare the two images in one remote call.
// The service picks the distance metric and threshold for its model, so
// the response maps straight onto a FaceScore.
type VerifyScorer struct {
	client    *Client
	model     string
	detector  string
	steepness float64
}

// NewVerifyScorer creates a scorer backed by the service's pairwise
// verification endpoint.
func NewVerifyScorer(client *Client, model, detector string, steepness float64) *VerifyScorer {
	return &VerifyScorer{
		client:    client,
		model:     model,
		detector:  detector,
		steepness: steepness,
	}
}

type verifyRequest struct {
	Img1            string `json:"img1"`
	Img2            string `json:"img2"`
	ModelName       string `json:"model_name"`
	DetectorBackend string `json:"detector_backend"`
}

type verifyResponse struct {
	Verified        bool    `json:"verified"`
	Distance        float64 `json:"distance"`
	Threshold       float64 `json:"threshold"`
	Model           string  `json:"model"`
	DetectorBackend string  `json:"detector_backend"`
}

// Score sends both images to the verification endpoint and converts the
// returned distance into a bounded similarity.
func (v *VerifyScorer) Score(ctx context.Context, referenceJPEG, candidateJPEG []byte) (casestore.FaceScore, error) {
	resp, err := postJSON[verifyResponse](ctx, v.client, "/verify", verifyRequest{
		Img1:            dataURL(referenceJPEG),
		Img2:            dataURL(candidateJPEG),
		ModelName:       v.model,
		DetectorBackend: v.detector,
	})
	if err != nil {
		return casestore.FaceScore{}, err
	}

	similarity, err := match.Similarity(resp.Distance, resp.Threshold, v.steepness)
	if err != nil {
		return casestore.FaceScore{}, fmt.Errorf("unusable verify response: %w", err)
	}

	// Older service versions omit the echo fields.
	model := resp.Model
	if model == "" {
		model = v.model
	}
	detector := resp.DetectorBackend
	if detector == "" {
		detector = v.detector
	}

	return casestore.FaceScore{
		Distance:   resp.Distance,
		Threshold:  resp.Threshold,
		Similarity: similarity,
		Verified:   resp.Verified,
		Model:      model,
		Detector:   detector,
	}, nil
}

// Verify interface compliance
var _ Scorer = (*VerifyScorer)(nil)
