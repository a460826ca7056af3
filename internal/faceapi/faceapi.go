// Package faceapi talks to a DeepFace-style recognition service and turns
// its answers into face scores. Two scorers share one client: verify mode
// has the service compare image pairs remotely, embed mode pulls one
// embedding per image and ranks on a local cosine distance, caching
// embeddings in the store so re-runs skip the HTTP round trip.
package faceapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

// ErrFaceNotFound reports that the service found no usable face in one of
// the images. A normal per-candidate condition, not a case failure.
var ErrFaceNotFound = errors.New("no face detected")

// Scorer computes a face score for a candidate photo against the case's
// reference image. Both inputs are JPEG bytes.
type Scorer interface {
	Score(ctx context.Context, referenceJPEG, candidateJPEG []byte) (casestore.FaceScore, error)
}

// Client is a thin JSON client for the face service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a face service client. The timeout should be generous:
// the first call after service start loads model weights.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// postJSON performs a POST request with a JSON body and unmarshals the
// JSON response into the result type.
func postJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isFaceNotFound(body) {
			return nil, fmt.Errorf("service found no face: %w", ErrFaceNotFound)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, head(body))
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

// isFaceNotFound matches the detection-failure message DeepFace puts in
// plain 400 error bodies.
func isFaceNotFound(body []byte) bool {
	return bytes.Contains(body, []byte("could not be detected"))
}

// head truncates a response body for error messages.
func head(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// dataURL wraps JPEG bytes in the base64 form the service accepts in JSON
// request bodies.
func dataURL(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}
