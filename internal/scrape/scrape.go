// Package scrape talks to the browser-automation sidecar that performs
// profile discovery, and validates its raw results into typed candidates.
// The sidecar drives a real browser; this side never sees HTML, only JSON:
// result tuples and an opaque login state passed back on every search.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Session is the sidecar's opaque browser login state. It is stored and
// passed back verbatim, never inspected.
type Session = json.RawMessage

// RawResult is one discovery tile as the sidecar reports it. Image is a
// base64 data URL, or the no_image marker when the tile had no thumbnail.
type RawResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// Client is a JSON client for the scraping sidecar.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a sidecar client. The timeout covers a full browser
// interaction, so minutes rather than seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Query shapes the image-search query for a person's full name.
func Query(fullName string) string {
	return fullName + " site:linkedin.com/in"
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	State json.RawMessage `json:"state"`
}

// Login has the sidecar perform the interactive login and returns the
// resulting browser state for later searches.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	resp, err := postJSON[loginResponse](ctx, c, "/api/v1/session", loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	state := bytes.TrimSpace(resp.State)
	if len(state) == 0 || bytes.Equal(state, []byte("null")) {
		return nil, errors.New("sidecar returned an empty login state")
	}
	return Session(state), nil
}

type searchRequest struct {
	Session json.RawMessage `json:"session"`
	Query   string          `json:"query"`
	Limit   int             `json:"limit"`
}

type searchResponse struct {
	Results []RawResult `json:"results"`
}

// Search runs one discovery query through the sidecar. The session is
// forwarded verbatim; limit caps how many tiles the sidecar collects.
func (c *Client) Search(ctx context.Context, session Session, query string, limit int) ([]RawResult, error) {
	resp, err := postJSON[searchResponse](ctx, c, "/api/v1/search", searchRequest{
		Session: json.RawMessage(session),
		Query:   query,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
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
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errorBodyHead(body))
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

// errorBodyHead truncates a response body for error messages.
func errorBodyHead(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
