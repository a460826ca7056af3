package casestore

import "time"

// NoImageToken marks a candidate whose profile was scraped but had no usable
// photo. It keeps "checked, nothing there" distinct from "not fetched yet" so
// re-runs do not retry hopeless downloads.
const NoImageToken = "no_image"

// PersonCase is one identity lookup: the person being searched for plus the
// reference photo every candidate face is compared against.
type PersonCase struct {
	Slug           string    `json:"slug"`
	FullName       string    `json:"full_name"`
	ReferenceImage string    `json:"reference_image"`
	CreatedAt      time.Time `json:"created_at"`
}

// Candidate is one scraped profile attached to a case. Photo holds a path
// relative to the data dir, NoImageToken, or "" when the profile photo has
// not been fetched yet. Position records insertion order within the case.
type Candidate struct {
	ProfileURL   string     `json:"profile_url"`
	Name         string     `json:"candidate_name"`
	Photo        string     `json:"photo,omitempty"`
	Score        *FaceScore `json:"score,omitempty"`
	Position     int        `json:"position"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}

// HasPhoto reports whether the candidate has a real photo on disk, as
// opposed to no photo at all or the NoImageToken marker.
func (c *Candidate) HasPhoto() bool {
	return c.Photo != "" && c.Photo != NoImageToken
}

// FaceScore is the outcome of comparing one candidate photo against the
// case reference image.
type FaceScore struct {
	Distance   float64 `json:"distance"`
	Threshold  float64 `json:"threshold"`
	Similarity float64 `json:"similarity"`
	Verified   bool    `json:"verified"`
	Model      string  `json:"model"`
	Detector   string  `json:"detector"`
}

// StoredEmbedding is a cached face embedding keyed by image content hash and
// model name, used in embed scoring mode to skip repeated represent calls.
type StoredEmbedding struct {
	Key       string    `json:"key"`
	Model     string    `json:"model"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}
