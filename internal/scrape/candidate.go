package scrape

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/krizmartin/profile-matcher/internal/casestore"
)

// Candidate is a validated scrape result ready for the store.
type Candidate struct {
	ProfileURL string
	Name       string
	Photo      []byte // nil when the tile had no usable thumbnail
	PhotoExt   string // jpg/png/webp/bin, set when Photo is present
}

// Convert applies the boundary validation to one raw result. The URL and
// the name must survive or the result is rejected; a broken thumbnail
// only downgrades the candidate to photo-absent.
func Convert(r RawResult) (Candidate, error) {
	profileURL, err := CanonicalProfileURL(r.URL)
	if err != nil {
		return Candidate{}, err
	}

	name := NameFromTitle(r.Title)
	if name == "" {
		return Candidate{}, fmt.Errorf("result %s has no usable name in title %q", profileURL, r.Title)
	}

	c := Candidate{ProfileURL: profileURL, Name: name}
	if r.Image == "" || r.Image == casestore.NoImageToken {
		return c, nil
	}

	photo, ext, err := DecodeDataURL(r.Image)
	if err != nil {
		// A broken thumbnail is no reason to drop the profile.
		return c, nil
	}
	c.Photo = photo
	c.PhotoExt = ext
	return c, nil
}

// CanonicalProfileURL validates a scraped link and canonicalizes it to
// https://www.linkedin.com/in/<handle>: redirect wrappers unwrapped,
// handle lowercased, query and fragment dropped. Anything that is not a
// profile link is rejected.
func CanonicalProfileURL(raw string) (string, error) {
	u, err := url.Parse(unwrapRedirect(strings.TrimSpace(raw)))
	if err != nil {
		return "", fmt.Errorf("unparseable URL %q: %w", raw, err)
	}

	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return "", fmt.Errorf("not a linkedin URL: %q", raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "in" || parts[1] == "" {
		return "", fmt.Errorf("not a profile URL: %q", raw)
	}

	return "https://www.linkedin.com/in/" + strings.ToLower(parts[1]), nil
}

// unwrapRedirect resolves /url?url=<target> wrapper links the search
// engine puts around external results.
func unwrapRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path != "/url" {
		return raw
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return raw
}

// NameFromTitle extracts the person name from a result tile title: the
// text before the earliest spaced dash ("Jane Doe - Acme Corp"). Tiles
// use plain hyphens, en dashes and em dashes interchangeably.
func NameFromTitle(title string) string {
	title = strings.TrimSpace(title)
	cut := len(title)
	for _, sep := range []string{" - ", " – ", " — "} {
		if i := strings.Index(title, sep); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(title[:cut])
}

// DecodeDataURL decodes a base64 image data URL into raw bytes plus a
// file extension derived from the declared MIME type.
func DecodeDataURL(s string) ([]byte, string, error) {
	header, payload, found := strings.Cut(s, ";base64,")
	if !found {
		return nil, "", fmt.Errorf("not a base64 data URL")
	}

	mimeType := strings.ToLower(strings.TrimPrefix(header, "data:"))
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("not an image data URL (%s)", mimeType)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("broken base64 payload: %w", err)
	}

	return raw, extensionFor(mimeType), nil
}

// extensionFor maps a declared image MIME type to a file extension.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	}
	return "bin"
}

// PhotoFilename names a candidate's photo file by a hash of the canonical
// profile URL, which stays stable across re-scrapes.
func PhotoFilename(profileURL, ext string) string {
	sum := sha256.Sum256([]byte(profileURL))
	return hex.EncodeToString(sum[:6]) + "." + ext
}
