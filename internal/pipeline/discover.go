package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/imaging"
	"github.com/krizmartin/profile-matcher/internal/scrape"
)

// DefaultSearchLimit is how many search results one discovery pass asks the
// sidecar for.
const DefaultSearchLimit = 10

// Discovery turns sidecar search results into stored candidates: canonical
// profile URL, cleaned name, thumbnail saved under the data dir.
type Discovery struct {
	client  *scrape.Client
	session scrape.Session
	store   casestore.Store
	dataDir string
	limit   int
}

// NewDiscovery creates a Discovery using a logged-in session. limit <= 0
// falls back to DefaultSearchLimit.
func NewDiscovery(client *scrape.Client, session scrape.Session, store casestore.Store, dataDir string, limit int) *Discovery {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Discovery{
		client:  client,
		session: session,
		store:   store,
		dataDir: dataDir,
		limit:   limit,
	}
}

// FindCandidates searches for the person, converts and deduplicates the
// results and upserts them under the case. Results that cannot be converted
// are logged and dropped; they never abort the search. Returns the number
// of candidates stored.
func (d *Discovery) FindCandidates(ctx context.Context, person casestore.PersonCase) (int, error) {
	results, err := d.client.Search(ctx, d.session, scrape.Query(person.FullName), d.limit)
	if err != nil {
		return 0, fmt.Errorf("search for %q: %w", person.FullName, err)
	}

	stored := 0
	seen := make(map[string]bool, len(results))
	for _, raw := range results {
		cand, err := scrape.Convert(raw)
		if err != nil {
			fmt.Printf("Skipping result %s: %v\n", raw.URL, err)
			continue
		}
		if seen[cand.ProfileURL] {
			continue
		}
		seen[cand.ProfileURL] = true

		photo := casestore.NoImageToken
		if len(cand.Photo) > 0 {
			photo, err = d.savePhoto(person.Slug, cand)
			if err != nil {
				return stored, err
			}
		}

		if _, err := d.store.UpsertCandidate(ctx, person.Slug, cand.ProfileURL, cand.Name, photo); err != nil {
			return stored, fmt.Errorf("could not store candidate %s: %w", cand.ProfileURL, err)
		}
		stored++
	}
	return stored, nil
}

// savePhoto writes the thumbnail under photos/<slug>/ and returns the stored
// path. A re-scraped image identical to the one on disk is left alone so
// repeated runs do not churn files.
func (d *Discovery) savePhoto(slug string, cand scrape.Candidate) (string, error) {
	name := scrape.PhotoFilename(cand.ProfileURL, cand.PhotoExt)
	rel := path.Join("photos", slug, name)
	abs := filepath.Join(d.dataDir, "photos", slug, name)

	if unchanged(abs, cand.Photo) {
		return rel, nil
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("could not create photo dir: %w", err)
	}
	if err := os.WriteFile(abs, cand.Photo, 0o644); err != nil {
		return "", fmt.Errorf("could not write photo %s: %w", rel, err)
	}
	return rel, nil
}

// unchanged reports whether the file at abs already holds an image with the
// same difference hash as fresh.
func unchanged(abs string, fresh []byte) bool {
	existing, err := os.ReadFile(abs)
	if err != nil {
		return false
	}
	oldHash, err := imaging.DHash(existing)
	if err != nil {
		return false
	}
	newHash, err := imaging.DHash(fresh)
	if err != nil {
		return false
	}
	return oldHash == newHash
}

// Verify interface compliance
var _ CandidateFinder = (*Discovery)(nil)
