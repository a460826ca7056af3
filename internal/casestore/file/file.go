// Package file implements the default store backend: one JSON document per
// case under cases/, an embeddings.json cache, and a flock-guarded writer
// lock so two commands cannot corrupt the same data dir. Reads never touch
// the lock, so list and show commands work while a scrape is running.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/krizmartin/profile-matcher/internal/casestore"
)

const (
	casesDir     = "cases"
	lockFile     = "store.lock"
	embeddingsFn = "embeddings.json"
)

func init() {
	casestore.Register("file", func(ctx context.Context, target string, opts casestore.Options) (casestore.Store, error) {
		return New(target)
	})
}

// caseDocument is the on-disk shape of one case file.
type caseDocument struct {
	Case       casestore.PersonCase  `json:"case"`
	Candidates []casestore.Candidate `json:"candidates"`
}

type embeddingsDocument struct {
	Embeddings []casestore.StoredEmbedding `json:"embeddings"`
}

// Store keeps everything under a single root directory. The flock is
// acquired lazily on the first mutating call, so a second process can read
// concurrently but only one can write.
type Store struct {
	root string
	lock *flock.Flock

	mu     sync.Mutex
	locked bool
}

// New opens (and creates if needed) a file store rooted at dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store requires a directory, got empty target")
	}
	if err := os.MkdirAll(filepath.Join(dir, casesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	return &Store{
		root: dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// acquireLock takes the cross-process writer lock once per store lifetime.
// Callers must hold s.mu.
func (s *Store) acquireLock() error {
	if s.locked {
		return nil
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return casestore.ErrLocked
	}
	s.locked = true
	return nil
}

func (s *Store) CreateCase(ctx context.Context, c casestore.PersonCase) error {
	if !validSlug(c.Slug) {
		return fmt.Errorf("invalid case slug %q", c.Slug)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquireLock(); err != nil {
		return err
	}

	if _, err := os.Stat(s.casePath(c.Slug)); err == nil {
		return fmt.Errorf("case %q: %w", c.Slug, casestore.ErrCaseExists)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	return s.writeCase(&caseDocument{Case: c})
}

func (s *Store) GetCase(ctx context.Context, slug string) (*casestore.PersonCase, error) {
	doc, err := s.readCase(slug)
	if err != nil {
		return nil, err
	}
	c := doc.Case
	return &c, nil
}

func (s *Store) ListCases(ctx context.Context) ([]casestore.PersonCase, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, casesDir))
	if err != nil {
		return nil, fmt.Errorf("read cases directory: %w", err)
	}

	var cases []casestore.PersonCase
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		slug := entry.Name()[:len(entry.Name())-len(".json")]
		doc, err := s.readCase(slug)
		if err != nil {
			return nil, err
		}
		cases = append(cases, doc.Case)
	}

	sort.Slice(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.Before(cases[j].CreatedAt)
		}
		return cases[i].Slug < cases[j].Slug
	})
	return cases, nil
}

func (s *Store) UpsertCandidate(ctx context.Context, slug, profileURL, name, photo string) (*casestore.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquireLock(); err != nil {
		return nil, err
	}

	doc, err := s.readCase(slug)
	if err != nil {
		return nil, err
	}

	for i := range doc.Candidates {
		if doc.Candidates[i].ProfileURL != profileURL {
			continue
		}
		// Re-scrapes refresh the name and may fill in a photo, but an empty
		// photo never clears a stored one and NoImageToken never replaces a
		// real file. Score and Position always survive.
		if name != "" {
			doc.Candidates[i].Name = name
		}
		switch {
		case photo == "":
		case photo == casestore.NoImageToken && doc.Candidates[i].HasPhoto():
		default:
			doc.Candidates[i].Photo = photo
		}
		if err := s.writeCase(doc); err != nil {
			return nil, err
		}
		stored := doc.Candidates[i]
		return &stored, nil
	}

	candidate := casestore.Candidate{
		ProfileURL:   profileURL,
		Name:         name,
		Photo:        photo,
		Position:     len(doc.Candidates),
		DiscoveredAt: time.Now().UTC(),
	}
	doc.Candidates = append(doc.Candidates, candidate)
	if err := s.writeCase(doc); err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (s *Store) AttachScore(ctx context.Context, slug, profileURL string, score casestore.FaceScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquireLock(); err != nil {
		return err
	}

	doc, err := s.readCase(slug)
	if err != nil {
		return err
	}

	for i := range doc.Candidates {
		if doc.Candidates[i].ProfileURL == profileURL {
			doc.Candidates[i].Score = &score
			return s.writeCase(doc)
		}
	}
	return fmt.Errorf("candidate %q in case %q: %w", profileURL, slug, casestore.ErrUnknownCandidate)
}

func (s *Store) Candidates(ctx context.Context, slug string) ([]casestore.Candidate, error) {
	doc, err := s.readCase(slug)
	if err != nil {
		return nil, err
	}
	// Stored in insertion order already, positions are append-only.
	return doc.Candidates, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		s.locked = false
		return s.lock.Unlock()
	}
	return nil
}

func (s *Store) casePath(slug string) string {
	return filepath.Join(s.root, casesDir, slug+".json")
}

func (s *Store) readCase(slug string) (*caseDocument, error) {
	if !validSlug(slug) {
		return nil, fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
	}
	data, err := os.ReadFile(s.casePath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("case %q: %w", slug, casestore.ErrUnknownCase)
		}
		return nil, fmt.Errorf("read case %s: %w", slug, err)
	}

	var doc caseDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse case %s: %w", slug, err)
	}
	return &doc, nil
}

func (s *Store) writeCase(doc *caseDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal case %s: %w", doc.Case.Slug, err)
	}
	if err := writeFileAtomic(s.casePath(doc.Case.Slug), data, 0o644); err != nil {
		return fmt.Errorf("write case %s: %w", doc.Case.Slug, err)
	}
	return nil
}

// validSlug guards the filesystem against raw user input reaching casePath.
// Slugs only ever contain lowercase letters, digits and dashes.
func validSlug(slug string) bool {
	if slug == "" {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
