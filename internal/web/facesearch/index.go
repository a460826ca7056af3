// Package facesearch builds an in-memory nearest-neighbor index over the
// cached face embeddings of every stored candidate photo. The review API
// uses it to spot one real person showing up as a candidate in several
// cases.
package facesearch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/coder/hnsw"
	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/faceapi"
)

const maxNeighbors = 16

// Face identifies one indexed candidate photo.
type Face struct {
	Slug       string `json:"case"`
	ProfileURL string `json:"profile_url"`
	Name       string `json:"candidate_name"`
}

// Hit is one cross-case neighbor: a face from another case that sits close
// to one of the queried case's faces in embedding space.
type Hit struct {
	Query    Face    `json:"query"`
	Found    Face    `json:"found"`
	Distance float64 `json:"distance"`
}

// Index is an HNSW graph over candidate face embeddings. It is built once
// at startup and read-only afterwards.
type Index struct {
	graph   *hnsw.Graph[int]
	faces   map[int]Face
	vectors map[int][]float32
	bySlug  map[string][]int
}

// Build joins every stored candidate photo with its cached embedding and
// indexes the result. Photos without a cached vector for the given model
// are skipped; verify-mode stores simply yield an empty index.
func Build(ctx context.Context, store casestore.Store, cache casestore.EmbeddingCache, dataDir, model string) (*Index, error) {
	embeddings, err := cache.Embeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load embeddings: %w", err)
	}
	vectors := make(map[string][]float32, len(embeddings))
	for _, e := range embeddings {
		if e.Model == model {
			vectors[e.Key] = e.Vector
		}
	}

	cases, err := store.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list cases: %w", err)
	}

	g := hnsw.NewGraph[int]()
	g.M = maxNeighbors
	g.Ml = 1.0 / float64(maxNeighbors)
	g.Distance = hnsw.CosineDistance

	idx := &Index{
		graph:   g,
		faces:   make(map[int]Face),
		vectors: make(map[int][]float32),
		bySlug:  make(map[string][]int),
	}

	id := 0
	for _, person := range cases {
		candidates, err := store.Candidates(ctx, person.Slug)
		if err != nil {
			return nil, fmt.Errorf("could not load candidates for %s: %w", person.Slug, err)
		}
		for _, cand := range candidates {
			if !cand.HasPhoto() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dataDir, filepath.FromSlash(cand.Photo)))
			if err != nil {
				// A lost photo drops out of the index, not out of the store.
				continue
			}
			vector, ok := vectors[faceapi.ContentKey(data)]
			if !ok {
				continue
			}
			g.Add(hnsw.MakeNode(id, vector))
			idx.faces[id] = Face{Slug: person.Slug, ProfileURL: cand.ProfileURL, Name: cand.Name}
			idx.vectors[id] = vector
			idx.bySlug[person.Slug] = append(idx.bySlug[person.Slug], id)
			id++
		}
	}
	return idx, nil
}

// Count returns the number of indexed faces.
func (idx *Index) Count() int {
	return len(idx.faces)
}

// SimilarTo searches the neighborhood of every indexed face of the given
// case and returns the k closest faces from other cases, nearest first.
// Each foreign face appears at most once, under its closest pairing.
func (idx *Index) SimilarTo(slug string, k int) []Hit {
	if k <= 0 || len(idx.bySlug[slug]) == 0 {
		return nil
	}

	// Over-fetch so same-case neighbors can be filtered out and still
	// leave k foreign ones.
	fetch := k + len(idx.bySlug[slug])

	best := make(map[Face]Hit)
	for _, id := range idx.bySlug[slug] {
		query := idx.vectors[id]
		for _, n := range idx.graph.Search(query, fetch) {
			face := idx.faces[n.Key]
			if face.Slug == slug {
				continue
			}
			distance := faceapi.CosineDistance(query, n.Value)
			prev, ok := best[face]
			if !ok || distance < prev.Distance {
				best[face] = Hit{
					Query:    idx.faces[id],
					Found:    face,
					Distance: distance,
				}
			}
		}
	}

	hits := make([]Hit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
