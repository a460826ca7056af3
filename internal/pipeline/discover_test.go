package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/krizmartin/profile-matcher/internal/casestore"
	"github.com/krizmartin/profile-matcher/internal/casestore/mock"
	"github.com/krizmartin/profile-matcher/internal/scrape"
)

func createGradientImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / width), G: uint8(y * 255 / height), B: 100, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("could not encode png: %v", err)
	}
	return buf.Bytes()
}

func dataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func searchServer(t *testing.T, handler http.HandlerFunc) *scrape.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return scrape.NewClient(server.URL, time.Minute)
}

func resultsBody(t *testing.T, results []scrape.RawResult) []byte {
	t.Helper()
	body, err := json.Marshal(map[string][]scrape.RawResult{"results": results})
	if err != nil {
		t.Fatalf("could not marshal results: %v", err)
	}
	return body
}

func TestDiscovery_FindCandidates(t *testing.T) {
	photo := encodePNG(t, createGradientImage(16, 16))
	results := []scrape.RawResult{
		{
			URL:   "https://www.google.com/url?url=https%3A%2F%2Fwww.linkedin.com%2Fin%2Fjane-doe",
			Title: "Jane Doe - Acme Corp | LinkedIn",
			Image: dataURL(photo),
		},
		{
			URL:   "https://cz.linkedin.com/in/JohnSmith/details",
			Title: "John Smith – Developer",
			Image: "no_image",
		},
		{
			URL:   "https://www.linkedin.com/in/jane-doe?trk=search",
			Title: "Jane Doe again",
			Image: "no_image",
		},
		{
			URL:   "https://twitter.com/janedoe",
			Title: "Jane Doe (@janedoe)",
			Image: "no_image",
		},
	}

	var gotBody struct {
		Session json.RawMessage `json:"session"`
		Query   string          `json:"query"`
		Limit   int             `json:"limit"`
	}
	client := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("could not decode search request: %v", err)
		}
		w.Write(resultsBody(t, results))
	})

	store := mock.NewMockStore()
	person := casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"}
	store.AddCase(person)

	dataDir := t.TempDir()
	session := scrape.Session(`{"cookies":[]}`)
	discovery := NewDiscovery(client, session, store, dataDir, 7)

	stored, err := discovery.FindCandidates(context.Background(), person)
	if err != nil {
		t.Fatalf("FindCandidates failed: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d; want 2", stored)
	}
	if gotBody.Query != scrape.Query("Jane Doe") {
		t.Errorf("query = %q; want %q", gotBody.Query, scrape.Query("Jane Doe"))
	}
	if gotBody.Limit != 7 {
		t.Errorf("limit = %d; want 7", gotBody.Limit)
	}
	if string(gotBody.Session) != string(session) {
		t.Errorf("session = %s; want it forwarded verbatim", gotBody.Session)
	}

	candidates, err := store.Candidates(context.Background(), "jane-doe")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates; want 2", len(candidates))
	}

	first := candidates[0]
	if first.ProfileURL != "https://www.linkedin.com/in/jane-doe" || first.Name != "Jane Doe" {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	wantPhoto := "photos/jane-doe/" + scrape.PhotoFilename("https://www.linkedin.com/in/jane-doe", "png")
	if first.Photo != wantPhoto {
		t.Errorf("photo path = %q; want %q", first.Photo, wantPhoto)
	}
	onDisk, err := os.ReadFile(filepath.Join(dataDir, filepath.FromSlash(wantPhoto)))
	if err != nil {
		t.Fatalf("photo not written: %v", err)
	}
	if !bytes.Equal(onDisk, photo) {
		t.Error("photo on disk differs from the scraped thumbnail")
	}

	second := candidates[1]
	if second.ProfileURL != "https://www.linkedin.com/in/johnsmith" || second.Name != "John Smith" {
		t.Errorf("unexpected second candidate: %+v", second)
	}
	if second.Photo != casestore.NoImageToken {
		t.Errorf("photo = %q; want the no-image marker", second.Photo)
	}
}

func TestDiscovery_DoesNotRewriteUnchangedPhoto(t *testing.T) {
	photo := encodePNG(t, createGradientImage(16, 16))
	serve := photo
	client := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultsBody(t, []scrape.RawResult{{
			URL:   "https://www.linkedin.com/in/jane-doe",
			Title: "Jane Doe - LinkedIn",
			Image: dataURL(serve),
		}}))
	})

	store := mock.NewMockStore()
	person := casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"}
	store.AddCase(person)
	dataDir := t.TempDir()
	discovery := NewDiscovery(client, scrape.Session(`{}`), store, dataDir, 0)

	if _, err := discovery.FindCandidates(context.Background(), person); err != nil {
		t.Fatalf("first FindCandidates failed: %v", err)
	}

	photoPath := filepath.Join(dataDir, "photos", "jane-doe",
		scrape.PhotoFilename("https://www.linkedin.com/in/jane-doe", "png"))
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(photoPath, past, past); err != nil {
		t.Fatalf("could not adjust mtime: %v", err)
	}

	// Same image again, the file on disk must be left alone.
	if _, err := discovery.FindCandidates(context.Background(), person); err != nil {
		t.Fatalf("second FindCandidates failed: %v", err)
	}
	info, err := os.Stat(photoPath)
	if err != nil {
		t.Fatalf("photo disappeared: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Error("unchanged photo was rewritten")
	}

	// A visually different image must replace it.
	serve = encodePNG(t, createTestImage(16, 16, color.RGBA{R: 250, A: 255}))
	if _, err := discovery.FindCandidates(context.Background(), person); err != nil {
		t.Fatalf("third FindCandidates failed: %v", err)
	}
	onDisk, err := os.ReadFile(photoPath)
	if err != nil {
		t.Fatalf("photo disappeared: %v", err)
	}
	if !bytes.Equal(onDisk, serve) {
		t.Error("changed photo was not rewritten")
	}
}

func TestDiscovery_BrokenThumbnailStoredWithoutPhoto(t *testing.T) {
	client := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultsBody(t, []scrape.RawResult{{
			URL:   "https://www.linkedin.com/in/jane-doe",
			Title: "Jane Doe - LinkedIn",
			Image: "data:image/png;base64,@@not-base64@@",
		}}))
	})

	store := mock.NewMockStore()
	person := casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"}
	store.AddCase(person)
	discovery := NewDiscovery(client, scrape.Session(`{}`), store, t.TempDir(), 0)

	stored, err := discovery.FindCandidates(context.Background(), person)
	if err != nil {
		t.Fatalf("FindCandidates failed: %v", err)
	}
	if stored != 1 {
		t.Fatalf("stored = %d; want the profile kept without its photo", stored)
	}
	candidates, _ := store.Candidates(context.Background(), "jane-doe")
	if candidates[0].Photo != casestore.NoImageToken {
		t.Errorf("photo = %q; want the no-image marker", candidates[0].Photo)
	}
}

func TestDiscovery_SearchErrorPropagates(t *testing.T) {
	client := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("browser crashed"))
	})

	store := mock.NewMockStore()
	person := casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"}
	store.AddCase(person)
	discovery := NewDiscovery(client, scrape.Session(`{}`), store, t.TempDir(), 0)

	_, err := discovery.FindCandidates(context.Background(), person)
	if err == nil {
		t.Fatal("expected an error from a failing sidecar")
	}
	if !strings.Contains(err.Error(), `search for "Jane Doe"`) {
		t.Errorf("error should name the person: %v", err)
	}
}

func TestDiscovery_RescrapeRefreshesName(t *testing.T) {
	title := "Jane Doe - Acme Corp"
	client := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultsBody(t, []scrape.RawResult{{
			URL:   "https://www.linkedin.com/in/jane-doe",
			Title: title,
			Image: "no_image",
		}}))
	})

	store := mock.NewMockStore()
	person := casestore.PersonCase{Slug: "jane-doe", FullName: "Jane Doe"}
	store.AddCase(person)
	discovery := NewDiscovery(client, scrape.Session(`{}`), store, t.TempDir(), 0)

	if _, err := discovery.FindCandidates(context.Background(), person); err != nil {
		t.Fatalf("first FindCandidates failed: %v", err)
	}
	title = "Jane Doe Novak - Acme Corp"
	if _, err := discovery.FindCandidates(context.Background(), person); err != nil {
		t.Fatalf("second FindCandidates failed: %v", err)
	}

	candidates, _ := store.Candidates(context.Background(), "jane-doe")
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates; want the same profile upserted once", len(candidates))
	}
	if candidates[0].Name != "Jane Doe Novak" {
		t.Errorf("name = %q; want the refreshed one", candidates[0].Name)
	}
}
