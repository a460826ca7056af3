package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestLogin(t *testing.T) {
	var captured loginRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/session" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request failed: %v", err)
		}
		_, _ = w.Write([]byte(`{"state":{"cookies":[{"name":"li_at","value":"secret"}]}}`))
	})

	session, err := client.Login(context.Background(), "user@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if captured.Username != "user@example.com" || captured.Password != "hunter2" {
		t.Errorf("credentials not forwarded: %+v", captured)
	}
	if string(session) != `{"cookies":[{"name":"li_at","value":"secret"}]}` {
		t.Errorf("session should be the verbatim state object, got %s", session)
	}
}

func TestLogin_EmptyState(t *testing.T) {
	for _, body := range []string{`{}`, `{"state":null}`} {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		if _, err := client.Login(context.Background(), "u", "p"); err == nil {
			t.Errorf("body %s should fail login", body)
		}
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad credentials"))
	})

	_, err := client.Login(context.Background(), "u", "wrong")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestSearch(t *testing.T) {
	session := Session(`{"cookies":[{"name":"li_at"}]}`)

	var captured searchRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []RawResult{
			{URL: "https://www.linkedin.com/in/jane-doe", Title: "Jane Doe - Acme", Image: "no_image"},
			{URL: "https://www.linkedin.com/in/j-doe", Title: "J. Doe - Corp", Image: "data:image/jpeg;base64,AAAA"},
		}})
	})

	results, err := client.Search(context.Background(), session, Query("Jane Doe"), 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if captured.Query != "Jane Doe site:linkedin.com/in" {
		t.Errorf("query = %q", captured.Query)
	}
	if captured.Limit != 10 {
		t.Errorf("limit = %d; want 10", captured.Limit)
	}
	if string(captured.Session) != string(session) {
		t.Errorf("session must pass through verbatim: %s", captured.Session)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://www.linkedin.com/in/jane-doe" || results[0].Image != "no_image" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestSearch_ServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("browser crashed"))
	})

	_, err := client.Search(context.Background(), Session(`{}`), "q", 5)
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "status 502") || !strings.Contains(err.Error(), "browser crashed") {
		t.Errorf("error should carry status and body head: %v", err)
	}
}

func TestSessionSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	session := Session(`{"cookies":[{"name":"li_at","value":"secret"}]}`)

	if err := SaveSession(path, session); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("session file mode = %o; want 600", perm)
		}
	}

	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession returned error: %v", err)
	}
	if string(loaded) != string(session) {
		t.Errorf("round trip changed the session: %s", loaded)
	}
}

func TestLoadSession_Missing(t *testing.T) {
	if _, err := LoadSession(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing session file")
	}
}

func TestLoadSession_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	_, err := LoadSession(path)
	if err == nil {
		t.Fatal("expected error for empty session file")
	}
	if !strings.Contains(err.Error(), "login") {
		t.Errorf("error should point at login: %v", err)
	}
}
