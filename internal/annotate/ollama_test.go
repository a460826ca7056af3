package annotate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func ollamaServer(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllamaProvider(server.URL, "test-model")
}

func TestOllamaProvider_Summarize(t *testing.T) {
	var got ollamaRequest
	provider := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("could not decode request: %v", err)
		}
		resp := ollamaResponse{}
		resp.Message.Role = "assistant"
		resp.Message.Content = "  The face similarity clears the threshold and the name matches exactly.\n"
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("could not encode response: %v", err)
		}
	})

	summary, err := provider.Summarize(context.Background(), matchedEntry("Jane Doe"))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "The face similarity clears the threshold and the name matches exactly." {
		t.Errorf("unexpected summary: %q", summary)
	}

	if got.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", got.Model)
	}
	if got.Stream {
		t.Error("streaming should be disabled")
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != summaryPrompt {
		t.Error("first message should carry the system prompt")
	}
	if got.Messages[1].Role != "user" || !strings.Contains(got.Messages[1].Content, "Jane Doe") {
		t.Error("second message should carry the evidence")
	}
}

func TestOllamaProvider_ServerError(t *testing.T) {
	provider := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := provider.Summarize(context.Background(), matchedEntry("Jane Doe"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("error should carry the status code, got: %v", err)
	}
}

func TestOllamaProvider_EmptyResponse(t *testing.T) {
	provider := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(ollamaResponse{}); err != nil {
			t.Fatalf("could not encode response: %v", err)
		}
	})

	_, err := provider.Summarize(context.Background(), matchedEntry("Jane Doe"))
	if err == nil || !strings.Contains(err.Error(), "no response from Ollama") {
		t.Errorf("expected a no-response error, got: %v", err)
	}
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider := NewOllamaProvider("", "")
	if provider.baseURL != defaultOllamaURL {
		t.Errorf("expected default URL, got %q", provider.baseURL)
	}
	if provider.Name() != defaultOllamaModel {
		t.Errorf("expected default model, got %q", provider.Name())
	}

	provider = NewOllamaProvider("http://localhost:11434/", "llama3.2")
	if provider.baseURL != "http://localhost:11434" {
		t.Errorf("trailing slash should be trimmed, got %q", provider.baseURL)
	}
}
