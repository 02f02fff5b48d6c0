package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama2:7b" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Errorf("stream must be false")
		}
		if !strings.Contains(req.Prompt, "the meeting transcript") {
			t.Errorf("prompt does not embed the transcript: %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(generateResponse{
			Model:    req.Model,
			Response: "- point one\n- point two",
			Done:     true,
		})
	}))
	defer srv.Close()

	summary, err := NewClient(srv.URL).GenerateSummary(context.Background(), "the meeting transcript", "llama2:7b")
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if summary != "- point one\n- point two" {
		t.Fatalf("summary = %q", summary)
	}
}

func TestGenerateSummaryNotConfigured(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := NewClient("").GenerateSummary(context.Background(), "text", "m")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
	if calls != 0 {
		t.Fatalf("network calls = %d, want 0", calls)
	}
}

func TestGenerateSummaryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateSummary(context.Background(), "text", "m")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", apiErr.StatusCode)
	}
}

func TestGenerateSummaryMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).GenerateSummary(context.Background(), "text", "m"); err == nil {
		t.Fatal("expected error for malformed response")
	}
}
