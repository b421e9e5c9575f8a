package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestFetchReturnsMetadata(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://example.com" {
			t.Errorf("upstream received url %q", got)
		}
		json.NewEncoder(w).Encode(Metadata{
			Title:       "Example",
			Description: "An example page",
			Images:      []string{"https://example.com/og.png"},
			URL:         "https://example.com",
		})
	}))
	defer upstream.Close()

	f := New(upstream.URL+"/extract?url=", nil, zap.NewNop())

	meta := f.Fetch(context.Background(), "https://example.com")
	if meta == nil {
		t.Fatal("expected metadata, got nil")
	}
	if meta.Title != "Example" || len(meta.Images) != 1 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestFetchCollapsesFailuresToNil(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer upstream.Close()

	f := New(upstream.URL+"/extract?url=", nil, zap.NewNop())
	if meta := f.Fetch(context.Background(), "https://example.com"); meta != nil {
		t.Errorf("expected nil on upstream failure, got %+v", meta)
	}
}

func TestFetchIgnoresEmptyMetadata(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Metadata{})
	}))
	defer upstream.Close()

	f := New(upstream.URL+"/extract?url=", nil, zap.NewNop())
	if meta := f.Fetch(context.Background(), "https://example.com"); meta != nil {
		t.Errorf("expected nil for empty metadata, got %+v", meta)
	}
}

func TestFetchWithoutCacheHitsUpstreamEachTime(t *testing.T) {
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(Metadata{Title: "Example"})
	}))
	defer upstream.Close()

	f := New(upstream.URL+"/extract?url=", nil, zap.NewNop())
	f.Fetch(context.Background(), "https://example.com")
	f.Fetch(context.Background(), "https://example.com")

	if calls.Load() != 2 {
		t.Errorf("expected 2 upstream calls without a cache, got %d", calls.Load())
	}
}
