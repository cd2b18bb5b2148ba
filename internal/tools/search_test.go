package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebSearchSuccess(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("backend called with path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"results": []map[string]any{
				{"title": "Go", "url": "https://go.dev", "snippet": "The Go programming language"},
			},
		})
	}))
	defer srv.Close()

	tool := NewWebSearchTool(NewBackendClient(srv.URL, 0))
	res := tool.Execute(context.Background(), "c1", map[string]any{
		"query":      "golang",
		"maxResults": float64(3),
	})
	if res.IsError {
		t.Fatalf("web_search failed: %s", res.Text())
	}
	if gotBody["query"] != "golang" || gotBody["maxResults"] != float64(3) {
		t.Errorf("backend received %v", gotBody)
	}
	if !strings.Contains(res.Text(), "https://go.dev") {
		t.Errorf("result text %q does not list the hit", res.Text())
	}
}

func TestWebSearchClampsMaxResults(t *testing.T) {
	tests := []struct {
		name      string
		requested any
		want      float64
	}{
		{name: "too large is clamped down", requested: float64(500), want: webSearchMaxResults},
		{name: "zero is clamped up", requested: float64(0), want: webSearchMinResults},
		{name: "negative is clamped up", requested: float64(-3), want: webSearchMinResults},
		{name: "missing uses default", requested: nil, want: webSearchDefaultResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMax float64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("decode request body: %v", err)
				}
				gotMax, _ = body["maxResults"].(float64)
				json.NewEncoder(w).Encode(map[string]any{"success": true, "results": []any{}})
			}))
			defer srv.Close()

			params := map[string]any{"query": "q"}
			if tt.requested != nil {
				params["maxResults"] = tt.requested
			}
			tool := NewWebSearchTool(NewBackendClient(srv.URL, 0))
			if res := tool.Execute(context.Background(), "c1", params); res.IsError {
				t.Fatalf("web_search failed: %s", res.Text())
			}
			if gotMax != tt.want {
				t.Errorf("backend received maxResults %v, want %v", gotMax, tt.want)
			}
		})
	}
}

func TestWebSearchErrorPaths(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		tool := NewWebSearchTool(NewBackendClient(srv.URL, 0))
		res := tool.Execute(context.Background(), "c1", map[string]any{"query": "q"})
		if !res.IsError {
			t.Fatal("non-2xx response did not produce an error result")
		}
		if !strings.Contains(res.Text(), "502") {
			t.Errorf("error result %q does not carry the status", res.Text())
		}
	})

	t.Run("backend reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "quota exceeded"})
		}))
		defer srv.Close()

		tool := NewWebSearchTool(NewBackendClient(srv.URL, 0))
		res := tool.Execute(context.Background(), "c1", map[string]any{"query": "q"})
		if !res.IsError || !strings.Contains(res.Text(), "quota exceeded") {
			t.Errorf("result = %q, want backend error surfaced", res.Text())
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		tool := NewWebSearchTool(NewBackendClient("http://127.0.0.1:1", 0))
		res := tool.Execute(context.Background(), "c1", map[string]any{"query": "q"})
		if !res.IsError {
			t.Fatal("network failure did not produce an error result")
		}
		if !strings.HasPrefix(res.Text(), "Error: ") {
			t.Errorf("error result %q does not start with Error:", res.Text())
		}
	})

	t.Run("missing query", func(t *testing.T) {
		tool := NewWebSearchTool(NewBackendClient("http://unused", 0))
		res := tool.Execute(context.Background(), "c1", map[string]any{})
		if !res.IsError || !strings.Contains(res.Text(), "query") {
			t.Errorf("result = %q, want missing-query error", res.Text())
		}
	})
}

func TestAdapterTimeoutProducesErrorResult(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	tool := NewWebSearchTool(NewBackendClient(srv.URL, 50*time.Millisecond))
	start := time.Now()
	res := tool.Execute(context.Background(), "c1", map[string]any{"query": "q"})
	if !res.IsError {
		t.Fatal("timed-out request did not produce an error result")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("adapter timeout took %v, its own deadline did not apply", elapsed)
	}
}

func TestAdapterHonorsCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	tool := NewWebSearchTool(NewBackendClient(srv.URL, time.Minute))
	res := tool.Execute(ctx, "c1", map[string]any{"query": "q"})
	if !res.IsError {
		t.Fatal("cancelled request did not produce an error result")
	}
}

func TestImageSearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/images" {
			t.Errorf("backend called with path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"images": []map[string]any{
				{"url": "https://img/1.png", "description": "a mountain"},
			},
		})
	}))
	defer srv.Close()

	tool := NewImageSearchTool(NewBackendClient(srv.URL, 0))
	res := tool.Execute(context.Background(), "c1", map[string]any{
		"keywords": "mountain",
		"perPage":  float64(100),
	})
	if res.IsError {
		t.Fatalf("image_search failed: %s", res.Text())
	}
	if gotBody["keywords"] != "mountain" {
		t.Errorf("backend received %v", gotBody)
	}
	if gotBody["perPage"] != float64(imageSearchMaxPerPage) {
		t.Errorf("perPage = %v, want clamped to %d", gotBody["perPage"], imageSearchMaxPerPage)
	}
	if !strings.Contains(res.Text(), "https://img/1.png") {
		t.Errorf("result text %q does not list the image", res.Text())
	}
}
