package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Result-count bounds. Client-supplied counts are clamped into range
// rather than rejected, so a sloppy agent request still succeeds.
const (
	webSearchMinResults     = 1
	webSearchMaxResults     = 10
	webSearchDefaultResults = 5

	imageSearchMinPerPage     = 1
	imageSearchMaxPerPage     = 12
	imageSearchDefaultPerPage = 4
)

// DefaultBackendTimeout bounds one backend call independently of any
// caller timeout.
const DefaultBackendTimeout = 15 * time.Second

// BackendClient posts JSON requests to the search/image backend service.
type BackendClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewBackendClient creates a client for the backend at baseURL. A zero
// timeout falls back to DefaultBackendTimeout.
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
	}
}

// post sends one JSON request and decodes the JSON response. The adapter's
// own timeout is layered onto the caller's context, so an outer abort
// cancels the in-flight call and a slow backend cannot hold the session
// past the adapter deadline.
func (c *BackendClient) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal backend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build backend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// WebResult is one hit returned by the search backend.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type webSearchResponse struct {
	Success bool        `json:"success"`
	Results []WebResult `json:"results"`
	Error   string      `json:"error"`
}

// WebSearchTool queries the web search backend.
type WebSearchTool struct {
	backend *BackendClient
}

// NewWebSearchTool builds a web search adapter over the backend client.
func NewWebSearchTool(backend *BackendClient) *WebSearchTool {
	return &WebSearchTool{backend: backend}
}

// Name implements Tool.
func (*WebSearchTool) Name() string { return "web_search" }

// Description implements Tool.
func (*WebSearchTool) Description() string {
	return "Search the web for current information and return a list of results with titles, URLs and snippets."
}

// Schema implements Tool.
func (*WebSearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query"},
			"maxResults": map[string]any{
				"type":        "integer",
				"minimum":     webSearchMinResults,
				"maximum":     webSearchMaxResults,
				"description": "How many results to return",
			},
		},
		"required": []string{"query"},
	}
}

// Execute implements Tool. Backend failures and timeouts come back as
// textual error results so the agent can retry or change strategy.
func (t *WebSearchTool) Execute(ctx context.Context, _ string, params map[string]any) Result {
	query, ok := stringParam(params, "query")
	if !ok {
		return ErrorResult("missing required field %q", "query")
	}
	maxResults := webSearchDefaultResults
	if n, ok := intParam(params, "maxResults"); ok {
		maxResults = clamp(n, webSearchMinResults, webSearchMaxResults)
	}

	var resp webSearchResponse
	err := t.backend.post(ctx, "/api/search", map[string]any{
		"query":      query,
		"maxResults": maxResults,
	}, &resp)
	if err != nil {
		return ErrorResult("web search failed: %v", err)
	}
	if !resp.Success {
		return ErrorResult("web search failed: %s", resp.Error)
	}
	if len(resp.Results) == 0 {
		return TextResult(fmt.Sprintf("No results found for %q.", query), nil)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Found %d results for %q:\n", len(resp.Results), query)
	for i, r := range resp.Results {
		fmt.Fprintf(&out, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return TextResult(out.String(), map[string]any{"results": resp.Results})
}

// ImageResult is one image returned by the image backend.
type ImageResult struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type imageSearchResponse struct {
	Success bool          `json:"success"`
	Images  []ImageResult `json:"images"`
	Error   string        `json:"error"`
}

// ImageSearchTool queries the image search backend.
type ImageSearchTool struct {
	backend *BackendClient
}

// NewImageSearchTool builds an image search adapter over the backend client.
func NewImageSearchTool(backend *BackendClient) *ImageSearchTool {
	return &ImageSearchTool{backend: backend}
}

// Name implements Tool.
func (*ImageSearchTool) Name() string { return "image_search" }

// Description implements Tool.
func (*ImageSearchTool) Description() string {
	return "Search for images matching the given keywords. Use the returned URLs with insert_image."
}

// Schema implements Tool.
func (*ImageSearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keywords": map[string]any{"type": "string", "description": "Keywords describing the image"},
			"perPage": map[string]any{
				"type":        "integer",
				"minimum":     imageSearchMinPerPage,
				"maximum":     imageSearchMaxPerPage,
				"description": "How many images to return",
			},
		},
		"required": []string{"keywords"},
	}
}

// Execute implements Tool.
func (t *ImageSearchTool) Execute(ctx context.Context, _ string, params map[string]any) Result {
	keywords, ok := stringParam(params, "keywords")
	if !ok {
		return ErrorResult("missing required field %q", "keywords")
	}
	perPage := imageSearchDefaultPerPage
	if n, ok := intParam(params, "perPage"); ok {
		perPage = clamp(n, imageSearchMinPerPage, imageSearchMaxPerPage)
	}

	var resp imageSearchResponse
	err := t.backend.post(ctx, "/api/images", map[string]any{
		"keywords": keywords,
		"perPage":  perPage,
	}, &resp)
	if err != nil {
		return ErrorResult("image search failed: %v", err)
	}
	if !resp.Success {
		return ErrorResult("image search failed: %s", resp.Error)
	}
	if len(resp.Images) == 0 {
		return TextResult(fmt.Sprintf("No images found for %q.", keywords), nil)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Found %d images for %q:\n", len(resp.Images), keywords)
	for i, img := range resp.Images {
		fmt.Fprintf(&out, "%d. %s (%s)\n", i+1, img.URL, img.Description)
	}
	return TextResult(out.String(), map[string]any{"images": resp.Images})
}
