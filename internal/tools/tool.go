// Package tools defines the uniform tool contract consumed by the agent
// loop and implements the document tools and the external search/image
// adapters behind it. Every tool reports failure as a textual result so
// the agent can observe and recover from its own mistakes instead of
// crashing the session.
package tools

import (
	"context"
	"fmt"
)

// Tool is the shape shared by all document and search tools, so the agent
// loop can treat them uniformly.
type Tool interface {
	Name() string
	Description() string
	// Schema returns the JSON schema of the tool's parameters.
	Schema() map[string]any
	Execute(ctx context.Context, callID string, params map[string]any) Result
}

// ContentBlock is one piece of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of one tool call.
type Result struct {
	Content []ContentBlock `json:"content"`
	Details map[string]any `json:"details,omitempty"`
	IsError bool           `json:"-"`
}

// Text returns the concatenated text of the result.
func (r Result) Text() string {
	out := ""
	for _, c := range r.Content {
		out += c.Text
	}
	return out
}

// TextResult builds a successful single-text result.
func TextResult(text string, details map[string]any) Result {
	return Result{
		Content: []ContentBlock{{Type: "text", Text: text}},
		Details: details,
	}
}

// ErrorResult builds a textual error result. It is a result, not a Go
// error: nothing at the tool boundary throws past the agent loop.
func ErrorResult(format string, args ...any) Result {
	return Result{
		Content: []ContentBlock{{Type: "text", Text: "Error: " + fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// stringParam extracts a required string parameter.
func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// optionalString extracts an optional string parameter, defaulting to "".
func optionalString(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

// intParam extracts a required integer parameter. JSON numbers arrive as
// float64; only whole values are accepted.
func intParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
