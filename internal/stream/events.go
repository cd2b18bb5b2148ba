// Package stream implements the multiplexed event protocol between an
// editing session and its remote consumer: the typed event union, the
// newline-delimited frame encoding, the push-side sink, and the
// consumer-side dispatcher that reassembles frames from a byte stream.
package stream

import (
	"draftwire/internal/document"
)

// EventType is the wire tag carried in every frame's "type" field.
// Consumers dispatch purely on this tag, so new kinds can be added
// without breaking existing dispatch logic.
type EventType string

// Wire tags.
const (
	EventDocUpdate     EventType = "doc_update"
	EventAgentStart    EventType = "agent_start"
	EventThinkingStart EventType = "thinking_start"
	EventThinking      EventType = "thinking"
	EventThinkingEnd   EventType = "thinking_end"
	EventContent       EventType = "content"
	EventToolUse       EventType = "tool_use"
	EventToolUpdate    EventType = "tool_update"
	EventToolResult    EventType = "tool_result"
	EventTurnEnd       EventType = "turn_end"
	EventComplete      EventType = "complete"
	EventError         EventType = "error"
)

// DocUpdate carries one document mutation to the remote editor.
type DocUpdate struct {
	Type EventType `json:"type"`
	document.Mutation
}

// NewDocUpdate wraps a mutation record for the wire.
func NewDocUpdate(m document.Mutation) DocUpdate {
	return DocUpdate{Type: EventDocUpdate, Mutation: m}
}

// AgentStart signals that the agent has begun working on a request.
type AgentStart struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
}

// NewAgentStart builds an agent_start event.
func NewAgentStart(sessionID string) AgentStart {
	return AgentStart{Type: EventAgentStart, SessionID: sessionID}
}

// ThinkingStart marks the beginning of a reasoning block.
type ThinkingStart struct {
	Type EventType `json:"type"`
}

// NewThinkingStart builds a thinking_start event.
func NewThinkingStart() ThinkingStart { return ThinkingStart{Type: EventThinkingStart} }

// Thinking carries one reasoning text delta.
type Thinking struct {
	Type EventType `json:"type"`
	Text string    `json:"text"`
}

// NewThinking builds a thinking delta event.
func NewThinking(text string) Thinking { return Thinking{Type: EventThinking, Text: text} }

// ThinkingEnd marks the end of a reasoning block.
type ThinkingEnd struct {
	Type EventType `json:"type"`
}

// NewThinkingEnd builds a thinking_end event.
func NewThinkingEnd() ThinkingEnd { return ThinkingEnd{Type: EventThinkingEnd} }

// Content carries one user-visible response text delta.
type Content struct {
	Type EventType `json:"type"`
	Text string    `json:"text"`
}

// NewContent builds a content delta event.
func NewContent(text string) Content { return Content{Type: EventContent, Text: text} }

// ToolUse signals that the agent is invoking a tool.
type ToolUse struct {
	Type   EventType      `json:"type"`
	CallID string         `json:"callId"`
	Name   string         `json:"name"`
	Input  map[string]any `json:"input,omitempty"`
}

// NewToolUse builds a tool_use event.
func NewToolUse(callID, name string, input map[string]any) ToolUse {
	return ToolUse{Type: EventToolUse, CallID: callID, Name: name, Input: input}
}

// ToolUpdate carries progress for an in-flight tool call.
type ToolUpdate struct {
	Type   EventType `json:"type"`
	CallID string    `json:"callId"`
	Status string    `json:"status"`
}

// NewToolUpdate builds a tool_update event.
func NewToolUpdate(callID, status string) ToolUpdate {
	return ToolUpdate{Type: EventToolUpdate, CallID: callID, Status: status}
}

// ToolResult carries the outcome of a completed tool call.
type ToolResult struct {
	Type    EventType `json:"type"`
	CallID  string    `json:"callId"`
	Content string    `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// NewToolResult builds a tool_result event.
func NewToolResult(callID, content string, isError bool) ToolResult {
	return ToolResult{Type: EventToolResult, CallID: callID, Content: content, IsError: isError}
}

// TurnEnd marks the end of one agent turn.
type TurnEnd struct {
	Type EventType `json:"type"`
}

// NewTurnEnd builds a turn_end event.
func NewTurnEnd() TurnEnd { return TurnEnd{Type: EventTurnEnd} }

// Complete marks the successful end of the session.
type Complete struct {
	Type EventType `json:"type"`
}

// NewComplete builds a complete event.
func NewComplete() Complete { return Complete{Type: EventComplete} }

// Error carries a session-level failure to the consumer.
type Error struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

// NewError builds an error event.
func NewError(message string) Error { return Error{Type: EventError, Message: message} }
