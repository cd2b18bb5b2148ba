package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

// Handler receives decoded events. Every tag has its own method so a
// consumer cannot silently ignore an event kind by forgetting to register
// a callback.
type Handler interface {
	OnDocUpdate(DocUpdate)
	OnAgentStart(AgentStart)
	OnThinkingStart(ThinkingStart)
	OnThinking(Thinking)
	OnThinkingEnd(ThinkingEnd)
	OnContent(Content)
	OnToolUse(ToolUse)
	OnToolUpdate(ToolUpdate)
	OnToolResult(ToolResult)
	OnTurnEnd(TurnEnd)
	OnComplete(Complete)
	OnError(Error)
}

// Dispatcher is the consumer side of the protocol. It reassembles frames
// from a byte stream that may split them at arbitrary delivery boundaries
// and dispatches each frame's event to the handler.
//
// The buffer holds raw bytes rather than decoded text, so a multi-byte
// UTF-8 rune split across two chunks is reassembled before the JSON
// decoder ever sees it.
type Dispatcher struct {
	buf     []byte
	handler Handler
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher delivering to handler.
func NewDispatcher(handler Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handler: handler, logger: logger}
}

// Feed appends one delivered chunk and dispatches every complete frame
// now sitting at the front of the buffer. A malformed frame is logged and
// skipped; it never aborts the stream or drops the valid frames behind it.
func (d *Dispatcher) Feed(chunk []byte) {
	d.buf = append(d.buf, chunk...)
	for {
		end := bytes.Index(d.buf, []byte(frameBoundary))
		if end < 0 {
			return
		}
		frame := d.buf[:end]
		d.buf = d.buf[end+len(frameBoundary):]
		d.dispatchFrame(frame)
	}
}

// Finish signals end-of-stream. A non-empty residue is a truncated final
// frame: it is discarded without partial dispatch.
func (d *Dispatcher) Finish() {
	if len(bytes.TrimSpace(d.buf)) > 0 {
		d.logger.Warn("discarding truncated final frame", "bytes", len(d.buf))
	}
	d.buf = nil
}

// Consume reads the transport until EOF, feeding chunks as they arrive.
// Context cancellation stops reading immediately and is not an error:
// the consumer chose to walk away.
func (d *Dispatcher) Consume(ctx context.Context, r io.Reader) error {
	chunk := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := r.Read(chunk)
		if n > 0 {
			d.Feed(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				d.Finish()
				return nil
			}
			return err
		}
	}
}

// dispatchFrame extracts the frame's payload and routes it by wire tag.
func (d *Dispatcher) dispatchFrame(frame []byte) {
	var payload []byte
	for _, line := range bytes.Split(frame, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, []byte(framePrefix)) {
			// Comment or auxiliary line; not payload.
			continue
		}
		if len(payload) > 0 {
			payload = append(payload, '\n')
		}
		payload = append(payload, line[len(framePrefix):]...)
	}
	if len(payload) == 0 {
		return
	}

	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		d.logger.Warn("skipping malformed frame", "error", err)
		return
	}

	decode := func(v any) bool {
		if err := json.Unmarshal(payload, v); err != nil {
			d.logger.Warn("skipping malformed frame", "type", probe.Type, "error", err)
			return false
		}
		return true
	}

	switch probe.Type {
	case EventDocUpdate:
		var ev DocUpdate
		if decode(&ev) {
			d.handler.OnDocUpdate(ev)
		}
	case EventAgentStart:
		var ev AgentStart
		if decode(&ev) {
			d.handler.OnAgentStart(ev)
		}
	case EventThinkingStart:
		var ev ThinkingStart
		if decode(&ev) {
			d.handler.OnThinkingStart(ev)
		}
	case EventThinking:
		var ev Thinking
		if decode(&ev) {
			d.handler.OnThinking(ev)
		}
	case EventThinkingEnd:
		var ev ThinkingEnd
		if decode(&ev) {
			d.handler.OnThinkingEnd(ev)
		}
	case EventContent:
		var ev Content
		if decode(&ev) {
			d.handler.OnContent(ev)
		}
	case EventToolUse:
		var ev ToolUse
		if decode(&ev) {
			d.handler.OnToolUse(ev)
		}
	case EventToolUpdate:
		var ev ToolUpdate
		if decode(&ev) {
			d.handler.OnToolUpdate(ev)
		}
	case EventToolResult:
		var ev ToolResult
		if decode(&ev) {
			d.handler.OnToolResult(ev)
		}
	case EventTurnEnd:
		var ev TurnEnd
		if decode(&ev) {
			d.handler.OnTurnEnd(ev)
		}
	case EventComplete:
		var ev Complete
		if decode(&ev) {
			d.handler.OnComplete(ev)
		}
	case EventError:
		var ev Error
		if decode(&ev) {
			d.handler.OnError(ev)
		}
	default:
		d.logger.Debug("ignoring unknown event type", "type", probe.Type)
	}
}
