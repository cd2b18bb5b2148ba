package stream

import (
	"io"
	"log/slog"
	"sync"
)

// Flusher is the subset of http.Flusher the sink needs. A nil flusher is
// allowed for transports that flush on their own (websocket messages,
// in-memory buffers in tests).
type Flusher interface {
	Flush()
}

// Sink is the push side of the event stream. Operations write frames as
// they complete; once the sink is closed, further sends are silent no-ops
// because the consumer has gone away and there is nobody left to tell.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	f      Flusher
	closed bool
}

// NewSink wraps a transport writer.
func NewSink(w io.Writer, f Flusher) *Sink {
	return &Sink{w: w, f: f}
}

// Send encodes the event and writes it as one frame. A write failure marks
// the sink closed: the transport rejects writes after the consumer
// disconnects, which is the expected end of a stream, not an error.
func (s *Sink) Send(event any) error {
	frame, err := Encode(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if _, err := s.w.Write(frame); err != nil {
		slog.Debug("stream write failed, marking sink closed", "error", err)
		s.closed = true
		return nil
	}
	if s.f != nil {
		s.f.Flush()
	}
	return nil
}

// Ping writes a comment frame carrying no event, keeping idle connections
// alive. Dispatchers skip frames without a payload line.
func (s *Sink) Ping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, err := io.WriteString(s.w, ": ping\n\n"); err != nil {
		s.closed = true
		return
	}
	if s.f != nil {
		s.f.Flush()
	}
}

// Close marks the sink closed. Sends after Close are swallowed.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the sink has been closed or the transport has
// rejected a write.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
