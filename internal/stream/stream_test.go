package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"draftwire/internal/document"
)

// recorder implements Handler and keeps every dispatched event in order.
type recorder struct {
	events []any
}

func (r *recorder) OnDocUpdate(ev DocUpdate)         { r.events = append(r.events, ev) }
func (r *recorder) OnAgentStart(ev AgentStart)       { r.events = append(r.events, ev) }
func (r *recorder) OnThinkingStart(ev ThinkingStart) { r.events = append(r.events, ev) }
func (r *recorder) OnThinking(ev Thinking)           { r.events = append(r.events, ev) }
func (r *recorder) OnThinkingEnd(ev ThinkingEnd)     { r.events = append(r.events, ev) }
func (r *recorder) OnContent(ev Content)             { r.events = append(r.events, ev) }
func (r *recorder) OnToolUse(ev ToolUse)             { r.events = append(r.events, ev) }
func (r *recorder) OnToolUpdate(ev ToolUpdate)       { r.events = append(r.events, ev) }
func (r *recorder) OnToolResult(ev ToolResult)       { r.events = append(r.events, ev) }
func (r *recorder) OnTurnEnd(ev TurnEnd)             { r.events = append(r.events, ev) }
func (r *recorder) OnComplete(ev Complete)           { r.events = append(r.events, ev) }
func (r *recorder) OnError(ev Error)                 { r.events = append(r.events, ev) }

func TestEncodeFrameFormat(t *testing.T) {
	frame, err := Encode(NewContent("hello"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got := string(frame)
	if !strings.HasPrefix(got, "data: ") {
		t.Errorf("frame %q does not start with the data prefix", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Errorf("frame %q is not terminated by a blank line", got)
	}
	if strings.Count(got, "\n") != 2 {
		t.Errorf("frame %q carries more than one payload line", got)
	}
	want := `data: {"type":"content","text":"hello"}` + "\n\n"
	if got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
}

func TestDispatchWholeFrames(t *testing.T) {
	idx := 2
	events := []any{
		NewAgentStart("s-1"),
		NewThinkingStart(),
		NewThinking("let me see"),
		NewThinkingEnd(),
		NewToolUse("call-1", "append_section", map[string]any{"title": "T"}),
		NewToolUpdate("call-1", "running"),
		NewDocUpdate(document.Mutation{Operation: document.OpAppend, SectionIndex: &idx, Title: "T", Content: "<p>c</p>"}),
		NewToolResult("call-1", "Appended section 2.", false),
		NewContent("done"),
		NewTurnEnd(),
		NewComplete(),
	}

	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	for _, ev := range events {
		frame, err := Encode(ev)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		d.Feed(frame)
	}
	d.Finish()

	if len(rec.events) != len(events) {
		t.Fatalf("dispatched %d events, want %d", len(rec.events), len(events))
	}

	du, ok := rec.events[6].(DocUpdate)
	if !ok {
		t.Fatalf("event 6 is %T, want DocUpdate", rec.events[6])
	}
	if du.Operation != document.OpAppend || *du.SectionIndex != 2 || du.Title != "T" {
		t.Errorf("doc update = %+v", du)
	}
}

func TestFrameSplitAtEveryByteOffset(t *testing.T) {
	// Multi-byte runes make arbitrary splits land inside a UTF-8 sequence.
	frame, err := Encode(NewContent("naïve résumé ✓ 日本語"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	whole := &recorder{}
	NewDispatcher(whole, nil).Feed(frame)
	if len(whole.events) != 1 {
		t.Fatalf("whole delivery dispatched %d events", len(whole.events))
	}

	for off := 0; off <= len(frame); off++ {
		rec := &recorder{}
		d := NewDispatcher(rec, nil)
		d.Feed(frame[:off])
		d.Feed(frame[off:])
		d.Finish()

		if len(rec.events) != 1 {
			t.Fatalf("split at %d dispatched %d events, want 1", off, len(rec.events))
		}
		if rec.events[0] != whole.events[0] {
			t.Errorf("split at %d dispatched %+v, want %+v", off, rec.events[0], whole.events[0])
		}
	}
}

func TestMalformedFrameIsSkipped(t *testing.T) {
	const valid = 5

	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	d.Feed([]byte("data: {not json at all\n\n"))
	for i := 0; i < valid; i++ {
		frame, err := Encode(NewContent(fmt.Sprintf("chunk %d", i)))
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		d.Feed(frame)
	}
	d.Finish()

	if len(rec.events) != valid {
		t.Errorf("dispatched %d events, want %d", len(rec.events), valid)
	}
}

func TestUnknownTypeIsIgnored(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	d.Feed([]byte(`data: {"type":"hologram","text":"??"}` + "\n\n"))
	d.Feed([]byte(`data: {"type":"content","text":"ok"}` + "\n\n"))
	d.Finish()

	if len(rec.events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(rec.events))
	}
	if ev := rec.events[0].(Content); ev.Text != "ok" {
		t.Errorf("event = %+v", ev)
	}
}

func TestTruncatedFinalFrameDiscarded(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, nil)

	frame, err := Encode(NewContent("complete"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	d.Feed(frame)
	d.Feed([]byte(`data: {"type":"content","text":"cut off`)) // no terminator
	d.Finish()

	if len(rec.events) != 1 {
		t.Errorf("dispatched %d events, want 1 (truncated frame must not dispatch)", len(rec.events))
	}
}

func TestCommentFramesCarryNoEvents(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	d.Feed([]byte(": ping\n\n"))
	d.Feed([]byte("event: ping\n\n"))
	d.Finish()

	if len(rec.events) != 0 {
		t.Errorf("dispatched %d events from keepalive frames, want 0", len(rec.events))
	}
}

func TestConsumeReadsUntilEOF(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		frame, err := Encode(NewThinking(fmt.Sprintf("step %d", i)))
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		buf.Write(frame)
	}

	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	// iotest-style one-byte reader forces worst-case chunking.
	if err := d.Consume(context.Background(), oneByteReader{&buf}); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if len(rec.events) != 3 {
		t.Errorf("dispatched %d events, want 3", len(rec.events))
	}
}

func TestConsumeCancellationIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	if err := d.Consume(ctx, strings.NewReader("data: {\"type\":\"complete\"}\n\n")); err != nil {
		t.Errorf("Consume() after cancellation error = %v, want nil", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("cancelled consume dispatched %d events", len(rec.events))
	}
}

type oneByteReader struct {
	r io.Reader
}

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

func TestSinkSwallowsWritesAfterClose(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, nil)

	if err := s.Send(NewContent("before")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	s.Close()
	if err := s.Send(NewContent("after")); err != nil {
		t.Fatalf("Send() after close error = %v, want swallowed nil", err)
	}

	if strings.Contains(buf.String(), "after") {
		t.Errorf("write after close reached the transport: %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestSinkMarksClosedOnWriteFailure(t *testing.T) {
	s := NewSink(failingWriter{}, nil)
	if err := s.Send(NewContent("x")); err != nil {
		t.Fatalf("Send() error = %v, want nil (disconnect is not an error)", err)
	}
	if !s.Closed() {
		t.Error("sink not marked closed after transport rejection")
	}
}
