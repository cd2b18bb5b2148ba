// Package session ties one document-editing interaction together: it owns
// the section store, the outbound event sink, the tool set handed to the
// agent loop, and the mutation log recorder. A session lives exactly as
// long as its stream.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"draftwire/internal/document"
	"draftwire/internal/store"
	"draftwire/internal/stream"
	"draftwire/internal/tools"
)

// DefaultTimeout bounds one session when the config does not say otherwise.
const DefaultTimeout = 5 * time.Minute

// Request describes one editing request.
type Request struct {
	SessionID    string
	Message      string
	DocumentHTML string
}

// Emit pushes one event onto the session's outbound stream.
type Emit func(event any)

// Runner is the external agent loop. It receives the request, the tool
// set, and an emit function for its lifecycle events, and invokes tools
// sequentially: the session relies on at-most-one-call-in-flight and does
// not enforce mutual exclusion itself.
type Runner interface {
	Run(ctx context.Context, req Request, toolset []tools.Tool, emit Emit) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, req Request, toolset []tools.Tool, emit Emit) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, req Request, toolset []tools.Tool, emit Emit) error {
	return f(ctx, req, toolset, emit)
}

// NoAgent returns the Runner used when no agent loop is wired in. It
// tells the consumer why nothing will happen instead of leaving the
// stream silent.
func NoAgent() Runner {
	return RunnerFunc(func(_ context.Context, _ Request, _ []tools.Tool, emit Emit) error {
		emit(stream.NewContent("No agent runner is configured on this server."))
		emit(stream.NewTurnEnd())
		return nil
	})
}

// Config wires one session.
type Config struct {
	Request Request
	Sink    *stream.Sink
	Repo    store.Repository
	// Backend enables the web/image search tools when non-nil.
	Backend *tools.BackendClient
	Timeout time.Duration
	Logger  *slog.Logger
}

// Session is the state of one editing interaction.
type Session struct {
	id      string
	req     Request
	store   *document.Store
	sink    *stream.Sink
	repo    store.Repository
	tools   []tools.Tool
	timeout time.Duration
	logger  *slog.Logger

	ctx       context.Context
	seq       int
	finalSent bool
}

// New constructs a session from an initial HTML snapshot. The section
// store it builds is owned by this session alone and discarded with it.
func New(cfg Config) *Session {
	id := cfg.Request.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repo := cfg.Repo
	if repo == nil {
		repo = store.NewMemory()
	}

	s := &Session{
		id:      id,
		req:     cfg.Request,
		store:   document.NewStore(cfg.Request.DocumentHTML),
		sink:    cfg.Sink,
		repo:    repo,
		timeout: timeout,
		logger:  logger,
		ctx:     context.Background(),
	}
	s.req.SessionID = id

	s.tools = tools.NewDocumentToolset(s.store, s.emit).Tools()
	if cfg.Backend != nil {
		s.tools = append(s.tools,
			tools.NewWebSearchTool(cfg.Backend),
			tools.NewImageSearchTool(cfg.Backend),
		)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Store returns the session's section store.
func (s *Session) Store() *document.Store { return s.store }

// Tools returns the tool set handed to the agent loop.
func (s *Session) Tools() []tools.Tool { return s.tools }

// emit pushes one event to the consumer. Document mutations are also
// appended to the persisted mutation log before they go out, so the log
// never trails what the consumer saw.
func (s *Session) emit(event any) {
	switch ev := event.(type) {
	case stream.DocUpdate:
		if err := s.repo.AppendMutation(s.ctx, s.id, s.seq, ev.Mutation); err != nil {
			s.logger.Warn("failed to record mutation", "session_id", s.id, "seq", s.seq, "error", err)
		}
		s.seq++
	case stream.Complete, stream.Error:
		s.finalSent = true
	}
	if err := s.sink.Send(event); err != nil {
		s.logger.Warn("failed to encode event", "session_id", s.id, "error", err)
	}
}

// Run drives the session to completion: it applies the session timeout,
// hands the tool set to the runner, and guarantees the consumer sees a
// final complete or error event exactly once before the sink closes.
// A consumer disconnect cancels ctx; that terminates the session without
// being reported as a failure.
func (s *Session) Run(ctx context.Context, runner Runner) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.ctx = ctx

	if err := s.repo.CreateSession(ctx, &store.SessionRecord{
		SessionID: s.id,
		Message:   s.req.Message,
	}); err != nil {
		s.logger.Warn("failed to record session", "session_id", s.id, "error", err)
	}

	s.emit(stream.NewAgentStart(s.id))
	err := runner.Run(ctx, s.req, s.tools, s.emit)

	status := store.StatusComplete
	switch {
	case err == nil && ctx.Err() == nil:
		if !s.finalSent {
			s.emit(stream.NewComplete())
		}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		status = store.StatusError
		if !s.finalSent {
			s.emit(stream.NewError("session timed out"))
		}
		s.logger.Warn("session timed out", "session_id", s.id)
	case errors.Is(ctx.Err(), context.Canceled):
		// Consumer walked away; nobody is listening for a final event.
		s.logger.Info("session cancelled by consumer", "session_id", s.id)
	default:
		status = store.StatusError
		if !s.finalSent {
			s.emit(stream.NewError(err.Error()))
		}
		s.logger.Error("agent runner failed", "session_id", s.id, "error", err)
	}

	s.sink.Close()

	// The session ctx may already be dead; the record still gets closed out.
	finishCtx, finishCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer finishCancel()
	if err := s.repo.FinishSession(finishCtx, s.id, status); err != nil {
		s.logger.Warn("failed to finish session record", "session_id", s.id, "error", err)
	}
}
