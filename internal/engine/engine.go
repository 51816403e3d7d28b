// Package engine is the session and intervention engine. Each exported
// method is one operation: arguments are validated first, then the
// session is read or mutated under its registry lock, then the result is
// rendered. Operations on different sessions never contend.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cbthelper/internal/classify"
	"cbthelper/internal/logging"
	"cbthelper/internal/metrics"
	"cbthelper/internal/regulate"
	"cbthelper/internal/session"
	"cbthelper/internal/strategy"
	"cbthelper/internal/thinking"
)

// Config bundles the component configurations.
type Config struct {
	Regulate     regulate.Config
	Strategy     strategy.Config
	Classify     classify.Options
	SessionTTL   time.Duration
	HistoryLimit int
	BreadthMax   int
	MinLevel     int
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Regulate:     regulate.DefaultConfig(),
		Strategy:     strategy.DefaultConfig(),
		Classify:     classify.Options{HintBonus: classify.DefaultHintBonus},
		SessionTTL:   session.DefaultTTL,
		HistoryLimit: session.DefaultHistoryLimit,
		BreadthMax:   thinking.DefaultBreadthMax,
		MinLevel:     1,
	}
}

// Validate checks the component configurations.
func (c Config) Validate() error {
	if err := c.Regulate.Validate(); err != nil {
		return fmt.Errorf("frustration: %w", err)
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.MinLevel < 1 {
		return fmt.Errorf("thinking.min_level %d must be >= 1", c.MinLevel)
	}
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now for the engine and its registry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBackend persists sessions through b.
func WithBackend(b session.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// Engine runs operations against a session registry.
type Engine struct {
	cfg        Config
	classifier *classify.Classifier
	regulator  *regulate.Regulator
	selector   *strategy.Selector
	sessions   *session.Registry
	backend    session.Backend
	now        func() time.Time
}

// New validates cfg and builds an engine with its own registry.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BreadthMax <= 0 {
		cfg.BreadthMax = thinking.DefaultBreadthMax
	}
	e := &Engine{
		cfg:        cfg,
		classifier: classify.New(cfg.Classify),
		regulator:  regulate.New(cfg.Regulate),
		selector:   strategy.New(cfg.Strategy),
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	e.sessions = session.NewRegistry(session.Options{
		TTL:          cfg.SessionTTL,
		HistoryLimit: cfg.HistoryLimit,
		Backend:      e.backend,
		Now:          e.now,
		OnExpire: func(string) {
			metrics.ExpiredSessions.Inc()
		},
	})
	return e, nil
}

// Sessions exposes the registry for the sweeper and listing.
func (e *Engine) Sessions() *session.Registry { return e.sessions }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// mutate runs fn under the session lock and maps registry errors. It also
// keeps the operation and session gauges current.
func (e *Engine) mutate(op, id string, create bool, fn func(*session.Session) error) (string, bool, error) {
	id, created, err := e.sessions.With(id, create, fn)
	if errors.Is(err, session.ErrNotFound) {
		err = notFound(id)
	}
	e.observe(op, err)
	return id, created, err
}

func (e *Engine) observe(op string, err error) {
	metrics.Operations.WithLabelValues(op, metrics.Result(err)).Inc()
	metrics.ActiveSessions.Set(float64(e.sessions.Len()))
	if err != nil {
		var ee *Error
		if errors.As(err, &ee) && ee.Kind == KindInvalidArgument {
			logging.New("engine").Warn("rejected input", "operation", op, "field", ee.Field, "detail", ee.Detail)
		}
	}
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// StartRequest starts (or resumes) a session.
type StartRequest struct {
	SessionID      string
	InitialProblem string
}

// StartResponse identifies the session.
type StartResponse struct {
	SessionID string    `json:"session_id"`
	Created   bool      `json:"created"`
	CreatedAt time.Time `json:"created_at"`
	TTL       string    `json:"ttl"`
}

// StartSession creates the session, or resumes it when it already exists.
// An empty id gets a generated one.
func (e *Engine) StartSession(req StartRequest) (StartResponse, error) {
	var out StartResponse
	id, created, err := e.mutate("start_session", req.SessionID, true, func(s *session.Session) error {
		if p := strings.TrimSpace(req.InitialProblem); p != "" {
			s.Record(session.EntryProblem, p, e.now())
		}
		out.CreatedAt = s.CreatedAt
		return nil
	})
	out.SessionID, out.Created, out.TTL = id, created, e.sessions.TTL().String()
	return out, err
}

// SummaryResponse is returned by SessionSummary. Found is false for
// unknown ids.
type SummaryResponse struct {
	Found   bool             `json:"found"`
	Summary *session.Summary `json:"summary,omitempty"`
}

// SessionSummary aggregates a session without mutating it.
func (e *Engine) SessionSummary(id string) (SummaryResponse, error) {
	if err := required("session_id", id); err != nil {
		e.observe("session_summary", err)
		return SummaryResponse{}, err
	}
	var out SummaryResponse
	err := e.sessions.View(id, func(s *session.Session) {
		sum := session.Summarize(s, e.cfg.BreadthMax)
		out = SummaryResponse{Found: true, Summary: &sum}
	})
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		e.observe("session_summary", err)
		return SummaryResponse{}, err
	}
	e.observe("session_summary", nil)
	return out, nil
}

// DeleteResponse reports whether a session was removed.
type DeleteResponse struct {
	SessionID string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}

// DeleteSession removes a session and its thinking protocol.
func (e *Engine) DeleteSession(id string) (DeleteResponse, error) {
	if err := required("session_id", id); err != nil {
		e.observe("delete_session", err)
		return DeleteResponse{}, err
	}
	deleted := e.sessions.Delete(id)
	e.observe("delete_session", nil)
	return DeleteResponse{SessionID: id, Deleted: deleted}, nil
}

// ListSessions lists live and persisted sessions.
func (e *Engine) ListSessions() []session.Info {
	out := e.sessions.List()
	e.observe("list_sessions", nil)
	return out
}
