package engine

import (
	"errors"
	"strings"

	"cbthelper/internal/metrics"
	"cbthelper/internal/session"
	"cbthelper/internal/taxonomy"
	"cbthelper/internal/thinking"
)

// Defaults for protocols started without an explicit size.
const (
	DefaultSocraticRounds  = 3
	DefaultRecursiveRounds = 4
	DefaultExperiments     = 3
)

// ThinkingResponse is returned by every protocol start or advance.
// Terminal is set when the protocol had already reached its target.
type ThinkingResponse struct {
	SessionID string          `json:"session_id"`
	Kind      thinking.Kind   `json:"kind"`
	Topic     string          `json:"topic"`
	Phase     *thinking.Phase `json:"phase,omitempty"`
	Terminal  bool            `json:"terminal"`
	Current   int             `json:"current_level"`
	Target    int             `json:"target_level"`
	Remaining int             `json:"remaining"`
	Next      string          `json:"next,omitempty"`
}

func respond(p *thinking.Protocol, ph *thinking.Phase) ThinkingResponse {
	out := ThinkingResponse{
		Kind:      p.Kind,
		Topic:     p.Topic,
		Phase:     ph,
		Terminal:  ph == nil,
		Current:   p.Current,
		Target:    p.Target,
		Remaining: p.Target - p.Current,
	}
	switch {
	case p.Done():
		out.Next = "thinking_session_summary"
	case p.Kind == thinking.KindSocratic:
		out.Next = "next_socratic_round"
	case p.Kind == thinking.KindRecursive:
		out.Next = "next_recursive_round"
	default:
		out.Next = "advance_thinking"
	}
	return out
}

// begin installs p on the session and produces its first phase. An
// unfinished protocol is only replaced when force is set.
func (e *Engine) begin(op, id string, force bool, p *thinking.Protocol) (ThinkingResponse, error) {
	var out ThinkingResponse
	id, _, err := e.mutate(op, id, true, func(s *session.Session) error {
		if cur := s.Thinking; cur != nil && !cur.Done() && !force {
			return violation("session already has an unfinished %s on %q at level %d/%d (set force to replace it)",
				cur.Kind, cur.Topic, cur.Current, cur.Target)
		}
		s.Interactions++
		s.Thinking = p
		ph, _ := p.Advance(e.now())
		metrics.ThinkingPhases.WithLabelValues(string(p.Kind)).Inc()
		out = respond(p, &ph)
		return nil
	})
	out.SessionID = id
	return out, err
}

// step advances the session's protocol. kind "" accepts any protocol.
// level > 0 asserts the level the caller expects to receive.
func (e *Engine) step(op, id string, kind thinking.Kind, level int) (ThinkingResponse, error) {
	if err := required("session_id", id); err != nil {
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	if level < 0 || level > taxonomy.MaxDepth {
		err := invalid("level", "%d outside [1,%d]", level, taxonomy.MaxDepth)
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	var out ThinkingResponse
	id, _, err := e.mutate(op, id, false, func(s *session.Session) error {
		p := s.Thinking
		if p == nil {
			return violation("no active thinking protocol (start one first)")
		}
		if kind != "" && p.Kind != kind {
			return violation("active protocol is %s, not %s", p.Kind, kind)
		}
		if level > 0 {
			ph, err := p.AdvanceTo(level, e.now())
			if err != nil {
				return violation("%v", err)
			}
			s.Interactions++
			metrics.ThinkingPhases.WithLabelValues(string(p.Kind)).Inc()
			out = respond(p, &ph)
			return nil
		}
		ph, ok := p.Advance(e.now())
		s.Interactions++
		if !ok {
			out = respond(p, nil)
			return nil
		}
		metrics.ThinkingPhases.WithLabelValues(string(p.Kind)).Inc()
		out = respond(p, &ph)
		return nil
	})
	out.SessionID = id
	return out, err
}

// InitiateRequest starts a depth ladder.
type InitiateRequest struct {
	SessionID string
	Topic     string
	// Depth is a level key, label or number; empty means the full ladder.
	Depth string
	// Start defaults to the configured minimum level.
	Start int
	Force bool
}

// InitiateDeepThinking creates a depth-ladder protocol and returns its first phase.
func (e *Engine) InitiateDeepThinking(req InitiateRequest) (ThinkingResponse, error) {
	const op = "initiate_deep_thinking"
	if err := required("topic", req.Topic); err != nil {
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	target := taxonomy.MaxDepth
	if strings.TrimSpace(req.Depth) != "" {
		lv, ok := taxonomy.LevelByName(req.Depth)
		if !ok {
			err := invalid("depth", "%q is not a depth level (surface, factual, analytical, critical, synthetic, philosophical, transcendent or 1-7)", req.Depth)
			e.observe(op, err)
			return ThinkingResponse{}, err
		}
		target = lv.Depth
	}
	start := req.Start
	if start == 0 {
		start = e.cfg.MinLevel
	}
	if start > target {
		start = target
	}
	p, err := thinking.NewLadder(req.Topic, target, start, e.now())
	if err != nil {
		err = invalid("start", "%v", err)
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	return e.begin(op, req.SessionID, req.Force, p)
}

// AdvanceThinking produces the next phase of the active protocol, or a
// terminal response once the target has been reached. A non-zero level must
// equal the next level.
func (e *Engine) AdvanceThinking(id string, level int) (ThinkingResponse, error) {
	return e.step("advance_thinking", id, "", level)
}

// SocraticRequest starts a Socratic dialogue.
type SocraticRequest struct {
	SessionID    string
	Topic        string
	DialogueType string
	Rounds       int
	Force        bool
}

// StartSocraticDialogue creates a Socratic protocol and returns round one.
func (e *Engine) StartSocraticDialogue(req SocraticRequest) (ThinkingResponse, error) {
	const op = "start_socratic_dialogue"
	if err := required("topic", req.Topic); err != nil {
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	dt := taxonomy.DialogueKey(req.DialogueType)
	if dt == "" {
		dt = taxonomy.AssumptionExamination
	}
	if _, ok := taxonomy.Dialogue(dt); !ok {
		err := invalid("dialogue_type", "unknown dialogue type %q", req.DialogueType)
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	rounds := req.Rounds
	if rounds == 0 {
		rounds = DefaultSocraticRounds
	}
	p, err := thinking.NewSocratic(req.Topic, dt, rounds, e.now())
	if err != nil {
		err = invalid("depth_level", "%v", err)
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	return e.begin(op, req.SessionID, req.Force, p)
}

// NextSocraticRound advances the active Socratic dialogue.
func (e *Engine) NextSocraticRound(id string) (ThinkingResponse, error) {
	return e.step("next_socratic_round", id, thinking.KindSocratic, 0)
}

// RecursiveRequest starts recursive questioning.
type RecursiveRequest struct {
	SessionID string
	Question  string
	Rounds    int
	Force     bool
}

// StartRecursiveQuestioning creates a recursive protocol and returns level one.
func (e *Engine) StartRecursiveQuestioning(req RecursiveRequest) (ThinkingResponse, error) {
	const op = "start_recursive_questioning"
	if err := required("question", req.Question); err != nil {
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	rounds := req.Rounds
	if rounds == 0 {
		rounds = DefaultRecursiveRounds
	}
	p, err := thinking.NewRecursive(req.Question, rounds, e.now())
	if err != nil {
		err = invalid("depth_level", "%v", err)
		e.observe(op, err)
		return ThinkingResponse{}, err
	}
	return e.begin(op, req.SessionID, req.Force, p)
}

// NextRecursiveRound advances the active recursive questioning.
func (e *Engine) NextRecursiveRound(id string) (ThinkingResponse, error) {
	return e.step("next_recursive_round", id, thinking.KindRecursive, 0)
}

// ThinkingSummaryResponse carries protocol metrics. Found is false for
// unknown sessions; Active is false when the session has no protocol.
type ThinkingSummaryResponse struct {
	Found   bool              `json:"found"`
	Active  bool              `json:"active"`
	Metrics *thinking.Metrics `json:"metrics,omitempty"`
	Phases  []thinking.Phase  `json:"phases,omitempty"`
}

// ThinkingSummary reports depth, breadth and integration for the session's
// protocol without changing it.
func (e *Engine) ThinkingSummary(id string) (ThinkingSummaryResponse, error) {
	const op = "thinking_session_summary"
	if err := required("session_id", id); err != nil {
		e.observe(op, err)
		return ThinkingSummaryResponse{}, err
	}
	out := ThinkingSummaryResponse{}
	err := e.sessions.View(id, func(s *session.Session) {
		out.Found = true
		if s.Thinking == nil {
			return
		}
		m := s.Thinking.Summarize(e.cfg.BreadthMax)
		out.Active = true
		out.Metrics = &m
		out.Phases = s.Thinking.Clone().Phases
	})
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		e.observe(op, err)
		return ThinkingSummaryResponse{}, err
	}
	e.observe(op, nil)
	return out, nil
}

// ResetResponse reports whether a protocol was discarded.
type ResetResponse struct {
	SessionID string `json:"session_id"`
	Reset     bool   `json:"reset"`
}

// ResetThinking discards the session's protocol.
func (e *Engine) ResetThinking(id string) (ResetResponse, error) {
	const op = "reset_thinking"
	if err := required("session_id", id); err != nil {
		e.observe(op, err)
		return ResetResponse{}, err
	}
	out := ResetResponse{SessionID: id}
	_, _, err := e.mutate(op, id, false, func(s *session.Session) error {
		out.Reset = s.Thinking != nil
		s.Thinking = nil
		return nil
	})
	return out, err
}

// Contemplation returns a one-shot guided contemplation. Unknown styles
// fall back to philosophical.
func (e *Engine) Contemplation(topic, style string) (thinking.Contemplation, error) {
	if err := required("topic", topic); err != nil {
		e.observe("contemplation_structure", err)
		return thinking.Contemplation{}, err
	}
	e.observe("contemplation_structure", nil)
	return thinking.ContemplationFor(topic, style), nil
}

// ThoughtExperiments returns count experiments (default 3, at most 5).
func (e *Engine) ThoughtExperiments(concept string, count int) ([]thinking.ThoughtExperiment, error) {
	const op = "thought_experiments"
	if err := required("concept", concept); err != nil {
		e.observe(op, err)
		return nil, err
	}
	if count == 0 {
		count = DefaultExperiments
	}
	if n := len(taxonomy.Experiments()); count < 1 || count > n {
		err := invalid("count", "%d outside [1,%d]", count, n)
		e.observe(op, err)
		return nil, err
	}
	e.observe(op, nil)
	return thinking.ThoughtExperiments(concept, count), nil
}
