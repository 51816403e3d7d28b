package engine

import (
	"strconv"
	"strings"

	"cbthelper/internal/classify"
	"cbthelper/internal/logging"
	"cbthelper/internal/metrics"
	"cbthelper/internal/regulate"
	"cbthelper/internal/render"
	"cbthelper/internal/session"
	"cbthelper/internal/strategy"
	"cbthelper/internal/taxonomy"
)

// AnalyzeRequest describes a stuck agent.
type AnalyzeRequest struct {
	SessionID          string
	Situation          string
	Pattern            string
	AttemptedSolutions []string
	ErrorMessages      []string
	// FrustrationLevel is recorded verbatim when set; otherwise a level is inferred.
	FrustrationLevel *int
}

// AnalyzeResponse is the diagnosis and intervention.
type AnalyzeResponse struct {
	SessionID        string               `json:"session_id"`
	States           []classify.Match     `json:"states"`
	Distortions      []classify.Match     `json:"distortions"`
	Strategy         taxonomy.StrategyKey `json:"strategy"`
	Reason           strategy.Reason      `json:"reason"`
	Replaced         taxonomy.StrategyKey `json:"replaced,omitempty"`
	Outcome          regulate.Outcome     `json:"outcome"`
	FrustrationLevel int                  `json:"frustration_level"`
	Intervention     render.Intervention  `json:"intervention"`
}

func (e *Engine) checkLevel(field string, level *int) error {
	if level == nil {
		return nil
	}
	if !e.regulator.InRange(*level) {
		c := e.regulator.Config()
		return invalid(field, "%d outside [%d,%d]", *level, c.Min, c.Max)
	}
	return nil
}

// record appends a frustration level and returns the outcome. Improving
// outcomes add a progress indicator.
func (e *Engine) record(s *session.Session, level int) regulate.Outcome {
	out := e.regulator.Record(&s.Frustration, level, e.now())
	if out == regulate.Improving {
		s.AddProgress("frustration eased to "+strconv.Itoa(level), e.now())
	}
	metrics.Outcomes.WithLabelValues(string(out)).Inc()
	return out
}

func (e *Engine) selectFor(s *session.Session, res classify.Result, out regulate.Outcome) strategy.Selection {
	sel := e.selector.Select(s, res, out)
	metrics.Interventions.WithLabelValues(string(sel.Strategy), string(sel.Reason)).Inc()
	return sel
}

// Analyze classifies the situation, updates the trajectory, selects a
// strategy and renders the intervention. Unknown sessions are created.
func (e *Engine) Analyze(req AnalyzeRequest) (AnalyzeResponse, error) {
	if strings.TrimSpace(req.Situation) == "" && strings.TrimSpace(req.Pattern) == "" {
		err := invalid("current_situation", "current_situation or pattern is required")
		e.observe("analyze", err)
		return AnalyzeResponse{}, err
	}
	if err := e.checkLevel("frustration_level", req.FrustrationLevel); err != nil {
		e.observe("analyze", err)
		return AnalyzeResponse{}, err
	}

	hints := classify.Hints{
		Pattern:            req.Pattern,
		ErrorMessages:      req.ErrorMessages,
		AttemptedSolutions: req.AttemptedSolutions,
	}
	res := e.classifier.Classify(req.Situation, hints)
	logging.New("engine").Debug("classified", "session_id", req.SessionID,
		"states", len(res.States), "distortions", len(res.Distortions))

	var out AnalyzeResponse
	id, _, err := e.mutate("analyze", req.SessionID, true, func(s *session.Session) error {
		now := e.now()
		s.Interactions++
		text := req.Situation
		if strings.TrimSpace(text) == "" {
			text = req.Pattern
		}
		s.Record(session.EntryProblem, text, now)

		var level int
		if req.FrustrationLevel != nil {
			level = *req.FrustrationLevel
		} else {
			level = e.regulator.Infer(s.Frustration, regulate.Signals{
				States:          res.StateKeys(),
				HasErrors:       len(req.ErrorMessages) > 0,
				PriorErrorLoops: s.ErrorLoops(),
			})
		}
		s.CountStates(res.StateKeys())
		for _, d := range res.Distortions {
			s.CountDistortion(taxonomy.DistortionKey(d.Key))
		}
		outcome := e.record(s, level)
		sel := e.selectFor(s, res, outcome)

		latest, _ := s.Frustration.Latest()
		out = AnalyzeResponse{
			States:           res.States,
			Distortions:      res.Distortions,
			Strategy:         sel.Strategy,
			Reason:           sel.Reason,
			Replaced:         sel.Replaced,
			Outcome:          outcome,
			FrustrationLevel: latest,
			Intervention: render.RenderIntervention(render.InterventionInput{
				Strategy:  sel.Strategy,
				States:    res.StateKeys(),
				Tier:      render.TierFor(outcome),
				Level:     latest,
				Pattern:   req.Pattern,
				Attempts:  len(req.AttemptedSolutions),
				HasErrors: len(req.ErrorMessages) > 0,
			}),
		}
		return nil
	})
	out.SessionID = id
	if out.States == nil {
		out.States = []classify.Match{}
	}
	if out.Distortions == nil {
		out.Distortions = []classify.Match{}
	}
	return out, err
}

// ReframeRequest carries a negative thought.
type ReframeRequest struct {
	SessionID string
	Thought   string
	Context   string
}

// ReframeResponse lists detected distortions and reframes.
type ReframeResponse struct {
	SessionID   string           `json:"session_id"`
	Distortions []classify.Match `json:"distortions"`
	Reframing   render.Reframing `json:"reframing"`
}

// Reframe detects distortions in a thought and renders reframes.
func (e *Engine) Reframe(req ReframeRequest) (ReframeResponse, error) {
	if err := required("negative_thought", req.Thought); err != nil {
		e.observe("reframe", err)
		return ReframeResponse{}, err
	}
	matches := e.classifier.Distortions(req.Thought + " " + req.Context)
	keys := make([]taxonomy.DistortionKey, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, taxonomy.DistortionKey(m.Key))
	}

	id, _, err := e.mutate("reframe", req.SessionID, true, func(s *session.Session) error {
		s.Interactions++
		s.Record(session.EntryThought, req.Thought, e.now())
		for _, k := range keys {
			s.CountDistortion(k)
		}
		return nil
	})
	if matches == nil {
		matches = []classify.Match{}
	}
	return ReframeResponse{
		SessionID:   id,
		Distortions: matches,
		Reframing:   render.RenderReframes(req.Thought, req.Context, keys),
	}, err
}

// RegulateRequest reports frustration. Level is optional.
type RegulateRequest struct {
	SessionID string
	Level     *int
	Trigger   string
}

// RegulateResponse is the regulation outcome and relief.
type RegulateResponse struct {
	SessionID string               `json:"session_id"`
	Level     int                  `json:"level"`
	Outcome   regulate.Outcome     `json:"outcome"`
	Trend     regulate.Trend       `json:"trend"`
	Strategy  taxonomy.StrategyKey `json:"strategy"`
	Reason    strategy.Reason      `json:"reason"`
	Relief    render.Relief        `json:"relief"`
}

// RegulateFrustration records a level (explicit or inferred from the
// trigger) and selects a strategy for the outcome.
func (e *Engine) RegulateFrustration(req RegulateRequest) (RegulateResponse, error) {
	if err := e.checkLevel("frustration_level", req.Level); err != nil {
		e.observe("regulate_frustration", err)
		return RegulateResponse{}, err
	}
	res := e.classifier.Classify(req.Trigger, classify.Hints{})

	var out RegulateResponse
	id, _, err := e.mutate("regulate_frustration", req.SessionID, true, func(s *session.Session) error {
		s.Interactions++
		var level int
		if req.Level != nil {
			level = *req.Level
		} else {
			level = e.regulator.Infer(s.Frustration, regulate.Signals{States: res.StateKeys()})
		}
		s.CountStates(res.StateKeys())
		outcome := e.record(s, level)
		sel := e.selectFor(s, res, outcome)
		latest, _ := s.Frustration.Latest()
		out = RegulateResponse{
			Level:    latest,
			Outcome:  outcome,
			Trend:    regulate.TrendOf(s.Frustration),
			Strategy: sel.Strategy,
			Reason:   sel.Reason,
			Relief: render.RenderRelief(render.ReliefInput{
				Level:    latest,
				Max:      e.cfg.Regulate.Max,
				Trigger:  req.Trigger,
				Outcome:  outcome,
				Window:   e.cfg.Regulate.Window,
				Strategy: sel.Strategy,
			}),
		}
		return nil
	})
	out.SessionID = id
	return out, err
}

// PlanRequest asks for an action plan.
type PlanRequest struct {
	SessionID    string
	Goal         string
	Obstacles    []string
	TimePressure bool
}

// PlanResponse wraps the plan.
type PlanResponse struct {
	SessionID string      `json:"session_id"`
	Plan      render.Plan `json:"plan"`
}

// CreateActionPlan builds a micro-step plan and records the goal.
func (e *Engine) CreateActionPlan(req PlanRequest) (PlanResponse, error) {
	if err := required("goal", req.Goal); err != nil {
		e.observe("create_action_plan", err)
		return PlanResponse{}, err
	}
	id, _, err := e.mutate("create_action_plan", req.SessionID, true, func(s *session.Session) error {
		s.Interactions++
		s.Record(session.EntryGoal, req.Goal, e.now())
		return nil
	})
	return PlanResponse{SessionID: id, Plan: render.ActionPlan(req.Goal, req.Obstacles, req.TimePressure)}, err
}

// WellnessRequest reports time on task.
type WellnessRequest struct {
	SessionID string
	Task      string
	Minutes   int
	Progress  bool
}

// WellnessResponse wraps the assessment.
type WellnessResponse struct {
	SessionID  string            `json:"session_id"`
	Assessment render.Assessment `json:"assessment"`
}

// WellnessCheck assesses cognitive load. Reported progress is kept as a
// progress indicator.
func (e *Engine) WellnessCheck(req WellnessRequest) (WellnessResponse, error) {
	if err := required("current_task", req.Task); err != nil {
		e.observe("wellness_check", err)
		return WellnessResponse{}, err
	}
	if req.Minutes < 0 {
		err := invalid("minutes_on_task", "%d must be >= 0", req.Minutes)
		e.observe("wellness_check", err)
		return WellnessResponse{}, err
	}
	a := render.Wellness(req.Task, req.Minutes, req.Progress)
	id, _, err := e.mutate("wellness_check", req.SessionID, true, func(s *session.Session) error {
		now := e.now()
		s.Interactions++
		s.Record(session.EntryWellness, req.Task, now)
		if req.Progress {
			s.AddProgress("progress on "+req.Task, now)
		}
		return nil
	})
	return WellnessResponse{SessionID: id, Assessment: a}, err
}
