// Package strategy chooses the CBT strategy for an intervention.
package strategy

import (
	"fmt"

	"cbthelper/internal/classify"
	"cbthelper/internal/regulate"
	"cbthelper/internal/taxonomy"
)

// Reason records which selection rule produced a strategy.
type Reason string

const (
	ReasonCritical   Reason = "critical"
	ReasonEscalation Reason = "escalation"
	ReasonPreference Reason = "preference"
	ReasonDefault    Reason = "default"
)

// Usage is the per-session history the selector reads and updates.
type Usage interface {
	LastStrategy() taxonomy.StrategyKey
	RecordStrategy(taxonomy.StrategyKey)
}

// Config is the selection policy.
type Config struct {
	Default        taxonomy.StrategyKey
	Critical       taxonomy.StrategyKey
	Escalation     taxonomy.StrategyKey
	AutoEscalation bool
	Preferences    map[taxonomy.StateKey]taxonomy.StrategyKey
	FallbackOrder  []taxonomy.StrategyKey
}

// DefaultConfig maps every agent-state to a preferred strategy.
func DefaultConfig() Config {
	return Config{
		Default:        taxonomy.SocraticQuestioning,
		Critical:       taxonomy.Mindfulness,
		Escalation:     taxonomy.AcceptanceCommitment,
		AutoEscalation: true,
		Preferences: map[taxonomy.StateKey]taxonomy.StrategyKey{
			taxonomy.Stuck:             taxonomy.ProblemSolving,
			taxonomy.ErrorLoop:         taxonomy.ProblemSolving,
			taxonomy.Looping:           taxonomy.SocraticQuestioning,
			taxonomy.Overwhelmed:       taxonomy.BehavioralActivation,
			taxonomy.Confused:          taxonomy.Mindfulness,
			taxonomy.Indecisive:        taxonomy.ThoughtChallenging,
			taxonomy.Catastrophizing:   taxonomy.CognitiveReframing,
			taxonomy.Blocked:           taxonomy.AcceptanceCommitment,
			taxonomy.Fragmented:        taxonomy.Mindfulness,
			taxonomy.Perfectionist:     taxonomy.CostBenefitAnalysis,
			taxonomy.AnalysisParalysis: taxonomy.GradedExposure,
		},
		FallbackOrder: []taxonomy.StrategyKey{
			taxonomy.CognitiveReframing,
			taxonomy.ProblemSolving,
			taxonomy.BehavioralActivation,
			taxonomy.ThoughtChallenging,
			taxonomy.SocraticQuestioning,
			taxonomy.CostBenefitAnalysis,
			taxonomy.GradedExposure,
			taxonomy.AcceptanceCommitment,
			taxonomy.Mindfulness,
		},
	}
}

// Validate checks the named strategies exist. Preference entries are not
// checked; an unknown preferred strategy falls back to Default at selection.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		key  taxonomy.StrategyKey
	}{
		{"default", c.Default},
		{"critical", c.Critical},
		{"escalation", c.Escalation},
	} {
		if _, ok := taxonomy.DescribeStrategy(f.key); !ok {
			return fmt.Errorf("strategy.%s: unknown strategy %q", f.name, f.key)
		}
	}
	return nil
}

// Selection is the selector's verdict.
type Selection struct {
	Strategy taxonomy.StrategyKey `json:"strategy"`
	Reason   Reason               `json:"reason"`
	// Replaced is set when anti-repetition swapped out the first choice.
	Replaced taxonomy.StrategyKey `json:"replaced,omitempty"`
}

// Selector applies Config. It is stateless apart from Config; per-session
// history lives behind Usage.
type Selector struct {
	cfg Config
}

// New returns a selector for cfg.
func New(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// Select picks a strategy and records it on u.
//
// Order: a critical outcome forces the critical strategy; an escalating
// outcome with auto-escalation picks the escalation strategy; otherwise the
// top state's preference, or the default when nothing matched. The
// most-recently-used strategy is then swapped for the next entry of the
// fallback order when another strategy is available.
func (s *Selector) Select(u Usage, res classify.Result, outcome regulate.Outcome) Selection {
	sel := s.choose(res, outcome)
	if sel.Reason != ReasonCritical && sel.Strategy == u.LastStrategy() {
		if alt, ok := s.next(sel.Strategy); ok {
			sel.Replaced = sel.Strategy
			sel.Strategy = alt
		}
	}
	u.RecordStrategy(sel.Strategy)
	return sel
}

func (s *Selector) choose(res classify.Result, outcome regulate.Outcome) Selection {
	switch {
	case outcome == regulate.Critical:
		return Selection{Strategy: s.valid(s.cfg.Critical), Reason: ReasonCritical}
	case outcome == regulate.Escalating && s.cfg.AutoEscalation:
		return Selection{Strategy: s.valid(s.cfg.Escalation), Reason: ReasonEscalation}
	}
	top, ok := res.TopState()
	if !ok {
		return Selection{Strategy: s.valid(s.cfg.Default), Reason: ReasonDefault}
	}
	pref, ok := s.cfg.Preferences[top]
	if !ok {
		return Selection{Strategy: s.valid(s.cfg.Default), Reason: ReasonDefault}
	}
	if _, known := taxonomy.DescribeStrategy(pref); !known {
		return Selection{Strategy: s.valid(s.cfg.Default), Reason: ReasonDefault}
	}
	return Selection{Strategy: pref, Reason: ReasonPreference}
}

// valid returns k when it names a strategy, else Default, else the
// built-in default.
func (s *Selector) valid(k taxonomy.StrategyKey) taxonomy.StrategyKey {
	if _, ok := taxonomy.DescribeStrategy(k); ok {
		return k
	}
	if _, ok := taxonomy.DescribeStrategy(s.cfg.Default); ok {
		return s.cfg.Default
	}
	return taxonomy.SocraticQuestioning
}

// next walks the fallback order cyclically from after k and returns the
// first known strategy different from k.
func (s *Selector) next(k taxonomy.StrategyKey) (taxonomy.StrategyKey, bool) {
	order := s.cfg.FallbackOrder
	start := 0
	for i, o := range order {
		if o == k {
			start = i + 1
			break
		}
	}
	for i := 0; i < len(order); i++ {
		cand := order[(start+i)%len(order)]
		if cand == k {
			continue
		}
		if _, ok := taxonomy.DescribeStrategy(cand); ok {
			return cand, true
		}
	}
	return "", false
}
