package session

import (
	"sort"
	"time"

	"cbthelper/internal/regulate"
	"cbthelper/internal/taxonomy"
	"cbthelper/internal/thinking"
)

// StrategyCount is one row of the strategy usage table.
type StrategyCount struct {
	Strategy taxonomy.StrategyKey `json:"strategy"`
	Count    int                  `json:"count"`
}

// Summary is the read-side aggregation of a session.
type Summary struct {
	SessionID          string                         `json:"session_id"`
	CreatedAt          time.Time                      `json:"created_at"`
	Duration           string                         `json:"duration"`
	TotalInteractions  int                            `json:"total_interactions"`
	States             map[taxonomy.StateKey]int      `json:"states"`
	Distortions        map[taxonomy.DistortionKey]int `json:"distortions"`
	FrustrationTrend   regulate.Trend                 `json:"frustration_trend"`
	FrustrationLevels  []int                          `json:"frustration_levels"`
	CurrentFrustration int                            `json:"current_frustration,omitempty"`
	Strategies         []StrategyCount                `json:"strategies"`
	LastStrategy       taxonomy.StrategyKey           `json:"last_strategy,omitempty"`
	Progress           []Note                         `json:"progress"`
	Thinking           *thinking.Metrics              `json:"thinking,omitempty"`
}

// Summarize aggregates s without modifying it. Duration is measured from
// creation to the last access so repeated calls agree.
func Summarize(s *Session, breadthMax int) Summary {
	sum := Summary{
		SessionID:         s.ID,
		CreatedAt:         s.CreatedAt,
		Duration:          s.LastAccess.Sub(s.CreatedAt).Round(time.Second).String(),
		TotalInteractions: s.Interactions,
		States:            make(map[taxonomy.StateKey]int, len(s.States)),
		Distortions:       make(map[taxonomy.DistortionKey]int, len(s.Distortions)),
		FrustrationTrend:  regulate.TrendOf(s.Frustration),
		FrustrationLevels: make([]int, 0, len(s.Frustration)),
		Strategies:        make([]StrategyCount, 0, len(s.StrategyUsage)),
		LastStrategy:      s.LastUsed,
		Progress:          append([]Note{}, s.Progress...),
	}
	for k, v := range s.States {
		sum.States[k] = v
	}
	for k, v := range s.Distortions {
		sum.Distortions[k] = v
	}
	for _, p := range s.Frustration {
		sum.FrustrationLevels = append(sum.FrustrationLevels, p.Level)
	}
	if lvl, ok := s.Frustration.Latest(); ok {
		sum.CurrentFrustration = lvl
	}
	for k, v := range s.StrategyUsage {
		sum.Strategies = append(sum.Strategies, StrategyCount{Strategy: k, Count: v})
	}
	sort.Slice(sum.Strategies, func(i, j int) bool {
		a, b := sum.Strategies[i], sum.Strategies[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Strategy < b.Strategy
	})
	if s.Thinking != nil {
		m := s.Thinking.Summarize(breadthMax)
		sum.Thinking = &m
	}
	return sum
}
