// Package regulate tracks a session's frustration trajectory and detects
// escalation over a trailing window.
package regulate

import (
	"fmt"
	"time"
)

// Outcome is the regulation verdict for the latest trajectory entry.
type Outcome string

const (
	Stable     Outcome = "stable"
	Improving  Outcome = "improving"
	Escalating Outcome = "escalating"
	Critical   Outcome = "critical"
)

// Trend classifies a whole trajectory.
type Trend string

const (
	TrendImproving  Trend = "improving"
	TrendStable     Trend = "stable"
	TrendEscalating Trend = "escalating"
)

// Point is one recorded frustration level.
type Point struct {
	At    time.Time `json:"at"`
	Level int       `json:"level"`
}

// Trajectory is the append-only sequence of recorded levels.
type Trajectory []Point

// Latest returns the most recent level.
func (t Trajectory) Latest() (int, bool) {
	if len(t) == 0 {
		return 0, false
	}
	return t[len(t)-1].Level, true
}

// Config bounds the level scale and sets escalation thresholds. A level
// escalates when it is strictly greater than HighThreshold and is critical
// when strictly greater than EmergencyThreshold.
type Config struct {
	Min                int
	Max                int
	HighThreshold      int
	EmergencyThreshold int
	Window             int
	ImprovementDelta   int
	Baseline           int
}

// DefaultConfig is the 1-10 scale with escalation above 6 and emergency above 8.
func DefaultConfig() Config {
	return Config{
		Min:                1,
		Max:                10,
		HighThreshold:      6,
		EmergencyThreshold: 8,
		Window:             3,
		ImprovementDelta:   2,
		Baseline:           3,
	}
}

// Validate checks the scale is ordered and thresholds lie inside it.
func (c Config) Validate() error {
	if c.Min >= c.Max {
		return fmt.Errorf("frustration range: min %d must be below max %d", c.Min, c.Max)
	}
	if c.HighThreshold < c.Min || c.HighThreshold > c.Max {
		return fmt.Errorf("high_threshold %d outside range [%d,%d]", c.HighThreshold, c.Min, c.Max)
	}
	if c.EmergencyThreshold < c.HighThreshold || c.EmergencyThreshold > c.Max {
		return fmt.Errorf("emergency_threshold %d must be in [%d,%d]", c.EmergencyThreshold, c.HighThreshold, c.Max)
	}
	if c.Window < 1 {
		return fmt.Errorf("window must be >= 1, got %d", c.Window)
	}
	if c.ImprovementDelta < 1 {
		return fmt.Errorf("improvement_delta must be >= 1, got %d", c.ImprovementDelta)
	}
	if c.Baseline < c.Min || c.Baseline > c.Max {
		return fmt.Errorf("baseline %d outside range [%d,%d]", c.Baseline, c.Min, c.Max)
	}
	return nil
}

// Regulator is a pure transition function over a trajectory tail. It holds
// only configuration and is safe for concurrent use.
type Regulator struct {
	cfg Config
}

// New returns a regulator for cfg. cfg should already be validated.
func New(cfg Config) *Regulator {
	return &Regulator{cfg: cfg}
}

// Config returns the regulator's configuration.
func (r *Regulator) Config() Config { return r.cfg }

// InRange reports whether level lies on the configured scale.
func (r *Regulator) InRange(level int) bool {
	return level >= r.cfg.Min && level <= r.cfg.Max
}

// Clamp forces level onto the configured scale.
func (r *Regulator) Clamp(level int) int {
	if level < r.cfg.Min {
		return r.cfg.Min
	}
	if level > r.cfg.Max {
		return r.cfg.Max
	}
	return level
}

// Record appends the clamped level to t and evaluates the new tail.
// Prior entries are never modified.
func (r *Regulator) Record(t *Trajectory, level int, at time.Time) Outcome {
	*t = append(*t, Point{At: at, Level: r.Clamp(level)})
	return r.Evaluate(*t)
}

// Evaluate classifies the latest entry of t.
func (r *Regulator) Evaluate(t Trajectory) Outcome {
	latest, ok := t.Latest()
	if !ok {
		return Stable
	}
	if latest > r.cfg.EmergencyThreshold {
		return Critical
	}
	if len(t) >= 2 && t[len(t)-2].Level-latest >= r.cfg.ImprovementDelta {
		return Improving
	}
	if latest > r.cfg.HighThreshold && r.risingWindow(t) {
		return Escalating
	}
	return Stable
}

// risingWindow reports whether the last Window entries are non-decreasing.
// A window that is not yet full never escalates.
func (r *Regulator) risingWindow(t Trajectory) bool {
	k := r.cfg.Window
	if len(t) < k {
		return false
	}
	tail := t[len(t)-k:]
	for i := 1; i < len(tail); i++ {
		if tail[i].Level < tail[i-1].Level {
			return false
		}
	}
	return true
}

// TrendOf compares the mean of the first half of t with the second half.
// A shift of at least one level either way is a trend.
func TrendOf(t Trajectory) Trend {
	if len(t) < 2 {
		return TrendStable
	}
	mid := len(t) / 2
	first, second := mean(t[:mid]), mean(t[mid:])
	switch {
	case second-first >= 1:
		return TrendEscalating
	case first-second >= 1:
		return TrendImproving
	default:
		return TrendStable
	}
}

func mean(ps []Point) float64 {
	if len(ps) == 0 {
		return 0
	}
	sum := 0
	for _, p := range ps {
		sum += p.Level
	}
	return float64(sum) / float64(len(ps))
}
