package regulate

import "cbthelper/internal/taxonomy"

// agitating states raise an inferred level by one each.
var agitating = map[taxonomy.StateKey]bool{
	taxonomy.ErrorLoop:       true,
	taxonomy.Looping:         true,
	taxonomy.Overwhelmed:     true,
	taxonomy.Catastrophizing: true,
	taxonomy.Blocked:         true,
}

// Signals are the classifier-derived inputs to level inference.
type Signals struct {
	States []taxonomy.StateKey
	// HasErrors is true when the caller supplied error messages.
	HasErrors bool
	// PriorErrorLoops counts error-loop detections already on the session.
	PriorErrorLoops int
}

// Infer derives a level when the caller did not report one. It starts from
// the latest recorded level (or the baseline), adds one per agitating state,
// adds one more for errors on a session that has looped on errors before,
// and eases by one when there is no signal at all.
func (r *Regulator) Infer(t Trajectory, s Signals) int {
	level, ok := t.Latest()
	if !ok {
		level = r.cfg.Baseline
	}
	delta := 0
	for _, k := range s.States {
		if agitating[k] {
			delta++
		}
	}
	if s.HasErrors && s.PriorErrorLoops > 0 {
		delta++
	}
	if len(s.States) == 0 && !s.HasErrors {
		delta = -1
	}
	return r.Clamp(level + delta)
}
