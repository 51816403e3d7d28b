package thinking

import "cbthelper/internal/taxonomy"

// DefaultBreadthMax is the number of distinct lenses that scores full breadth.
const DefaultBreadthMax = 5

// deepLevel is the first rung counted as synthesis-or-deeper.
const deepLevel = 5

// Metrics summarizes a protocol. All scores are in [0,1].
type Metrics struct {
	Kind             Kind    `json:"kind"`
	Topic            string  `json:"topic"`
	Current          int     `json:"current_level"`
	Target           int     `json:"target_level"`
	Phases           int     `json:"phases"`
	Complete         bool    `json:"complete"`
	DepthScore       float64 `json:"depth_score"`
	BreadthScore     float64 `json:"breadth_score"`
	IntegrationScore float64 `json:"integration_score"`
}

// Summarize computes metrics without modifying p. breadthMax <= 0 uses
// DefaultBreadthMax.
func (p *Protocol) Summarize(breadthMax int) Metrics {
	if breadthMax <= 0 {
		breadthMax = DefaultBreadthMax
	}
	lenses := map[string]bool{}
	deep := 0
	for _, ph := range p.Phases {
		lenses[ph.Lens] = true
		if ph.Level >= deepLevel {
			deep++
		}
	}
	cur := p.Current
	if cur < 0 {
		cur = 0
	}
	n := float64(len(p.Phases))
	return Metrics{
		Kind:             p.Kind,
		Topic:            p.Topic,
		Current:          cur,
		Target:           p.Target,
		Phases:           len(p.Phases),
		Complete:         p.Done(),
		DepthScore:       bound(float64(cur) / taxonomy.MaxDepth),
		BreadthScore:     bound(float64(len(lenses)) / float64(breadthMax)),
		IntegrationScore: bound(0.5*bound(n/taxonomy.MaxDepth) + 0.5*bound(float64(deep)/3)),
	}
}

func bound(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
