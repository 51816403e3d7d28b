package strategy

import (
	"strings"
	"testing"

	"cbthelper/internal/classify"
	"cbthelper/internal/regulate"
	"cbthelper/internal/taxonomy"
)

type fakeUsage struct {
	last   taxonomy.StrategyKey
	counts map[taxonomy.StrategyKey]int
}

func (f *fakeUsage) LastStrategy() taxonomy.StrategyKey { return f.last }

func (f *fakeUsage) RecordStrategy(k taxonomy.StrategyKey) {
	if f.counts == nil {
		f.counts = map[taxonomy.StrategyKey]int{}
	}
	f.counts[k]++
	f.last = k
}

func matched(keys ...taxonomy.StateKey) classify.Result {
	var r classify.Result
	for i, k := range keys {
		r.States = append(r.States, classify.Match{Key: string(k), Score: 10 - i, Rank: i + 1})
	}
	return r
}

func TestSelect_Preference(t *testing.T) {
	s := New(DefaultConfig())
	u := &fakeUsage{}
	sel := s.Select(u, matched(taxonomy.Perfectionist), regulate.Stable)
	if sel.Strategy != taxonomy.CostBenefitAnalysis || sel.Reason != ReasonPreference {
		t.Fatalf("selection = %+v", sel)
	}
	if u.counts[taxonomy.CostBenefitAnalysis] != 1 {
		t.Errorf("usage counter = %d, want 1", u.counts[taxonomy.CostBenefitAnalysis])
	}
}

func TestSelect_AntiRepetition(t *testing.T) {
	s := New(DefaultConfig())
	u := &fakeUsage{}
	first := s.Select(u, matched(taxonomy.Perfectionist), regulate.Stable)
	second := s.Select(u, matched(taxonomy.Perfectionist), regulate.Stable)
	if second.Strategy == first.Strategy {
		t.Fatalf("strategy repeated: %s", second.Strategy)
	}
	if second.Replaced != first.Strategy {
		t.Errorf("Replaced = %s, want %s", second.Replaced, first.Strategy)
	}
	// cost_benefit_analysis is followed by graded_exposure in the fallback order.
	if second.Strategy != taxonomy.GradedExposure {
		t.Errorf("substitute = %s, want graded_exposure", second.Strategy)
	}
	third := s.Select(u, matched(taxonomy.Perfectionist), regulate.Stable)
	if third.Strategy != taxonomy.CostBenefitAnalysis {
		t.Errorf("third = %s, want preference again", third.Strategy)
	}
}

func TestSelect_AntiRepetitionWrapsFallbackOrder(t *testing.T) {
	s := New(DefaultConfig())
	u := &fakeUsage{last: taxonomy.Mindfulness}
	sel := s.Select(u, matched(taxonomy.Confused), regulate.Stable)
	if sel.Strategy != taxonomy.CognitiveReframing {
		t.Errorf("got %s, want cognitive_reframing (wrap to start)", sel.Strategy)
	}
}

func TestSelect_SingleStrategyKeepsRepeat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackOrder = []taxonomy.StrategyKey{taxonomy.CostBenefitAnalysis}
	s := New(cfg)
	u := &fakeUsage{last: taxonomy.CostBenefitAnalysis}
	sel := s.Select(u, matched(taxonomy.Perfectionist), regulate.Stable)
	if sel.Strategy != taxonomy.CostBenefitAnalysis || sel.Replaced != "" {
		t.Errorf("selection = %+v, want unchanged repeat", sel)
	}
}

func TestSelect_CriticalOverridesEverything(t *testing.T) {
	s := New(DefaultConfig())
	u := &fakeUsage{last: taxonomy.Mindfulness}
	sel := s.Select(u, matched(taxonomy.Perfectionist), regulate.Critical)
	if sel.Strategy != taxonomy.Mindfulness || sel.Reason != ReasonCritical {
		t.Fatalf("selection = %+v, want critical mindfulness", sel)
	}
}

func TestSelect_Escalation(t *testing.T) {
	s := New(DefaultConfig())
	sel := s.Select(&fakeUsage{}, matched(taxonomy.Perfectionist), regulate.Escalating)
	if sel.Strategy != taxonomy.AcceptanceCommitment || sel.Reason != ReasonEscalation {
		t.Fatalf("selection = %+v", sel)
	}

	cfg := DefaultConfig()
	cfg.AutoEscalation = false
	sel = New(cfg).Select(&fakeUsage{}, matched(taxonomy.Perfectionist), regulate.Escalating)
	if sel.Reason != ReasonPreference {
		t.Errorf("auto-escalation off: reason = %s, want preference", sel.Reason)
	}
}

func TestSelect_NoMatchUsesDefault(t *testing.T) {
	s := New(DefaultConfig())
	sel := s.Select(&fakeUsage{}, classify.Result{}, regulate.Stable)
	if sel.Strategy != taxonomy.SocraticQuestioning || sel.Reason != ReasonDefault {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestSelect_InvalidMappingFallsBackToDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preferences = map[taxonomy.StateKey]taxonomy.StrategyKey{taxonomy.Perfectionist: "yoga"}
	sel := New(cfg).Select(&fakeUsage{}, matched(taxonomy.Perfectionist), regulate.Stable)
	if sel.Strategy != cfg.Default || sel.Reason != ReasonDefault {
		t.Fatalf("selection = %+v, want default", sel)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Critical = "nap"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown critical strategy")
	}
}

func TestConfigValidate_ReportsFirstFieldInOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Default = "nap"
	cfg.Critical = "snack"
	cfg.Escalation = "walk"
	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "strategy.default") {
			t.Fatalf("run %d: err = %v, want strategy.default", i, err)
		}
	}
}
