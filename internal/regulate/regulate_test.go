package regulate

import (
	"testing"
	"time"

	"cbthelper/internal/taxonomy"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func record(r *Regulator, levels ...int) (Trajectory, []Outcome) {
	var tr Trajectory
	var outs []Outcome
	for i, l := range levels {
		outs = append(outs, r.Record(&tr, l, t0.Add(time.Duration(i)*time.Second)))
	}
	return tr, outs
}

func TestRecord_EscalatesOnRisingWindow(t *testing.T) {
	r := New(DefaultConfig())
	_, outs := record(r, 3, 5, 7)
	if outs[2] != Escalating {
		t.Fatalf("third outcome = %s, want escalating (all %v)", outs[2], outs)
	}
	if outs[0] != Stable || outs[1] != Stable {
		t.Errorf("first outcomes = %v, want stable", outs[:2])
	}
}

func TestRecord_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		levels []int
		want   Outcome
	}{
		{"single high level needs full window", []int{7}, Stable},
		{"plateau above threshold escalates", []int{7, 7, 7}, Escalating},
		{"dip inside window is not escalation", []int{5, 8, 7}, Stable},
		{"emergency is critical immediately", []int{9}, Critical},
		{"drop by delta improves", []int{7, 5}, Improving},
		{"drop below delta is stable", []int{6, 5}, Stable},
		{"plateau below threshold", []int{4, 4, 4}, Stable},
		{"critical wins over improving", []int{10, 10, 9}, Critical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(DefaultConfig())
			_, outs := record(r, tt.levels...)
			if got := outs[len(outs)-1]; got != tt.want {
				t.Errorf("outcome = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecord_AppendOnlyAndClamped(t *testing.T) {
	r := New(DefaultConfig())
	tr, _ := record(r, 4, 42, -3)
	if len(tr) != 3 {
		t.Fatalf("len = %d, want 3", len(tr))
	}
	if tr[0].Level != 4 || tr[1].Level != 10 || tr[2].Level != 1 {
		t.Errorf("levels = %d,%d,%d; want 4,10,1", tr[0].Level, tr[1].Level, tr[2].Level)
	}
	before := tr[0]
	r.Record(&tr, 5, t0)
	if tr[0] != before {
		t.Error("Record modified an earlier entry")
	}
}

func TestRecord_CustomWindowAndThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window = 2
	cfg.HighThreshold = 4
	r := New(cfg)
	_, outs := record(r, 4, 5)
	if outs[1] != Escalating {
		t.Errorf("outcome = %s, want escalating", outs[1])
	}
}

func TestInfer(t *testing.T) {
	r := New(DefaultConfig())
	if got := r.Infer(nil, Signals{}); got != 2 {
		t.Errorf("no history, no signal: got %d, want baseline-1 = 2", got)
	}
	tr := Trajectory{{At: t0, Level: 5}}
	got := r.Infer(tr, Signals{States: []taxonomy.StateKey{taxonomy.ErrorLoop, taxonomy.Overwhelmed, taxonomy.Perfectionist}})
	if got != 7 {
		t.Errorf("two agitating states: got %d, want 7", got)
	}
	got = r.Infer(tr, Signals{States: []taxonomy.StateKey{taxonomy.ErrorLoop}, HasErrors: true, PriorErrorLoops: 2})
	if got != 7 {
		t.Errorf("repeated error loop: got %d, want 7", got)
	}
	tr = Trajectory{{At: t0, Level: 10}}
	if got := r.Infer(tr, Signals{States: []taxonomy.StateKey{taxonomy.ErrorLoop}}); got != 10 {
		t.Errorf("clamp: got %d, want 10", got)
	}
}

func TestTrendOf(t *testing.T) {
	mk := func(levels ...int) Trajectory {
		var tr Trajectory
		for _, l := range levels {
			tr = append(tr, Point{At: t0, Level: l})
		}
		return tr
	}
	tests := []struct {
		tr   Trajectory
		want Trend
	}{
		{mk(), TrendStable},
		{mk(5), TrendStable},
		{mk(2, 3, 6, 8), TrendEscalating},
		{mk(8, 7, 3, 2), TrendImproving},
		{mk(5, 5, 5, 6), TrendStable},
	}
	for i, tt := range tests {
		if got := TrendOf(tt.tr); got != tt.want {
			t.Errorf("case %d: TrendOf = %s, want %s", i, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.Min, bad.Max = 10, 1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for inverted range")
	}
	bad = DefaultConfig()
	bad.Window = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero window")
	}
}
