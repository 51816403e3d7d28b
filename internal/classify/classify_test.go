package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cbthelper/internal/taxonomy"
)

func TestClassify_PerfectionistLoop(t *testing.T) {
	c := New(Options{})
	res := c.Classify("Refactoring for the 5th time", Hints{Pattern: "perfectionist loop"})

	top, ok := res.TopState()
	if !ok {
		t.Fatal("expected a state match")
	}
	if top != taxonomy.Perfectionist {
		t.Fatalf("top state = %s, want perfectionist (all: %+v)", top, res.States)
	}
	if !res.States[0].Explicit {
		t.Error("explicit pattern should be flagged on the top match")
	}
	if res.States[0].Confidence != 1 {
		t.Errorf("top confidence = %v, want 1", res.States[0].Confidence)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(Options{})
	inputs := []struct {
		text  string
		hints Hints
	}{
		{"same error again and again, I'm stuck", Hints{ErrorMessages: []string{"E1", "E1"}}},
		{"too many options, can't decide", Hints{}},
		{"", Hints{Pattern: "confused"}},
		{"", Hints{}},
	}
	for _, in := range inputs {
		first := c.Classify(in.text, in.hints)
		for i := 0; i < 20; i++ {
			got := c.Classify(in.text, in.hints)
			if diff := cmp.Diff(first, got); diff != "" {
				t.Fatalf("Classify(%q) not deterministic (-first +got):\n%s", in.text, diff)
			}
		}
	}
}

func TestClassify_NoMatchIsEmpty(t *testing.T) {
	c := New(Options{})
	res := c.Classify("", Hints{})
	if !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if _, ok := res.TopState(); ok {
		t.Error("TopState should report no match")
	}
}

func TestClassify_TiesBreakByDeclarationOrder(t *testing.T) {
	// "stuck" (weight 2) and "unclear" (weight 2) score equally; stuck is declared first.
	c := New(Options{})
	res := c.Classify("stuck and unclear", Hints{})
	if len(res.States) < 2 {
		t.Fatalf("expected two matches, got %+v", res.States)
	}
	if res.States[0].Key != string(taxonomy.Stuck) || res.States[1].Key != string(taxonomy.Confused) {
		t.Errorf("order = %s,%s; want stuck,confused", res.States[0].Key, res.States[1].Key)
	}
	if res.States[0].Rank != 1 || res.States[1].Rank != 2 {
		t.Errorf("ranks = %d,%d", res.States[0].Rank, res.States[1].Rank)
	}
}

func TestClassify_ExplicitHintBonus(t *testing.T) {
	c := New(Options{HintBonus: 10})
	res := c.Classify("too many things and I feel stuck", Hints{Pattern: "blocked"})
	top, _ := res.TopState()
	if top != taxonomy.Blocked {
		t.Fatalf("top = %s, want blocked", top)
	}
}

func TestClassify_RepeatedErrorsSignal(t *testing.T) {
	c := New(Options{})
	res := c.Classify("", Hints{ErrorMessages: []string{"panic: nil map", "Panic: nil map "}})
	top, ok := res.TopState()
	if !ok || top != taxonomy.ErrorLoop {
		t.Fatalf("top = %s (%v), want error_loop", top, ok)
	}
}

func TestClassify_ExtraKeywords(t *testing.T) {
	c := New(Options{ExtraStates: map[taxonomy.StateKey][]taxonomy.Keyword{
		taxonomy.Perfectionist: {{Phrase: "Bikeshed"}},
	}})
	res := c.Classify("we bikeshed the naming", Hints{})
	top, ok := res.TopState()
	if !ok || top != taxonomy.Perfectionist {
		t.Fatalf("top = %s (%v), want perfectionist", top, ok)
	}
}

func TestClassify_ExtraKeywordsStayInTheirTable(t *testing.T) {
	c := New(Options{
		ExtraStates: map[taxonomy.StateKey][]taxonomy.Keyword{
			taxonomy.Catastrophizing: {{Phrase: "meltdown"}},
		},
		ExtraDistortions: map[taxonomy.DistortionKey][]taxonomy.Keyword{
			taxonomy.Labeling: {{Phrase: "hopeless hack"}},
		},
	})
	res := c.Classify("total meltdown", Hints{})
	if top, ok := res.TopState(); !ok || top != taxonomy.Catastrophizing {
		t.Errorf("top state = %s (%v), want catastrophizing", top, ok)
	}
	if len(res.Distortions) != 0 {
		t.Errorf("state phrase leaked into distortions: %+v", res.Distortions)
	}
	res = c.Classify("a hopeless hack", Hints{})
	if len(res.States) != 0 {
		t.Errorf("distortion phrase leaked into states: %+v", res.States)
	}
	if len(res.Distortions) == 0 || res.Distortions[0].Key != string(taxonomy.Labeling) {
		t.Errorf("distortions = %+v, want labeling", res.Distortions)
	}
}

func TestDistortions(t *testing.T) {
	c := New(Options{})
	got := c.Distortions("If this isn't perfect the entire project will fail and it's my fault")
	keys := map[string]bool{}
	for _, m := range got {
		keys[m.Key] = true
	}
	for _, want := range []taxonomy.DistortionKey{taxonomy.Catastrophe, taxonomy.Personalization} {
		if !keys[string(want)] {
			t.Errorf("missing distortion %s in %+v", want, got)
		}
	}
}
