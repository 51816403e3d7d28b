package engine_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cbthelper/internal/engine"
	"cbthelper/internal/regulate"
	"cbthelper/internal/session"
	"cbthelper/internal/store"
	"cbthelper/internal/taxonomy"
	"cbthelper/internal/thinking"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

var t0 = time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)

func fixed() time.Time { return t0 }

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.DefaultConfig(), append([]engine.Option{engine.WithClock(fixed)}, opts...)...)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func intp(v int) *int { return &v }

func TestEndToEnd_PerfectionistLoop(t *testing.T) {
	e := newEngine(t)
	start, err := e.StartSession(engine.StartRequest{SessionID: "s1"})
	if err != nil || !start.Created || start.SessionID != "s1" {
		t.Fatalf("StartSession = %+v, %v", start, err)
	}

	res, err := e.Analyze(engine.AnalyzeRequest{
		SessionID: "s1",
		Situation: "Refactoring for the 5th time",
		Pattern:   "perfectionist loop",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.States) == 0 || res.States[0].Key != string(taxonomy.Perfectionist) {
		t.Fatalf("states = %+v, want perfectionist first", res.States)
	}
	want := engine.DefaultConfig().Strategy.Preferences[taxonomy.Perfectionist]
	if res.Strategy != want {
		t.Fatalf("strategy = %s, want %s", res.Strategy, want)
	}

	sum, err := e.SessionSummary("s1")
	if err != nil || !sum.Found {
		t.Fatalf("SessionSummary = %+v, %v", sum, err)
	}
	if len(sum.Summary.Strategies) != 1 || sum.Summary.Strategies[0].Count != 1 || sum.Summary.Strategies[0].Strategy != want {
		t.Errorf("strategy usage = %+v, want %s:1", sum.Summary.Strategies, want)
	}
	if sum.Summary.States[taxonomy.Perfectionist] != 1 {
		t.Errorf("state counts = %v", sum.Summary.States)
	}
}

func TestAnalyze_AntiRepetitionAcrossCalls(t *testing.T) {
	e := newEngine(t)
	req := engine.AnalyzeRequest{SessionID: "r", Situation: "Refactoring for the 5th time", Pattern: "perfectionist loop"}
	first, _ := e.Analyze(req)
	second, _ := e.Analyze(req)
	if first.Strategy == second.Strategy {
		t.Fatalf("strategy repeated: %s", second.Strategy)
	}
	if second.Replaced != first.Strategy {
		t.Errorf("replaced = %s, want %s", second.Replaced, first.Strategy)
	}
}

func TestAnalyze_ConcurrentSameSession(t *testing.T) {
	e := newEngine(t)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Analyze(engine.AnalyzeRequest{
				SessionID: "hot",
				Situation: fmt.Sprintf("stuck in a loop, attempt %d", i),
			})
			if err != nil {
				t.Errorf("Analyze: %v", err)
			}
		}(i)
	}
	wg.Wait()

	sum, err := e.SessionSummary("hot")
	if err != nil || !sum.Found {
		t.Fatalf("SessionSummary: %+v, %v", sum, err)
	}
	if n := len(sum.Summary.FrustrationLevels); n != 100 {
		t.Errorf("trajectory entries = %d, want 100", n)
	}
	if sum.Summary.TotalInteractions != 100 {
		t.Errorf("interactions = %d, want 100", sum.Summary.TotalInteractions)
	}
	total := 0
	for _, sc := range sum.Summary.Strategies {
		total += sc.Count
	}
	if total != 100 {
		t.Errorf("strategy selections = %d, want 100", total)
	}
}

func TestAnalyze_InvalidInputDoesNotCreateSession(t *testing.T) {
	e := newEngine(t)
	_, err := e.Analyze(engine.AnalyzeRequest{SessionID: "bad", Situation: "stuck", FrustrationLevel: intp(11)})
	if !errors.Is(err, engine.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	var ee *engine.Error
	if !errors.As(err, &ee) || ee.Field != "frustration_level" {
		t.Errorf("error detail = %+v", ee)
	}
	if _, err := e.Analyze(engine.AnalyzeRequest{SessionID: "bad"}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("empty situation: err = %v", err)
	}
	sum, _ := e.SessionSummary("bad")
	if sum.Found {
		t.Error("rejected call created a session")
	}
}

func TestAnalyze_NoMatchFallsBackToDefault(t *testing.T) {
	e := newEngine(t)
	res, err := e.Analyze(engine.AnalyzeRequest{SessionID: "n", Situation: "the weather is nice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.States) != 0 || res.Strategy != taxonomy.SocraticQuestioning {
		t.Errorf("states=%v strategy=%s", res.States, res.Strategy)
	}
}

func TestAnalyze_BlankSituationRecordsPattern(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Analyze(engine.AnalyzeRequest{SessionID: "b", Situation: "  \t ", Pattern: "looping"}); err != nil {
		t.Fatal(err)
	}
	err := e.Sessions().View("b", func(s *session.Session) {
		if len(s.History) != 1 || s.History[0].Text != "looping" {
			t.Errorf("history = %+v, want the pattern", s.History)
		}
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestSessionSummary_IdempotentAndUnknown(t *testing.T) {
	e := newEngine(t)
	_, _ = e.Analyze(engine.AnalyzeRequest{SessionID: "i", Situation: "overwhelmed by too many tasks"})
	_, _ = e.InitiateDeepThinking(engine.InitiateRequest{SessionID: "i", Topic: "scope", Depth: "critical"})
	a, _ := e.SessionSummary("i")
	b, _ := e.SessionSummary("i")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("summaries differ:\n%s", diff)
	}
	if a.Summary.Thinking == nil {
		t.Error("summary missing thinking metrics")
	}

	missing, err := e.SessionSummary("ghost")
	if err != nil || missing.Found {
		t.Errorf("unknown id: %+v, %v", missing, err)
	}
	if _, err := e.SessionSummary(""); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("empty id: err = %v", err)
	}
}

func TestRegulateFrustration_Escalation(t *testing.T) {
	e := newEngine(t)
	var outs []regulate.Outcome
	var last engine.RegulateResponse
	for _, lvl := range []int{3, 5, 7} {
		r, err := e.RegulateFrustration(engine.RegulateRequest{SessionID: "f", Level: intp(lvl), Trigger: "flaky test"})
		if err != nil {
			t.Fatal(err)
		}
		outs = append(outs, r.Outcome)
		last = r
	}
	if diff := cmp.Diff([]regulate.Outcome{regulate.Stable, regulate.Stable, regulate.Escalating}, outs); diff != "" {
		t.Fatalf("outcomes (-want +got):\n%s", diff)
	}
	if last.Strategy != taxonomy.AcceptanceCommitment || last.Relief.Tier != "elevated" {
		t.Errorf("escalation response = %+v", last)
	}
}

func TestRegulateFrustration_CriticalAndImproving(t *testing.T) {
	e := newEngine(t)
	crit, err := e.RegulateFrustration(engine.RegulateRequest{SessionID: "c", Level: intp(9)})
	if err != nil {
		t.Fatal(err)
	}
	if crit.Outcome != regulate.Critical || crit.Strategy != taxonomy.Mindfulness {
		t.Fatalf("critical = %+v", crit)
	}
	imp, _ := e.RegulateFrustration(engine.RegulateRequest{SessionID: "c", Level: intp(4)})
	if imp.Outcome != regulate.Improving {
		t.Fatalf("outcome = %s, want improving", imp.Outcome)
	}
	sum, _ := e.SessionSummary("c")
	if len(sum.Summary.Progress) != 1 {
		t.Errorf("progress = %+v, want one indicator", sum.Summary.Progress)
	}
	_, err = e.RegulateFrustration(engine.RegulateRequest{SessionID: "c", Level: intp(0)})
	var ee *engine.Error
	if !errors.Is(err, engine.ErrInvalidArgument) || !errors.As(err, &ee) || ee.Field != "frustration_level" {
		t.Errorf("level 0: err = %v", err)
	}
}

func TestDeepThinking_LadderMonotonic(t *testing.T) {
	e := newEngine(t)
	first, err := e.InitiateDeepThinking(engine.InitiateRequest{SessionID: "d", Topic: "error handling", Depth: "synthetic"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	levels := []int{first.Phase.Level}
	terminal := 0
	for i := 0; i < 5; i++ {
		r, err := e.AdvanceThinking("d", 0)
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if r.Terminal {
			terminal++
			continue
		}
		levels = append(levels, r.Phase.Level)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, levels); diff != "" {
		t.Fatalf("levels (-want +got):\n%s", diff)
	}
	if terminal != 1 {
		t.Errorf("terminal responses = %d, want 1", terminal)
	}

	ts, err := e.ThinkingSummary("d")
	if err != nil || !ts.Active {
		t.Fatalf("ThinkingSummary = %+v, %v", ts, err)
	}
	if ts.Metrics.Current != 5 || ts.Metrics.DepthScore <= 0 || ts.Metrics.DepthScore > 1 {
		t.Errorf("metrics = %+v", ts.Metrics)
	}
}

func TestDeepThinking_Violations(t *testing.T) {
	e := newEngine(t)
	if _, err := e.AdvanceThinking("nobody", 0); !errors.Is(err, engine.ErrSessionNotFound) {
		t.Fatalf("unknown session: err = %v", err)
	}
	_, _ = e.StartSession(engine.StartRequest{SessionID: "v"})
	if _, err := e.AdvanceThinking("v", 0); !errors.Is(err, engine.ErrProtocolViolation) {
		t.Fatalf("no protocol: err = %v", err)
	}
	if _, err := e.InitiateDeepThinking(engine.InitiateRequest{SessionID: "v", Topic: "t", Depth: "cosmic"}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Fatalf("bad depth: err = %v", err)
	}
	if _, err := e.InitiateDeepThinking(engine.InitiateRequest{SessionID: "v", Topic: "t", Depth: "4"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AdvanceThinking("v", 4); !errors.Is(err, engine.ErrProtocolViolation) {
		t.Errorf("skip: err = %v", err)
	}
	if r, err := e.AdvanceThinking("v", 2); err != nil || r.Phase.Level != 2 {
		t.Errorf("explicit next level: %+v, %v", r, err)
	}
	if _, err := e.InitiateDeepThinking(engine.InitiateRequest{SessionID: "v", Topic: "other"}); !errors.Is(err, engine.ErrProtocolViolation) {
		t.Errorf("replace unfinished: err = %v", err)
	}
	r, err := e.InitiateDeepThinking(engine.InitiateRequest{SessionID: "v", Topic: "other", Force: true})
	if err != nil || r.Topic != "other" || r.Current != 1 {
		t.Errorf("force replace = %+v, %v", r, err)
	}
	if _, err := e.NextSocraticRound("v"); !errors.Is(err, engine.ErrProtocolViolation) {
		t.Errorf("kind mismatch: err = %v", err)
	}

	reset, err := e.ResetThinking("v")
	if err != nil || !reset.Reset {
		t.Fatalf("ResetThinking = %+v, %v", reset, err)
	}
	ts, _ := e.ThinkingSummary("v")
	if !ts.Found || ts.Active {
		t.Errorf("after reset: %+v", ts)
	}
}

func TestSocraticAndRecursive(t *testing.T) {
	e := newEngine(t)
	r, err := e.StartSocraticDialogue(engine.SocraticRequest{SessionID: "q", Topic: "caching", DialogueType: string(taxonomy.ImplicationExploration), Rounds: 2})
	if err != nil || r.Kind != thinking.KindSocratic || r.Phase.Level != 1 {
		t.Fatalf("start socratic = %+v, %v", r, err)
	}
	r, _ = e.NextSocraticRound("q")
	if r.Phase == nil || r.Phase.Level != 2 {
		t.Fatalf("round 2 = %+v", r)
	}
	r, _ = e.NextSocraticRound("q")
	if !r.Terminal {
		t.Fatalf("expected terminal after 2 rounds, got %+v", r)
	}

	// A finished protocol can be replaced without force.
	r, err = e.StartRecursiveQuestioning(engine.RecursiveRequest{SessionID: "q", Question: "Why cache at all?"})
	if err != nil || r.Target != engine.DefaultRecursiveRounds {
		t.Fatalf("start recursive = %+v, %v", r, err)
	}
	r, _ = e.NextRecursiveRound("q")
	if r.Phase.Level != 2 {
		t.Errorf("recursive round = %+v", r)
	}
	if _, err := e.StartSocraticDialogue(engine.SocraticRequest{SessionID: "z", Topic: "x", DialogueType: "shouting"}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("bad dialogue: err = %v", err)
	}
}

func TestReframeAndPlanAndWellness(t *testing.T) {
	e := newEngine(t)
	rf, err := e.Reframe(engine.ReframeRequest{SessionID: "w", Thought: "This approach will fail and it's my fault"})
	if err != nil || len(rf.Distortions) == 0 {
		t.Fatalf("Reframe = %+v, %v", rf, err)
	}
	if _, err := e.Reframe(engine.ReframeRequest{SessionID: "w"}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("empty thought: err = %v", err)
	}

	plan, err := e.CreateActionPlan(engine.PlanRequest{SessionID: "w", Goal: "ship", TimePressure: true})
	if err != nil || len(plan.Plan.ImmediateActions) != 3 {
		t.Fatalf("plan = %+v, %v", plan, err)
	}

	well, err := e.WellnessCheck(engine.WellnessRequest{SessionID: "w", Task: "parser", Minutes: 10, Progress: true})
	if err != nil || well.Assessment.CognitiveLoad != "Manageable" {
		t.Fatalf("wellness = %+v, %v", well, err)
	}
	if _, err := e.WellnessCheck(engine.WellnessRequest{SessionID: "w", Task: "x", Minutes: -1}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("negative minutes: err = %v", err)
	}

	sum, _ := e.SessionSummary("w")
	if sum.Summary.TotalInteractions != 3 || len(sum.Summary.Progress) != 1 {
		t.Errorf("summary = %+v", sum.Summary)
	}
	if len(sum.Summary.Distortions) == 0 {
		t.Error("distortions not counted")
	}
}

func TestStatelessHelpers(t *testing.T) {
	e := newEngine(t)
	c, err := e.Contemplation("naming", "creative")
	if err != nil || c.Style != "creative" {
		t.Fatalf("Contemplation = %+v, %v", c, err)
	}
	exps, err := e.ThoughtExperiments("latency", 0)
	if err != nil || len(exps) != engine.DefaultExperiments {
		t.Fatalf("ThoughtExperiments = %d, %v", len(exps), err)
	}
	if _, err := e.ThoughtExperiments("latency", 9); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("count 9: err = %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	e := newEngine(t)
	_, _ = e.StartSession(engine.StartRequest{SessionID: "a"})
	gen, _ := e.StartSession(engine.StartRequest{})
	if gen.SessionID == "" {
		t.Fatal("no generated id")
	}
	if got := len(e.ListSessions()); got != 2 {
		t.Fatalf("ListSessions = %d, want 2", got)
	}
	del, err := e.DeleteSession("a")
	if err != nil || !del.Deleted {
		t.Fatalf("DeleteSession = %+v, %v", del, err)
	}
	del, _ = e.DeleteSession("a")
	if del.Deleted {
		t.Error("second delete reported a session")
	}
	if _, err := e.AdvanceThinking("a", 0); !errors.Is(err, engine.ErrSessionNotFound) {
		t.Errorf("after delete: err = %v", err)
	}
}

func TestPersistenceAcrossEngines(t *testing.T) {
	backend := store.NewMemStore()
	e1 := newEngine(t, engine.WithBackend(backend))
	_, _ = e1.InitiateDeepThinking(engine.InitiateRequest{SessionID: "p", Topic: "retries", Depth: "analytical"})

	e2 := newEngine(t, engine.WithBackend(backend))
	r, err := e2.AdvanceThinking("p", 0)
	if err != nil || r.Phase == nil || r.Phase.Level != 2 {
		t.Fatalf("resumed advance = %+v, %v", r, err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Regulate.Window = 0
	if _, err := engine.New(cfg); err == nil {
		t.Error("expected error for zero window")
	}
	cfg = engine.DefaultConfig()
	cfg.MinLevel = 0
	if _, err := engine.New(cfg); err == nil {
		t.Error("expected error for min level 0")
	}
}
