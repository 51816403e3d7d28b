package format_test

import (
	"strings"
	"testing"
	"time"

	"cbthelper/internal/format"
	"cbthelper/internal/regulate"
	"cbthelper/internal/session"
	"cbthelper/internal/taxonomy"
	"cbthelper/internal/thinking"
)

func TestTable_ASCIIAndMarkdownDiffer(t *testing.T) {
	build := func(m format.Mode) string {
		tb := format.NewTable(m)
		tb.Header("Strategy", "Count")
		tb.Row("mindfulness", 2)
		tb.Footer("TOTAL", 2)
		return tb.String()
	}
	ascii, md := build(format.ASCII), build(format.Markdown)
	if !strings.Contains(ascii, "───") {
		t.Errorf("expected box-drawing characters:\n%s", ascii)
	}
	if !strings.Contains(md, "| Strategy") || !strings.Contains(md, "---") {
		t.Errorf("expected markdown table:\n%s", md)
	}
	for _, out := range []string{ascii, md} {
		if !strings.Contains(out, "mindfulness") || !strings.Contains(out, "TOTAL") {
			t.Errorf("missing data:\n%s", out)
		}
	}
}

func TestParseMode(t *testing.T) {
	if format.ParseMode("MD") != format.Markdown || format.ParseMode("markdown") != format.Markdown {
		t.Error("markdown aliases not recognized")
	}
	if format.ParseMode("table") != format.ASCII {
		t.Error("unknown mode should be ASCII")
	}
}

func TestSessions(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := format.Sessions(format.ASCII, []session.Info{
		{ID: "alpha", CreatedAt: now.Add(-time.Hour), LastAccess: now.Add(-90 * time.Second), Interactions: 4, Thinking: true},
		{ID: "beta", CreatedAt: now, LastAccess: now, Persisted: true},
	}, now)
	for _, want := range []string{"alpha", "beta", "1m 30s", "✓", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestSummary(t *testing.T) {
	sum := &session.Summary{
		SessionID:         "s1",
		Duration:          "5m0s",
		TotalInteractions: 3,
		States:            map[taxonomy.StateKey]int{taxonomy.Perfectionist: 2},
		Distortions:       map[taxonomy.DistortionKey]int{taxonomy.FortuneTelling: 1},
		FrustrationTrend:  regulate.TrendEscalating,
		FrustrationLevels: []int{3, 5, 7},
		Strategies:        []session.StrategyCount{{Strategy: taxonomy.Mindfulness, Count: 2}},
		LastStrategy:      taxonomy.Mindfulness,
		Progress:          []session.Note{{Text: "frustration eased to 4"}},
		Thinking:          &thinking.Metrics{Kind: thinking.KindLadder, Topic: "retries", Current: 3, Target: 7, DepthScore: 0.5},
	}
	out := format.Summary(format.Markdown, sum)
	for _, want := range []string{"s1", "3 → 5 → 7", "perfectionist", "fortune_telling", "Mindfulness", "50%", "frustration eased to 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestGuide_CoversCatalogs(t *testing.T) {
	g := format.Guide()
	for _, s := range taxonomy.Strategies() {
		if !strings.Contains(g, string(s.Key)) {
			t.Errorf("guide missing strategy %s", s.Key)
		}
	}
	for _, l := range taxonomy.Levels() {
		if !strings.Contains(g, l.Label) {
			t.Errorf("guide missing level %s", l.Label)
		}
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tc := range tests {
		if got := format.FmtDuration(tc.in); got != tc.want {
			t.Errorf("FmtDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
		{"ééééé", 4, "é..."},
	}
	for _, tc := range tests {
		if got := format.Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestFmtScoreAndBoolMark(t *testing.T) {
	if got := format.FmtScore(0.25); got != "25%" {
		t.Errorf("FmtScore = %q", got)
	}
	if format.BoolMark(true) != "✓" || format.BoolMark(false) != "✗" {
		t.Error("BoolMark")
	}
}
