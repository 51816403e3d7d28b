package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cbthelper/internal/session"
	"cbthelper/internal/taxonomy"
)

// Sessions renders the session listing.
func Sessions(m Mode, infos []session.Info, now time.Time) string {
	tb := NewTable(m)
	tb.Header("Session", "Created", "Idle", "Calls", "Thinking", "Persisted")
	for _, in := range infos {
		tb.Row(in.ID, in.CreatedAt.Format(time.RFC3339), FmtDuration(now.Sub(in.LastAccess)),
			in.Interactions, BoolMark(in.Thinking), BoolMark(in.Persisted))
	}
	tb.Footer("TOTAL", "", "", "", "", len(infos))
	tb.Columns(ColumnConfig{Number: 4, Align: AlignRight})
	return tb.String()
}

// Summary renders a session summary as a key/value table followed by the
// state, distortion and strategy counts.
func Summary(m Mode, s *session.Summary) string {
	var b strings.Builder
	kv := NewTable(m)
	kv.Header("Field", "Value")
	kv.Row("Session", s.SessionID)
	kv.Row("Created", s.CreatedAt.Format(time.RFC3339))
	kv.Row("Duration", s.Duration)
	kv.Row("Interactions", s.TotalInteractions)
	kv.Row("Frustration", FmtLevels(s.FrustrationLevels))
	kv.Row("Trend", s.FrustrationTrend)
	if s.LastStrategy != "" {
		kv.Row("Last strategy", strategyLabel(s.LastStrategy))
	}
	if t := s.Thinking; t != nil {
		kv.Row("Thinking", fmt.Sprintf("%s %q level %d/%d", t.Kind, t.Topic, t.Current, t.Target))
		kv.Row("Depth / breadth / integration",
			fmt.Sprintf("%s / %s / %s", FmtScore(t.DepthScore), FmtScore(t.BreadthScore), FmtScore(t.IntegrationScore)))
	}
	b.WriteString(kv.String())
	b.WriteString("\n")

	counts := NewTable(m)
	counts.Header("Kind", "Key", "Count")
	for _, k := range sortedKeys(s.States) {
		counts.Row("state", k, s.States[taxonomy.StateKey(k)])
	}
	for _, k := range sortedKeys(s.Distortions) {
		counts.Row("distortion", k, s.Distortions[taxonomy.DistortionKey(k)])
	}
	for _, sc := range s.Strategies {
		counts.Row("strategy", sc.Strategy, sc.Count)
	}
	counts.Columns(ColumnConfig{Number: 3, Align: AlignRight})
	b.WriteString(counts.String())

	if len(s.Progress) > 0 {
		b.WriteString("\n")
		p := NewTable(m)
		p.Header("When", "Progress")
		for _, n := range s.Progress {
			p.Row(n.At.Format(time.Kitchen), n.Text)
		}
		b.WriteString(p.String())
	}
	return b.String()
}

func sortedKeys[K ~string, V any](m map[K]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func strategyLabel(k taxonomy.StrategyKey) string {
	if s, ok := taxonomy.DescribeStrategy(k); ok {
		return s.Label
	}
	return string(k)
}

// States renders the agent-state catalog.
func States(m Mode) string {
	tb := NewTable(m)
	tb.Header("Key", "State", "Description", "Signs")
	for _, s := range taxonomy.States() {
		tb.Row(s.Key, s.Label, s.Description, strings.Join(s.Signs, "; "))
	}
	tb.Columns(ColumnConfig{Number: 3, MaxWidth: 60}, ColumnConfig{Number: 4, MaxWidth: 50})
	return tb.String()
}

// Distortions renders the distortion catalog.
func Distortions(m Mode) string {
	tb := NewTable(m)
	tb.Header("Key", "Distortion", "Description", "Example")
	for _, d := range taxonomy.Distortions() {
		tb.Row(d.Key, d.Label, d.Description, d.AgentExample)
	}
	tb.Columns(ColumnConfig{Number: 3, MaxWidth: 60}, ColumnConfig{Number: 4, MaxWidth: 50})
	return tb.String()
}

// Strategies renders the strategy catalog.
func Strategies(m Mode) string {
	tb := NewTable(m)
	tb.Header("Key", "Strategy", "Description", "First prompt")
	for _, s := range taxonomy.Strategies() {
		first := ""
		if len(s.Prompts) > 0 {
			first = s.Prompts[0]
		}
		tb.Row(s.Key, s.Label, s.Description, first)
	}
	tb.Columns(ColumnConfig{Number: 3, MaxWidth: 60}, ColumnConfig{Number: 4, MaxWidth: 60})
	return tb.String()
}

// Ladder renders the thinking depth ladder.
func Ladder(m Mode) string {
	tb := NewTable(m)
	tb.Header("Depth", "Level", "Theme", "Time")
	for _, l := range taxonomy.Levels() {
		tb.Row(l.Depth, l.Label, l.Theme, FmtDuration(l.ThinkingTime))
	}
	tb.Columns(ColumnConfig{Number: 1, Align: AlignRight})
	return tb.String()
}

// Guide is the markdown technique guide: strategies, states, distortions
// and the depth ladder.
func Guide() string {
	var b strings.Builder
	b.WriteString("# CBT techniques for stuck agents\n\n## Strategies\n\n")
	b.WriteString(Strategies(Markdown))
	b.WriteString("\n\n## Agent states\n\n")
	b.WriteString(States(Markdown))
	b.WriteString("\n\n## Cognitive distortions\n\n")
	b.WriteString(Distortions(Markdown))
	b.WriteString("\n\n## Thinking depth ladder\n\n")
	b.WriteString(Ladder(Markdown))
	b.WriteString("\n")
	return b.String()
}
