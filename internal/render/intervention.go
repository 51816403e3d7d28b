package render

import (
	"cbthelper/internal/regulate"
	"cbthelper/internal/taxonomy"
)

// Tier is the intensity of an intervention.
type Tier string

const (
	TierStandard Tier = "standard"
	TierElevated Tier = "elevated"
	TierCritical Tier = "critical"
)

// TierFor maps a regulation outcome to an intervention tier.
func TierFor(o regulate.Outcome) Tier {
	switch o {
	case regulate.Critical:
		return TierCritical
	case regulate.Escalating:
		return TierElevated
	default:
		return TierStandard
	}
}

// InterventionInput is what the engine decided for one analyze call.
type InterventionInput struct {
	Strategy  taxonomy.StrategyKey
	States    []taxonomy.StateKey
	Tier      Tier
	Level     int
	Pattern   string
	Attempts  int
	HasErrors bool
}

// Intervention is the rendered response to an analyze call.
type Intervention struct {
	Strategy            string   `json:"strategy"`
	Tier                Tier     `json:"tier"`
	GuidedQuestions     []string `json:"guided_questions"`
	Suggestions         []string `json:"specific_suggestions"`
	ReframedPerspective string   `json:"reframed_perspective"`
	NextActions         []string `json:"next_actions"`
	Text                string   `json:"text"`
}

var nextActions = []string{
	"Take a 30-second pause to reset cognitive state",
	"List three facts you know for certain about the situation",
	"Identify one small, testable hypothesis",
	"Try the simplest possible approach first",
}

var criticalActions = []string{
	"Stop the current attempt now",
	"Write down the one thing you are trying to make work",
	"Revert to the last state that worked",
	"Pick the smallest step that cannot fail and do only that",
}

// RenderIntervention renders the intervention for in.
func RenderIntervention(in InterventionInput) Intervention {
	st, ok := taxonomy.DescribeStrategy(in.Strategy)
	if !ok {
		st = taxonomy.Strategy{Key: in.Strategy, Label: string(in.Strategy)}
	}
	labels := make([]string, 0, len(in.States))
	for _, k := range in.States {
		if s, ok := taxonomy.DescribeState(k); ok {
			labels = append(labels, s.Label)
		}
	}

	out := Intervention{
		Strategy:        st.Label,
		Tier:            in.Tier,
		GuidedQuestions: append([]string(nil), st.Prompts...),
		NextActions:     append([]string(nil), nextActions...),
	}
	if in.Tier == TierCritical {
		out.NextActions = append([]string(nil), criticalActions...)
	}
	if in.HasErrors {
		out.Suggestions = append(out.Suggestions,
			"Focus on the first error message only",
			"Check if this error has been solved before in documentation",
			"Try a minimal reproduction of the problem",
		)
	}
	if in.Attempts > 2 {
		out.Suggestions = append(out.Suggestions,
			"You've tried multiple approaches - take a step back",
			"Consider if you're solving the right problem",
			"Maybe the issue is with assumptions, not implementation",
		)
	}
	if len(in.States) > 0 {
		if s, ok := taxonomy.DescribeState(in.States[0]); ok {
			out.Suggestions = append(out.Suggestions, s.Interventions...)
		}
	}

	pattern := in.Pattern
	if pattern == "" && len(labels) > 0 {
		pattern = labels[0]
	}
	if pattern != "" {
		out.ReframedPerspective = mustFill("reframe", struct{ Pattern string }{pattern})
	}
	out.Text = mustFill("intervention", struct {
		Tier     Tier
		Level    int
		States   []string
		Strategy taxonomy.Strategy
	}{in.Tier, in.Level, labels, st})
	return out
}

// Reframe is one alternative reading of a thought.
type Reframe struct {
	Type    string `json:"type"`
	Reframe string `json:"reframe"`
}

// Reframing is the response to a reframe call.
type Reframing struct {
	Original   string    `json:"original_thought"`
	Context    string    `json:"context,omitempty"`
	Reframes   []Reframe `json:"reframes"`
	Challenges []Reframe `json:"distortion_challenges,omitempty"`
	Balanced   string    `json:"balanced_thought"`
}

// RenderReframes produces the fixed reframe set plus one challenge per
// detected distortion.
func RenderReframes(thought, context string, distortions []taxonomy.DistortionKey) Reframing {
	out := Reframing{
		Original: thought,
		Context:  context,
		Reframes: []Reframe{
			{"Evidence-based", "What evidence supports this thought? What evidence contradicts it? Consider: '" + thought + "' might be an assumption rather than a fact."},
			{"Best-friend", "If another agent told you '" + thought + "', what would you say to help them? Apply that same compassion to yourself."},
			{"Probability", "On a scale of 0-100%, how likely is this worst-case scenario? What's the most likely outcome instead?"},
			{"Growth-mindset", "Instead of '" + thought + "', try: 'This is challenging, and I'm learning how to handle it.'"},
		},
		Balanced: "A more balanced view might be: While there are challenges, I have resources and strategies to work through them step by step.",
	}
	for _, k := range distortions {
		d, ok := taxonomy.DescribeDistortion(k)
		if !ok {
			continue
		}
		out.Challenges = append(out.Challenges, Reframe{Type: d.Label, Reframe: d.Hint})
	}
	return out
}

// ReliefInput describes one regulate_frustration call.
type ReliefInput struct {
	Level    int
	Max      int
	Trigger  string
	Outcome  regulate.Outcome
	Window   int
	Strategy taxonomy.StrategyKey
}

// Relief is the rendered response to a frustration report.
type Relief struct {
	Validation        string   `json:"validation"`
	Tier              Tier     `json:"tier"`
	Strategy          string   `json:"strategy"`
	GroundingExercise []string `json:"grounding_exercises"`
	PerspectiveShifts []string `json:"perspective_shifts"`
	CopingStatements  []string `json:"coping_statements"`
}

// RenderRelief renders validation, grounding and coping text for in.
func RenderRelief(in ReliefInput) Relief {
	if in.Max == 0 {
		in.Max = 10
	}
	out := Relief{
		Validation: mustFill("validation", in),
		Tier:       TierFor(in.Outcome),
		GroundingExercise: []string{
			"State 3 facts about your current environment",
			"List 3 things that are working correctly right now",
			"Name 3 resources you have available",
		},
		CopingStatements: []string{
			"I can handle this one step at a time",
			"This is difficult, not impossible",
			"I'm learning and growing through this challenge",
			"It's okay to ask for help or try a different approach",
		},
	}
	if st, ok := taxonomy.DescribeStrategy(in.Strategy); ok {
		out.Strategy = st.Label
	}
	if in.Level > 7 {
		out.PerspectiveShifts = []string{
			"This intense frustration might be a signal to take a different approach",
			"High frustration often means you care about doing well",
			"Every expert has felt this frustration while learning",
		}
	} else {
		out.PerspectiveShifts = []string{
			"Moderate frustration can fuel problem-solving",
			"This challenge is temporary and solvable",
			"You've overcome similar frustrations before",
		}
	}
	return out
}
