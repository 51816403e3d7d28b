// Package taxonomy holds the static tables the engine classifies against:
// agent-states, cognitive distortions, CBT strategies, the thinking depth
// ladder, Socratic dialogue types and thinking lenses.
//
// Rule: keys are for machines, labels are for humans. Keep raw keys in JSON
// fields and map keys; use labels in prose and CLI output.
package taxonomy

import "strings"

// StateKey identifies an agent-state.
type StateKey string

// DistortionKey identifies a cognitive distortion.
type DistortionKey string

// StrategyKey identifies a CBT strategy.
type StrategyKey string

// DialogueKey identifies a Socratic dialogue type.
type DialogueKey string

// Keyword is one weighted phrase of a matcher. Phrases are lower-case and
// matched as substrings of lower-cased input.
type Keyword struct {
	Phrase string
	Weight int
}

// Matcher is the declarative half of a classifiable entry. Aliases are names
// a caller may use to assert the entry explicitly.
type Matcher struct {
	Keywords []Keyword
	Aliases  []string
}

// Rule is the generic view the classifier evaluates: a key plus its matcher.
type Rule struct {
	Key string
	Matcher
}

// State describes one agent-state.
type State struct {
	Key           StateKey `json:"key"`
	Label         string   `json:"label"`
	Description   string   `json:"description"`
	Hint          string   `json:"hint"`
	Signs         []string `json:"signs"`
	Interventions []string `json:"interventions"`
	Matcher       `json:"-"`
}

// Distortion describes one cognitive distortion.
type Distortion struct {
	Key          DistortionKey `json:"key"`
	Label        string        `json:"label"`
	Description  string        `json:"description"`
	Hint         string        `json:"hint"`
	AgentExample string        `json:"agent_example"`
	Matcher      `json:"-"`
}

// Strategy describes one CBT intervention technique.
type Strategy struct {
	Key         StrategyKey `json:"key"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Hint        string      `json:"hint"`
	Prompts     []string    `json:"prompts"`
}

var (
	stateIndex      = map[StateKey]int{}
	distortionIndex = map[DistortionKey]int{}
	strategyIndex   = map[StrategyKey]int{}
	dialogueIndex   = map[DialogueKey]int{}
)

func init() {
	for i, s := range states {
		stateIndex[s.Key] = i
	}
	for i, d := range distortions {
		distortionIndex[d.Key] = i
	}
	for i, s := range strategies {
		strategyIndex[s.Key] = i
	}
	for i, d := range dialogues {
		dialogueIndex[d.Key] = i
	}
}

// DescribeState returns the state for key. ok is false for unknown keys.
func DescribeState(key StateKey) (State, bool) {
	i, ok := stateIndex[key]
	if !ok {
		return State{}, false
	}
	return states[i], true
}

// DescribeDistortion returns the distortion for key. ok is false for unknown keys.
func DescribeDistortion(key DistortionKey) (Distortion, bool) {
	i, ok := distortionIndex[key]
	if !ok {
		return Distortion{}, false
	}
	return distortions[i], true
}

// DescribeStrategy returns the strategy for key. ok is false for unknown keys.
func DescribeStrategy(key StrategyKey) (Strategy, bool) {
	i, ok := strategyIndex[key]
	if !ok {
		return Strategy{}, false
	}
	return strategies[i], true
}

// States returns all agent-states in declaration order.
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// Distortions returns all distortions in declaration order.
func Distortions() []Distortion {
	out := make([]Distortion, len(distortions))
	copy(out, distortions)
	return out
}

// Strategies returns all strategies in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategies))
	copy(out, strategies)
	return out
}

// StateRules returns the state matchers in declaration order.
func StateRules() []Rule {
	out := make([]Rule, len(states))
	for i, s := range states {
		out[i] = Rule{Key: string(s.Key), Matcher: s.Matcher}
	}
	return out
}

// DistortionRules returns the distortion matchers in declaration order.
func DistortionRules() []Rule {
	out := make([]Rule, len(distortions))
	for i, d := range distortions {
		out[i] = Rule{Key: string(d.Key), Matcher: d.Matcher}
	}
	return out
}

// Normalize lower-cases s, folds '_' and '-' to spaces and collapses runs of
// whitespace. Used to compare caller-supplied names with keys and aliases.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
