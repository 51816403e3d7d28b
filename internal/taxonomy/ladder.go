package taxonomy

import (
	"strconv"
	"time"
)

// MaxDepth is the top rung of the depth ladder.
const MaxDepth = 7

// Level is one rung of the depth ladder.
type Level struct {
	Depth        int           `json:"depth"`
	Key          string        `json:"key"`
	Label        string        `json:"label"`
	Theme        string        `json:"theme"`
	Markers      []string      `json:"markers"`
	ThinkingTime time.Duration `json:"thinking_time"`
}

var levels = []Level{
	{1, "surface", "Surface", "What's the obvious answer?", []string{"immediate", "obvious", "surface"}, 15 * time.Second},
	{2, "factual", "Factual", "What facts and evidence apply?", []string{"evidence-based", "factual", "concrete"}, 30 * time.Second},
	{3, "analytical", "Analytical", "What patterns and relationships exist?", []string{"patterns", "relationships", "analysis"}, 45 * time.Second},
	{4, "critical", "Critical", "What assumptions and biases are present?", []string{"questioning", "challenging", "critical"}, 60 * time.Second},
	{5, "synthetic", "Synthetic", "How do different perspectives integrate?", []string{"integration", "synthesis", "holistic"}, 75 * time.Second},
	{6, "philosophical", "Philosophical", "What fundamental principles are at play?", []string{"principles", "essence", "fundamental"}, 90 * time.Second},
	{7, "transcendent", "Transcendent", "What lies beyond conventional understanding?", []string{"transcendent", "paradox", "mystery"}, 105 * time.Second},
}

// LevelInfo returns the rung at depth (1..MaxDepth).
func LevelInfo(depth int) (Level, bool) {
	if depth < 1 || depth > len(levels) {
		return Level{}, false
	}
	return levels[depth-1], true
}

// LevelByName resolves a depth given as a rung key ("surface".."transcendent"),
// a label, or a decimal number.
func LevelByName(name string) (Level, bool) {
	n := Normalize(name)
	for _, l := range levels {
		if n == l.Key || n == Normalize(l.Label) {
			return l, true
		}
	}
	if d, err := strconv.Atoi(n); err == nil {
		return LevelInfo(d)
	}
	return Level{}, false
}

// Levels returns the whole ladder, shallowest first.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// DialogueType is a Socratic question chain. Chains have MaxDepth questions.
type DialogueType struct {
	Key       DialogueKey `json:"key"`
	Label     string      `json:"label"`
	Hint      string      `json:"hint"`
	Questions []string    `json:"questions"`
}

const (
	AssumptionExamination  DialogueKey = "assumption_examination"
	PerspectiveExpansion   DialogueKey = "perspective_expansion"
	ImplicationExploration DialogueKey = "implication_exploration"
	DepthDrilling          DialogueKey = "depth_drilling"
	ComplexityEmbrace      DialogueKey = "complexity_embrace"
	ThinkingAboutThinking  DialogueKey = "thinking_about_thinking"
	ProcessReflection      DialogueKey = "process_reflection"
)

var dialogues = []DialogueType{
	{AssumptionExamination, "Assumption Examination", "Surface and test hidden assumptions.", []string{
		"What assumptions am I making here?",
		"Why do I believe this assumption is true?",
		"What evidence supports this assumption?",
		"What would happen if this assumption were false?",
		"Are there alternative assumptions I haven't considered?",
		"How might someone from a different background view this assumption?",
		"What's the deepest assumption underlying all of this?",
	}},
	{PerspectiveExpansion, "Perspective Expansion", "Look from other vantage points.", []string{
		"How would I explain this to someone with no context?",
		"What would the opposite perspective look like?",
		"How might this look from a completely different field?",
		"What would a critic say about this?",
		"What would an enthusiast emphasize?",
		"How would this appear 10 years from now?",
		"What cultural or contextual factors am I missing?",
	}},
	{ImplicationExploration, "Implication Exploration", "Follow consequences outward.", []string{
		"If this is true, what else must be true?",
		"What are the second-order effects?",
		"What are the third-order effects?",
		"What unexpected consequences might arise?",
		"How does this connect to other areas?",
		"What patterns does this reveal?",
		"What does this mean for the bigger picture?",
	}},
	{DepthDrilling, "Depth Drilling", "Keep asking why until the root shows.", []string{
		"But why is that the case?",
		"And what causes that?",
		"What's underneath that reasoning?",
		"Can we go deeper into this aspect?",
		"What's the root cause here?",
		"What fundamental principle applies?",
		"What's the essence of this issue?",
	}},
	{ComplexityEmbrace, "Complexity Embrace", "Stay with nuance and contradiction.", []string{
		"What nuances am I overlooking?",
		"Where is the complexity I'm avoiding?",
		"What contradictions exist here?",
		"How can multiple things be true at once?",
		"What paradoxes emerge from this?",
		"Where does simple reasoning break down?",
		"What makes this more complicated than it seems?",
	}},
	{ThinkingAboutThinking, "Thinking About Thinking", "Observe the reasoning itself.", []string{
		"How am I approaching this problem?",
		"What thinking strategies am I using?",
		"Am I thinking deeply enough about this?",
		"What cognitive biases might be affecting me?",
		"How confident am I in my reasoning?",
		"What's the quality of my thinking right now?",
		"Where are the gaps in my understanding?",
	}},
	{ProcessReflection, "Process Reflection", "Review the path taken so far.", []string{
		"What has my thinking process been so far?",
		"Which approaches have been most fruitful?",
		"Where did I get stuck and why?",
		"What thinking tools haven't I tried yet?",
		"How could I think about this differently?",
		"What would improve my thinking process?",
		"Am I asking the right questions?",
	}},
}

// Dialogue returns the Socratic dialogue type for key.
func Dialogue(key DialogueKey) (DialogueType, bool) {
	i, ok := dialogueIndex[key]
	if !ok {
		return DialogueType{}, false
	}
	return dialogues[i], true
}

// Dialogues returns all dialogue types in declaration order.
func Dialogues() []DialogueType {
	out := make([]DialogueType, len(dialogues))
	copy(out, dialogues)
	return out
}

// Lens is a perspective a thinking phase is viewed through.
type Lens struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

var lenses = []Lens{
	{"analogical", "Analogical", "What is this similar to in other domains?"},
	{"causal", "Causal", "What causes this and what does it cause?"},
	{"compositional", "Compositional", "What are the component parts and how do they interact?"},
	{"temporal", "Temporal", "How does this change over time?"},
	{"spatial", "Spatial", "How does context and environment affect this?"},
	{"probabilistic", "Probabilistic", "What are the likelihood and uncertainties involved?"},
	{"systemic", "Systemic", "How does this fit into larger systems?"},
	{"evolutionary", "Evolutionary", "How did this come to be and where is it going?"},
	{"dialectical", "Dialectical", "What tensions and contradictions exist?"},
	{"phenomenological", "Phenomenological", "What is the lived experience of this?"},
}

// Lenses returns all thinking lenses.
func Lenses() []Lens {
	out := make([]Lens, len(lenses))
	copy(out, lenses)
	return out
}

// RecursiveStep is the meta-question asked at one level of recursive questioning.
type RecursiveStep struct {
	MetaQuestion string
	Prompts      []string
}

var recursiveSteps = []RecursiveStep{
	{"What's your response to the initial question?", []string{
		"Answer thoughtfully", "Note what feels incomplete", "Identify assumptions you're making",
	}},
	{"What questions does your answer raise?", []string{
		"What new questions emerge from your response?", "What did you not address?", "What complexities are you now aware of?",
	}},
	{"What's behind those questions?", []string{
		"Why do those particular questions matter?", "What deeper issues do they point to?", "What patterns do you see in your questioning?",
	}},
	{"What fundamental mystery remains?", []string{
		"What essential unknown persists?", "What paradox or tension can't be resolved?", "What would it mean to fully understand this?",
	}},
}

// RecursiveStepAt returns the step for level (1-based). Levels past the
// table repeat the last, deepest step.
func RecursiveStepAt(level int) RecursiveStep {
	if level < 1 {
		level = 1
	}
	if level > len(recursiveSteps) {
		level = len(recursiveSteps)
	}
	return recursiveSteps[level-1]
}
