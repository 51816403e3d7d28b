package taxonomy

// ContemplationPhase is one timed step of a contemplation structure. Prompt
// may contain the placeholder {topic}.
type ContemplationPhase struct {
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Prompt      string `json:"prompt"`
	Instruction string `json:"instruction"`
}

// ContemplationStyle is a named sequence of contemplation phases.
type ContemplationStyle struct {
	Key     string               `json:"key"`
	Opening string               `json:"opening"`
	Phases  []ContemplationPhase `json:"phases"`
}

var contemplationStyles = []ContemplationStyle{
	{
		Key:     "philosophical",
		Opening: "Let's engage in deep philosophical contemplation about {topic}.",
		Phases: []ContemplationPhase{
			{"Wonder", "30-60 seconds", "Approach {topic} with fresh wonder. What is truly remarkable about it? What mysteries does it hold?", "Don't analyze yet, just wonder."},
			{"Examination", "60-90 seconds", "Examine {topic} from multiple angles. What are its essential qualities? Its contradictions? Its boundaries?", "Be thorough but patient."},
			{"Connection", "60-90 seconds", "How does {topic} connect to fundamental questions? To other ideas? To lived experience?", "Draw unexpected connections."},
			{"Synthesis", "60-90 seconds", "What new understanding of {topic} emerges from this contemplation?", "Allow insights to crystallize naturally."},
		},
	},
	{
		Key:     "analytical",
		Opening: "Let's systematically analyze {topic} in depth.",
		Phases: []ContemplationPhase{
			{"Decomposition", "45-60 seconds", "Break down {topic} into its fundamental components.", "Be exhaustive in your decomposition."},
			{"Relationships", "45-60 seconds", "How do these components interact? What dependencies exist?", "Map the full relationship network."},
			{"Dynamics", "45-60 seconds", "How does this system behave over time? What forces act upon it?", "Consider multiple timescales."},
			{"Implications", "45-60 seconds", "What are all the implications and consequences?", "Think through nth-order effects."},
		},
	},
	{
		Key:     "creative",
		Opening: "Let's explore {topic} through creative contemplation.",
		Phases: []ContemplationPhase{
			{"Imagination", "30-45 seconds", "If {topic} were transformed in unexpected ways, what might emerge?", "Let imagination run wild."},
			{"Metaphor", "30-45 seconds", "What metaphors illuminate {topic}? What does it remind you of?", "Find surprising connections."},
			{"Inversion", "30-45 seconds", "What if everything about {topic} were inverted or opposite?", "Explore the inverse space."},
			{"Synthesis", "30-45 seconds", "What creative insights emerge from these explorations?", "Combine the unexpected."},
		},
	},
}

// Contemplation returns the named style; unknown names fall back to the
// philosophical style and ok is false.
func Contemplation(key string) (ContemplationStyle, bool) {
	n := Normalize(key)
	for _, s := range contemplationStyles {
		if s.Key == n {
			return s, true
		}
	}
	return contemplationStyles[0], false
}

// Experiment is a thought-experiment template. Setup and Questions may
// contain the placeholder {concept}.
type Experiment struct {
	Name      string   `json:"name"`
	Setup     string   `json:"setup"`
	Questions []string `json:"questions"`
}

var experiments = []Experiment{
	{"Extreme Scaling", "Imagine {concept} scaled up by 1000x or down by 1000x.", []string{
		"What breaks or changes fundamentally?", "What remains constant?", "What new properties emerge?",
		"What insights does this reveal about the nature of {concept}?",
	}},
	{"Time Travel", "Transport {concept} 100 years into the past or future.", []string{
		"How would it be understood differently?", "What context would be missing or added?",
		"What aspects are timeless vs temporal?", "What does this reveal about {concept}'s essence?",
	}},
	{"Alien Perspective", "Explain {concept} to an intelligent being with completely different senses and experiences.", []string{
		"What assumptions would you need to question?", "What universal vs human-specific aspects exist?",
		"How would you convey the essence?", "What do you learn from this translation exercise?",
	}},
	{"Necessity Test", "Imagine a world where {concept} doesn't exist or work.", []string{
		"What would be different?", "What problems would arise or disappear?",
		"What would replace it?", "What does this reveal about its true function?",
	}},
	{"Pure Essence", "Strip away everything non-essential from {concept}.", []string{
		"What absolutely must remain?", "What surprises you about what's essential?",
		"What commonly associated aspects are actually peripheral?", "What is the irreducible core?",
	}},
}

// Experiments returns the thought-experiment templates in declaration order.
func Experiments() []Experiment {
	out := make([]Experiment, len(experiments))
	copy(out, experiments)
	return out
}
