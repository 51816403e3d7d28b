package taxonomy

const (
	AllOrNothing       DistortionKey = "all_or_nothing"
	Catastrophe        DistortionKey = "catastrophizing"
	MindReading        DistortionKey = "mind_reading"
	FortuneTelling     DistortionKey = "fortune_telling"
	Personalization    DistortionKey = "personalization"
	ShouldStatements   DistortionKey = "should_statements"
	Overgeneralization DistortionKey = "overgeneralization"
	Labeling           DistortionKey = "labeling"
)

var distortions = []Distortion{
	{
		Key:          AllOrNothing,
		Label:        "All-or-Nothing Thinking",
		Description:  "Seeing things in black and white",
		Hint:         "Look for the partial success between perfect and worthless.",
		AgentExample: "This solution must be perfect or it's worthless",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"all or nothing", 3}, {"must be perfect", 3}, {"perfect or", 3}, {"total failure", 3},
				{"worthless", 2}, {"completely", 1}, {"either", 1},
			},
			Aliases: []string{"all or nothing", "black and white"},
		},
	},
	{
		Key:          Catastrophe,
		Label:        "Catastrophizing",
		Description:  "Expecting the worst possible outcome",
		Hint:         "Estimate the probability of the worst case and name the likely case.",
		AgentExample: "If this fails, the entire system will break",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"catastroph", 3}, {"everything will", 2}, {"will break", 2}, {"disaster", 2},
				{"ruin", 2}, {"worst", 2}, {"entire", 1}, {"fail", 1},
			},
			Aliases: []string{"catastrophizing"},
		},
	},
	{
		Key:          MindReading,
		Label:        "Mind Reading",
		Description:  "Assuming what users want without evidence",
		Hint:         "Ask instead of assuming; list the evidence you actually have.",
		AgentExample: "The user definitely wants feature X",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"everyone will think", 3}, {"definitely wants", 3}, {"they think", 2}, {"will think", 2},
				{"they'll think", 2}, {"must think", 2}, {"user wants", 1},
			},
			Aliases: []string{"mind reading"},
		},
	},
	{
		Key:          FortuneTelling,
		Label:        "Fortune Telling",
		Description:  "Predicting negative outcomes without evidence",
		Hint:         "Treat the prediction as a hypothesis and design a cheap test.",
		AgentExample: "This approach will never work",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"will never", 3}, {"never work", 3}, {"going to fail", 3}, {"won't work", 2},
				{"will fail", 2}, {"bound to", 2},
			},
			Aliases: []string{"fortune telling"},
		},
	},
	{
		Key:          Personalization,
		Label:        "Personalization",
		Description:  "Taking responsibility for things outside control",
		Hint:         "Separate your actions from the system's behaviour.",
		AgentExample: "The API failure is my fault",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"my fault", 3}, {"because of me", 3}, {"i broke", 2}, {"i caused", 2}, {"blame", 1},
			},
			Aliases: []string{"personalization", "personalisation"},
		},
	},
	{
		Key:          ShouldStatements,
		Label:        "Should Statements",
		Description:  "Holding rigid rules about how things must be",
		Hint:         "Rewrite each 'should' as a preference with a reason.",
		AgentExample: "I should have solved this on the first try",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"ought to", 2}, {"supposed to", 2}, {"should", 1}, {"must", 1}, {"have to", 1},
			},
			Aliases: []string{"should statements", "shoulds"},
		},
	},
	{
		Key:          Overgeneralization,
		Label:        "Overgeneralization",
		Description:  "Drawing broad conclusions from a single event",
		Hint:         "Count the actual occurrences before saying always or never.",
		AgentExample: "Tests always fail when I touch this module",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"nothing ever", 3}, {"everything always", 3}, {"every time", 2}, {"always", 2}, {"never", 1},
			},
			Aliases: []string{"overgeneralization", "overgeneralisation"},
		},
	},
	{
		Key:          Labeling,
		Label:        "Labeling",
		Description:  "Attaching a global negative label to oneself",
		Hint:         "Describe the specific behaviour instead of the label.",
		AgentExample: "I'm incompetent at this kind of task",
		Matcher: Matcher{
			Keywords: []Keyword{
				{"incompetent", 3}, {"i'm useless", 3}, {"i am useless", 3}, {"i'm stupid", 3},
				{"i'm a failure", 3}, {"i'm bad at", 2}, {"failure as", 2},
			},
			Aliases: []string{"labeling", "labelling"},
		},
	},
}
