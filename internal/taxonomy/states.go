package taxonomy

const (
	Stuck             StateKey = "stuck"
	ErrorLoop         StateKey = "error_loop"
	Looping           StateKey = "looping"
	Overwhelmed       StateKey = "overwhelmed"
	Confused          StateKey = "confused"
	Indecisive        StateKey = "indecisive"
	Catastrophizing   StateKey = "catastrophizing"
	Blocked           StateKey = "blocked"
	Fragmented        StateKey = "fragmented"
	Perfectionist     StateKey = "perfectionist"
	AnalysisParalysis StateKey = "analysis_paralysis"
)

// states is in declaration order; the classifier breaks score ties by it.
var states = []State{
	{
		Key:           Stuck,
		Label:         "Stuck",
		Description:   "Unable to proceed with task",
		Hint:          "Break the problem into its smallest part and move that part.",
		Signs:         []string{"Repeating same action", "No progress for extended time", "Circular reasoning"},
		Interventions: []string{"Break problem into smallest parts", "Try opposite approach", "Seek different perspective"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"stuck", 2}, {"can't proceed", 2}, {"cannot proceed", 2}, {"no progress", 2},
				{"not making progress", 2}, {"going nowhere", 1}, {"tried everything", 1},
			},
			Aliases: []string{"stuck"},
		},
	},
	{
		Key:           ErrorLoop,
		Label:         "Error Loop",
		Description:   "Repeatedly encountering the same error",
		Hint:          "Stop retrying; read the first error and build a minimal reproduction.",
		Signs:         []string{"Same error repeatedly", "Not learning from failures", "Trying same solution"},
		Interventions: []string{"Analyze error pattern", "Try minimal test case", "Check assumptions"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"same error", 3}, {"error loop", 3}, {"error again", 2}, {"keeps failing", 2},
				{"still failing", 2}, {"keeps erroring", 2}, {"error", 1}, {"exception", 1}, {"traceback", 1},
			},
			Aliases: []string{"error loop", "error"},
		},
	},
	{
		Key:           Looping,
		Label:         "Looping",
		Description:   "Repeating the same actions without different results",
		Hint:          "Name the loop out loud and change one variable before the next attempt.",
		Signs:         []string{"Same action with same result", "Revisiting settled decisions", "No new information per iteration"},
		Interventions: []string{"Write down each attempt and its result", "Change exactly one variable", "Set an iteration limit"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"going in circles", 3}, {"over and over", 2}, {"again and again", 2}, {"repeating", 2},
				{"th time", 1}, {"same thing", 1}, {"circular", 1}, {"loop", 1},
			},
			Aliases: []string{"looping", "loop"},
		},
	},
	{
		Key:           Overwhelmed,
		Label:         "Overwhelmed",
		Description:   "Too many options or complexity",
		Hint:          "List the top three priorities and drop the rest for now.",
		Signs:         []string{"Trying to do everything at once", "Unable to prioritize", "Information overload"},
		Interventions: []string{"List top 3 priorities", "Focus on one thing", "Take systematic break"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"overwhelm", 3}, {"too many", 2}, {"too much", 2}, {"everything at once", 2},
				{"don't know where to start", 2}, {"complex", 1},
			},
			Aliases: []string{"overwhelmed", "overwhelm"},
		},
	},
	{
		Key:           Confused,
		Label:         "Confused",
		Description:   "Unclear about requirements or next steps",
		Hint:          "Write down what is known, then ask one specific question.",
		Signs:         []string{"Contradictory actions", "Asking same questions repeatedly", "Misunderstanding requirements"},
		Interventions: []string{"Clarify requirements", "List what you know", "Ask specific questions"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"confus", 3}, {"unclear", 2}, {"don't understand", 2}, {"ambiguous", 2},
				{"not sure what", 1}, {"contradict", 1},
			},
			Aliases: []string{"confused", "confusion"},
		},
	},
	{
		Key:           Indecisive,
		Label:         "Indecisive",
		Description:   "Unable to choose between options",
		Hint:          "Set a time limit and pick the option that is good enough.",
		Signs:         []string{"Endless analysis", "Switching between options", "Unable to commit"},
		Interventions: []string{"Set time limit", "Choose 'good enough'", "List pros/cons quickly"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"indecis", 3}, {"can't decide", 3}, {"cannot decide", 3}, {"choose between", 2},
				{"torn between", 2}, {"which option", 2}, {"choice", 1},
			},
			Aliases: []string{"indecisive", "indecision"},
		},
	},
	{
		Key:           Catastrophizing,
		Label:         "Catastrophizing",
		Description:   "Overestimating negative consequences",
		Hint:          "List realistic outcomes next to the worst case.",
		Signs:         []string{"Worst-case focus", "Paralyzing fear of failure", "Overestimating risks"},
		Interventions: []string{"List realistic outcomes", "Focus on present facts", "Consider best case too"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"catastroph", 3}, {"everything will break", 3}, {"disaster", 2}, {"worst case", 2},
				{"ruin", 2}, {"will fail", 1},
			},
			Aliases: []string{"catastrophizing", "catastrophising"},
		},
	},
	{
		Key:           Blocked,
		Label:         "Blocked",
		Description:   "Unable to make any progress due to external constraints",
		Hint:          "Separate what you control from what you are waiting on.",
		Signs:         []string{"Waiting on external systems", "Missing access or credentials", "Progress depends on others"},
		Interventions: []string{"Document the blocker precisely", "Work on an unblocked subtask", "Escalate with a concrete ask"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"blocked", 3}, {"permission denied", 2}, {"no access", 2}, {"waiting on", 2},
				{"rate limit", 2}, {"external", 1}, {"dependency", 1},
			},
			Aliases: []string{"blocked", "blocker"},
		},
	},
	{
		Key:           Fragmented,
		Label:         "Fragmented",
		Description:   "Jumping between tasks without completing any",
		Hint:          "Pick one unfinished task and finish it before opening another.",
		Signs:         []string{"Many half-finished tasks", "Frequent context switches", "No completed deliverable"},
		Interventions: []string{"List open tasks", "Finish the smallest one", "Park the rest explicitly"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"jumping between", 3}, {"switching between tasks", 3}, {"half-finished", 2}, {"half finished", 2},
				{"context switch", 2}, {"scattered", 2}, {"fragment", 2}, {"unfinished", 2},
			},
			Aliases: []string{"fragmented", "scattered"},
		},
	},
	{
		Key:           Perfectionist,
		Label:         "Perfectionist",
		Description:   "Unable to proceed due to unrealistic standards",
		Hint:          "Define done, ship the good-enough version, then iterate.",
		Signs:         []string{"Reworking code that already works", "Moving the definition of done", "Polishing instead of shipping"},
		Interventions: []string{"Write explicit acceptance criteria", "Ship a good-enough version", "Time-box further polish"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"perfect", 2}, {"refactor", 2}, {"polish", 2}, {"not good enough", 2}, {"gold plat", 2},
				{"optimiz", 1}, {"rewrite", 1}, {"rewrote", 1}, {"cleaner", 1},
			},
			Aliases: []string{"perfectionist", "perfectionism", "perfectionist loop"},
		},
	},
	{
		Key:           AnalysisParalysis,
		Label:         "Analysis Paralysis",
		Description:   "Over-analyzing without taking action",
		Hint:          "Take one reversible action and learn from its result.",
		Signs:         []string{"Research without action", "Ever-growing option lists", "Waiting for certainty"},
		Interventions: []string{"Pick a reversible first step", "Time-box research", "Decide with current information"},
		Matcher: Matcher{
			Keywords: []Keyword{
				{"analysis paralysis", 4}, {"overthink", 3}, {"over-analy", 3}, {"overanaly", 3},
				{"keep researching", 2}, {"more research", 2}, {"paralys", 2}, {"analyzing", 1},
			},
			Aliases: []string{"analysis paralysis", "overthinking"},
		},
	},
}
