package taxonomy

const (
	CognitiveReframing   StrategyKey = "cognitive_reframing"
	SocraticQuestioning  StrategyKey = "socratic_questioning"
	CostBenefitAnalysis  StrategyKey = "cost_benefit_analysis"
	GradedExposure       StrategyKey = "graded_exposure"
	AcceptanceCommitment StrategyKey = "acceptance_commitment"
	ThoughtChallenging   StrategyKey = "thought_challenging"
	ProblemSolving       StrategyKey = "problem_solving"
	BehavioralActivation StrategyKey = "behavioral_activation"
	Mindfulness          StrategyKey = "mindfulness"
)

var strategies = []Strategy{
	{
		Key:         CognitiveReframing,
		Label:       "Cognitive Reframing",
		Description: "Challenge negative thought patterns and find alternative perspectives",
		Hint:        "Find another way to read the same facts.",
		Prompts: []string{
			"What evidence supports or contradicts this thought?",
			"Is there another way to look at this situation?",
			"What would you tell another agent in this situation?",
			"Are you catastrophizing or making assumptions?",
		},
	},
	{
		Key:         SocraticQuestioning,
		Label:       "Socratic Questioning",
		Description: "Use guided questions to surface assumptions and gaps",
		Hint:        "Question the situation until the real problem shows itself.",
		Prompts: []string{
			"What exactly do you know for certain right now?",
			"What are you assuming that you have not verified?",
			"What would have to be true for your current approach to work?",
			"What question, if answered, would unblock you?",
		},
	},
	{
		Key:         CostBenefitAnalysis,
		Label:       "Cost-Benefit Analysis",
		Description: "Weigh the cost of continuing against the benefit gained",
		Hint:        "Compare what the next iteration costs with what it buys.",
		Prompts: []string{
			"What does one more iteration cost in time and risk?",
			"What concrete benefit will it deliver?",
			"What is the cost of stopping now?",
			"Which option gives the best return for the next ten minutes?",
		},
	},
	{
		Key:         GradedExposure,
		Label:       "Graded Exposure",
		Description: "Approach the feared action in small, tolerable increments",
		Hint:        "Take the smallest version of the step you are avoiding.",
		Prompts: []string{
			"What is the step you are avoiding?",
			"What is a smaller, safer version of that step?",
			"What happened the last time you took a similar step?",
			"What is the next increment after that?",
		},
	},
	{
		Key:         AcceptanceCommitment,
		Label:       "Acceptance and Commitment",
		Description: "Accept the discomfort and commit to value-driven action",
		Hint:        "Acknowledge the difficulty and act on the goal anyway.",
		Prompts: []string{
			"Can you acknowledge this is hard without fighting it?",
			"What outcome actually matters here?",
			"What action serves that outcome despite the discomfort?",
			"What would you commit to doing in the next five minutes?",
		},
	},
	{
		Key:         ThoughtChallenging,
		Label:       "Thought Challenging",
		Description: "Question automatic negative thoughts and cognitive distortions",
		Hint:        "Test the thought against facts.",
		Prompts: []string{
			"Is this thought based on facts or feelings?",
			"Am I using all-or-nothing thinking?",
			"What's the worst that could realistically happen?",
			"What's the most likely outcome?",
		},
	},
	{
		Key:         ProblemSolving,
		Label:       "Problem Solving",
		Description: "Break down problems into manageable steps",
		Hint:        "Define the problem, list options, take the smallest step.",
		Prompts: []string{
			"What exactly is the problem?",
			"What are possible solutions?",
			"What are the pros and cons of each solution?",
			"What's the smallest step you can take right now?",
		},
	},
	{
		Key:         BehavioralActivation,
		Label:       "Behavioral Activation",
		Description: "Encourage action to break paralysis",
		Hint:        "Act first; motivation follows action.",
		Prompts: []string{
			"What's one small action you can take?",
			"What has worked in similar situations before?",
			"Can you break this into smaller tasks?",
			"What would success look like?",
		},
	},
	{
		Key:         Mindfulness,
		Label:       "Mindfulness",
		Description: "Focus on the present moment and observable facts",
		Hint:        "Pause, ground in observable facts, then choose.",
		Prompts: []string{
			"What are the facts of the current situation?",
			"What can you control right now?",
			"Are you focused on past failures or future worries?",
			"What information do you have available?",
		},
	},
}
