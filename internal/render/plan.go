package render

import "strings"

// Step is one micro-action of an action plan.
type Step struct {
	Step     int    `json:"step"`
	Action   string `json:"action"`
	Duration string `json:"duration"`
	Purpose  string `json:"purpose"`
}

// Plan is a structured way out of analysis paralysis.
type Plan struct {
	Goal             string   `json:"goal"`
	MindsetShift     string   `json:"mindset_shift"`
	ImmediateActions []Step   `json:"immediate_actions"`
	BackupStrategies []string `json:"backup_strategies"`
	SuccessCriteria  string   `json:"success_criteria"`
}

var planSteps = []Step{
	{1, "Define the minimum viable solution", "2 minutes", "Clarify scope"},
	{2, "List what you already know", "1 minute", "Build confidence"},
	{3, "Identify the first testable step", "1 minute", "Create momentum"},
	{4, "Execute that one step", "5 minutes", "Break inertia"},
	{5, "Evaluate and adjust", "1 minute", "Learn and iterate"},
}

// obstacle keyword -> backup strategy, checked in order.
var backups = []struct{ keyword, strategy string }{
	{"complex", "Simplify ruthlessly - what's the 20% that gives 80% value?"},
	{"uncertain", "Make assumptions explicit and test them one by one"},
	{"perfect", "Ship a 'good enough' version, then iterate"},
}

// ActionPlan builds the plan for goal. Time pressure keeps only the first
// three steps.
func ActionPlan(goal string, obstacles []string, timePressure bool) Plan {
	p := Plan{
		Goal:             goal,
		MindsetShift:     "Progress over perfection",
		ImmediateActions: append([]Step(nil), planSteps...),
		BackupStrategies: []string{},
		SuccessCriteria:  "Any forward movement is success. Learning what doesn't work is valuable progress.",
	}
	joined := strings.ToLower(strings.Join(obstacles, " "))
	for _, b := range backups {
		if strings.Contains(joined, b.keyword) {
			p.BackupStrategies = append(p.BackupStrategies, b.strategy)
		}
	}
	if timePressure {
		p.ImmediateActions = p.ImmediateActions[:3]
		p.MindsetShift = "Done is better than perfect"
	}
	return p
}

// Load levels reported by a wellness check.
const (
	LoadHigh       = "High"
	LoadMediumHigh = "Medium-High"
	LoadManageable = "Manageable"
	LoadLowMedium  = "Low-Medium"
)

// Assessment is the result of a wellness check.
type Assessment struct {
	Task                  string   `json:"task"`
	Status                string   `json:"status"`
	CognitiveLoad         string   `json:"cognitive_load"`
	Recommendations       []string `json:"recommendations"`
	SuggestedIntervention string   `json:"suggested_intervention,omitempty"`
}

// Wellness assesses an agent that has spent minutes on task.
func Wellness(task string, minutes int, progress bool) Assessment {
	a := Assessment{Task: task}
	switch {
	case minutes > 30 && !progress:
		a.Status = "Potential cognitive fatigue or stuck pattern"
		a.CognitiveLoad = LoadHigh
		a.Recommendations = []string{
			"Take a 2-minute reset break",
			"Switch to a different subtask temporarily",
			"Verbalize the problem out loud",
			"Check if you're solving the right problem",
		}
		a.SuggestedIntervention = "analyze"
	case minutes > 60:
		a.Status = "Extended focus - watch for tunnel vision"
		a.CognitiveLoad = LoadMediumHigh
		a.Recommendations = []string{
			"Zoom out and review overall goal",
			"Check if initial assumptions still hold",
			"Consider alternative approaches",
		}
	case progress:
		a.Status = "Healthy progress pattern"
		a.CognitiveLoad = LoadManageable
		a.Recommendations = []string{
			"Continue current approach",
			"Document what's working",
			"Maintain momentum",
		}
	default:
		a.Status = "Early stage - gathering information"
		a.CognitiveLoad = LoadLowMedium
		a.Recommendations = []string{
			"Clarify requirements if needed",
			"Break task into smaller pieces",
			"Set a small, achievable first goal",
		}
	}
	return a
}
