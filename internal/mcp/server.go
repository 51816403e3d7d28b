// Package mcp exposes the engine as an MCP server: one tool per engine
// operation plus the technique resources and the self_reflection prompt.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"cbthelper/internal/engine"
	"cbthelper/internal/logging"
	"cbthelper/internal/session"
	"cbthelper/internal/thinking"
)

// Name is the MCP implementation name.
const Name = "cbthelper"

// Version is reported to clients. cmd/cbthelper sets it from its build version.
var Version = "dev"

// Server wraps the MCP SDK server around an engine.
type Server struct {
	MCPServer *sdkmcp.Server
	Engine    *engine.Engine

	validate *validator.Validate
}

// NewServer registers every tool, resource and prompt for eng.
func NewServer(eng *engine.Engine) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	s := &Server{Engine: eng, validate: v}
	s.MCPServer = sdkmcp.NewServer(&sdkmcp.Implementation{Name: Name, Version: Version}, nil)
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_session",
		Description: "Start or resume a CBT session. Omit session_id to get a generated one.",
	}, s.handleStartSession)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_stuck_pattern",
		Description: "Analyze a stuck situation: detect agent-states and distortions, update the frustration trajectory and return a CBT intervention.",
	}, s.handleAnalyze)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "reframe_thought",
		Description: "Detect cognitive distortions in a negative thought and return balanced reframes.",
	}, s.handleReframe)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "regulate_frustration",
		Description: "Report a frustration level (1-10) or a trigger; returns the regulation outcome, trend and relief techniques.",
	}, s.handleRegulate)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "session_summary",
		Description: "Summarize a session: states, distortions, frustration trend, strategies used and thinking metrics. Read-only.",
	}, s.handleSessionSummary)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_action_plan",
		Description: "Break a goal into time-boxed micro-steps to escape analysis paralysis.",
	}, s.handleActionPlan)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "wellness_check",
		Description: "Assess cognitive load from time on task and whether progress is being made.",
	}, s.handleWellness)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and its thinking protocol.",
	}, s.handleDeleteSession)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_sessions",
		Description: "List live and persisted sessions.",
	}, s.handleListSessions)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "initiate_deep_thinking",
		Description: "Start a depth-ladder thinking protocol on a topic (surface through transcendent) and return the first phase.",
	}, s.handleInitiateThinking)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "advance_thinking",
		Description: "Advance the active thinking protocol by one level. Returns terminal=true once the target depth was reached.",
	}, s.handleAdvanceThinking)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "thinking_session_summary",
		Description: "Report depth, breadth and integration scores for the session's thinking protocol. Read-only.",
	}, s.handleThinkingSummary)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_socratic_dialogue",
		Description: "Start a Socratic dialogue (assumption_examination, perspective_expansion, implication_exploration, depth_drilling, complexity_embrace, thinking_about_thinking, process_reflection).",
	}, s.handleStartSocratic)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "next_socratic_round",
		Description: "Advance the active Socratic dialogue by one round.",
	}, s.handleNextSocratic)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_recursive_questioning",
		Description: "Start recursive questioning of a question: each round questions the previous answer.",
	}, s.handleStartRecursive)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "next_recursive_round",
		Description: "Advance the active recursive questioning by one round.",
	}, s.handleNextRecursive)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "reset_thinking",
		Description: "Discard the session's thinking protocol.",
	}, s.handleResetThinking)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "contemplation_structure",
		Description: "Return a guided contemplation of a topic (philosophical, analytical or creative).",
	}, s.handleContemplation)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "thought_experiments",
		Description: "Return 1-5 thought experiments for a concept.",
	}, s.handleThoughtExperiments)
}

// check validates in against its struct tags. Failures are reported as
// invalid arguments naming the JSON field.
func (s *Server) check(tool string, in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%s: %w", tool, err)
	}
	fe := verrs[0]
	detail := fe.Tag()
	if fe.Param() != "" {
		detail += "=" + fe.Param()
	}
	logging.New("mcp").Warn("rejected tool input", "tool", tool, "field", fe.Field(), "rule", detail)
	return &engine.Error{Kind: engine.KindInvalidArgument, Field: fe.Field(), Detail: "violates " + detail}
}

// --- Tool input/output types ---

type startSessionInput struct {
	SessionID      string `json:"session_id,omitempty" jsonschema:"session ID to start or resume; empty generates one" validate:"max=128"`
	InitialProblem string `json:"initial_problem,omitempty" jsonschema:"optional description of the problem that brought the agent here" validate:"max=4000"`
}

type analyzeInput struct {
	SessionID          string   `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	CurrentSituation   string   `json:"current_situation,omitempty" jsonschema:"what the agent is experiencing" validate:"max=8000"`
	Pattern            string   `json:"pattern,omitempty" jsonschema:"optional pattern name, e.g. perfectionist loop or error loop" validate:"max=200"`
	AttemptedSolutions []string `json:"attempted_solutions,omitempty" jsonschema:"approaches already tried" validate:"max=50,dive,max=2000"`
	ErrorMessages      []string `json:"error_messages,omitempty" jsonschema:"error messages seen" validate:"max=50,dive,max=2000"`
	FrustrationLevel   *int     `json:"frustration_level,omitempty" jsonschema:"self-reported frustration 1-10; inferred when omitted"`
}

type reframeInput struct {
	SessionID       string `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	NegativeThought string `json:"negative_thought" jsonschema:"the negative or distorted thought" validate:"max=4000"`
	Context         string `json:"context,omitempty" jsonschema:"optional context" validate:"max=4000"`
}

type regulateInput struct {
	SessionID        string `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	FrustrationLevel *int   `json:"frustration_level,omitempty" jsonschema:"frustration 1-10; inferred from the trigger when omitted"`
	Trigger          string `json:"trigger,omitempty" jsonschema:"what caused the frustration" validate:"max=4000"`
}

type sessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID" validate:"max=128"`
}

type planInput struct {
	SessionID    string   `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	Goal         string   `json:"goal" jsonschema:"what needs to get done" validate:"max=4000"`
	Obstacles    []string `json:"obstacles,omitempty" jsonschema:"known obstacles (complex, uncertain, perfect... select backup strategies)" validate:"max=20,dive,max=1000"`
	TimePressure bool     `json:"time_pressure,omitempty" jsonschema:"keep only the first three steps"`
}

type wellnessInput struct {
	SessionID     string `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	CurrentTask   string `json:"current_task" jsonschema:"task being worked on" validate:"max=2000"`
	MinutesOnTask int    `json:"minutes_on_task" jsonschema:"minutes spent so far"`
	ProgressMade  bool   `json:"progress_made,omitempty" jsonschema:"whether progress has been made"`
}

type listSessionsInput struct{}

type listSessionsOutput struct {
	Sessions []session.Info `json:"sessions"`
	Total    int            `json:"total"`
}

type initiateThinkingInput struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	Topic      string `json:"topic" jsonschema:"what to think about" validate:"max=4000"`
	Depth      string `json:"depth,omitempty" jsonschema:"target depth: surface, factual, analytical, critical, synthetic, philosophical, transcendent or 1-7 (default transcendent)" validate:"max=32"`
	StartLevel int    `json:"start_level,omitempty" jsonschema:"first level to produce (default 1)" validate:"min=0,max=7"`
	Force      bool   `json:"force,omitempty" jsonschema:"replace an unfinished protocol"`
}

type advanceThinkingInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID" validate:"max=128"`
	Level     int    `json:"level,omitempty" jsonschema:"optional expected next level; must equal current+1"`
}

type socraticInput struct {
	SessionID    string `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	Topic        string `json:"topic" jsonschema:"subject of the dialogue" validate:"max=4000"`
	DialogueType string `json:"dialogue_type,omitempty" jsonschema:"dialogue type (default assumption_examination)" validate:"max=64"`
	DepthLevel   int    `json:"depth_level,omitempty" jsonschema:"number of rounds 1-7 (default 3)"`
	Force        bool   `json:"force,omitempty" jsonschema:"replace an unfinished protocol"`
}

type recursiveInput struct {
	SessionID       string `json:"session_id,omitempty" jsonschema:"session ID; created when unknown" validate:"max=128"`
	InitialQuestion string `json:"initial_question" jsonschema:"question to examine" validate:"max=4000"`
	MaxDepth        int    `json:"max_depth,omitempty" jsonschema:"number of rounds 1-7 (default 4)"`
	Force           bool   `json:"force,omitempty" jsonschema:"replace an unfinished protocol"`
}

type contemplationInput struct {
	Topic string `json:"topic" jsonschema:"topic to contemplate" validate:"max=4000"`
	Style string `json:"style,omitempty" jsonschema:"philosophical, analytical or creative (default philosophical)" validate:"max=32"`
}

type experimentsInput struct {
	Concept string `json:"concept" jsonschema:"concept to explore" validate:"max=4000"`
	Count   int    `json:"count,omitempty" jsonschema:"number of experiments 1-5 (default 3)"`
}

type experimentsOutput struct {
	Concept     string                       `json:"concept"`
	Experiments []thinking.ThoughtExperiment `json:"experiments"`
}

// --- Tool handlers ---

func (s *Server) handleStartSession(_ context.Context, _ *sdkmcp.CallToolRequest, in startSessionInput) (*sdkmcp.CallToolResult, engine.StartResponse, error) {
	if err := s.check("start_session", in); err != nil {
		return nil, engine.StartResponse{}, err
	}
	out, err := s.Engine.StartSession(engine.StartRequest{SessionID: in.SessionID, InitialProblem: in.InitialProblem})
	if err == nil && out.Created {
		logging.New("mcp").Info("session started", "session_id", out.SessionID)
	}
	return nil, out, err
}

func (s *Server) handleAnalyze(_ context.Context, _ *sdkmcp.CallToolRequest, in analyzeInput) (*sdkmcp.CallToolResult, engine.AnalyzeResponse, error) {
	if err := s.check("analyze_stuck_pattern", in); err != nil {
		return nil, engine.AnalyzeResponse{}, err
	}
	out, err := s.Engine.Analyze(engine.AnalyzeRequest{
		SessionID:          in.SessionID,
		Situation:          in.CurrentSituation,
		Pattern:            in.Pattern,
		AttemptedSolutions: in.AttemptedSolutions,
		ErrorMessages:      in.ErrorMessages,
		FrustrationLevel:   in.FrustrationLevel,
	})
	return nil, out, err
}

func (s *Server) handleReframe(_ context.Context, _ *sdkmcp.CallToolRequest, in reframeInput) (*sdkmcp.CallToolResult, engine.ReframeResponse, error) {
	if err := s.check("reframe_thought", in); err != nil {
		return nil, engine.ReframeResponse{}, err
	}
	out, err := s.Engine.Reframe(engine.ReframeRequest{SessionID: in.SessionID, Thought: in.NegativeThought, Context: in.Context})
	return nil, out, err
}

func (s *Server) handleRegulate(_ context.Context, _ *sdkmcp.CallToolRequest, in regulateInput) (*sdkmcp.CallToolResult, engine.RegulateResponse, error) {
	if err := s.check("regulate_frustration", in); err != nil {
		return nil, engine.RegulateResponse{}, err
	}
	out, err := s.Engine.RegulateFrustration(engine.RegulateRequest{SessionID: in.SessionID, Level: in.FrustrationLevel, Trigger: in.Trigger})
	return nil, out, err
}

func (s *Server) handleSessionSummary(_ context.Context, _ *sdkmcp.CallToolRequest, in sessionInput) (*sdkmcp.CallToolResult, engine.SummaryResponse, error) {
	if err := s.check("session_summary", in); err != nil {
		return nil, engine.SummaryResponse{}, err
	}
	out, err := s.Engine.SessionSummary(in.SessionID)
	return nil, out, err
}

func (s *Server) handleActionPlan(_ context.Context, _ *sdkmcp.CallToolRequest, in planInput) (*sdkmcp.CallToolResult, engine.PlanResponse, error) {
	if err := s.check("create_action_plan", in); err != nil {
		return nil, engine.PlanResponse{}, err
	}
	out, err := s.Engine.CreateActionPlan(engine.PlanRequest{
		SessionID:    in.SessionID,
		Goal:         in.Goal,
		Obstacles:    in.Obstacles,
		TimePressure: in.TimePressure,
	})
	return nil, out, err
}

func (s *Server) handleWellness(_ context.Context, _ *sdkmcp.CallToolRequest, in wellnessInput) (*sdkmcp.CallToolResult, engine.WellnessResponse, error) {
	if err := s.check("wellness_check", in); err != nil {
		return nil, engine.WellnessResponse{}, err
	}
	out, err := s.Engine.WellnessCheck(engine.WellnessRequest{
		SessionID: in.SessionID,
		Task:      in.CurrentTask,
		Minutes:   in.MinutesOnTask,
		Progress:  in.ProgressMade,
	})
	return nil, out, err
}

func (s *Server) handleDeleteSession(_ context.Context, _ *sdkmcp.CallToolRequest, in sessionInput) (*sdkmcp.CallToolResult, engine.DeleteResponse, error) {
	if err := s.check("delete_session", in); err != nil {
		return nil, engine.DeleteResponse{}, err
	}
	out, err := s.Engine.DeleteSession(in.SessionID)
	if err == nil && out.Deleted {
		logging.New("mcp").Info("session deleted", "session_id", out.SessionID)
	}
	return nil, out, err
}

func (s *Server) handleListSessions(_ context.Context, _ *sdkmcp.CallToolRequest, _ listSessionsInput) (*sdkmcp.CallToolResult, listSessionsOutput, error) {
	infos := s.Engine.ListSessions()
	if infos == nil {
		infos = []session.Info{}
	}
	return nil, listSessionsOutput{Sessions: infos, Total: len(infos)}, nil
}

func (s *Server) handleInitiateThinking(_ context.Context, _ *sdkmcp.CallToolRequest, in initiateThinkingInput) (*sdkmcp.CallToolResult, engine.ThinkingResponse, error) {
	if err := s.check("initiate_deep_thinking", in); err != nil {
		return nil, engine.ThinkingResponse{}, err
	}
	out, err := s.Engine.InitiateDeepThinking(engine.InitiateRequest{
		SessionID: in.SessionID,
		Topic:     in.Topic,
		Depth:     in.Depth,
		Start:     in.StartLevel,
		Force:     in.Force,
	})
	return nil, out, err
}

func (s *Server) handleAdvanceThinking(_ context.Context, _ *sdkmcp.CallToolRequest, in advanceThinkingInput) (*sdkmcp.CallToolResult, engine.ThinkingResponse, error) {
	if err := s.check("advance_thinking", in); err != nil {
		return nil, engine.ThinkingResponse{}, err
	}
	out, err := s.Engine.AdvanceThinking(in.SessionID, in.Level)
	return nil, out, err
}

func (s *Server) handleThinkingSummary(_ context.Context, _ *sdkmcp.CallToolRequest, in sessionInput) (*sdkmcp.CallToolResult, engine.ThinkingSummaryResponse, error) {
	if err := s.check("thinking_session_summary", in); err != nil {
		return nil, engine.ThinkingSummaryResponse{}, err
	}
	out, err := s.Engine.ThinkingSummary(in.SessionID)
	return nil, out, err
}

func (s *Server) handleStartSocratic(_ context.Context, _ *sdkmcp.CallToolRequest, in socraticInput) (*sdkmcp.CallToolResult, engine.ThinkingResponse, error) {
	if err := s.check("start_socratic_dialogue", in); err != nil {
		return nil, engine.ThinkingResponse{}, err
	}
	out, err := s.Engine.StartSocraticDialogue(engine.SocraticRequest{
		SessionID:    in.SessionID,
		Topic:        in.Topic,
		DialogueType: in.DialogueType,
		Rounds:       in.DepthLevel,
		Force:        in.Force,
	})
	return nil, out, err
}

func (s *Server) handleNextSocratic(_ context.Context, _ *sdkmcp.CallToolRequest, in sessionInput) (*sdkmcp.CallToolResult, engine.ThinkingResponse, error) {
	if err := s.check("next_socratic_round", in); err != nil {
		return nil, engine.ThinkingResponse{}, err
	}
	out, err := s.Engine.NextSocraticRound(in.SessionID)
	return nil, out, err
}

func (s *Server) handleStartRecursive(_ context.Context, _ *sdkmcp.CallToolRequest, in recursiveInput) (*sdkmcp.CallToolResult, engine.ThinkingResponse, error) {
	if err := s.check("start_recursive_questioning", in); err != nil {
		return nil, engine.ThinkingResponse{}, err
	}
	out, err := s.Engine.StartRecursiveQuestioning(engine.RecursiveRequest{
		SessionID: in.SessionID,
		Question:  in.InitialQuestion,
		Rounds:    in.MaxDepth,
		Force:     in.Force,
	})
	return nil, out, err
}

func (s *Server) handleNextRecursive(_ context.Context, _ *sdkmcp.CallToolRequest, in sessionInput) (*sdkmcp.CallToolResult, engine.ThinkingResponse, error) {
	if err := s.check("next_recursive_round", in); err != nil {
		return nil, engine.ThinkingResponse{}, err
	}
	out, err := s.Engine.NextRecursiveRound(in.SessionID)
	return nil, out, err
}

func (s *Server) handleResetThinking(_ context.Context, _ *sdkmcp.CallToolRequest, in sessionInput) (*sdkmcp.CallToolResult, engine.ResetResponse, error) {
	if err := s.check("reset_thinking", in); err != nil {
		return nil, engine.ResetResponse{}, err
	}
	out, err := s.Engine.ResetThinking(in.SessionID)
	return nil, out, err
}

func (s *Server) handleContemplation(_ context.Context, _ *sdkmcp.CallToolRequest, in contemplationInput) (*sdkmcp.CallToolResult, thinking.Contemplation, error) {
	if err := s.check("contemplation_structure", in); err != nil {
		return nil, thinking.Contemplation{}, err
	}
	out, err := s.Engine.Contemplation(in.Topic, in.Style)
	return nil, out, err
}

func (s *Server) handleThoughtExperiments(_ context.Context, _ *sdkmcp.CallToolRequest, in experimentsInput) (*sdkmcp.CallToolResult, experimentsOutput, error) {
	if err := s.check("thought_experiments", in); err != nil {
		return nil, experimentsOutput{}, err
	}
	exps, err := s.Engine.ThoughtExperiments(in.Concept, in.Count)
	if err != nil {
		return nil, experimentsOutput{}, err
	}
	return nil, experimentsOutput{Concept: in.Concept, Experiments: exps}, nil
}
