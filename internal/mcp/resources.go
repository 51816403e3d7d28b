package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"cbthelper/internal/format"
	"cbthelper/internal/render"
	"cbthelper/internal/taxonomy"
)

// Resource URIs.
const (
	GuideURI       = "cbt://techniques/guide"
	AgentStateURI  = "cbt://patterns/agent-state"
	DepthLadderURI = "cbt://thinking/depth-ladder"
)

// SelfReflectionPrompt is the name of the registered prompt.
const SelfReflectionPrompt = "self_reflection"

func (s *Server) registerResources() {
	s.MCPServer.AddResource(&sdkmcp.Resource{
		URI:         GuideURI,
		Name:        "cbt-techniques-guide",
		Description: "CBT strategies, agent-states, cognitive distortions and the thinking depth ladder.",
		MIMEType:    "text/markdown",
	}, s.readGuide)

	s.MCPServer.AddResource(&sdkmcp.Resource{
		URI:         AgentStateURI,
		Name:        "agent-state-patterns",
		Description: "Agent-states with their signs and interventions, plus the distortions and their agent examples.",
		MIMEType:    "application/json",
	}, s.readAgentStates)

	s.MCPServer.AddResource(&sdkmcp.Resource{
		URI:         DepthLadderURI,
		Name:        "thinking-depth-ladder",
		Description: "The seven depth levels, the Socratic dialogue types and the thinking lenses.",
		MIMEType:    "application/json",
	}, s.readDepthLadder)
}

func (s *Server) registerPrompts() {
	s.MCPServer.AddPrompt(&sdkmcp.Prompt{
		Name:        SelfReflectionPrompt,
		Description: "PAUSE / ASSESS / REFRAME / ACT / LEARN protocol for an agent that notices it is stuck.",
		Arguments: []*sdkmcp.PromptArgument{
			{Name: "situation", Description: "optional description of what is going on"},
		},
	}, s.getSelfReflection)
}

func (s *Server) readGuide(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return textResource(req.Params.URI, "text/markdown", format.Guide()), nil
}

type agentStatePatterns struct {
	States      []taxonomy.State      `json:"states"`
	Distortions []taxonomy.Distortion `json:"distortions"`
}

func (s *Server) readAgentStates(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, agentStatePatterns{
		States:      taxonomy.States(),
		Distortions: taxonomy.Distortions(),
	})
}

type depthLadder struct {
	Levels    []taxonomy.Level        `json:"levels"`
	Dialogues []taxonomy.DialogueType `json:"dialogues"`
	Lenses    []taxonomy.Lens         `json:"lenses"`
}

func (s *Server) readDepthLadder(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, depthLadder{
		Levels:    taxonomy.Levels(),
		Dialogues: taxonomy.Dialogues(),
		Lenses:    taxonomy.Lenses(),
	})
}

func (s *Server) getSelfReflection(_ context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	text := render.SelfReflection()
	if sit := strings.TrimSpace(req.Params.Arguments["situation"]); sit != "" {
		text = "Current situation: " + sit + "\n\n" + text
	}
	return &sdkmcp.GetPromptResult{
		Description: "Self-reflection protocol",
		Messages: []*sdkmcp.PromptMessage{
			{Role: "user", Content: &sdkmcp.TextContent{Text: text}},
		},
	}, nil
}

func textResource(uri, mime, text string) *sdkmcp.ReadResourceResult {
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{{URI: uri, MIMEType: mime, Text: text}},
	}
}

func jsonResource(uri string, v any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return textResource(uri, "application/json", string(data)), nil
}
