package mcp_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"cbthelper/internal/engine"
	mcpserver "cbthelper/internal/mcp"
	"cbthelper/internal/store"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *mcpserver.Server {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), engine.WithBackend(store.NewMemStore()))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return mcpserver.NewServer(eng)
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, textOf(res))
	}
	result := make(map[string]any)
	if err := json.Unmarshal([]byte(textOf(res)), &result); err != nil {
		t.Fatalf("unmarshal tool result: %v (text: %s)", err, textOf(res))
	}
	return result
}

func callToolExpectError(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return err.Error()
	}
	if !res.IsError {
		t.Fatalf("CallTool(%s): expected IsError=true, got %s", name, textOf(res))
	}
	return textOf(res)
}

func textOf(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestServer_ToolDiscovery(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var got []string
	for _, tool := range tools.Tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	want := []string{
		"advance_thinking", "analyze_stuck_pattern", "contemplation_structure",
		"create_action_plan", "delete_session", "initiate_deep_thinking",
		"list_sessions", "next_recursive_round", "next_socratic_round",
		"reframe_thought", "regulate_frustration", "reset_thinking",
		"session_summary", "start_recursive_questioning", "start_session",
		"start_socratic_dialogue", "thinking_session_summary",
		"thought_experiments", "wellness_check",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tools (-want +got):\n%s", diff)
	}
}

func TestServer_PerfectionistLoop(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	start := callTool(t, ctx, session, "start_session", map[string]any{"session_id": "s1"})
	if start["created"] != true {
		t.Fatalf("start_session = %v", start)
	}
	res := callTool(t, ctx, session, "analyze_stuck_pattern", map[string]any{
		"session_id":        "s1",
		"current_situation": "Refactoring for the 5th time",
		"pattern":           "perfectionist loop",
	})
	if res["strategy"] != "cost_benefit_analysis" {
		t.Errorf("strategy = %v", res["strategy"])
	}
	states := res["states"].([]any)
	if top := states[0].(map[string]any)["key"]; top != "perfectionist" {
		t.Errorf("top state = %v", top)
	}
	iv := res["intervention"].(map[string]any)
	if text, _ := iv["text"].(string); !strings.Contains(text, "Cost-Benefit Analysis") {
		t.Errorf("intervention text = %q", text)
	}

	sum := callTool(t, ctx, session, "session_summary", map[string]any{"session_id": "s1"})
	if sum["found"] != true {
		t.Fatalf("summary = %v", sum)
	}
	strategies := sum["summary"].(map[string]any)["strategies"].([]any)
	first := strategies[0].(map[string]any)
	if first["strategy"] != "cost_benefit_analysis" || first["count"] != float64(1) {
		t.Errorf("strategies = %v", strategies)
	}
}

func TestServer_ErrorsAreToolErrors(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	msg := callToolExpectError(t, ctx, session, "regulate_frustration", map[string]any{
		"session_id": "x", "frustration_level": 42,
	})
	if !strings.Contains(msg, "invalid_argument") || !strings.Contains(msg, "frustration_level") {
		t.Errorf("out of range level: %s", msg)
	}

	msg = callToolExpectError(t, ctx, session, "advance_thinking", map[string]any{"session_id": "ghost"})
	if !strings.Contains(msg, "session_not_found") {
		t.Errorf("unknown session: %s", msg)
	}

	msg = callToolExpectError(t, ctx, session, "start_session", map[string]any{"session_id": strings.Repeat("x", 200)})
	if !strings.Contains(msg, "session_id") {
		t.Errorf("oversized id: %s", msg)
	}

	// The server keeps serving after failures.
	missing := callTool(t, ctx, session, "session_summary", map[string]any{"session_id": "ghost"})
	if missing["found"] != false {
		t.Errorf("unknown summary = %v", missing)
	}
}

func TestServer_DepthLadder(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	first := callTool(t, ctx, session, "initiate_deep_thinking", map[string]any{
		"session_id": "d", "topic": "flaky tests", "depth": "analytical",
	})
	if first["current_level"] != float64(1) || first["next"] != "advance_thinking" {
		t.Fatalf("initiate = %v", first)
	}
	callTool(t, ctx, session, "advance_thinking", map[string]any{"session_id": "d"})
	third := callTool(t, ctx, session, "advance_thinking", map[string]any{"session_id": "d", "level": 3})
	if third["next"] != "thinking_session_summary" {
		t.Errorf("third = %v", third)
	}
	done := callTool(t, ctx, session, "advance_thinking", map[string]any{"session_id": "d"})
	if done["terminal"] != true {
		t.Errorf("expected terminal, got %v", done)
	}

	msg := callToolExpectError(t, ctx, session, "next_socratic_round", map[string]any{"session_id": "d"})
	if !strings.Contains(msg, "protocol_violation") {
		t.Errorf("kind mismatch: %s", msg)
	}

	sum := callTool(t, ctx, session, "thinking_session_summary", map[string]any{"session_id": "d"})
	metrics := sum["metrics"].(map[string]any)
	if metrics["complete"] != true || metrics["phases"] != float64(3) {
		t.Errorf("metrics = %v", metrics)
	}

	reset := callTool(t, ctx, session, "reset_thinking", map[string]any{"session_id": "d"})
	if reset["reset"] != true {
		t.Errorf("reset = %v", reset)
	}
}

func TestServer_StatelessHelpers(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	exps := callTool(t, ctx, session, "thought_experiments", map[string]any{"concept": "caching", "count": 2})
	if n := len(exps["experiments"].([]any)); n != 2 {
		t.Errorf("experiments = %d", n)
	}
	c := callTool(t, ctx, session, "contemplation_structure", map[string]any{"topic": "naming", "style": "analytical"})
	if c["style"] != "analytical" {
		t.Errorf("contemplation = %v", c)
	}
	plan := callTool(t, ctx, session, "create_action_plan", map[string]any{
		"goal": "ship the parser", "obstacles": []string{"too complex"},
	})
	if p := plan["plan"].(map[string]any); len(p["backup_strategies"].([]any)) != 1 {
		t.Errorf("plan = %v", p)
	}
	list := callTool(t, ctx, session, "list_sessions", map[string]any{})
	if list["total"] != float64(1) {
		t.Errorf("list = %v", list)
	}
}

func TestServer_Resources(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	list, err := session.ListResources(ctx, nil)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(list.Resources) != 3 {
		t.Errorf("resources = %d, want 3", len(list.Resources))
	}

	guide, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: mcpserver.GuideURI})
	if err != nil {
		t.Fatalf("ReadResource guide: %v", err)
	}
	if !strings.Contains(guide.Contents[0].Text, "Socratic Questioning") {
		t.Errorf("guide missing strategies:\n%s", guide.Contents[0].Text)
	}

	states, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: mcpserver.AgentStateURI})
	if err != nil {
		t.Fatalf("ReadResource states: %v", err)
	}
	var payload struct {
		States []struct {
			Key string `json:"key"`
		} `json:"states"`
	}
	if err := json.Unmarshal([]byte(states.Contents[0].Text), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.States) != 11 {
		t.Errorf("states = %d, want 11", len(payload.States))
	}

	ladder, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: mcpserver.DepthLadderURI})
	if err != nil {
		t.Fatalf("ReadResource ladder: %v", err)
	}
	if !strings.Contains(ladder.Contents[0].Text, "transcendent") {
		t.Error("ladder missing transcendent level")
	}
}

func TestServer_SelfReflectionPrompt(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))

	res, err := session.GetPrompt(ctx, &sdkmcp.GetPromptParams{
		Name:      mcpserver.SelfReflectionPrompt,
		Arguments: map[string]string{"situation": "third failed migration"},
	})
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	text := res.Messages[0].Content.(*sdkmcp.TextContent).Text
	for _, want := range []string{"third failed migration", "PAUSE", "LEARN"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
