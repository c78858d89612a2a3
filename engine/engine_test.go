package engine

import (
	"context"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"rudra/model"
)

// scriptedProvider plays back one scripted turn per ChatWithTools call.
type scriptedProvider struct {
	turns []scriptedTurn
	seen  [][]model.Message
}

type scriptedTurn struct {
	chunks []string
	calls  []model.ToolCall
}

func (p *scriptedProvider) ChatWithTools(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, callback model.StreamCallback) error {
	p.seen = append(p.seen, messages)
	if len(p.turns) == 0 {
		return nil
	}
	turn := p.turns[0]
	p.turns = p.turns[1:]

	for _, chunk := range turn.chunks {
		if err := callback(chunk, nil); err != nil {
			return err
		}
	}
	if len(turn.calls) > 0 {
		return callback("", turn.calls)
	}
	return nil
}

func (p *scriptedProvider) GetModel() string { return "scripted" }

func (p *scriptedProvider) Ping(_ context.Context) error { return nil }

// mapExecutor returns canned results keyed by tool name.
type mapExecutor struct {
	results map[string]map[string]any
	ran     []string
}

func (m *mapExecutor) Definitions() []mcptypes.Tool { return nil }

func (m *mapExecutor) Execute(_ context.Context, name string, _ map[string]any) map[string]any {
	m.ran = append(m.ran, name)
	if r, ok := m.results[name]; ok {
		return r
	}
	return map[string]any{"error": "unknown tool: " + name}
}

func collect(t *testing.T) (EmitFunc, *[]model.StreamEvent) {
	t.Helper()
	var events []model.StreamEvent
	return func(ev model.StreamEvent) error {
		events = append(events, ev)
		return nil
	}, &events
}

func userTurn(text string) []model.Message {
	return []model.Message{{Role: model.RoleUser, Content: text}}
}

func TestRunPlainTextTurn(t *testing.T) {
	p := &scriptedProvider{turns: []scriptedTurn{
		{chunks: []string{"Hello", " there"}},
	}}
	e := &Engine{Provider: p, Tools: &mapExecutor{}, SystemPrompt: "be brief"}
	emit, events := collect(t)

	result, err := e.Run(context.Background(), userTurn("hi"), emit)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Text != "Hello there" {
		t.Errorf("Text = %q, want %q", result.Text, "Hello there")
	}
	if len(result.ToolInvocations) != 0 {
		t.Errorf("ToolInvocations = %v, want none", result.ToolInvocations)
	}
	if len(*events) != 2 || (*events)[0].Type != model.EventTextDelta {
		t.Errorf("events = %v, want two text deltas", *events)
	}
	if len(p.seen) != 1 {
		t.Fatalf("provider called %d times, want 1", len(p.seen))
	}
	if p.seen[0][0].Role != model.RoleSystem || p.seen[0][0].Content != "be brief" {
		t.Errorf("first message = %+v, want system prompt", p.seen[0][0])
	}
}

func TestRunToolCallTurn(t *testing.T) {
	p := &scriptedProvider{turns: []scriptedTurn{
		{calls: []model.ToolCall{{ID: "call-1", Name: "getWeather", Args: map[string]any{"location": "London"}}}},
		{chunks: []string{"It is cloudy in London."}},
	}}
	exec := &mapExecutor{results: map[string]map[string]any{
		"getWeather": {"location": "London", "condition": "Clouds"},
	}}
	e := &Engine{Provider: p, Tools: exec}
	emit, events := collect(t)

	result, err := e.Run(context.Background(), userTurn("weather in london?"), emit)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(exec.ran) != 1 || exec.ran[0] != "getWeather" {
		t.Errorf("executed tools = %v, want [getWeather]", exec.ran)
	}
	if result.Text != "It is cloudy in London." {
		t.Errorf("Text = %q", result.Text)
	}
	if len(result.ToolInvocations) != 1 {
		t.Fatalf("ToolInvocations = %d, want 1", len(result.ToolInvocations))
	}
	inv := result.ToolInvocations[0]
	if inv.ToolCallID != "call-1" || !inv.Completed() || inv.Result["condition"] != "Clouds" {
		t.Errorf("invocation = %+v, want completed call-1 with result", inv)
	}

	wantTypes := []string{model.EventToolCallStart, model.EventToolCallResult, model.EventTextDelta}
	if len(*events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(*events), len(wantTypes))
	}
	for i, ev := range *events {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d type = %s, want %s", i, ev.Type, wantTypes[i])
		}
	}

	// The second model call must replay the tool exchange.
	second := p.seen[1]
	last := second[len(second)-1]
	if last.Role != model.RoleTool || last.ToolCallID != "call-1" {
		t.Errorf("last replayed message = %+v, want tool result for call-1", last)
	}
	if !strings.Contains(last.Content, "Clouds") {
		t.Errorf("tool message content = %q, want the JSON result", last.Content)
	}
	prev := second[len(second)-2]
	if prev.Role != model.RoleAssistant || len(prev.ToolCalls) != 1 {
		t.Errorf("penultimate replayed message = %+v, want assistant with tool call", prev)
	}
}

func TestRunMintsMissingCallIDs(t *testing.T) {
	p := &scriptedProvider{turns: []scriptedTurn{
		{calls: []model.ToolCall{{Name: "getF1Race"}}},
		{chunks: []string{"done"}},
	}}
	exec := &mapExecutor{results: map[string]map[string]any{
		"getF1Race": {"raceName": "Monaco Grand Prix"},
	}}
	e := &Engine{Provider: p, Tools: exec}
	emit, events := collect(t)

	result, err := e.Run(context.Background(), userTurn("next race?"), emit)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.ToolInvocations[0].ToolCallID == "" {
		t.Error("ToolCallID empty, want minted ID")
	}
	start, end := (*events)[0], (*events)[1]
	if start.ToolCallID == "" || start.ToolCallID != end.ToolCallID {
		t.Errorf("start/result IDs = %q/%q, want matching non-empty", start.ToolCallID, end.ToolCallID)
	}
}

func TestRunStopsAtMaxSteps(t *testing.T) {
	// A provider that always asks for another tool call.
	p := &scriptedProvider{turns: []scriptedTurn{
		{calls: []model.ToolCall{{ID: "c1", Name: "getF1Race"}}},
		{calls: []model.ToolCall{{ID: "c2", Name: "getF1Race"}}},
		{calls: []model.ToolCall{{ID: "c3", Name: "getF1Race"}}},
		{calls: []model.ToolCall{{ID: "c4", Name: "getF1Race"}}},
	}}
	exec := &mapExecutor{results: map[string]map[string]any{
		"getF1Race": {"raceName": "Monaco Grand Prix"},
	}}
	e := &Engine{Provider: p, Tools: exec, MaxSteps: 3}
	emit, _ := collect(t)

	result, err := e.Run(context.Background(), userTurn("loop"), emit)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.ToolInvocations) != 3 {
		t.Errorf("invocations = %d, want 3 (one per step)", len(result.ToolInvocations))
	}
	if len(p.seen) != 3 {
		t.Errorf("provider calls = %d, want 3", len(p.seen))
	}
}

func TestRunEmitErrorAbortsTurn(t *testing.T) {
	p := &scriptedProvider{turns: []scriptedTurn{
		{calls: []model.ToolCall{{ID: "c1", Name: "getF1Race"}}},
	}}
	exec := &mapExecutor{results: map[string]map[string]any{
		"getF1Race": {"raceName": "Monaco Grand Prix"},
	}}
	e := &Engine{Provider: p, Tools: exec}

	calls := 0
	emit := func(model.StreamEvent) error {
		calls++
		if calls > 1 {
			return context.Canceled
		}
		return nil
	}

	if _, err := e.Run(context.Background(), userTurn("x"), emit); err == nil {
		t.Fatal("Run() = nil error, want abort from emit")
	}
}
