// Package engine drives one assistant turn: it streams model output, runs
// the tools the model asks for, feeds results back, and repeats until the
// model answers in prose or the step limit is reached.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"rudra/model"
)

// DefaultMaxSteps bounds how many model round-trips one turn may take. Each
// tool-calling step costs one round-trip, so 3 allows a call, a follow-up
// call, and a closing prose step.
const DefaultMaxSteps = 3

// ToolExecutor is the tool surface the engine needs: the declarations to
// advertise and a way to run one call. *tools.Registry satisfies it.
type ToolExecutor interface {
	Definitions() []mcptypes.Tool
	Execute(ctx context.Context, name string, args map[string]any) map[string]any
}

// Engine runs assistant turns against a provider.
type Engine struct {
	Provider     model.Provider
	Tools        ToolExecutor
	SystemPrompt string
	MaxSteps     int
}

// Result is the final state of one turn.
type Result struct {
	Text            string
	ToolInvocations []model.ToolInvocation
}

// EmitFunc receives stream events as the turn progresses. Returning an error
// aborts the turn.
type EmitFunc func(model.StreamEvent) error

// Run executes one turn. history is the conversation so far, ending with the
// user message that triggered the turn. Events are emitted in order: text
// deltas as they stream, a start event when a tool call begins, a result
// event when it completes. Run never emits the terminating stream-end event;
// that is the transport's job.
func (e *Engine) Run(ctx context.Context, history []model.Message, emit EmitFunc) (*Result, error) {
	maxSteps := e.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	messages := make([]model.Message, 0, len(history)+1)
	if e.SystemPrompt != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: e.SystemPrompt})
	}
	messages = append(messages, history...)

	var (
		text        strings.Builder
		invocations []model.ToolInvocation
		defs        []mcptypes.Tool
	)
	if e.Tools != nil {
		defs = e.Tools.Definitions()
	}

	for step := 0; step < maxSteps; step++ {
		var stepCalls []model.ToolCall

		callback := func(chunk string, calls []model.ToolCall) error {
			if chunk != "" {
				text.WriteString(chunk)
				if err := emit(model.TextDeltaEvent(chunk)); err != nil {
					return err
				}
			}
			stepCalls = append(stepCalls, calls...)
			return nil
		}

		if err := e.Provider.ChatWithTools(ctx, messages, defs, callback); err != nil {
			return nil, fmt.Errorf("model turn failed: %w", err)
		}

		if len(stepCalls) == 0 {
			break
		}

		assistant := model.Message{Role: model.RoleAssistant}
		var toolResults []model.Message

		for _, call := range stepCalls {
			// Ollama does not assign call IDs; mint one so results
			// correlate with starts downstream.
			if call.ID == "" {
				call.ID = uuid.New().String()
			}
			assistant.ToolCalls = append(assistant.ToolCalls, call)

			if err := emit(model.ToolCallStartEvent(call.ID, call.Name, call.Args)); err != nil {
				return nil, err
			}
			invocations = append(invocations, model.ToolInvocation{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Args:       call.Args,
				State:      model.InvocationPending,
			})

			result := e.Tools.Execute(ctx, call.Name, call.Args)

			if err := emit(model.ToolCallResultEvent(call.ID, result)); err != nil {
				return nil, err
			}
			inv := &invocations[len(invocations)-1]
			inv.State = model.InvocationResult
			inv.Result = result

			raw, err := json.Marshal(result)
			if err != nil {
				raw = []byte(`{}`)
			}
			toolResults = append(toolResults, model.Message{
				Role:       model.RoleTool,
				Content:    string(raw),
				ToolCallID: call.ID,
			})
		}

		messages = append(messages, assistant)
		messages = append(messages, toolResults...)
	}

	return &Result{Text: text.String(), ToolInvocations: invocations}, nil
}
