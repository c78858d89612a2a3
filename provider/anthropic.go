package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"rudra/model"
	"rudra/tools"
)

// anthropicMaxTokens caps each response; the Messages API requires an
// explicit limit.
const anthropicMaxTokens = 4096

// AnthropicProvider implements the Provider interface using Anthropic's
// official Go SDK. Unlike the OpenAI path, the Messages API keeps the system
// prompt out of the message array and wants its own tool schema shape.
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a provider for the Anthropic Messages API.
// baseURL must be non-empty; the factory fills in the default.
func NewAnthropicProvider(baseURL, apiKey, modelName string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{client: &client, model: anthropic.Model(modelName)}, nil
}

// ChatWithTools implements Provider.ChatWithTools with streaming support.
// Text deltas are forwarded as they arrive; tool_use blocks are harvested
// from the accumulated final message and delivered in one trailing callback.
func (p *AnthropicProvider) ChatWithTools(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, callback model.StreamCallback) error {
	anthropicMsgs, system := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMsgs,
		MaxTokens: anthropicMaxTokens,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(defs) > 0 {
		params.Tools = tools.ToAnthropicFormat(defs)
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	msg := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return fmt.Errorf("accumulate message: %w", err)
		}

		deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if delta, ok := deltaEvent.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
			if callback != nil {
				if err := callback(delta.Text, nil); err != nil {
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("message stream: %w", err)
	}

	if callback == nil {
		return nil
	}
	var calls []model.ToolCall
	for _, block := range msg.Content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		var args map[string]any
		if err := json.Unmarshal(toolUse.Input, &args); err != nil {
			args = map[string]any{}
		}
		calls = append(calls, model.ToolCall{ID: toolUse.ID, Name: toolUse.Name, Args: args})
	}
	if len(calls) > 0 {
		return callback("", calls)
	}
	return nil
}

// GetModel implements Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// Ping implements Provider.Ping. There is no health endpoint, so it makes a
// one-token request.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("provider ping failed: %w", err)
	}
	return nil
}

// convertToAnthropicMessages maps chat history to the Messages API format.
// System prompts are pulled out into system blocks, tool output replays as
// user-visible text, and same-role neighbors are folded together since the
// API wants alternating roles.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var system []anthropic.TextBlockParam
	var result []anthropic.MessageParam

	push := func(msg anthropic.MessageParam) {
		if n := len(result); n > 0 && result[n-1].Role == msg.Role {
			result[n-1].Content = append(result[n-1].Content, msg.Content...)
			return
		}
		result = append(result, msg)
	}

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case model.RoleAssistant:
			// An assistant step that only requested tools has no text to
			// replay; the tool output that follows carries the content.
			if msg.Content == "" {
				continue
			}
			push(anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			push(anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result, system
}
