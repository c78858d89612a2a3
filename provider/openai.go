package provider

import (
	"context"
	"encoding/json"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"rudra/model"
	"rudra/tools"
)

// OpenAIProvider implements the Provider interface using OpenAI's official Go
// SDK. It works against any OpenAI-compatible chat completions endpoint,
// which covers OpenRouter as well.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible API.
// baseURL must be non-empty; the factory fills in the per-backend default.
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{client: client, model: model}, nil
}

// ChatWithTools implements Provider.ChatWithTools with streaming support.
// Text deltas are forwarded as they arrive; tool calls are harvested from the
// accumulated final message so their IDs are available, and delivered in one
// trailing callback.
func (p *OpenAIProvider) ChatWithTools(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, callback model.StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Messages: convertToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	}
	if len(defs) > 0 {
		params.Tools = tools.ToOpenAIFormat(defs)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if callback != nil {
				if err := callback(chunk.Choices[0].Delta.Content, nil); err != nil {
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("chat completion stream: %w", err)
	}

	if callback == nil || len(acc.Choices) == 0 {
		return nil
	}

	var calls []model.ToolCall
	for _, tc := range acc.Choices[0].Message.ToolCalls {
		calls = append(calls, model.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: parseToolArguments(tc.Function.Arguments),
		})
	}
	if len(calls) > 0 {
		return callback("", calls)
	}
	return nil
}

// GetModel implements Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("provider ping failed: %w", err)
	}
	return nil
}

// convertToOpenAIMessages maps chat history to the OpenAI wire format.
// Assistant messages that requested tools carry their tool calls, and tool
// messages echo the ID of the call they answer, so multi-step turns replay
// correctly.
func convertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				result = append(result, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				raw, _ := json.Marshal(call.Args)
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: string(raw),
						},
					},
				})
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case model.RoleTool:
			result = append(result, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}

	return result
}

// parseToolArguments decodes the JSON arguments string from a tool call.
// Malformed arguments degrade to an empty map rather than failing the turn;
// the tool itself reports the missing parameter.
func parseToolArguments(raw string) map[string]any {
	args := make(map[string]any)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}
