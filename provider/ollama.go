package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"rudra/model"
	"rudra/tools"
)

// OllamaProvider implements the Provider interface against a local Ollama
// server using the official API client.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates an Ollama provider. Empty baseURL and model fall
// back to the local server defaults.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client: api.NewClient(parsed, http.DefaultClient),
		model:  model,
	}, nil
}

// ChatWithTools implements Provider.ChatWithTools. Ollama delivers tool calls
// inside streamed chat responses, so each response chunk is converted and
// forwarded as-is. Ollama does not assign call IDs; callers generate their
// own when correlating results.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, callback model.StreamCallback) error {
	var ollamaTools []api.Tool
	if len(defs) > 0 {
		ollamaTools = tools.ToOllamaFormat(defs)
	}

	req := &api.ChatRequest{
		Model:    p.model,
		Messages: convertToOllamaMessages(messages),
		Tools:    ollamaTools,
		Stream:   func(b bool) *bool { return &b }(true),
	}

	respFunc := func(resp api.ChatResponse) error {
		if callback == nil {
			return nil
		}
		return callback(resp.Message.Content, convertOllamaToolCalls(resp.Message.ToolCalls))
	}

	return p.client.Chat(ctx, req, respFunc)
}

// GetModel implements Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.model
}

// Ping implements Provider.Ping with a lightweight list call.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.client.List(ctx)
	return err
}

func convertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		m := api.Message{Role: msg.Role, Content: msg.Content}
		for _, call := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      call.Name,
					Arguments: api.ToolCallFunctionArguments(call.Args),
				},
			})
		}
		result = append(result, m)
	}
	return result
}

func convertOllamaToolCalls(calls []api.ToolCall) []model.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]model.ToolCall, len(calls))
	for i, call := range calls {
		result[i] = model.ToolCall{
			Name: call.Function.Name,
			Args: map[string]any(call.Function.Arguments),
		}
	}
	return result
}
