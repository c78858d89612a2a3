package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts completion engine implementations (OpenAI-compatible,
// Ollama) using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to
// avoid import cycles: provider implementations can import model, and model
// can use the Provider interface without importing the provider package.
type Provider interface {
	// ChatWithTools sends one model turn with available tools and streams the
	// response. Text arrives through the callback as it is generated; tool
	// calls the model decided on arrive in a final callback invocation once
	// the turn's stream completes. Returning an error from the callback
	// aborts the stream.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// GetModel returns the currently selected model name.
	GetModel() string

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response. chunk may be
// empty when the invocation only carries tool calls.
type StreamCallback func(chunk string, toolCalls []ToolCall) error
