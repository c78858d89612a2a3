package model

import "time"

// Role values for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToolInvocation states. An invocation is created pending and transitions to
// result exactly once; it is never removed from its message.
const (
	InvocationPending = "pending"
	InvocationResult  = "result"
)

// ToolInvocation tracks a single tool call from start to completion.
// Args and Result are opaque to everything except the tools package.
type ToolInvocation struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
	State      string         `json:"state"`
	Result     map[string]any `json:"result,omitempty"`
}

// Completed reports whether the invocation has received its result.
func (ti ToolInvocation) Completed() bool {
	return ti.State == InvocationResult
}

// Message represents a chat message. Content is append-only while a turn is
// streaming. Only assistant messages carry tool invocations.
type Message struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	Content         string           `json:"content"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
	CreatedAt       time.Time        `json:"createdAt,omitempty"`

	// ToolCalls is set on assistant messages that requested tool execution
	// and ToolCallID on role "tool" messages carrying a result back to the
	// completion engine. Neither is persisted or sent to browsers; they only
	// exist inside the engine's per-turn step loop.
	ToolCalls  []ToolCall `json:"-"`
	ToolCallID string     `json:"-"`
}

// ToolCall is a completion engine's request to run one tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Chat is one conversation owned by a user.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the authenticated caller as reported by the auth layer.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
