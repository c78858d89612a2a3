package model

// StreamEvent types. Every wire format the stream package understands decodes
// into this one union; nothing downstream of the decoder knows which format
// produced an event.
const (
	EventTextDelta      = "text-delta"
	EventToolCallStart  = "tool-call-start"
	EventToolCallResult = "tool-call-result"
	EventStreamEnd      = "stream-end"
)

// StreamEvent is a single decoded protocol event from a generation stream.
type StreamEvent struct {
	Type string

	// Text is set for text-delta events.
	Text string

	// Tool call fields, set for tool-call-start and tool-call-result.
	ToolCallID string
	ToolName   string
	Args       map[string]any
	Result     map[string]any
}

// TextDeltaEvent builds a text-delta event.
func TextDeltaEvent(text string) StreamEvent {
	return StreamEvent{Type: EventTextDelta, Text: text}
}

// ToolCallStartEvent builds a tool-call-start event. A nil args map is
// normalized to an empty one so downstream code never sees nil.
func ToolCallStartEvent(id, name string, args map[string]any) StreamEvent {
	if args == nil {
		args = map[string]any{}
	}
	return StreamEvent{Type: EventToolCallStart, ToolCallID: id, ToolName: name, Args: args}
}

// ToolCallResultEvent builds a tool-call-result event.
func ToolCallResultEvent(id string, result map[string]any) StreamEvent {
	return StreamEvent{Type: EventToolCallResult, ToolCallID: id, Result: result}
}

// StreamEndEvent builds the terminal event of a turn.
func StreamEndEvent() StreamEvent {
	return StreamEvent{Type: EventStreamEnd}
}
