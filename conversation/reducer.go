// Package conversation holds the in-memory message list for one chat view and
// the per-turn state machine that folds decoded stream events into it.
package conversation

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"rudra/model"
)

// Conversation owns an ordered message list for the duration of one client
// session. It is not safe for concurrent use; stream consumption is a
// sequential pull loop and every event is fully applied before the next one
// is read.
type Conversation struct {
	messages []model.Message
	inTurn   bool

	// OnChange, when set, is called with a snapshot after every applied
	// mutation so a caller can redraw. The snapshot is a copy; mutating it
	// does not affect the conversation.
	OnChange func([]model.Message)
}

// New creates a conversation seeded with previously loaded history.
func New(initial []model.Message) *Conversation {
	c := &Conversation{}
	c.messages = append(c.messages, initial...)
	return c
}

// Messages returns a snapshot copy of the message list.
func (c *Conversation) Messages() []model.Message {
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	for i := range out {
		if len(out[i].ToolInvocations) > 0 {
			invs := make([]model.ToolInvocation, len(out[i].ToolInvocations))
			copy(invs, out[i].ToolInvocations)
			out[i].ToolInvocations = invs
		}
	}
	return out
}

// AppendUser adds a user message and returns it. User messages never carry
// tool invocations.
func (c *Conversation) AppendUser(content string) model.Message {
	msg := model.Message{
		ID:      uuid.New().String(),
		Role:    model.RoleUser,
		Content: content,
	}
	c.messages = append(c.messages, msg)
	c.notify()
	return msg
}

// FirstUserMessage returns the first user message, if any.
func (c *Conversation) FirstUserMessage() (model.Message, bool) {
	for _, m := range c.messages {
		if m.Role == model.RoleUser {
			return m, true
		}
	}
	return model.Message{}, false
}

// BeginTurn appends an empty assistant placeholder that subsequent events
// will mutate. Only one turn may be in flight at a time.
func (c *Conversation) BeginTurn() {
	c.messages = append(c.messages, model.Message{
		ID:   uuid.New().String(),
		Role: model.RoleAssistant,
	})
	c.inTurn = true
	c.notify()
}

// InTurn reports whether a turn is currently streaming.
func (c *Conversation) InTurn() bool {
	return c.inTurn
}

// Apply folds one decoded event into the current turn's assistant message.
// Events arriving outside a turn, duplicate tool-call starts, and results
// for unknown tool calls are all dropped silently: protocol anomalies are
// never surfaced as errors.
func (c *Conversation) Apply(ev model.StreamEvent) {
	if !c.inTurn {
		return
	}

	msg := c.target()
	if msg == nil {
		return
	}

	switch ev.Type {
	case model.EventTextDelta:
		msg.Content += ev.Text

	case model.EventToolCallStart:
		for _, inv := range msg.ToolInvocations {
			if inv.ToolCallID == ev.ToolCallID {
				return // duplicate start is a no-op
			}
		}
		args := ev.Args
		if args == nil {
			args = map[string]any{}
		}
		msg.ToolInvocations = append(msg.ToolInvocations, model.ToolInvocation{
			ToolCallID: ev.ToolCallID,
			ToolName:   ev.ToolName,
			Args:       args,
			State:      model.InvocationPending,
		})

	case model.EventToolCallResult:
		found := false
		for i := range msg.ToolInvocations {
			if msg.ToolInvocations[i].ToolCallID == ev.ToolCallID {
				msg.ToolInvocations[i].State = model.InvocationResult
				msg.ToolInvocations[i].Result = ev.Result
				found = true
				break
			}
		}
		if !found {
			return // result with no prior start: dropped
		}

	case model.EventStreamEnd:
		c.inTurn = false

	default:
		return
	}

	c.notify()
}

// Rollback discards the in-flight assistant placeholder after a transport
// failure. The preceding user message is retained so the caller can retry.
func (c *Conversation) Rollback() {
	if !c.inTurn {
		return
	}
	if msg := c.target(); msg != nil {
		c.messages = c.messages[:len(c.messages)-1]
	}
	c.inTurn = false
	c.notify()
}

// target returns the assistant message under construction, which is always
// the most recently appended message during a turn.
func (c *Conversation) target() *model.Message {
	if len(c.messages) == 0 {
		return nil
	}
	last := &c.messages[len(c.messages)-1]
	if last.Role != model.RoleAssistant {
		return nil
	}
	return last
}

func (c *Conversation) notify() {
	if c.OnChange != nil {
		c.OnChange(c.Messages())
	}
}

// maxTitleLen is how much of the first user message becomes the chat title.
const maxTitleLen = 50

// TitleFromMessage derives a chat title from the first user message:
// the first 50 characters, with an ellipsis suffix when truncated.
// Truncation counts runes, not bytes, so multi-byte text is never split
// mid-character.
func TitleFromMessage(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= maxTitleLen {
		return content
	}
	return string([]rune(content)[:maxTitleLen]) + "..."
}
