// Package render decides what a message's current state should display.
// Decide is a pure function evaluated against every conversation snapshot;
// it holds no state of its own.
package render

import (
	"strings"

	"rudra/model"
	"rudra/tools"
)

// FallbackText is shown when every tool in a turn failed and the model
// produced no prose of its own.
const FallbackText = "Could not retrieve data from the API"

// Decision is the display outcome for one message.
type Decision struct {
	// Suppress means the message renders nothing at all: no text, no
	// successful results, no pending work, no fallback.
	Suppress bool

	// ShowText indicates Text should be rendered as the message body.
	ShowText bool
	Text     string

	// ShowFallback replaces the (empty) text with FallbackText: every tool
	// that ran failed and there is nothing else to say.
	ShowFallback bool

	// PendingToolNames lists still-running tools in call-start order.
	PendingToolNames []string

	// ResultCards lists successful completed invocations in call-start
	// order (not completion order). Failed invocations are filtered here;
	// card renderers are expected to re-check tools.Failed themselves as a
	// second line of defense.
	ResultCards []model.ToolInvocation
}

// Decide computes the display decision for a message snapshot.
func Decide(msg model.Message) Decision {
	text := strings.TrimSpace(msg.Content)

	if msg.Role != model.RoleAssistant {
		return Decision{
			Suppress: text == "",
			ShowText: text != "",
			Text:     text,
		}
	}

	var pending []string
	var completedCount, successCount int
	var cards []model.ToolInvocation

	for _, inv := range msg.ToolInvocations {
		if !inv.Completed() {
			pending = append(pending, inv.ToolName)
			continue
		}
		completedCount++
		if !tools.Failed(inv) {
			successCount++
			cards = append(cards, inv)
		}
	}

	showFallback := completedCount > 0 && len(pending) == 0 && successCount == 0 && text == ""

	d := Decision{
		ShowText:         text != "",
		Text:             text,
		ShowFallback:     showFallback,
		PendingToolNames: pending,
		ResultCards:      cards,
	}
	d.Suppress = !d.ShowText && successCount == 0 && len(pending) == 0 && !showFallback
	return d
}
