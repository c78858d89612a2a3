package provider

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"rudra/model"
)

func TestConvertToAnthropicMessages(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "be brief"},
		{Role: model.RoleUser, Content: "weather in London?"},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "t1", Name: "getWeather"}}},
		{Role: model.RoleTool, Content: `{"condition":"Clouds"}`, ToolCallID: "t1"},
		{Role: model.RoleTool, Content: `{"price":"212.50"}`, ToolCallID: "t2"},
		{Role: model.RoleAssistant, Content: "Cloudy."},
	}

	msgs, system := convertToAnthropicMessages(messages)

	if len(system) != 1 || system[0].Text != "be brief" {
		t.Errorf("system blocks = %+v, want the system prompt", system)
	}

	// The tool-only assistant step vanishes, its two tool outputs fold into
	// the preceding user message, and the final text answer stands alone.
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != anthropic.MessageParamRoleUser {
		t.Errorf("first role = %v, want user", msgs[0].Role)
	}
	if len(msgs[0].Content) != 3 {
		t.Errorf("first message blocks = %d, want 3", len(msgs[0].Content))
	}
	if msgs[1].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("second role = %v, want assistant", msgs[1].Role)
	}
}
