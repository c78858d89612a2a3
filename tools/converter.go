package tools

import (
	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ToOpenAIFormat converts tool declarations to the OpenAI chat-completions
// tool format. The input schema is already JSON Schema, so the conversion is
// a re-wrapping of the same fields.
func ToOpenAIFormat(defs []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, len(defs))
	for i, def := range defs {
		params := openai.FunctionParameters{
			"type":       def.InputSchema.Type,
			"properties": def.InputSchema.Properties,
		}
		if len(def.InputSchema.Required) > 0 {
			params["required"] = def.InputSchema.Required
		}

		result[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  params,
			},
		)
	}
	return result
}

// ToAnthropicFormat converts tool declarations to the Anthropic Messages API
// tool format, which takes the JSON Schema fields directly as input_schema.
func ToAnthropicFormat(defs []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		schema := anthropic.ToolInputSchemaParam{
			Properties: def.InputSchema.Properties,
		}
		if len(def.InputSchema.Required) > 0 {
			schema.Required = def.InputSchema.Required
		}

		result[i] = anthropic.ToolUnionParamOfTool(schema, def.Name)
		if def.Description != "" {
			result[i].OfTool.Description = anthropic.String(def.Description)
		}
	}
	return result
}

// ToOllamaFormat converts tool declarations to the Ollama API tool format,
// which wants each property as a typed struct instead of raw JSON Schema.
func ToOllamaFormat(defs []mcptypes.Tool) []api.Tool {
	ollamaTools := make([]api.Tool, 0, len(defs))
	for _, def := range defs {
		params := api.ToolFunctionParameters{
			Type:       def.InputSchema.Type,
			Required:   def.InputSchema.Required,
			Properties: make(map[string]api.ToolProperty),
		}
		for name, value := range def.InputSchema.Properties {
			params.Properties[name] = toOllamaProperty(value)
		}

		ollamaTools = append(ollamaTools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return ollamaTools
}

// toOllamaProperty maps one JSON Schema property. The registry only declares
// flat string properties, so type, description, and enum cover everything.
func toOllamaProperty(value any) api.ToolProperty {
	prop := api.ToolProperty{}
	m, ok := value.(map[string]any)
	if !ok {
		return prop
	}

	if t, ok := m["type"].(string); ok {
		prop.Type = api.PropertyType{t}
	}
	if desc, ok := m["description"].(string); ok {
		prop.Description = desc
	}
	if enum, ok := m["enum"].([]any); ok {
		prop.Enum = enum
	}
	return prop
}
