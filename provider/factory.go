package provider

import (
	"fmt"

	"rudra/model"
)

// ProviderType identifies which backend a Config selects.
type ProviderType string

const (
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeOllama     ProviderType = "ollama"
)

// Config holds everything needed to construct a provider.
type Config struct {
	Type    ProviderType
	BaseURL string
	APIKey  string
	Model   string
}

// NewProvider creates a provider based on configuration. OpenRouter is served
// by the OpenAI provider since its API is OpenAI-compatible; only the default
// base URL differs.
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(orDefault(cfg.BaseURL, "https://api.openai.com/v1"), cfg.APIKey, cfg.Model)
	case ProviderTypeOpenRouter:
		return NewOpenAIProvider(orDefault(cfg.BaseURL, "https://openrouter.ai/api/v1"), cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(orDefault(cfg.BaseURL, "https://api.anthropic.com"), cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
