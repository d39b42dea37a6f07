package llm

import (
	"fmt"
	"log/slog"

	"thecrew/internal/config"
	"thecrew/internal/domain/services"
	"thecrew/internal/service/llm/providers/anthropic"
	"thecrew/internal/service/llm/providers/openai"
	"thecrew/internal/service/llm/providers/scripted"
)

// ProviderFactory builds the process-wide chat model and transcriber from config
type ProviderFactory struct {
	config *config.Config
	logger *slog.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *slog.Logger) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
		logger: logger,
	}
}

// provider resolves the configured provider, inferring it from DefaultModel when unset
func (f *ProviderFactory) provider() (string, string, error) {
	model := f.config.DefaultModel
	if f.config.LLMProvider != "" {
		return f.config.LLMProvider, model, nil
	}
	info, err := ParseModel(model)
	if err != nil {
		return "", "", err
	}
	return info.Provider, info.Model, nil
}

// ChatModel returns the configured model wrapped in a circuit breaker
//
// Supported providers:
//   - "anthropic" - Claude models via Anthropic API
//   - "openai" - OpenAI models, or any compatible gateway via OPENAI_BASE_URL
//   - "openrouter" - OpenRouter through the OpenAI-compatible client
//   - "scripted" - Deterministic offline provider (no API key required)
func (f *ProviderFactory) ChatModel() (*BreakerModel, error) {
	name, model, err := f.provider()
	if err != nil {
		return nil, err
	}

	var next services.ChatModel
	switch name {
	case "anthropic":
		if f.config.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		next, err = anthropic.NewProvider(f.config.AnthropicAPIKey, model)
	case "openai", "openrouter":
		next, err = f.openAI(name, model)
	case "scripted":
		next = scripted.NewProvider()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}

	f.logger.Info("llm provider configured", "provider", name, "model", model)
	return NewBreakerModel(next, DefaultBreakerSettings(f.config.LLMTimeout), f.logger), nil
}

// Transcriber returns a speech-to-text backend. Only OpenAI-compatible APIs and
// the scripted provider can transcribe; nil means transcription is unavailable.
func (f *ProviderFactory) Transcriber() services.Transcriber {
	settings := DefaultBreakerSettings(f.config.LLMTimeout)

	if f.config.OpenAIAPIKey != "" {
		p, err := openai.NewProvider(f.config.OpenAIAPIKey, f.config.OpenAIBaseURL, f.config.DefaultModel, f.config.TranscribeModel)
		if err == nil {
			return NewBreakerTranscriber("openai", p, settings, f.logger)
		}
	}
	if name, _, err := f.provider(); err == nil && name == "scripted" {
		return NewBreakerTranscriber("scripted", scripted.NewProvider(), settings, f.logger)
	}

	f.logger.Warn("transcription disabled: OPENAI_API_KEY not set")
	return nil
}

func (f *ProviderFactory) openAI(name, model string) (*openai.Provider, error) {
	if f.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	baseURL := f.config.OpenAIBaseURL
	if name == "openrouter" && baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return openai.NewProvider(f.config.OpenAIAPIKey, baseURL, model, f.config.TranscribeModel)
}
