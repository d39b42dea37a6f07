package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"thecrew/internal/domain/services"
)

// ErrEmptyResponse is returned when the API answers without choices.
var ErrEmptyResponse = errors.New("openai returned no choices")

// Provider implements services.ChatModel and services.Transcriber for the
// OpenAI API and OpenAI-compatible gateways (OpenRouter, local servers).
type Provider struct {
	client          *openai.Client
	model           string
	transcribeModel string
}

// NewProvider creates a provider. baseURL is optional.
func NewProvider(apiKey, baseURL, model, transcribeModel string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Provider{
		client:          openai.NewClientWithConfig(clientConfig),
		model:           model,
		transcribeModel: transcribeModel,
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

// Complete runs one chat completion.
func (p *Provider) Complete(ctx context.Context, req *services.CompletionRequest) (*services.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for i, m := range req.Messages {
		var role string
		switch m.Role {
		case "user":
			role = openai.ChatMessageRoleUser
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, m.Role)
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &services.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// Transcribe sends audio to the Whisper transcription endpoint.
// filename is only used by the API to detect the audio format.
func (p *Provider) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.transcribeModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription error: %w", err)
	}
	return resp.Text, nil
}
