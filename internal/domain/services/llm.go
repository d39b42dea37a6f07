package services

import (
	"context"
	"io"
)

// ChatModel is a text completion backend (Anthropic, OpenAI-compatible, scripted)
type ChatModel interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// Transcriber converts audio to text
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type CompletionMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

type CompletionRequest struct {
	System    string
	Messages  []CompletionMessage
	MaxTokens int
}

type CompletionResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}
