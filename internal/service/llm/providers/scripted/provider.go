package scripted

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"thecrew/internal/domain/services"
)

// Provider is a deterministic offline model for development and tests.
// Queued replies are returned first, in order; after that it echoes the
// last user message, trimmed to roughly MaxTokens.
type Provider struct {
	mu      sync.Mutex
	replies []string
	calls   []services.CompletionRequest
	err     error
}

// NewProvider creates a scripted provider with optional queued replies.
func NewProvider(replies ...string) *Provider {
	return &Provider{replies: replies}
}

func (p *Provider) Name() string {
	return "scripted"
}

// Queue appends replies to be returned by subsequent calls.
func (p *Provider) Queue(replies ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, replies...)
}

// FailWith makes every following call return err. nil restores normal behavior.
func (p *Provider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Calls returns the requests received so far.
func (p *Provider) Calls() []services.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]services.CompletionRequest(nil), p.calls...)
}

func (p *Provider) Complete(ctx context.Context, req *services.CompletionRequest) (*services.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, *req)
	if p.err != nil {
		return nil, p.err
	}

	var text string
	if len(p.replies) > 0 {
		text = p.replies[0]
		p.replies = p.replies[1:]
	} else {
		text = echo(req)
	}

	return &services.CompletionResponse{
		Text:         text,
		Model:        "scripted",
		InputTokens:  estimateTokens(req),
		OutputTokens: len(strings.Fields(text)),
	}, nil
}

// Transcribe returns a fixed transcript naming the file and its size.
func (p *Provider) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	n, err := io.Copy(io.Discard, audio)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return fmt.Sprintf("Transcript of %s (%d bytes).", filename, n), nil
}

func echo(req *services.CompletionRequest) string {
	var last string
	for _, m := range req.Messages {
		if m.Role == "user" {
			last = m.Content
		}
	}
	if r := []rune(last); req.MaxTokens > 0 && len(r) > req.MaxTokens*4 {
		return string(r[:req.MaxTokens*4])
	}
	return last
}

// estimateTokens uses 1 token ≈ 4 characters
func estimateTokens(req *services.CompletionRequest) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n / 4
}
