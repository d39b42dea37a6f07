package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/services"
	"thecrew/internal/service/llm/providers/scripted"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBreakerModelPassesThrough(t *testing.T) {
	p := scripted.NewProvider(`{"message":"hi"}`)
	m := NewBreakerModel(p, DefaultBreakerSettings(time.Second), discardLogger())

	resp, err := m.Complete(context.Background(), &services.CompletionRequest{
		Messages: []services.CompletionMessage{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi"}`, resp.Text)
	assert.Equal(t, "scripted", m.Name())
}

func TestBreakerModelOpensAfterFailures(t *testing.T) {
	p := scripted.NewProvider()
	p.FailWith(errors.New("boom"))
	m := NewBreakerModel(p, DefaultBreakerSettings(time.Second), discardLogger())
	req := &services.CompletionRequest{Messages: []services.CompletionMessage{{Role: "user", Content: "x"}}}

	for i := 0; i < 3; i++ {
		_, err := m.Complete(context.Background(), req)
		var uerr *domain.UpstreamError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, domain.KindUpstream, uerr.Kind())
	}
	assert.Equal(t, gobreaker.StateOpen, m.State())

	_, err := m.Complete(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, p.Calls(), 3, "open breaker must not reach the provider")
}

func TestBreakerTranscriber(t *testing.T) {
	tr := NewBreakerTranscriber("scripted", scripted.NewProvider(), DefaultBreakerSettings(0), discardLogger())

	text, err := tr.Transcribe(context.Background(), "memo.m4a", strings.NewReader("abcd"))
	require.NoError(t, err)
	assert.Equal(t, "Transcript of memo.m4a (4 bytes).", text)
}

func TestProviderFactory(t *testing.T) {
	t.Run("scripted", func(t *testing.T) {
		f := NewProviderFactory(&config.Config{LLMProvider: "scripted"}, discardLogger())
		m, err := f.ChatModel()
		require.NoError(t, err)
		assert.Equal(t, "scripted", m.Name())
		assert.NotNil(t, f.Transcriber())
	})

	t.Run("anthropic requires key", func(t *testing.T) {
		f := NewProviderFactory(&config.Config{LLMProvider: "anthropic", DefaultModel: "claude-haiku-4-5"}, discardLogger())
		_, err := f.ChatModel()
		assert.Error(t, err)
	})

	t.Run("provider inferred from model", func(t *testing.T) {
		f := NewProviderFactory(&config.Config{DefaultModel: "gpt-4o-mini", OpenAIAPIKey: "sk-test"}, discardLogger())
		m, err := f.ChatModel()
		require.NoError(t, err)
		assert.Equal(t, "openai", m.Name())
	})

	t.Run("unsupported", func(t *testing.T) {
		f := NewProviderFactory(&config.Config{LLMProvider: "gemini"}, discardLogger())
		_, err := f.ChatModel()
		assert.Error(t, err)
	})

	t.Run("no transcriber without openai", func(t *testing.T) {
		f := NewProviderFactory(&config.Config{LLMProvider: "anthropic"}, discardLogger())
		assert.Nil(t, f.Transcriber())
	})
}
