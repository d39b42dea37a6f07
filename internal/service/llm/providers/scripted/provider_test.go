package scripted

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/domain/services"
)

func TestProviderQueuedRepliesThenEcho(t *testing.T) {
	p := NewProvider("first")
	ctx := context.Background()
	req := &services.CompletionRequest{Messages: []services.CompletionMessage{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "ok"},
		{Role: "user", Content: "two"},
	}}

	resp, err := p.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = p.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "two", resp.Text)
	assert.Len(t, p.Calls(), 2)
}

func TestProviderEchoRespectsMaxTokens(t *testing.T) {
	p := NewProvider()
	resp, err := p.Complete(context.Background(), &services.CompletionRequest{
		MaxTokens: 1,
		Messages:  []services.CompletionMessage{{Role: "user", Content: "abcdefgh"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abcd", resp.Text)
}

func TestProviderFailWith(t *testing.T) {
	p := NewProvider()
	p.FailWith(errors.New("down"))
	_, err := p.Complete(context.Background(), &services.CompletionRequest{})
	assert.EqualError(t, err, "down")

	p.FailWith(nil)
	_, err = p.Complete(context.Background(), &services.CompletionRequest{})
	assert.NoError(t, err)
}
