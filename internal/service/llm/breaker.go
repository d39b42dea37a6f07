package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"thecrew/internal/domain"
	"thecrew/internal/domain/services"
)

// BreakerSettings tunes the circuit breaker guarding a provider.
type BreakerSettings struct {
	MaxRequests uint32        // Probes allowed while half-open
	Interval    time.Duration // Window after which closed-state counts reset
	OpenTimeout time.Duration // How long the breaker stays open
	Timeout     time.Duration // Per-call deadline; zero keeps the caller's
}

// DefaultBreakerSettings trips after 3 requests with at least 60% failures.
func DefaultBreakerSettings(timeout time.Duration) BreakerSettings {
	return BreakerSettings{
		MaxRequests: 1,
		Interval:    time.Minute,
		OpenTimeout: 30 * time.Second,
		Timeout:     timeout,
	}
}

func newBreaker(name string, s BreakerSettings, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a provider failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
		},
	})
}

// upstreamError maps provider failures to a 502 upstream_error.
func upstreamError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.UpstreamError{Message: provider + " is temporarily unavailable", Err: err}
	}
	return &domain.UpstreamError{Message: provider + " request failed", Err: err}
}

// BreakerModel guards a ChatModel with a circuit breaker and a per-call deadline.
type BreakerModel struct {
	next    services.ChatModel
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewBreakerModel wraps next.
func NewBreakerModel(next services.ChatModel, settings BreakerSettings, logger *slog.Logger) *BreakerModel {
	return &BreakerModel{
		next:    next,
		cb:      newBreaker(next.Name(), settings, logger),
		timeout: settings.Timeout,
		logger:  logger,
	}
}

func (m *BreakerModel) Name() string { return m.next.Name() }

// State exposes the breaker state for health reporting.
func (m *BreakerModel) State() gobreaker.State { return m.cb.State() }

func (m *BreakerModel) Complete(ctx context.Context, req *services.CompletionRequest) (*services.CompletionResponse, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := m.cb.Execute(func() (interface{}, error) {
		return m.next.Complete(ctx, req)
	})
	if err != nil {
		m.logger.Error("llm completion failed", "provider", m.next.Name(), "error", err, "duration", time.Since(start))
		return nil, upstreamError(m.next.Name(), err)
	}

	resp := out.(*services.CompletionResponse)
	m.logger.Debug("llm completion",
		"provider", m.next.Name(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration", time.Since(start),
	)
	return resp, nil
}

// BreakerTranscriber guards a Transcriber the same way.
type BreakerTranscriber struct {
	next    services.Transcriber
	name    string
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

func NewBreakerTranscriber(name string, next services.Transcriber, settings BreakerSettings, logger *slog.Logger) *BreakerTranscriber {
	return &BreakerTranscriber{
		next:    next,
		name:    name,
		cb:      newBreaker(name+"-transcribe", settings, logger),
		timeout: settings.Timeout,
		logger:  logger,
	}
}

func (t *BreakerTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	out, err := t.cb.Execute(func() (interface{}, error) {
		return t.next.Transcribe(ctx, filename, audio)
	})
	if err != nil {
		t.logger.Error("transcription failed", "provider", t.name, "error", err)
		return "", upstreamError(t.name, err)
	}
	return out.(string), nil
}
