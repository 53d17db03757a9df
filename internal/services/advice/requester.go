// Package advice asks a generative-text model for tactical commentary on the
// current scanner reading. Callers never see an error: every failure is
// converted into FallbackText.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"OmniTrade/internal/domain/models"
	drepo "OmniTrade/internal/domain/repository"
	"OmniTrade/pkg/cache"
	"OmniTrade/pkg/logger"
)

const (
	// FallbackText is shown whenever the model cannot be reached.
	FallbackText = "Connection to AI Logic Engine lost. Monitoring manual telemetry."
	// EmptyText is shown when the model answered with no text.
	EmptyText = "Unable to retrieve AI analysis at this time."
	// PlaceholderText is the panel content before the first answer settles.
	PlaceholderText = "Analyzing cross-chain liquidity metrics for institutional exposure..."
)

var ErrMissingCredential = errors.New("advice: api key not configured")

// Completer sends one prompt to a model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Requester implements repository.AdviceRequester.
type Requester struct {
	completer Completer
	cache     cache.Service
	cacheTTL  time.Duration
	timeout   time.Duration
	metrics   drepo.Metrics
	logger    *logger.Logger
}

type Option func(*Requester)

// WithCache memoises successful answers per scanner reading.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(r *Requester) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(r *Requester) { r.timeout = d }
}

// NewRequester wraps completer. A nil completer is treated as a missing
// credential: every request falls back without touching the network.
func NewRequester(completer Completer, metrics drepo.Metrics, l *logger.Logger, opts ...Option) *Requester {
	r := &Requester{
		completer: completer,
		timeout:   30 * time.Second,
		metrics:   metrics,
		logger:    l,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ drepo.AdviceRequester = (*Requester)(nil)

// Request returns advice for state, or FallbackText on any failure.
func (r *Requester) Request(ctx context.Context, state models.ScannerState) string {
	start := time.Now()
	key := cacheKey(state)

	if r.cache != nil {
		var cached string
		if err := r.cache.Get(ctx, key, &cached); err == nil && cached != "" {
			r.metrics.RecordAdvice("cached", time.Since(start).Seconds())
			return cached
		}
	}

	text, err := r.call(ctx, state)
	if err != nil {
		r.metrics.RecordAdvice("fallback", time.Since(start).Seconds())
		r.logger.Warn("advice request failed", logger.Error(err))
		return FallbackText
	}
	if text == "" {
		r.metrics.RecordAdvice("empty", time.Since(start).Seconds())
		return EmptyText
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, text, r.cacheTTL); err != nil {
			r.logger.Debug("advice cache set failed", logger.Error(err))
		}
	}
	r.metrics.RecordAdvice("ok", time.Since(start).Seconds())
	return text
}

func (r *Requester) call(ctx context.Context, state models.ScannerState) (string, error) {
	if r.completer == nil {
		return "", ErrMissingCredential
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	text, err := r.completer.Complete(ctx, BuildPrompt(state))
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt embeds the five dashboard scanner fields in the request.
func BuildPrompt(state models.ScannerState) string {
	var b strings.Builder
	b.WriteString("Acting as a Senior Quant Trader, analyze the current market state and provide a 2-sentence tactical advice.\n")
	b.WriteString("Market Data:\n")
	fmt.Fprintf(&b, "- Volatility: %s\n", state.Volatility)
	fmt.Fprintf(&b, "- Trend: %s\n", state.Trend)
	fmt.Fprintf(&b, "- Phase: %s\n", state.Phase)
	fmt.Fprintf(&b, "- Session: %s (%s)\n", state.Clock, state.Cycle)
	fmt.Fprintf(&b, "- Uncertainty Level: %s\n\n", state.Uncertainty)
	b.WriteString("Respond with specific bot recommendations based on these conditions. Keep it professional and concise.")
	return b.String()
}

func cacheKey(s models.ScannerState) string {
	return cache.GenerateKeyWithParams("advice", s.Volatility, s.Trend, s.Phase, s.Clock, s.Cycle, s.Uncertainty)
}
