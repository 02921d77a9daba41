package ai

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
)

const defaultTimeout = 60 * time.Second

// ResilientProvider wraps an AI backend with bounded retries and a call
// timeout. Only transport-level failures (transient GatewayErrors) are
// retried; schema and auth failures propagate immediately.
type ResilientProvider struct {
	inner       ai.Provider
	callTimeout time.Duration
}

func NewResilientProvider(inner ai.Provider, callTimeout time.Duration) *ResilientProvider {
	if callTimeout <= 0 {
		callTimeout = defaultTimeout
	}
	return &ResilientProvider{inner: inner, callTimeout: callTimeout}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

func (p *ResilientProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	r := retry.New[*ai.CompletionResponse](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})

	t := timeout.New[*ai.CompletionResponse](timeout.Config{
		DefaultTimeout: p.callTimeout,
	})

	// fortify retries any non-nil error, so non-transient failures are
	// parked in the closure and surfaced after the retry loop exits.
	var permanent error

	resp, err := t.Execute(ctx, p.callTimeout, func(ctx context.Context) (*ai.CompletionResponse, error) {
		return r.Do(ctx, func(ctx context.Context) (*ai.CompletionResponse, error) {
			res, err := p.inner.Complete(ctx, req)
			if err != nil && !domain.IsTransient(err) {
				permanent = err
				return nil, nil
			}
			return res, err
		})
	})

	if permanent != nil {
		return nil, permanent
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, domain.NewGatewayError("complete", true, context.DeadlineExceeded)
	}
	return resp, nil
}
