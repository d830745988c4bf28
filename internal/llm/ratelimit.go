package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Completer
	limiter *rate.Limiter
}

// RateLimited throttles outbound calls of next. A nil limiter returns next unchanged.
func RateLimited(next Completer, limiter *rate.Limiter) Completer {
	if limiter == nil {
		return next
	}
	return &rateLimited{next: next, limiter: limiter}
}

func (r *rateLimited) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Complete(ctx, messages, opts)
}
