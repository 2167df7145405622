package llm

import (
	"context"
	"sync"
	"time"
)

// pollInterval is how long an exhausted caller sleeps before rechecking
// the bucket.
const pollInterval = 100 * time.Millisecond

// RateLimitedProvider throttles scoring calls to a configured
// requests-per-minute budget so a large batch cannot trip the vendor's
// rate limits on its own. It is a token bucket: the bucket starts full,
// refills continuously at rpm/60 tokens per second, and each Complete
// call spends one token or waits for one.
type RateLimitedProvider struct {
	provider   Provider
	rpm        int
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
}

// NewRateLimitedProvider caps the provider at rpm requests per minute.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	return &RateLimitedProvider{
		provider:   provider,
		rpm:        rpm,
		tokens:     rpm,
		lastRefill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// Complete blocks until a token is available, then delegates. A cancelled
// context returns immediately with ctx.Err().
func (r *RateLimitedProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

func (r *RateLimitedProvider) acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastRefill)

		earned := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if earned > 0 {
			r.tokens += earned
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastRefill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
