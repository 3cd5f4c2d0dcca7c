package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped provider with a token bucket.
// It waits for a token and never retries.
type RateLimited struct {
	next    EmbeddingProvider
	limiter *rate.Limiter
}

// NewRateLimited wraps next. A non-positive rate disables throttling.
func NewRateLimited(next EmbeddingProvider, requestsPerSecond float64, burst int) EmbeddingProvider {
	if requestsPerSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (r *RateLimited) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &EmbeddingError{Provider: "rate_limiter", Err: err}
	}
	return r.next.EmbedDocuments(ctx, texts)
}

func (r *RateLimited) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &EmbeddingError{Provider: "rate_limiter", Err: err}
	}
	return r.next.EmbedQuery(ctx, text)
}
