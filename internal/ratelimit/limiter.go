package ratelimit

import (
	"context"
	"fmt"
)

// Limits describes the steady rate and burst for one endpoint class.
type Limits struct {
	Rate  float64
	Burst int
}

var (
	generateLimits = Limits{Rate: 0.5, Burst: 5}
	webhookLimits  = Limits{Rate: 10, Burst: 50}
)

// Limiter applies per-user and per-provider token buckets.
type Limiter struct {
	bucket *TokenBucket
}

func NewLimiter(bucket *TokenBucket) *Limiter {
	return &Limiter{bucket: bucket}
}

// AllowGenerate limits video generation per user.
func (l *Limiter) AllowGenerate(ctx context.Context, userID string) (*Result, error) {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf("ratelimit:generate:%s", userID)
	return l.bucket.Allow(ctx, key, generateLimits.Rate, generateLimits.Burst)
}

// AllowWebhook limits inbound webhook deliveries per provider.
func (l *Limiter) AllowWebhook(ctx context.Context, provider string) (*Result, error) {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf("ratelimit:webhook:%s", provider)
	return l.bucket.Allow(ctx, key, webhookLimits.Rate, webhookLimits.Burst)
}
