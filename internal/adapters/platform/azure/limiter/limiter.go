// Package limiter throttles outbound Azure management-plane calls.
// Resource Graph enforces per-tenant quota buckets; staying under them
// beats burning the quota and stalling on 429 retries.
package limiter

import (
	"context"

	"golang.org/x/time/rate"

	"coverage-auditor/internal/core/ports"
)

const (
	defaultRateLimitRPS = 10
	minRateLimitRPS     = 1
	maxRateLimitRPS     = 50
)

type Limiter struct {
	limiter *rate.Limiter
	logger  ports.Logger
}

func New(rps int, logger ports.Logger) *Limiter {
	limitValue := defaultRateLimitRPS
	if rps >= minRateLimitRPS && rps <= maxRateLimitRPS {
		limitValue = rps
	} else if rps != 0 {
		logger.Warnf(nil, "Invalid Azure API RPS configured (%d), using default %d RPS. Valid range: %d-%d.",
			rps, defaultRateLimitRPS, minRateLimitRPS, maxRateLimitRPS)
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(limitValue), limitValue),
		logger:  logger,
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)
	if err != nil && ctx.Err() == nil {
		l.logger.Warnf(ctx, "Error waiting for Azure API rate limiter: %v", err)
	}
	return err
}
