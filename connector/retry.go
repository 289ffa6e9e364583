package connector

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/paperlex/paperlex/logger"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a transient or rate-limited failure is
// retried. Backoff is exponential with jitter (backoff/v4 randomization).
type RetryPolicy struct {
	MaxTries        uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        4,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Run executes op, retrying only retryable connector errors. Non-transient
// failures and context expiry surface immediately.
func (p RetryPolicy) Run(ctx context.Context, service, opName string, op func() error) error {
	if p.MaxTries == 0 {
		p.MaxTries = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	var policy backoff.BackOff = backoff.WithMaxRetries(b, p.MaxTries-1)
	policy = backoff.WithContext(policy, ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		var ce *Error
		if errors.As(err, &ce) && ce.Retryable() {
			logger.Warn("retrying connector call",
				zap.String("service", service),
				zap.String("op", opName),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
