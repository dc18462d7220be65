package catalog

import (
	"context"

	"github.com/avast/retry-go"
)

// do runs fn until it succeeds, waiting a fixed delay between attempts.
// Context cancellation is never retried.
func (s *Session) do(ctx context.Context, what string, fn func() error) error {
	return retry.Do(
		func() error {
			if err := s.wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return fn()
		},
		retry.Context(ctx),
		retry.Attempts(s.retryAttempts),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn().
				Err(err).
				Str("request", what).
				Int("status", statusOf(err)).
				Uint("attempt", n+1).
				Msg("catalog request failed, retrying")
		}),
	)
}
