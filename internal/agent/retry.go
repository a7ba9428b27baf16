package agent

import (
	"context"
	"time"
)

// attemptFunc performs one request against the agent endpoint. The passed
// context carries the per-attempt timeout.
type attemptFunc func(ctx context.Context) (string, error)

// caller runs an attempt under the shared retry/timeout policy. The sleep
// and clock functions are injectable so the loop is testable without real
// delays.
type caller struct {
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func newCaller(cfg Config) caller {
	return caller{
		cfg:   cfg,
		sleep: sleepContext,
		now:   time.Now,
	}
}

// invoke executes attempt, retrying transient failures up to
// cfg.MaxRetries additional times with a fixed delay between attempts.
// Non-retryable failures return immediately; malformed responses are
// retried exactly once. The returned Elapsed measures the successful
// attempt only.
func (c caller) invoke(ctx context.Context, attempt attemptFunc) (*Response, error) {
	retries := 0
	malformedRetries := 0

	for {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		start := c.now()
		text, err := attempt(attemptCtx)
		elapsed := c.now().Sub(start)
		cancel()

		if err == nil {
			return &Response{Text: text, Elapsed: elapsed}, nil
		}

		kind := KindOf(err)
		switch {
		case kind == KindMalformedResponse:
			if malformedRetries >= 1 {
				return nil, err
			}
			malformedRetries++
		case kind.Retryable():
			if retries >= c.cfg.MaxRetries {
				return nil, err
			}
			retries++
		default:
			return nil, err
		}

		if sleepErr := c.sleep(ctx, c.cfg.RetryDelay); sleepErr != nil {
			// Run aborted while waiting; surface the last attempt's failure.
			return nil, err
		}
	}
}

// sleepContext waits for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
