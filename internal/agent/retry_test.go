package agent

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testCaller builds a caller whose sleeps are recorded instead of slept
// and whose clock advances one second per reading.
func testCaller(cfg Config, slept *[]time.Duration) caller {
	clock := time.Unix(0, 0)
	return caller{
		cfg: cfg,
		sleep: func(ctx context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return ctx.Err()
		},
		now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
}

func TestInvokeRetriesTransientFailures(t *testing.T) {
	var slept []time.Duration
	c := testCaller(Config{Timeout: time.Minute, MaxRetries: 3, RetryDelay: 5 * time.Second}, &slept)

	attempts := 0
	resp, err := c.invoke(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts <= 2 {
			return "", newError(KindNetworkError, "connection refused")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q, want ok", resp.Text)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(slept))
	}
	for _, d := range slept {
		if d != 5*time.Second {
			t.Errorf("slept %v, want fixed 5s delay", d)
		}
	}
}

func TestInvokeElapsedCoversSuccessfulAttemptOnly(t *testing.T) {
	var slept []time.Duration
	c := testCaller(Config{Timeout: time.Minute, MaxRetries: 3, RetryDelay: 5 * time.Second}, &slept)

	attempts := 0
	resp, err := c.invoke(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", newError(KindTimeout, "deadline exceeded")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	// The fake clock advances 1s per reading; each attempt reads it twice.
	// Elapsed of one second proves failed attempts are excluded.
	if resp.Elapsed != time.Second {
		t.Errorf("Elapsed = %v, want 1s (successful attempt only)", resp.Elapsed)
	}
}

func TestInvokeExhaustsRetries(t *testing.T) {
	var slept []time.Duration
	c := testCaller(Config{Timeout: time.Minute, MaxRetries: 2, RetryDelay: time.Second}, &slept)

	attempts := 0
	_, err := c.invoke(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "", newError(KindServerError, "upstream 500")
	})
	if err == nil {
		t.Fatal("invoke succeeded, want error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (1 initial + 2 retries)", attempts)
	}
	if KindOf(err) != KindServerError {
		t.Errorf("kind = %s, want %s", KindOf(err), KindServerError)
	}
}

func TestInvokeDoesNotRetryFatalErrors(t *testing.T) {
	for _, kind := range []Kind{KindAuthError, KindClientError} {
		var slept []time.Duration
		c := testCaller(Config{Timeout: time.Minute, MaxRetries: 3, RetryDelay: time.Second}, &slept)

		attempts := 0
		_, err := c.invoke(context.Background(), func(ctx context.Context) (string, error) {
			attempts++
			return "", &Error{Kind: kind, Err: errors.New("rejected")}
		})
		if err == nil {
			t.Fatalf("%s: invoke succeeded, want error", kind)
		}
		if attempts != 1 {
			t.Errorf("%s: attempts = %d, want 1", kind, attempts)
		}
		if len(slept) != 0 {
			t.Errorf("%s: slept %d times, want 0", kind, len(slept))
		}
	}
}

func TestInvokeRetriesMalformedResponseOnce(t *testing.T) {
	var slept []time.Duration
	c := testCaller(Config{Timeout: time.Minute, MaxRetries: 3, RetryDelay: time.Second}, &slept)

	attempts := 0
	_, err := c.invoke(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "", newError(KindMalformedResponse, "empty payload")
	})
	if err == nil {
		t.Fatal("invoke succeeded, want error")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (one retry for malformed responses)", attempts)
	}
	if KindOf(err) != KindMalformedResponse {
		t.Errorf("kind = %s, want %s", KindOf(err), KindMalformedResponse)
	}
}

func TestInvokeRateLimitTreatedAsTransient(t *testing.T) {
	var slept []time.Duration
	c := testCaller(Config{Timeout: time.Minute, MaxRetries: 1, RetryDelay: time.Second}, &slept)

	attempts := 0
	resp, err := c.invoke(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", newError(KindRateLimited, "429")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if resp.Text != "ok" || attempts != 2 {
		t.Errorf("Text = %q attempts = %d, want ok after retry", resp.Text, attempts)
	}
}

func TestInvokeStopsWhenAborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var slept []time.Duration
	c := testCaller(Config{Timeout: time.Minute, MaxRetries: 5, RetryDelay: time.Second}, &slept)

	attempts := 0
	_, err := c.invoke(ctx, func(ctx context.Context) (string, error) {
		attempts++
		return "", newError(KindNetworkError, "unreachable")
	})
	if err == nil {
		t.Fatal("invoke succeeded, want error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 after abort", attempts)
	}
}

func TestKindRetryable(t *testing.T) {
	retryable := []Kind{KindTimeout, KindNetworkError, KindRateLimited, KindServerError}
	for _, k := range retryable {
		if !k.Retryable() {
			t.Errorf("%s.Retryable() = false, want true", k)
		}
	}
	fatal := []Kind{KindAuthError, KindClientError, KindMalformedResponse}
	for _, k := range fatal {
		if k.Retryable() {
			t.Errorf("%s.Retryable() = true, want false", k)
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]Kind{
		429: KindRateLimited,
		401: KindAuthError,
		403: KindAuthError,
		404: KindClientError,
		400: KindClientError,
		500: KindServerError,
		503: KindServerError,
	}
	for code, want := range cases {
		if got := classifyStatus(code); got != want {
			t.Errorf("classifyStatus(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(newError(KindAuthError, "no")); got != KindAuthError {
		t.Errorf("KindOf = %s, want %s", got, KindAuthError)
	}
	if got := KindOf(context.DeadlineExceeded); got != KindTimeout {
		t.Errorf("KindOf(DeadlineExceeded) = %s, want %s", got, KindTimeout)
	}
	if got := KindOf(errors.New("plain")); got != KindNetworkError {
		t.Errorf("KindOf(plain) = %s, want %s", got, KindNetworkError)
	}
}
