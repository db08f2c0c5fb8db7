package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

var testRetry = RetryConfig{
	Attempts: 3,
	Delays:   []time.Duration{time.Millisecond, time.Millisecond},
}

func TestRetryAPITransientRetries(t *testing.T) {
	calls := 0
	got, err := RetryAPI(context.Background(), testRetry, nil, nil, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &APIError{Kind: KindTransient, Message: "boom"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls, want \"ok\" after 3", got, calls)
	}
}

func TestRetryAPIExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := RetryAPI(context.Background(), testRetry, nil, nil, func() (int, error) {
		calls++
		return 0, errors.New("network down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryAPIQuotaStopsImmediately(t *testing.T) {
	calls := 0
	quotaFired := false
	_, err := RetryAPI(context.Background(), testRetry, nil, func() { quotaFired = true }, func() (int, error) {
		calls++
		return 0, &APIError{Kind: KindQuotaExceeded, Reason: "quotaExceeded"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !quotaFired {
		t.Error("onQuota was not called")
	}
	if Kind(err) != KindQuotaExceeded {
		t.Errorf("Kind(err) = %v, want KindQuotaExceeded", Kind(err))
	}
}

func TestRetryAPINonRetryableStopsImmediately(t *testing.T) {
	for _, kind := range []ErrorKind{KindBadRequest, KindInvalidCredential, KindNotFound, KindInvalidInput} {
		calls := 0
		_, err := RetryAPI(context.Background(), testRetry, nil, nil, func() (int, error) {
			calls++
			return 0, &APIError{Kind: kind}
		})
		if err == nil {
			t.Fatalf("%v: expected error", kind)
		}
		if calls != 1 {
			t.Errorf("%v: calls = %d, want 1", kind, calls)
		}
	}
}

func TestRetryAPIReconnectBeforeRetries(t *testing.T) {
	reconnects := 0
	calls := 0
	_, _ = RetryAPI(context.Background(), testRetry, func() { reconnects++ }, nil, func() (int, error) {
		calls++
		return 0, &APIError{Kind: KindTransient}
	})
	// No reconnect before the first attempt, one before each retry.
	if reconnects != 2 {
		t.Errorf("reconnects = %d, want 2", reconnects)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryAPIContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := RetryAPI(ctx, testRetry, nil, nil, func() (int, error) {
		calls++
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
