package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastOptions(retries int) Options {
	return Options{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOptions(3), func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOptions(3), func() error {
		calls++
		return &HTTPError{StatusCode: 404}
	})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 404 {
		t.Fatalf("err = %v, want 404 HTTPError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOptions(2), func() error {
		calls++
		return fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 500})
	})
	if !IsRetryable(err) {
		t.Fatalf("err = %v, want the last retryable error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ZeroRetries(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), fastOptions(0), func() error {
		calls++
		return &HTTPError{StatusCode: 502}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, fastOptions(3), func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	for code, want := range map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true, 400: false, 404: false, 501: false} {
		if got := IsRetryable(&HTTPError{StatusCode: code}); got != want {
			t.Errorf("IsRetryable(%d) = %v, want %v", code, got, want)
		}
	}
	if IsRetryable(errors.New("dial tcp: refused")) {
		t.Error("plain errors must not be retryable")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := ParseRetryAfter("3"); got != 3*time.Second {
		t.Errorf("ParseRetryAfter(3) = %v", got)
	}
	for _, v := range []string{"", "0", "-1", "soon"} {
		if got := ParseRetryAfter(v); got != 0 {
			t.Errorf("ParseRetryAfter(%q) = %v, want 0", v, got)
		}
	}
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC1123)
	if got := ParseRetryAfter(future); got <= 0 || got > time.Hour {
		t.Errorf("ParseRetryAfter(date) = %v", got)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt, 10*time.Millisecond, 50*time.Millisecond)
		if d < 0 || d > 50*time.Millisecond {
			t.Fatalf("Backoff(%d) = %v out of bounds", attempt, d)
		}
	}
	if d := Backoff(1, 0, time.Second); d != 0 {
		t.Errorf("Backoff with zero base = %v", d)
	}
}
