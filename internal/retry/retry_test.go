package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	p := Policy{
		MaxAttempts: 3,
		Backoff:     Fixed(time.Millisecond),
		Retryable:   func(error) bool { return true },
	}

	err := p.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")
	p := Policy{MaxAttempts: 3, Retryable: func(error) bool { return true }}

	err := p.Do(context.Background(), func() error {
		attempts++
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestDoDoesNotRetryNonRetryable(t *testing.T) {
	attempts := 0
	p := Policy{
		MaxAttempts: 5,
		Retryable:   func(error) bool { return false },
	}

	_ = p.Do(context.Background(), func() error {
		attempts++
		return errors.New("client error")
	})

	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{
		MaxAttempts: 3,
		Backoff:     Fixed(time.Hour),
		Retryable:   func(error) bool { return true },
	}

	err := p.Do(ctx, func() error { return errors.New("nope") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestExponentialCaps(t *testing.T) {
	b := Exponential(time.Second, 3*time.Second)

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		if got := b(i+1, nil); got != w {
			t.Errorf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}
}
