package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoStopsOnSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond}
	err := p.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestDoReturnsLastError(t *testing.T) {
	t.Parallel()

	var retried []int
	p := Policy{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
	}
	calls := 0
	err := p.Do(context.Background(), func(attempt int) error {
		calls++
		return errors.New("fail " + string(rune('0'+attempt)))
	})
	if err == nil || err.Error() != "fail 3" {
		t.Fatalf("err=%v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d", calls)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Fatalf("retried=%v", retried)
	}
}

func TestDoWaitsFixedDelay(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 3, Delay: 20 * time.Millisecond}
	start := time.Now()
	_ = p.Do(context.Background(), func(int) error { return errors.New("x") })
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected two waits, elapsed=%s", elapsed)
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	_ = Policy{}.Do(context.Background(), func(int) error { calls++; return errors.New("x") })
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestDoHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, Delay: time.Hour}
	calls := 0
	err := p.Do(ctx, func(int) error {
		calls++
		cancel()
		return errors.New("x")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}
}
