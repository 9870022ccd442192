package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetry_SecondAttemptSucceeds(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestRetry_Exhaustion(t *testing.T) {
	wantErr := errors.New("persistent")
	calls := 0
	err := retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the last attempt's error", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestRetry_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retry(ctx, 2, time.Hour, func(ctx context.Context) error {
			calls++
			return errors.New("fail")
		})
	}()

	// Let the first attempt run, then cancel while retry is waiting.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not return after cancellation")
	}

	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (no retry after cancel)", calls)
	}
}

func TestRetry_NoRetryWithDeadContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := retry(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}
