package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	reserrors "carbook/internal/reservations/errors"
)

func TestAcquireRelease(t *testing.T) {
	locks := NewRegistry(time.Second)

	release, err := locks.Acquire(context.Background(), "v1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	release()

	// Released slot must be reacquirable.
	release, err = locks.Acquire(context.Background(), "v1")
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	release()
	// Double release must be harmless.
	release()
}

func TestAcquireTimesOutWhenHeld(t *testing.T) {
	locks := NewRegistry(50 * time.Millisecond)

	release, err := locks.Acquire(context.Background(), "v1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer release()

	start := time.Now()
	_, err = locks.Acquire(context.Background(), "v1")
	if !errors.Is(err, reserrors.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("timed out after %s, before the configured bound", elapsed)
	}
}

func TestDistinctVehiclesDoNotContend(t *testing.T) {
	locks := NewRegistry(50 * time.Millisecond)

	release1, err := locks.Acquire(context.Background(), "v1")
	if err != nil {
		t.Fatalf("acquire v1 failed: %v", err)
	}
	defer release1()

	release2, err := locks.Acquire(context.Background(), "v2")
	if err != nil {
		t.Fatalf("acquire v2 should not contend with v1: %v", err)
	}
	release2()
}

func TestAcquireHonoursContextCancellation(t *testing.T) {
	locks := NewRegistry(time.Minute)

	release, err := locks.Acquire(context.Background(), "v1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locks.Acquire(ctx, "v1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestWaitersProceedAfterRelease(t *testing.T) {
	locks := NewRegistry(time.Second)

	release, err := locks.Acquire(context.Background(), "v1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		r, err := locks.Acquire(context.Background(), "v1")
		if err != nil {
			t.Errorf("waiter failed to acquire: %v", err)
			close(acquired)
			return
		}
		r()
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}
