// Package lock serializes mutations per vehicle. Operations on different
// vehicles never contend; acquisition waits a bounded time so no booking
// attempt blocks indefinitely.
package lock

import (
	"context"
	"sync"
	"time"

	reserrors "carbook/internal/reservations/errors"
)

type Registry struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
	wait time.Duration
}

func NewRegistry(wait time.Duration) *Registry {
	return &Registry{
		sems: make(map[string]chan struct{}),
		wait: wait,
	}
}

func (r *Registry) sem(vehicleID string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	sem, ok := r.sems[vehicleID]
	if !ok {
		sem = make(chan struct{}, 1)
		r.sems[vehicleID] = sem
	}
	return sem
}

// Acquire takes the vehicle's exclusive slot, waiting at most the
// configured bound. It returns a release function that must run on every
// exit path, or ErrLockTimeout when the wait expires, or the context's
// error when the caller gave up first.
func (r *Registry) Acquire(ctx context.Context, vehicleID string) (func(), error) {
	sem := r.sem(vehicleID)

	timer := time.NewTimer(r.wait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-sem })
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, reserrors.ErrLockTimeout
	}
}
