// Package index keeps the authoritative in-memory view of committed
// booking intervals, one sorted set per vehicle. It is rebuilt from the
// reservation collection at startup; the collection stays the durable
// source of truth.
package index

import (
	"slices"
	"sort"
	"sync"
	"time"

	reserrors "carbook/internal/reservations/errors"
	"carbook/pkg/model"
)

type Index struct {
	mu        sync.RWMutex
	byVehicle map[string][]model.Interval
}

func New() *Index {
	return &Index{
		byVehicle: make(map[string][]model.Interval),
	}
}

// searchStart returns the position of the first stored interval whose
// start is not before the given start. Sets are kept sorted by start, so
// only the neighbours of this position can overlap a candidate.
func searchStart(set []model.Interval, start time.Time) int {
	return sort.Search(len(set), func(i int) bool {
		return !set[i].Start.Before(start)
	})
}

func overlapsLocked(set []model.Interval, iv model.Interval) bool {
	i := searchStart(set, iv.Start)
	if i < len(set) && set[i].Start.Before(iv.End) {
		return true
	}
	if i > 0 && set[i-1].End.After(iv.Start) {
		return true
	}
	return false
}

// Insert adds the interval to the vehicle's committed set, or reports
// ErrIntervalConflict when it overlaps a stored interval. The check and
// the mutation happen under one lock so concurrent readers never observe
// a half-applied insert.
func (ix *Index) Insert(vehicleID string, iv model.Interval) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	set := ix.byVehicle[vehicleID]
	if overlapsLocked(set, iv) {
		return reserrors.ErrIntervalConflict
	}

	i := searchStart(set, iv.Start)
	ix.byVehicle[vehicleID] = slices.Insert(set, i, iv)
	return nil
}

// Remove deletes a previously inserted interval. A second removal of the
// same interval reports ErrIntervalNotFound rather than failing
// destructively.
func (ix *Index) Remove(vehicleID string, iv model.Interval) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	set := ix.byVehicle[vehicleID]
	i := searchStart(set, iv.Start)
	if i >= len(set) || !set[i].Equal(iv) {
		return reserrors.ErrIntervalNotFound
	}

	set = slices.Delete(set, i, i+1)
	if len(set) == 0 {
		delete(ix.byVehicle, vehicleID)
	} else {
		ix.byVehicle[vehicleID] = set
	}
	return nil
}

// Overlaps is the read-only overlap test used by the availability engine.
func (ix *Index) Overlaps(vehicleID string, iv model.Interval) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return overlapsLocked(ix.byVehicle[vehicleID], iv)
}

// OverlapsAt probes with a zero-width instant: true when some committed
// interval contains t.
func (ix *Index) OverlapsAt(vehicleID string, t time.Time) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	set := ix.byVehicle[vehicleID]
	i := sort.Search(len(set), func(k int) bool {
		return set[k].Start.After(t)
	})
	return i > 0 && set[i-1].Contains(t)
}

// Load replaces the index contents from a replay of confirmed
// reservations. Replay hitting a conflict means the durable store itself
// holds overlapping confirmed bookings, which is unrecoverable here.
func (ix *Index) Load(intervals map[string][]model.Interval) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rebuilt := make(map[string][]model.Interval, len(intervals))
	for vehicleID, set := range intervals {
		sorted := make([]model.Interval, len(set))
		copy(sorted, set)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Start.Before(sorted[j].Start)
		})
		for i := 1; i < len(sorted); i++ {
			if sorted[i-1].End.After(sorted[i].Start) {
				return reserrors.ErrIntervalConflict
			}
		}
		if len(sorted) > 0 {
			rebuilt[vehicleID] = sorted
		}
	}

	ix.byVehicle = rebuilt
	return nil
}

// Count reports the number of committed intervals for a vehicle.
func (ix *Index) Count(vehicleID string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.byVehicle[vehicleID])
}
