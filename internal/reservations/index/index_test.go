package index

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	reserrors "carbook/internal/reservations/errors"
	"carbook/pkg/model"
)

const vehicleID = "64f1b2c3d4e5f60718293a4b"

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func iv(start, end int) model.Interval {
	return model.Interval{Start: day(start), End: day(end)}
}

func TestInsertAndOverlaps(t *testing.T) {
	ix := New()

	if err := ix.Insert(vehicleID, iv(3, 5)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	if !ix.Overlaps(vehicleID, iv(4, 6)) {
		t.Error("expected overlap with [4,6)")
	}
	if !ix.Overlaps(vehicleID, iv(1, 4)) {
		t.Error("expected overlap with [1,4)")
	}
	if ix.Overlaps(vehicleID, iv(5, 8)) {
		t.Error("[5,8) touches at the boundary and must not overlap")
	}
	if ix.Overlaps(vehicleID, iv(1, 3)) {
		t.Error("[1,3) touches at the boundary and must not overlap")
	}
	if ix.Overlaps("another-vehicle", iv(3, 5)) {
		t.Error("other vehicles must not be affected")
	}
}

func TestInsertConflict(t *testing.T) {
	ix := New()

	if err := ix.Insert(vehicleID, iv(3, 5)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := ix.Insert(vehicleID, iv(4, 6)); !errors.Is(err, reserrors.ErrIntervalConflict) {
		t.Errorf("expected ErrIntervalConflict, got %v", err)
	}
	if err := ix.Insert(vehicleID, iv(3, 5)); !errors.Is(err, reserrors.ErrIntervalConflict) {
		t.Errorf("identical interval should conflict, got %v", err)
	}
	if err := ix.Insert(vehicleID, iv(5, 8)); err != nil {
		t.Errorf("adjacent interval should insert cleanly, got %v", err)
	}
	if n := ix.Count(vehicleID); n != 2 {
		t.Errorf("expected 2 committed intervals, got %d", n)
	}
}

func TestRemove(t *testing.T) {
	ix := New()

	if err := ix.Insert(vehicleID, iv(3, 5)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := ix.Remove(vehicleID, iv(3, 5)); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if ix.Overlaps(vehicleID, iv(3, 5)) {
		t.Error("interval should be free after removal")
	}
	if err := ix.Remove(vehicleID, iv(3, 5)); !errors.Is(err, reserrors.ErrIntervalNotFound) {
		t.Errorf("second removal should report ErrIntervalNotFound, got %v", err)
	}
	if err := ix.Remove(vehicleID, iv(1, 2)); !errors.Is(err, reserrors.ErrIntervalNotFound) {
		t.Errorf("removing an unknown interval should fail, got %v", err)
	}
}

func TestRemoveExactMatchOnly(t *testing.T) {
	ix := New()

	if err := ix.Insert(vehicleID, iv(3, 8)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// Same start, different end: not the stored interval.
	if err := ix.Remove(vehicleID, iv(3, 5)); !errors.Is(err, reserrors.ErrIntervalNotFound) {
		t.Errorf("expected ErrIntervalNotFound for partial match, got %v", err)
	}
	if !ix.Overlaps(vehicleID, iv(4, 6)) {
		t.Error("stored interval must survive a failed removal")
	}
}

func TestOverlapsAt(t *testing.T) {
	ix := New()

	if err := ix.Insert(vehicleID, iv(3, 5)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if !ix.OverlapsAt(vehicleID, day(3)) {
		t.Error("start instant lies inside the half-open interval")
	}
	if !ix.OverlapsAt(vehicleID, day(4)) {
		t.Error("interior instant should be covered")
	}
	if ix.OverlapsAt(vehicleID, day(5)) {
		t.Error("end instant lies outside the half-open interval")
	}
	if ix.OverlapsAt(vehicleID, day(1)) {
		t.Error("instant before the interval should be free")
	}
}

func TestLoad(t *testing.T) {
	ix := New()

	if err := ix.Insert(vehicleID, iv(20, 25)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	err := ix.Load(map[string][]model.Interval{
		vehicleID: {iv(5, 8), iv(1, 3)},
		"other":   {iv(2, 4)},
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if ix.Overlaps(vehicleID, iv(20, 25)) {
		t.Error("load must replace previous contents")
	}
	if !ix.Overlaps(vehicleID, iv(2, 6)) {
		t.Error("loaded intervals should be queryable")
	}
	if !ix.Overlaps("other", iv(3, 5)) {
		t.Error("loaded intervals for other vehicles should be queryable")
	}
}

func TestLoadRejectsOverlappingReplay(t *testing.T) {
	ix := New()

	err := ix.Load(map[string][]model.Interval{
		vehicleID: {iv(1, 5), iv(4, 8)},
	})
	if !errors.Is(err, reserrors.ErrIntervalConflict) {
		t.Errorf("expected ErrIntervalConflict for overlapping replay, got %v", err)
	}
}

// Hammers one vehicle with random interval inserts from many goroutines
// and checks that the surviving set is pairwise disjoint.
func TestConcurrentInsertsStayDisjoint(t *testing.T) {
	ix := New()

	const attempts = 200
	var wg sync.WaitGroup
	inserted := make(chan model.Interval, attempts)

	for g := 0; g < attempts; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			start := 1 + r.Intn(25)
			end := start + 1 + r.Intn(5)
			candidate := iv(start, end)
			if err := ix.Insert(vehicleID, candidate); err == nil {
				inserted <- candidate
			}
		}(int64(g))
	}
	wg.Wait()
	close(inserted)

	var committed []model.Interval
	for c := range inserted {
		committed = append(committed, c)
	}
	if len(committed) == 0 {
		t.Fatal("expected at least one successful insert")
	}
	for i := 0; i < len(committed); i++ {
		for j := i + 1; j < len(committed); j++ {
			if committed[i].Overlaps(committed[j]) {
				t.Fatalf("committed intervals overlap: %v and %v", committed[i], committed[j])
			}
		}
	}
	if n := ix.Count(vehicleID); n != len(committed) {
		t.Errorf("index holds %d intervals, %d inserts succeeded", n, len(committed))
	}
}
