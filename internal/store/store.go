package store

import (
	"errors"
	"fmt"
	"math"
	"time"

	"NiftyPulse/internal/model"
)

// ErrNotFound is returned by lookbacks when no stored entry falls within
// tolerance of the requested offset. This is the normal warm-up state,
// not a failure.
var ErrNotFound = errors.New("store: no entry within tolerance")

// SnapshotStore is the append-only bounded window of OI snapshots.
// Append and Lookback are only ever called from the scan loop, so the
// store carries no lock of its own.
type SnapshotStore struct {
	ring *Ring[model.Snapshot]
	last time.Time
}

// NewSnapshotStore creates a store retaining the most recent capacity
// snapshots. Capacity should cover the longest lookback horizon.
func NewSnapshotStore(capacity int) *SnapshotStore {
	return &SnapshotStore{ring: NewRing[model.Snapshot](capacity)}
}

// Append adds a snapshot, evicting the oldest once at capacity.
// Timestamps must be non-decreasing; an out-of-order snapshot is a
// programming defect upstream and is rejected.
func (s *SnapshotStore) Append(snap model.Snapshot) error {
	if !s.last.IsZero() && snap.Timestamp.Before(s.last) {
		return fmt.Errorf("store: snapshot timestamp %s precedes last %s",
			snap.Timestamp.Format(time.RFC3339), s.last.Format(time.RFC3339))
	}
	s.ring.Push(snap)
	s.last = snap.Timestamp
	return nil
}

// Len returns the number of retained snapshots.
func (s *SnapshotStore) Len() int { return s.ring.Len() }

// Latest returns the most recent snapshot.
func (s *SnapshotStore) Latest() (model.Snapshot, bool) {
	return s.ring.Last()
}

// Lookback returns the snapshot whose timestamp is closest to
// now-minutesAgo, accepting it only within tolerance. On an exact tie
// the more recent snapshot wins.
func (s *SnapshotStore) Lookback(now time.Time, minutesAgo, tolerance time.Duration) (model.Snapshot, error) {
	target := now.Add(-minutesAgo)
	best := -1
	bestDiff := time.Duration(math.MaxInt64)
	for i := 0; i < s.ring.Len(); i++ {
		diff := s.ring.At(i).Timestamp.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		// <= keeps the later of two exactly tied candidates, since the
		// ring is scanned oldest to newest.
		if diff <= bestDiff && diff <= tolerance {
			bestDiff = diff
			best = i
		}
	}
	if best < 0 {
		return model.Snapshot{}, ErrNotFound
	}
	return s.ring.At(best), nil
}

// PriceStore is the bounded window of per-cycle price observations,
// sharing the same ring mechanics as the snapshot store.
type PriceStore struct {
	ring *Ring[model.PricePoint]
}

// NewPriceStore creates a price window of the given capacity.
func NewPriceStore(capacity int) *PriceStore {
	return &PriceStore{ring: NewRing[model.PricePoint](capacity)}
}

// Append adds a price observation.
func (s *PriceStore) Append(p model.PricePoint) {
	s.ring.Push(p)
}

// Len returns the number of retained points.
func (s *PriceStore) Len() int { return s.ring.Len() }

// Latest returns the most recent price point.
func (s *PriceStore) Latest() (model.PricePoint, bool) {
	return s.ring.Last()
}

// Change returns the price move from roughly minutesAgo to the latest
// observation, using the same nearest-within-tolerance rule.
func (s *PriceStore) Change(now time.Time, minutesAgo, tolerance time.Duration) (float64, error) {
	latest, ok := s.ring.Last()
	if !ok {
		return 0, ErrNotFound
	}
	target := now.Add(-minutesAgo)
	best := -1
	bestDiff := time.Duration(math.MaxInt64)
	for i := 0; i < s.ring.Len(); i++ {
		diff := s.ring.At(i).Timestamp.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff <= bestDiff && diff <= tolerance {
			bestDiff = diff
			best = i
		}
	}
	if best < 0 {
		return 0, ErrNotFound
	}
	return latest.Price - s.ring.At(best).Price, nil
}

// Streak returns the count of consecutive same-direction moves ending at
// the latest point: positive for rising cycles, negative for falling.
func (s *PriceStore) Streak() int {
	n := s.ring.Len()
	if n < 2 {
		return 0
	}
	streak := 0
	for i := n - 1; i > 0; i-- {
		d := s.ring.At(i).Price - s.ring.At(i-1).Price
		if d > 0 {
			if streak < 0 {
				break
			}
			streak++
		} else if d < 0 {
			if streak > 0 {
				break
			}
			streak--
		} else {
			break
		}
	}
	return streak
}
