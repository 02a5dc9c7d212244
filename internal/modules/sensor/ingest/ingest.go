// Package ingest reconciles repeatedly fetched full snapshots against the
// retained in-memory dataset. Each fetch delivers a believed-complete
// snapshot, not a delta, so reconciliation recomputes the dataset from the
// snapshot and diffs the maximum timestamp against the last one seen.
package ingest

import (
	"errors"
	"sort"

	"sensordash/internal/modules/sensor/types"
)

// ErrEmptyBatch reports a snapshot that decoded to zero valid rows. The prior
// state is left untouched; a failed fetch must never erase displayed data.
var ErrEmptyBatch = errors.New("no valid rows in snapshot")

// State is the reconciled dataset: readings sorted ascending by timestamp
// key, deduplicated by (date,time), plus the maximum timestamp key observed
// across all fetches so far. A State is immutable once published.
type State struct {
	readings []types.Reading
	lastSeen string
}

// Readings returns the reconciled readings in chronological order. Callers
// must not modify the returned slice.
func (s *State) Readings() []types.Reading {
	if s == nil {
		return nil
	}
	return s.readings
}

// LastSeen returns the maximum timestamp key observed so far, or "" before
// the first successful ingest.
func (s *State) LastSeen() string {
	if s == nil {
		return ""
	}
	return s.lastSeen
}

func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.readings)
}

// Recent returns the last n readings in chronological ascending order, for
// the live chart. Fewer than n readings returns all of them.
func (s *State) Recent(n int) []types.Reading {
	if s == nil || n <= 0 {
		return nil
	}
	if len(s.readings) <= n {
		return s.readings
	}
	return s.readings[len(s.readings)-n:]
}

// Ingest builds the next state from a decoded snapshot. Duplicate (date,time)
// keys keep the last occurrence in input order. hasNewData is true only when
// the snapshot's maximum timestamp strictly exceeds the previous last-seen
// key; the last-seen key itself never decreases, so a transient stale or
// partial snapshot cannot rewind it.
func Ingest(prev *State, batch []types.Reading) (next *State, hasNewData bool, err error) {
	if len(batch) == 0 {
		return prev, false, ErrEmptyBatch
	}

	byKey := make(map[string]types.Reading, len(batch))
	for _, r := range batch {
		byKey[r.Key()] = r
	}

	readings := make([]types.Reading, 0, len(byKey))
	for _, r := range byKey {
		readings = append(readings, r)
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Key() < readings[j].Key()
	})

	newMax := readings[len(readings)-1].Key()
	prevSeen := prev.LastSeen()

	lastSeen := prevSeen
	if newMax > lastSeen {
		lastSeen = newMax
	}

	return &State{readings: readings, lastSeen: lastSeen}, newMax > prevSeen, nil
}
