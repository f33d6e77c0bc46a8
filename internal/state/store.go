package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/fluidboard/internal/fluid"
)

// Snapshot represents the latest record set available to the UI.
type Snapshot struct {
	Records             []fluid.Record
	Loaded              bool // at least one refresh succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the list endpoint has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Find returns the record with the given ID.
func (s Snapshot) Find(id string) (fluid.Record, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return fluid.Record{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored record set as of at. When err is non-nil the
// previous records are kept but the error is recorded for visibility.
func (s *Store) Update(records []fluid.Record, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = at
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Records = cloneRecords(records)
	s.snapshot.Loaded = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = at
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Records = cloneRecords(s.snapshot.Records)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// cloneRecords copies the slice. Records themselves are treated as immutable
// once decoded, so their nested slices and raw objects are shared.
func cloneRecords(items []fluid.Record) []fluid.Record {
	if len(items) == 0 {
		return nil
	}
	dup := make([]fluid.Record, len(items))
	copy(dup, items)
	return dup
}
