package livesync

import (
	"sort"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Selection is the set of record IDs the user picked. It only ever holds IDs
// present in the last reconciled record set. Safe for concurrent use.
type Selection struct {
	mu  sync.RWMutex
	ids sets.Set[string]
	// known is nil until the first Reconcile; before that any ID may be selected.
	known sets.Set[string]
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: sets.New[string]()}
}

// Select adds id. IDs absent from the current record set are ignored.
func (s *Selection) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.known != nil && !s.known.Has(id) {
		return
	}
	s.ids.Insert(id)
}

// Deselect removes id.
func (s *Selection) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Delete(id)
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		s.Deselect(id)
		return false
	}
	s.Select(id)
	return s.Has(id)
}

// SelectAll adds every id in currentIDs.
func (s *Selection) SelectAll(currentIDs []string) {
	for _, id := range currentIDs {
		s.Select(id)
	}
}

// DeselectAll removes every id in currentIDs.
func (s *Selection) DeselectAll(currentIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Delete(currentIDs...)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = sets.New[string]()
}

// Reconcile installs a new record set, dropping selected IDs it no longer
// contains.
func (s *Selection) Reconcile(recordIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known = sets.New(recordIDs...)
	s.ids = s.ids.Intersection(s.known)
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Has(id)
}

// Len returns the number of selected IDs.
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Len()
}

// IDs returns the selected IDs in sorted order.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.ids.UnsortedList()
	sort.Strings(ids)
	return ids
}

// counts returns how many of currentIDs are selected and how many distinct
// IDs currentIDs holds.
func (s *Selection) counts(currentIDs []string) (selected, total int) {
	current := sets.New(currentIDs...)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Intersection(current).Len(), current.Len()
}

// IsAllSelected reports whether every id in currentIDs is selected. An empty
// list is never all-selected.
func (s *Selection) IsAllSelected(currentIDs []string) bool {
	selected, total := s.counts(currentIDs)
	return total > 0 && selected == total
}

// IsPartiallySelected reports whether some, but not all, of currentIDs are
// selected.
func (s *Selection) IsPartiallySelected(currentIDs []string) bool {
	selected, total := s.counts(currentIDs)
	return selected > 0 && selected < total
}
