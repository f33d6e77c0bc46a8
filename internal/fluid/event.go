package fluid

import (
	"sort"
	"time"
)

// Event is a core/v1 Event recorded against a Fluid object.
type Event struct {
	Type     string // Normal or Warning
	Reason   string
	Message  string
	Source   string
	Count    int32
	LastSeen time.Time
}

// IsWarning reports whether the event has type Warning.
func (e Event) IsWarning() bool {
	return e.Type == "Warning"
}

// SortEvents orders events newest first. Events without a timestamp sink to
// the end; ties keep their listed order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].LastSeen, events[j].LastSeen
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}
