package fluid

import (
	"fmt"
	"time"
)

// Scope is the (cluster, namespace, kind) triple a synchronizer watches.
// An empty Namespace means all namespaces.
type Scope struct {
	Cluster   string
	Namespace string
	Kind      Kind
}

func (s Scope) String() string {
	ns := s.Namespace
	if ns == "" {
		ns = "*"
	}
	return fmt.Sprintf("%s/%s/%s", s.Cluster, ns, s.Kind.Plural())
}

// EventType classifies a change notification from the push channel.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventModified EventType = "MODIFIED"
	EventDeleted  EventType = "DELETED"
)

// ParseEventType maps a watch frame type onto an EventType. Bookmark, error
// and unknown frame types report false.
func ParseEventType(raw string) (EventType, bool) {
	switch EventType(raw) {
	case EventAdded, EventModified, EventDeleted:
		return EventType(raw), true
	}
	return "", false
}

// ChangeEvent is a single inbound notification. It only ever triggers a
// refresh; it is never used as a source of record content.
type ChangeEvent struct {
	Type     EventType
	ObjectID string
	// ReceivedAt may be left zero by the producer; the consumer then stamps
	// it on arrival with its own clock.
	ReceivedAt time.Time
}
