package livesync

import (
	"time"

	"github.com/five82/fluidboard/internal/fluid"
)

// Verdict is the outcome of classifying a change event.
type Verdict int

const (
	Accept Verdict = iota
	Suppress
)

func (v Verdict) String() string {
	if v == Suppress {
		return "suppress"
	}
	return "accept"
}

// Classifier separates the replay burst a fresh watch delivers from live
// changes. Added events inside Window of the connection epoch are replay.
type Classifier struct {
	Window time.Duration
}

// Classify decides whether ev should trigger a refresh.
func (c Classifier) Classify(ev fluid.ChangeEvent, epochStart time.Time) Verdict {
	switch ev.Type {
	case fluid.EventDeleted, fluid.EventModified:
		return Accept
	case fluid.EventAdded:
		if ev.ReceivedAt.Sub(epochStart) < c.Window {
			return Suppress
		}
		return Accept
	}
	return Suppress
}
