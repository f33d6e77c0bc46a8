package livesync

import (
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/five82/fluidboard/internal/state"
)

// Defaults for Options.
const (
	DefaultBackoffBase         = 1000 * time.Millisecond
	DefaultBackoffMax          = 10000 * time.Millisecond
	DefaultMaxAttempts         = 5
	DefaultPollInterval        = 15000 * time.Millisecond
	DefaultDebounceWindow      = 1000 * time.Millisecond
	DefaultInitialEventsWindow = 2000 * time.Millisecond
)

// Options tune a Synchronizer. Zero and negative values take the defaults.
type Options struct {
	BackoffBase         time.Duration
	BackoffMax          time.Duration
	MaxAttempts         int
	PollInterval        time.Duration
	DebounceWindow      time.Duration
	InitialEventsWindow time.Duration

	// Clock drives every timer. Defaults to the real clock.
	Clock clock.Clock
	// Logger defaults to a discarding logger.
	Logger logr.Logger
	// Store receives refresh results. A fresh store is created when nil.
	Store *state.Store
	// Selection is reconciled after every refresh. A fresh one is created when nil.
	Selection *Selection
}

func (o Options) withDefaults() Options {
	if o.BackoffBase <= 0 {
		o.BackoffBase = DefaultBackoffBase
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = DefaultBackoffMax
	}
	if o.BackoffMax < o.BackoffBase {
		o.BackoffMax = o.BackoffBase
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = DefaultDebounceWindow
	}
	if o.InitialEventsWindow <= 0 {
		o.InitialEventsWindow = DefaultInitialEventsWindow
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	if o.Logger.GetSink() == nil {
		o.Logger = logr.Discard()
	}
	if o.Store == nil {
		o.Store = &state.Store{}
	}
	if o.Selection == nil {
		o.Selection = NewSelection()
	}
	return o
}

func (o Options) backoff() Backoff {
	return Backoff{Base: o.BackoffBase, Max: o.BackoffMax, MaxAttempts: o.MaxAttempts}
}
