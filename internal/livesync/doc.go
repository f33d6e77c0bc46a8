// Package livesync keeps a Fluid resource list in step with the cluster.
//
// # Overview
//
// A Synchronizer watches one Scope (cluster, namespace, kind). It pulls the
// full list once on Open and again whenever something says the list may have
// changed. Triggers come from three places:
//
//   - the watch stream, when it delivers a live change
//   - the fallback poller, while the watch is unavailable
//   - Refetch, for user initiated refreshes
//
// Watch events are only ever triggers. The list response is the single source
// of record content, so out-of-order or duplicated events cost at most one
// extra refresh.
//
// # Architecture
//
//	           Open(scope)
//	               │
//	               ▼
//	┌─────────────────────────────┐  effects  ┌──────────────────────────┐
//	│ machine                     │──────────→│ runner (one goroutine)   │
//	│  Idle → Connecting          │           │  dial / close stream     │
//	│  Connecting → Connected     │←──────────│  retry slot              │
//	│  Connected → Disconnected   │  results  │  Debouncer, Poller       │
//	│  * → Closing → Idle         │           │  fetch → state.Store     │
//	└─────────────────────────────┘           └──────────────────────────┘
//
// The machine owns the connection state, the reconnect counter and the epoch
// start. It is a plain value with no clock or goroutine, which is what lets
// the fuzz test drive it through arbitrary sequences. The runner performs
// the effects it returns and feeds results back. Every dial carries a
// generation so results that arrive after a newer dial, or after Close, are
// dropped.
//
// # Reconnects and Polling
//
// After failure n (1-based) the runner waits Delay(n-1, base, max) and dials
// again. When failures reach MaxAttempts the counter freezes and the Poller
// takes over, refreshing every PollInterval. A dial error wrapped with
// Permanent goes straight to polling. Polling stops the moment a stream
// connects, which from the exhausted state only happens through Reconnect.
// The poller never runs while a stream is connected.
//
// # Event Classification
//
// A fresh watch replays existing objects as ADDED. Classifier suppresses
// ADDED events that arrive within InitialEventsWindow of the connection epoch.
// MODIFIED and DELETED always pass. An accepted DELETED also clears the whole
// Selection; the refresh it schedules restores exact membership.
//
// # Teardown
//
// Close stops every timer, closes the stream, cancels in-flight list and
// dial calls, and returns once the loop goroutine has exited. Nothing fires
// after Close returns. Calling Close again is a no-op.
//
// # Testing
//
// All timers come from Options.Clock. Tests pass a
// k8s.io/utils/clock/testing.FakeClock and step it:
//
//	clk := testingclock.NewFakeClock(time.Now())
//	s := livesync.New(fetcher, dialer, livesync.Options{Clock: clk})
//	_ = s.Open(scope)
//	clk.Step(time.Second) // fire the first retry
//	s.Close()
//	clk.HasWaiters()      // false
package livesync
