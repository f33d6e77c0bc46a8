package livesync

import (
	"fmt"
	"time"
)

// State is the connection state of a synchronizer.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateClosing:
		return "closing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type effectKind int

const (
	effectDial effectKind = iota
	effectCloseStream
	effectArmRetry
	effectCancelRetry
	effectStartPoll
	effectStopPoll
	effectRefresh
	effectCancelRefresh
)

func (k effectKind) String() string {
	return [...]string{
		"dial", "close-stream", "arm-retry", "cancel-retry",
		"start-poll", "stop-poll", "refresh", "cancel-refresh",
	}[k]
}

// effect is an instruction from the machine to the loop that owns the
// channel and timers.
type effect struct {
	kind  effectKind
	delay time.Duration
}

// machine is the lifecycle controller. It owns the connection state, the
// reconnect counter and the epoch start, and it never touches a clock, a
// channel or a goroutine: every transition returns the effects the caller
// must carry out.
//
// Each dial is tagged with a generation. Results from an older generation
// are stale and must be discarded by the caller.
type machine struct {
	backoff Backoff

	state        State
	closed       bool
	gen          uint64
	attempts     int
	exhausted    bool
	polling      bool
	retryPending bool
	streamOpen   bool
	epochStart   time.Time
	lastDelay    time.Duration
}

func newMachine(b Backoff) *machine {
	return &machine{backoff: b}
}

// open starts the first connection attempt.
func (m *machine) open() []effect {
	if m.closed || m.state != StateIdle {
		return nil
	}
	return m.dial()
}

func (m *machine) dial() []effect {
	m.state = StateConnecting
	m.gen++
	return []effect{{kind: effectDial}}
}

// connected records a successful dial for generation gen. It reports false
// when the result is stale, in which case the caller closes the stream.
func (m *machine) connected(gen uint64, now time.Time) ([]effect, bool) {
	if m.closed || gen != m.gen || m.state != StateConnecting {
		return nil, false
	}
	var effs []effect
	if m.polling {
		m.polling = false
		effs = append(effs, effect{kind: effectStopPoll})
	}
	if m.retryPending {
		m.retryPending = false
		effs = append(effs, effect{kind: effectCancelRetry})
	}
	// Changes may have been missed while the stream was down.
	if m.attempts > 0 || m.exhausted {
		effs = append(effs, effect{kind: effectRefresh})
	}
	m.state = StateConnected
	m.streamOpen = true
	m.attempts = 0
	m.exhausted = false
	m.epochStart = now
	return effs, true
}

// failed records that generation gen could not be dialed or its stream
// ended. A permanent failure skips the retry loop and goes straight to
// polling.
func (m *machine) failed(gen uint64, permanent bool) []effect {
	if m.closed || gen != m.gen {
		return nil
	}
	if m.state != StateConnecting && m.state != StateConnected {
		return nil
	}
	m.state = StateDisconnected
	m.streamOpen = false

	if permanent {
		m.exhausted = true
	}
	if m.exhausted {
		return m.startPolling()
	}

	m.attempts++
	if m.backoff.Exhausted(m.attempts) {
		m.exhausted = true
		return m.startPolling()
	}
	m.retryPending = true
	m.lastDelay = m.backoff.Delay(m.attempts - 1)
	return []effect{{kind: effectArmRetry, delay: m.lastDelay}}
}

func (m *machine) startPolling() []effect {
	if m.polling {
		return nil
	}
	m.polling = true
	return []effect{{kind: effectStartPoll}}
}

// retryFired starts the scheduled reconnect attempt.
func (m *machine) retryFired() []effect {
	if m.closed || !m.retryPending || m.state != StateDisconnected {
		return nil
	}
	m.retryPending = false
	return m.dial()
}

// reconnect is a user-requested attempt. It cancels a scheduled retry and
// dials now. After exhaustion the counter stays frozen, so a failed manual
// attempt leaves the poller running without scheduling retries.
func (m *machine) reconnect() []effect {
	if m.closed || m.state != StateDisconnected {
		return nil
	}
	var effs []effect
	if m.retryPending {
		m.retryPending = false
		effs = append(effs, effect{kind: effectCancelRetry})
	}
	return append(effs, m.dial()...)
}

// close tears everything down. Calling it again is a no-op.
func (m *machine) close() []effect {
	if m.closed {
		return nil
	}
	m.closed = true
	m.state = StateClosing
	m.gen++

	var effs []effect
	if m.retryPending {
		m.retryPending = false
		effs = append(effs, effect{kind: effectCancelRetry})
	}
	if m.polling {
		m.polling = false
		effs = append(effs, effect{kind: effectStopPoll})
	}
	effs = append(effs, effect{kind: effectCancelRefresh})
	if m.streamOpen {
		m.streamOpen = false
		effs = append(effs, effect{kind: effectCloseStream})
	}
	m.state = StateIdle
	return effs
}
