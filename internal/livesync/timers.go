package livesync

import (
	"time"

	"k8s.io/utils/clock"
)

// slot holds at most one pending timer. Arming a slot replaces whatever was
// pending. A slot is owned by a single goroutine.
type slot struct {
	clock clock.Clock
	timer clock.Timer
}

func (s *slot) arm(d time.Duration) {
	s.stop()
	s.timer = s.clock.NewTimer(d)
}

func (s *slot) stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fired marks the pending timer as consumed after its channel delivered.
func (s *slot) fired() {
	s.timer = nil
}

func (s *slot) pending() bool {
	return s.timer != nil
}

// C returns the pending timer's channel, or nil so a select case on it
// never fires while nothing is armed.
func (s *slot) C() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.C()
}

// Debouncer coalesces Notify calls into one trailing fire, Window after the
// last call.
type Debouncer struct {
	Window time.Duration
	slot
}

// NewDebouncer returns a Debouncer driven by clk.
func NewDebouncer(clk clock.Clock, window time.Duration) *Debouncer {
	return &Debouncer{Window: window, slot: slot{clock: clk}}
}

// Notify restarts the quiet period.
func (d *Debouncer) Notify() {
	d.arm(d.Window)
}

// C delivers once the quiet period elapses. Call Fired after receiving.
func (d *Debouncer) C() <-chan time.Time {
	return d.slot.C()
}

// Fired consumes a delivered fire.
func (d *Debouncer) Fired() {
	d.fired()
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending()
}

// CancelPending drops any scheduled fire.
func (d *Debouncer) CancelPending() {
	d.stop()
}

// Poller ticks every Interval while active. Each tick is a fresh timer, so a
// stopped poller leaves nothing scheduled on the clock.
type Poller struct {
	Interval time.Duration
	slot
	active bool
}

// NewPoller returns an inactive Poller driven by clk.
func NewPoller(clk clock.Clock, interval time.Duration) *Poller {
	return &Poller{Interval: interval, slot: slot{clock: clk}}
}

// Start activates the poller. Starting an active poller is a no-op.
func (p *Poller) Start() {
	if p.active {
		return
	}
	p.active = true
	p.arm(p.Interval)
	pollingActive.Inc()
}

// Stop deactivates the poller.
func (p *Poller) Stop() {
	if !p.active {
		return
	}
	p.active = false
	p.stop()
	pollingActive.Dec()
}

// Active reports whether the poller is running.
func (p *Poller) Active() bool {
	return p.active
}

// C delivers each tick. Call Fired after receiving to schedule the next one.
func (p *Poller) C() <-chan time.Time {
	return p.slot.C()
}

// Fired schedules the next tick.
func (p *Poller) Fired() {
	p.fired()
	if p.active {
		p.arm(p.Interval)
	}
}
