package livesync

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/state"
)

// Fetcher is the pull endpoint: one full list of the scope.
type Fetcher interface {
	List(ctx context.Context, scope fluid.Scope) ([]fluid.Record, error)
}

// Dialer opens the push channel for a scope. Errors wrapped with Permanent
// mean the channel cannot be built at all.
type Dialer interface {
	Watch(ctx context.Context, scope fluid.Scope) (Stream, error)
}

// Stream is an open push channel. Events is closed when the connection ends
// for any reason.
type Stream interface {
	Events() <-chan fluid.ChangeEvent
	Close() error
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, scope fluid.Scope) ([]fluid.Record, error)

func (f FetchFunc) List(ctx context.Context, scope fluid.Scope) ([]fluid.Record, error) {
	return f(ctx, scope)
}

// DialFunc adapts a function to Dialer.
type DialFunc func(ctx context.Context, scope fluid.Scope) (Stream, error)

func (f DialFunc) Watch(ctx context.Context, scope fluid.Scope) (Stream, error) {
	return f(ctx, scope)
}

// Status is an observation of the lifecycle controller.
type Status struct {
	Scope        fluid.Scope
	State        State
	Attempts     int
	Exhausted    bool
	Polling      bool
	RetryPending bool
	RetryDelay   time.Duration // delay of the most recently scheduled retry
	EpochStart   time.Time
	Refreshing   int // list calls in flight
}

// Connected reports whether the push channel is live.
func (s Status) Connected() bool {
	return s.State == StateConnected
}

// Mode is a short label for the connectivity indicator.
func (s Status) Mode() string {
	switch {
	case s.State == StateConnected:
		return "live"
	case s.Polling:
		return "polling"
	case s.State == StateIdle:
		return "idle"
	default:
		return "connecting"
	}
}

// Synchronizer keeps one scope's record set in step with the cluster. All
// state transitions happen on a single goroutine started by Open; the
// exported methods only post requests to it or read published copies.
type Synchronizer struct {
	fetcher Fetcher
	dialer  Dialer
	opts    Options
	log     logr.Logger

	refetchCh   chan struct{}
	reconnectCh chan struct{}
	quit        chan struct{}
	done        chan struct{}
	updates     chan struct{}

	mu     sync.Mutex
	opened bool
	closed bool
	status Status
}

// New returns an unopened synchronizer.
func New(fetcher Fetcher, dialer Dialer, opts Options) *Synchronizer {
	opts = opts.withDefaults()
	return &Synchronizer{
		fetcher:     fetcher,
		dialer:      dialer,
		opts:        opts,
		log:         opts.Logger.WithName("livesync"),
		refetchCh:   make(chan struct{}, 1),
		reconnectCh: make(chan struct{}, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		updates:     make(chan struct{}, 1),
	}
}

// Open starts watching scope. A synchronizer serves exactly one scope; open a
// new one when the scope changes.
func (s *Synchronizer) Open(scope fluid.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.opened {
		return ErrAlreadyOpen
	}
	s.opened = true
	s.status = Status{Scope: scope, State: StateConnecting}

	r := newRunner(s, scope)
	go r.run()
	return nil
}

// Close tears the synchronizer down and waits until no channel, timer or
// callback is left. It is safe to call more than once.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	opened := s.opened
	close(s.quit)
	if !opened {
		close(s.done)
		close(s.updates)
	}
	s.mu.Unlock()
	<-s.done
}

// Refetch asks for a refresh through the debouncer.
func (s *Synchronizer) Refetch() {
	select {
	case s.refetchCh <- struct{}{}:
	default:
	}
}

// Reconnect asks for an immediate connection attempt. It is ignored while
// connecting or connected.
func (s *Synchronizer) Reconnect() {
	select {
	case s.reconnectCh <- struct{}{}:
	default:
	}
}

// Status returns the last published lifecycle status.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns the current record set.
func (s *Synchronizer) Snapshot() state.Snapshot {
	return s.opts.Store.Snapshot()
}

// Selection returns the selection reconciled against this synchronizer's
// record set.
func (s *Synchronizer) Selection() *Selection {
	return s.opts.Selection
}

// Updates delivers a coalesced signal whenever status or records change. It
// is closed once the synchronizer has shut down.
func (s *Synchronizer) Updates() <-chan struct{} {
	return s.updates
}

func (s *Synchronizer) publish(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

type dialResult struct {
	gen    uint64
	stream Stream
	err    error
}

type fetchResult struct {
	trigger string
	records []fluid.Record
	err     error
}

// runner is the loop goroutine's private state.
type runner struct {
	s          *Synchronizer
	scope      fluid.Scope
	log        logr.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	m          *machine
	classifier Classifier
	retry      slot
	debounce   *Debouncer
	poll       *Poller

	stream   Stream
	events   <-chan fluid.ChangeEvent
	dialed   chan dialResult
	fetched  chan fetchResult
	inFlight int
}

func newRunner(s *Synchronizer, scope fluid.Scope) *runner {
	ctx, cancel := context.WithCancel(context.Background())
	clk := s.opts.Clock
	return &runner{
		s:          s,
		scope:      scope,
		log:        s.log.WithValues("scope", scope.String()),
		ctx:        ctx,
		cancel:     cancel,
		m:          newMachine(s.opts.backoff()),
		classifier: Classifier{Window: s.opts.InitialEventsWindow},
		retry:      slot{clock: clk},
		debounce:   NewDebouncer(clk, s.opts.DebounceWindow),
		poll:       NewPoller(clk, s.opts.PollInterval),
		dialed:     make(chan dialResult),
		fetched:    make(chan fetchResult),
	}
}

func (r *runner) run() {
	defer close(r.s.done)
	defer close(r.s.updates)
	defer r.cancel()

	r.apply(r.m.open())
	r.fetch("initial")
	r.publish()

	for {
		select {
		case <-r.s.quit:
			r.apply(r.m.close())
			r.cancel()
			r.publish()
			r.log.V(1).Info("synchronizer closed")
			return
		case <-r.s.refetchCh:
			r.debounce.Notify()
		case <-r.s.reconnectCh:
			r.log.Info("manual reconnect requested")
			r.apply(r.m.reconnect())
		case res := <-r.dialed:
			r.handleDial(res)
		case ev, ok := <-r.events:
			if !ok {
				r.streamEnded()
			} else {
				r.handleEvent(ev)
			}
		case res := <-r.fetched:
			r.handleFetch(res)
		case <-r.retry.C():
			r.retry.fired()
			r.apply(r.m.retryFired())
		case <-r.debounce.C():
			r.debounce.Fired()
			r.fetch("debounce")
		case <-r.poll.C():
			r.poll.Fired()
			r.fetch("poll")
		}
		r.publish()
	}
}

func (r *runner) apply(effs []effect) {
	for _, e := range effs {
		switch e.kind {
		case effectDial:
			r.dial(r.m.gen)
		case effectCloseStream:
			r.closeStream()
		case effectArmRetry:
			r.retry.arm(e.delay)
			reconnectsTotal.Inc()
			r.log.Info("watch disconnected, reconnect scheduled", "attempt", r.m.attempts, "delay", e.delay)
		case effectCancelRetry:
			r.retry.stop()
		case effectStartPoll:
			r.poll.Start()
			r.log.Info("watch unavailable, fallback polling started", "interval", r.poll.Interval)
		case effectStopPoll:
			r.poll.Stop()
			r.log.Info("fallback polling stopped")
		case effectRefresh:
			r.debounce.Notify()
		case effectCancelRefresh:
			r.debounce.CancelPending()
		}
	}
}

func (r *runner) dial(gen uint64) {
	go func() {
		stream, err := r.s.dialer.Watch(r.ctx, r.scope)
		select {
		case r.dialed <- dialResult{gen: gen, stream: stream, err: err}:
		case <-r.ctx.Done():
			if stream != nil {
				_ = stream.Close()
			}
		}
	}()
}

func (r *runner) handleDial(res dialResult) {
	if res.err != nil {
		permanent := IsPermanent(res.err)
		r.log.Error(res.err, "watch dial failed", "permanent", permanent)
		r.apply(r.m.failed(res.gen, permanent))
		return
	}
	effs, ok := r.m.connected(res.gen, r.s.opts.Clock.Now())
	if !ok {
		_ = res.stream.Close()
		return
	}
	r.stream = res.stream
	r.events = res.stream.Events()
	connectedStreams.Inc()
	r.log.Info("watch connected")
	r.apply(effs)
}

func (r *runner) closeStream() {
	if r.stream == nil {
		return
	}
	if err := r.stream.Close(); err != nil {
		r.log.V(1).Info("closing watch stream", "error", err.Error())
	}
	r.stream = nil
	r.events = nil
	connectedStreams.Dec()
}

func (r *runner) streamEnded() {
	r.closeStream()
	r.apply(r.m.failed(r.m.gen, false))
}

func (r *runner) handleEvent(ev fluid.ChangeEvent) {
	if r.m.state != StateConnected {
		return
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = r.s.opts.Clock.Now()
	}
	if r.classifier.Classify(ev, r.m.epochStart) == Suppress {
		suppressedEventsTotal.Inc()
		r.log.V(2).Info("suppressed replay event", "type", ev.Type, "id", ev.ObjectID)
		return
	}
	acceptedEventsTotal.WithLabelValues(string(ev.Type)).Inc()
	if ev.Type == fluid.EventDeleted {
		// Cleared wholesale; the refresh below restores exact membership.
		r.s.opts.Selection.Clear()
	}
	r.debounce.Notify()
}

func (r *runner) fetch(trigger string) {
	r.inFlight++
	go func() {
		records, err := r.s.fetcher.List(r.ctx, r.scope)
		select {
		case r.fetched <- fetchResult{trigger: trigger, records: records, err: err}:
		case <-r.ctx.Done():
		}
	}()
}

// handleFetch applies results in arrival order, so the last list call to
// resolve wins.
func (r *runner) handleFetch(res fetchResult) {
	r.inFlight--
	now := r.s.opts.Clock.Now()
	if res.err != nil {
		refreshesTotal.WithLabelValues(res.trigger, "error").Inc()
		r.log.Error(res.err, "refresh failed", "trigger", res.trigger)
		r.s.opts.Store.Update(nil, res.err, now)
		return
	}
	refreshesTotal.WithLabelValues(res.trigger, "success").Inc()
	r.s.opts.Store.Update(res.records, nil, now)
	r.s.opts.Selection.Reconcile(fluid.IDs(res.records))
	r.log.V(1).Info("refreshed", "trigger", res.trigger, "records", len(res.records))
}

func (r *runner) publish() {
	m := r.m
	r.s.publish(Status{
		Scope:        r.scope,
		State:        m.state,
		Attempts:     m.attempts,
		Exhausted:    m.exhausted,
		Polling:      m.polling,
		RetryPending: m.retryPending,
		RetryDelay:   m.lastDelay,
		EpochStart:   m.epochStart,
		Refreshing:   r.inFlight,
	})
}
