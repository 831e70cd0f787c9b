package rdpwatch

import (
	"context"
	"sync/atomic"
	"time"
)

// PollInterval is the interval between two session queries of the polling
// loop. A query is expensive, so this is kept long; the event loop covers the
// common case.
var PollInterval = time.Minute

// EventRetryDelay is the time the event loop waits before waiting again after
// the session event wait failed.
var EventRetryDelay = time.Second

const (
	observerPolling = "polling"
	observerEvent   = "event"
)

// ConnectionMonitor watches a single session for an active to disconnected
// transition. A monitor is created for every start of a Lifecycle, so its
// latch always starts disarmed.
type ConnectionMonitor struct {
	SessionID SessionID
	RunID     string

	state    SessionStateSource
	reaction Reaction
	j        Journaler

	// hasBeenActive is armed by whichever observer sees the session active and
	// consumed by whichever observer first sees it disconnected. It is the only
	// state shared by the two observer goroutines.
	hasBeenActive atomic.Bool
}

// NewConnectionMonitor creates a new monitor. The monitor does nothing on its
// own; see Lifecycle.
func NewConnectionMonitor(
	id SessionID, runID string, state SessionStateSource, r Reaction, j Journaler) *ConnectionMonitor {

	return &ConnectionMonitor{
		SessionID: id,
		RunID:     runID,
		state:     state,
		reaction:  r,
		j:         j,
	}
}

// HasBeenActive returns true if the latch is currently armed.
func (m *ConnectionMonitor) HasBeenActive() bool {
	return m.hasBeenActive.Load()
}

// observation is what an observer learned about the session in one step.
// The zero value means nothing actionable was learned.
type observation struct {
	disconnected bool
	active       bool
}

// handle applies an observation to the latch and runs the reaction if this
// call is the one that consumed it. It returns true if the reaction ran.
func (m *ConnectionMonitor) handle(ctx context.Context, observer string, o observation) bool {
	switch {
	case o.disconnected:
		// Only the goroutine that flips the latch from armed to disarmed
		// reacts. A disconnect with no prior activation is ignored.
		if !m.hasBeenActive.CompareAndSwap(true, false) {
			return false
		}

		m.j.Write(&EventDisconnectDetected{
			RunID:    m.RunID,
			Observer: observer,
		})

		m.reaction.React(ctx)
		return true

	case o.active:
		if m.hasBeenActive.CompareAndSwap(false, true) {
			m.j.Write(&EventSessionActivated{
				RunID:    m.RunID,
				Observer: observer,
			})
		}
	}

	return false
}

// query queries the session state once. Failures are journaled and yield an
// empty observation.
func (m *ConnectionMonitor) query(observer string) observation {
	snap, err := m.state.Query()
	if err != nil {
		warnf(m.j, "monitor", "%s observer: session query failed: %v", observer, err)
		return observation{}
	}

	m.j.Write(&EventSessionState{
		Observer:         observer,
		State:            snap.State.String(),
		ConsoleSessionID: snap.ConsoleSessionID,
	})

	return observation{
		disconnected: snap.State == StateDisconnected,
		active:       snap.IsActiveRemote(m.SessionID),
	}
}

// run feeds every observation of obs into handle until obs is done. done is
// closed on return.
func (m *ConnectionMonitor) run(ctx context.Context, obs sessionObserver, done chan<- struct{}) {
	defer close(done)

	for {
		o, ok := obs.observe()
		if !ok {
			return
		}

		m.handle(ctx, obs.name(), o)
	}
}

// sessionObserver is a source of observations. Both loops share the same
// handling and differ only in how they observe.
type sessionObserver interface {
	name() string
	// observe blocks until the next observation. It returns false once the
	// observer has been told to exit.
	observe() (observation, bool)
}

// pollingObserver queries the session once right away and then once every
// interval, until stop is closed.
type pollingObserver struct {
	m        *ConnectionMonitor
	stop     <-chan struct{}
	interval time.Duration
	started  bool
}

func (o *pollingObserver) name() string { return observerPolling }

func (o *pollingObserver) observe() (observation, bool) {
	if o.started {
		if !sleepOrStop(o.stop, o.interval) {
			return observation{}, false
		}
	}

	o.started = true
	return o.m.query(observerPolling), true
}

// eventObserver blocks on session notifications. Its wait has no timeout, so
// it can only be stopped by setting exiting and flushing the event source.
type eventObserver struct {
	m       *ConnectionMonitor
	events  SessionEventSource
	exiting *atomic.Bool
	stop    <-chan struct{}
	retry   time.Duration
}

func (o *eventObserver) name() string { return observerEvent }

func (o *eventObserver) observe() (observation, bool) {
	for !o.exiting.Load() {
		mask, err := o.events.Wait(NotifyDisconnect | NotifyStateChange)
		if o.exiting.Load() {
			break
		}

		if err != nil {
			warnf(o.m.j, "monitor", "event observer: session wait failed: %v", err)

			if !sleepOrStop(o.stop, o.retry) {
				break
			}

			continue
		}

		o.m.j.Write(&EventSessionNotified{Mask: mask})

		switch {
		case mask.Has(NotifyDisconnect):
			return observation{disconnected: true}, true
		case mask.Has(NotifyStateChange):
			// A state change does not say what the new state is.
			return o.m.query(observerEvent), true
		}

		// NotifyNone: someone flushed the waiters. Wait again.
	}

	return observation{}, false
}

// sleepOrStop sleeps for d. It returns false if stop was closed first.
func sleepOrStop(stop <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}
