package rdpwatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FlushRetryInterval is how often Stop flushes the session event source again
// while waiting for the event loop to exit. A flush that lands right before
// the loop enters its wait does not wake it, so one flush is not enough.
var FlushRetryInterval = 250 * time.Millisecond

// MonitorConfig describes what a Lifecycle monitors and how it reacts.
type MonitorConfig struct {
	SessionID  SessionID
	State      SessionStateSource
	OpenEvents SessionEventOpener
	Reaction   Reaction

	// PollInterval overrides the package-level PollInterval if non-zero.
	PollInterval time.Duration
	// EventRetryDelay overrides the package-level EventRetryDelay if non-zero.
	EventRetryDelay time.Duration
}

// Lifecycle starts and stops the two observer loops of a ConnectionMonitor.
// Start and Stop are idempotent and may be called from any goroutine.
type Lifecycle struct {
	cfg MonitorConfig
	j   Journaler

	mu sync.Mutex
	h  *monitorHandles
}

// monitorHandles is everything owned by a started monitor.
type monitorHandles struct {
	monitor *ConnectionMonitor

	stop    chan struct{} // closed to wake the polling loop
	exiting atomic.Bool   // checked by the event loop after every wake
	ctx     context.Context
	cancel  context.CancelFunc

	events    SessionEventSource
	pollDone  chan struct{}
	eventDone chan struct{}
}

// NewLifecycle creates a stopped Lifecycle.
func NewLifecycle(cfg MonitorConfig, j Journaler) *Lifecycle {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = PollInterval
	}
	if cfg.EventRetryDelay == 0 {
		cfg.EventRetryDelay = EventRetryDelay
	}

	return &Lifecycle{cfg: cfg, j: j}
}

// Running returns true if the monitor has been started and not stopped since.
func (l *Lifecycle) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.h != nil
}

// Monitor returns the currently running monitor, or nil if it is stopped.
func (l *Lifecycle) Monitor() *ConnectionMonitor {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.h == nil {
		return nil
	}
	return l.h.monitor
}

// Start starts both observer loops if they are not already running. If the
// monitor cannot be fully started, everything that was started is torn down
// again and an error is returned.
func (l *Lifecycle) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.h == nil {
		ctx, cancel := context.WithCancel(context.Background())
		l.h = &monitorHandles{
			monitor: NewConnectionMonitor(
				l.cfg.SessionID, uuid.NewString(), l.cfg.State, l.cfg.Reaction, l.j,
			),
			stop:   make(chan struct{}),
			ctx:    ctx,
			cancel: cancel,
		}
	}

	h := l.h
	h.exiting.Store(false)

	var started bool

	if h.pollDone == nil {
		h.pollDone = make(chan struct{})
		started = true

		go h.monitor.run(h.ctx, &pollingObserver{
			m:        h.monitor,
			stop:     h.stop,
			interval: l.cfg.PollInterval,
		}, h.pollDone)
	}

	if h.eventDone == nil {
		events, err := l.cfg.OpenEvents()
		if err != nil {
			l.stop()
			return errors.Wrap(err, "failed to open session events")
		}

		h.events = events
		h.eventDone = make(chan struct{})
		started = true

		go h.monitor.run(h.ctx, &eventObserver{
			m:       h.monitor,
			events:  events,
			exiting: &h.exiting,
			stop:    h.stop,
			retry:   l.cfg.EventRetryDelay,
		}, h.eventDone)
	}

	if started {
		l.j.Write(&EventMonitorStarted{
			RunID:     h.monitor.RunID,
			SessionID: h.monitor.SessionID,
		})
	}

	return nil
}

// Stop stops both observer loops and waits for them to exit. It does nothing
// if the monitor is not running. A reaction that is in progress is cancelled
// through its context and waited for.
func (l *Lifecycle) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stop()
}

func (l *Lifecycle) stop() {
	h := l.h
	if h == nil {
		return
	}

	h.cancel()
	close(h.stop)

	if h.pollDone != nil {
		<-h.pollDone
	}

	if h.eventDone != nil {
		h.exiting.Store(true)
		l.flushUntilDone(h)
	}

	if h.events != nil {
		if err := h.events.Close(); err != nil {
			warn(l.j, "lifecycle", errors.Wrap(err, "failed to close session events"))
		}
	}

	l.h = nil
	l.j.Write(&EventMonitorStopped{RunID: h.monitor.RunID})
}

// flushUntilDone wakes the event loop until it has exited.
func (l *Lifecycle) flushUntilDone(h *monitorHandles) {
	ticker := time.NewTicker(FlushRetryInterval)
	defer ticker.Stop()

	for {
		if err := h.events.Flush(); err != nil {
			warn(l.j, "lifecycle", errors.Wrap(err, "failed to flush session events"))
		}

		select {
		case <-h.eventDone:
			return
		case <-ticker.C:
		}
	}
}
