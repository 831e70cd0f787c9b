package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// DefaultStopTimeout is the longest Stop waits for a service to stop.
	DefaultStopTimeout = 3 * time.Minute
	// DefaultPollInterval is the interval between status queries while waiting
	// for a service to stop.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultMinWait and DefaultMaxWait bound the interval between status
	// queries while waiting on a service's checkpoints. The interval is a tenth
	// of the service's wait hint.
	DefaultMinWait = time.Second
	DefaultMaxWait = 10 * time.Second
)

// Controller stops and starts services. It is not safe for concurrent use on
// the same service.
type Controller struct {
	StopTimeout  time.Duration
	PollInterval time.Duration
	MinWait      time.Duration
	MaxWait      time.Duration

	m Manager
}

// NewController creates a new controller with the default timings.
func NewController(m Manager) *Controller {
	return &Controller{
		StopTimeout:  DefaultStopTimeout,
		PollInterval: DefaultPollInterval,
		MinWait:      DefaultMinWait,
		MaxWait:      DefaultMaxWait,
		m:            m,
	}
}

// Stop stops the service with the given name and waits until it has stopped.
// Stopping a service that is already stopped succeeds immediately. ErrTimeout
// is returned if the service is still not stopped after StopTimeout.
func (c *Controller) Stop(ctx context.Context, name string) error {
	h, err := c.m.Open(name)
	if err != nil {
		return errors.Wrapf(err, "failed to open service %s", name)
	}
	defer h.Close()

	st, err := h.Query()
	if err != nil {
		return errors.Wrapf(err, "failed to query service %s", name)
	}

	switch st.State {
	case Stopped:
		return nil
	case StopPending:
		// Someone else is already stopping it.
	default:
		st, err = h.Stop()
		if err != nil {
			return errors.Wrapf(err, "failed to stop service %s", name)
		}
	}

	return c.waitStopped(ctx, h, name, st)
}

func (c *Controller) waitStopped(ctx context.Context, h Handle, name string, st Status) error {
	deadline := time.Now().Add(c.StopTimeout)

	for st.State != Stopped {
		left := time.Until(deadline)
		if left <= 0 {
			return errors.Wrapf(ErrTimeout, "service %s is still %s after %v", name, st.State, c.StopTimeout)
		}

		wait := c.PollInterval
		if wait > left {
			wait = left
		}

		if err := sleep(ctx, wait); err != nil {
			return err
		}

		var err error
		st, err = h.Query()
		if err != nil {
			return errors.Wrapf(err, "failed to query service %s", name)
		}
	}

	return nil
}

// Start starts the service with the given name and waits until it is running.
// ErrAlreadyRunning is returned if it is already running. If the service is
// still stopping, Start waits for that first.
//
// While the service is pending, Start keeps waiting as long as the service
// reports progress through its checkpoint. ErrTimeout is returned once the
// checkpoint has not moved for longer than the service's wait hint.
func (c *Controller) Start(ctx context.Context, name string) error {
	h, err := c.m.Open(name)
	if err != nil {
		return errors.Wrapf(err, "failed to open service %s", name)
	}
	defer h.Close()

	st, err := h.Query()
	if err != nil {
		return errors.Wrapf(err, "failed to query service %s", name)
	}

	if st.State == Running {
		return errors.Wrapf(ErrAlreadyRunning, "service %s", name)
	}

	if st.State == StopPending {
		st, err = c.waitPending(ctx, h, name, st)
		if err != nil {
			return err
		}
		if st.State != Stopped {
			return &StateError{Service: name, Want: Stopped, Got: st.State}
		}
	}

	if err := h.Start(); err != nil {
		return errors.Wrapf(err, "failed to start service %s", name)
	}

	st, err = h.Query()
	if err != nil {
		return errors.Wrapf(err, "failed to query service %s", name)
	}

	st, err = c.waitPending(ctx, h, name, st)
	if err != nil {
		return err
	}

	if st.State != Running {
		return &StateError{Service: name, Want: Running, Got: st.State}
	}

	return nil
}

// waitPending waits for as long as the service stays in the pending state it
// is in now, and returns the first status that is not that state.
func (c *Controller) waitPending(ctx context.Context, h Handle, name string, st Status) (Status, error) {
	pending := st.State
	switch pending {
	case StartPending, StopPending, ContinuePending, PausePending:
	default:
		return st, nil
	}

	since := time.Now()
	checkpoint := st.CheckPoint

	for {
		if err := sleep(ctx, c.checkpointWait(st.WaitHint)); err != nil {
			return st, err
		}

		var err error
		st, err = h.Query()
		if err != nil {
			return st, errors.Wrapf(err, "failed to query service %s", name)
		}

		if st.State != pending {
			return st, nil
		}

		if st.CheckPoint > checkpoint {
			since = time.Now()
			checkpoint = st.CheckPoint
			continue
		}

		if time.Since(since) > st.WaitHint {
			return st, errors.Wrapf(ErrTimeout,
				"service %s stuck %s at checkpoint %d", name, pending, checkpoint)
		}
	}
}

func (c *Controller) checkpointWait(hint time.Duration) time.Duration {
	wait := hint / 10
	if wait < c.MinWait {
		wait = c.MinWait
	}
	if wait > c.MaxWait {
		wait = c.MaxWait
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
