package rdpwatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

const (
	testSession SessionID = 2
	testConsole SessionID = 1
)

var (
	activeRemote  = SessionSnapshot{State: StateActive, ConsoleSessionID: testConsole}
	activeConsole = SessionSnapshot{State: StateActive, ConsoleSessionID: testSession}
	connected     = SessionSnapshot{State: StateConnected, ConsoleSessionID: testConsole}
	disconnected  = SessionSnapshot{State: StateDisconnected, ConsoleSessionID: testConsole}
)

// fakeState is a SessionStateSource that returns whatever it was last set to.
type fakeState struct {
	mu      sync.Mutex
	snap    SessionSnapshot
	err     error
	queries int
}

func newFakeState(snap SessionSnapshot) *fakeState {
	return &fakeState{snap: snap}
}

func (f *fakeState) Set(snap SessionSnapshot, err error) {
	f.mu.Lock()
	f.snap = snap
	f.err = err
	f.mu.Unlock()
}

func (f *fakeState) Query() (SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries++
	return f.snap, f.err
}

func (f *fakeState) Queries() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queries
}

// fakeEvents is a SessionEventSource. Like the real one, a Flush only wakes
// the waiters that are already waiting.
type fakeEvents struct {
	notify chan NotifyMask

	mu     sync.Mutex
	flushC chan struct{}

	waiting atomic.Int32
	flushes atomic.Int32
	closes  atomic.Int32
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		notify: make(chan NotifyMask),
		flushC: make(chan struct{}),
	}
}

func (f *fakeEvents) Wait(mask NotifyMask) (NotifyMask, error) {
	f.mu.Lock()
	flushC := f.flushC
	f.mu.Unlock()

	f.waiting.Add(1)
	defer f.waiting.Add(-1)

	for {
		select {
		case m := <-f.notify:
			if m != NotifyNone && !m.Has(mask) {
				continue
			}
			return m & mask, nil
		case <-flushC:
			return NotifyNone, nil
		}
	}
}

func (f *fakeEvents) Flush() error {
	f.mu.Lock()
	close(f.flushC)
	f.flushC = make(chan struct{})
	f.mu.Unlock()

	f.flushes.Add(1)
	return nil
}

func (f *fakeEvents) Close() error {
	f.closes.Add(1)
	return nil
}

// Send delivers a notification to a waiter, failing the test if nobody takes
// it in time.
func (f *fakeEvents) Send(t *testing.T, m NotifyMask) {
	t.Helper()

	select {
	case f.notify <- m:
	case <-time.After(time.Second):
		t.Fatal("timed out sending notification", m)
	}
}

// opener returns a SessionEventOpener that hands out f and counts calls.
func (f *fakeEvents) opener(opens *atomic.Int32) SessionEventOpener {
	return func() (SessionEventSource, error) {
		opens.Add(1)
		return f, nil
	}
}

// failingEvents is a SessionEventSource whose Wait always fails.
type failingEvents struct {
	waits atomic.Int32
}

func (f *failingEvents) Wait(NotifyMask) (NotifyMask, error) {
	f.waits.Add(1)
	return NotifyNone, errors.New("wait failed")
}

func (f *failingEvents) Flush() error { return nil }
func (f *failingEvents) Close() error { return nil }

// reactionCounter counts reactions.
type reactionCounter struct {
	n atomic.Int32
}

func (c *reactionCounter) React(ctx context.Context) { c.n.Add(1) }
func (c *reactionCounter) Count() int                { return int(c.n.Load()) }

// eventually polls cond until it returns true or a second has passed.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for", what)
		}
		time.Sleep(time.Millisecond)
	}
}
