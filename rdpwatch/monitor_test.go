package rdpwatch

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorReactsOncePerActivation(t *testing.T) {
	const cycles = 500
	const observers = 2

	var reactions reactionCounter
	m := NewConnectionMonitor(testSession, "run", newFakeState(activeRemote), &reactions, NopJournaler)

	ctx := context.Background()

	for i := 0; i < cycles; i++ {
		m.handle(ctx, observerPolling, observation{active: true})
		require.True(t, m.HasBeenActive())

		var wg sync.WaitGroup
		start := make(chan struct{})

		for o := 0; o < observers; o++ {
			wg.Add(1)
			go func(spin int) {
				defer wg.Done()
				<-start
				// Shuffle who gets to the latch first.
				for j := 0; j < spin; j++ {
					_ = j * j
				}
				m.handle(ctx, observerEvent, observation{disconnected: true})
			}(rand.Intn(1000))
		}

		close(start)
		wg.Wait()

		require.Equal(t, i+1, reactions.Count(), "cycle %d", i)
		require.False(t, m.HasBeenActive())
	}
}

func TestMonitorRearmRace(t *testing.T) {
	// Arming while another observer consumes the latch may cost or add one
	// reaction, but it must never crash, deadlock or react twice for one
	// consumption.
	var reactions reactionCounter
	m := NewConnectionMonitor(testSession, "run", newFakeState(activeRemote), &reactions, NopJournaler)

	ctx := context.Background()
	var reacted [2]int

	var wg sync.WaitGroup
	for o := 0; o < 2; o++ {
		wg.Add(1)
		go func(o int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				m.handle(ctx, observerPolling, observation{active: true})
				if m.handle(ctx, observerEvent, observation{disconnected: true}) {
					reacted[o]++
				}
			}
		}(o)
	}
	wg.Wait()

	assert.Equal(t, reacted[0]+reacted[1], reactions.Count())
	assert.LessOrEqual(t, reactions.Count(), 2000)
}

func TestMonitorDisconnectWithoutActivation(t *testing.T) {
	var reactions reactionCounter
	j := mockJournal{}

	m := NewConnectionMonitor(testSession, "run", newFakeState(disconnected), &reactions, &j)

	assert.False(t, m.handle(context.Background(), observerPolling, m.query(observerPolling)))
	assert.Equal(t, 0, reactions.Count())
	assert.Equal(t, 0, j.Count(&EventDisconnectDetected{}))
}

func TestMonitorConsoleExclusion(t *testing.T) {
	var reactions reactionCounter
	j := mockJournal{}

	state := newFakeState(activeConsole)
	m := NewConnectionMonitor(testSession, "run", state, &reactions, &j)
	ctx := context.Background()

	m.handle(ctx, observerPolling, m.query(observerPolling))
	assert.False(t, m.HasBeenActive(), "console session must not arm the latch")

	state.Set(disconnected, nil)
	m.handle(ctx, observerPolling, m.query(observerPolling))
	assert.Equal(t, 0, reactions.Count())

	state.Set(activeRemote, nil)
	m.handle(ctx, observerPolling, m.query(observerPolling))
	assert.True(t, m.HasBeenActive())

	state.Set(disconnected, nil)
	m.handle(ctx, observerPolling, m.query(observerPolling))
	assert.Equal(t, 1, reactions.Count())

	j.Verify(t, true, []Event{
		&EventSessionState{Observer: observerPolling, State: "active", ConsoleSessionID: testSession},
		&EventSessionState{Observer: observerPolling, State: "disconnected", ConsoleSessionID: testConsole},
		&EventSessionState{Observer: observerPolling, State: "active", ConsoleSessionID: testConsole},
		&EventSessionActivated{RunID: "run", Observer: observerPolling},
		&EventSessionState{Observer: observerPolling, State: "disconnected", ConsoleSessionID: testConsole},
		&EventDisconnectDetected{RunID: "run", Observer: observerPolling},
	})
}

func TestMonitorQueryFailure(t *testing.T) {
	var reactions reactionCounter
	j := mockJournal{}

	state := newFakeState(activeRemote)
	state.Set(activeRemote, errors.New("access denied"))

	m := NewConnectionMonitor(testSession, "run", state, &reactions, &j)

	o := m.query(observerPolling)
	assert.Equal(t, observation{}, o)
	assert.False(t, m.handle(context.Background(), observerPolling, o))
	assert.False(t, m.HasBeenActive())

	j.Verify(t, true, []Event{
		&EventWarning{
			Component: "monitor",
			Error:     "polling observer: session query failed: access denied",
		},
	})
}

func TestSessionSnapshot(t *testing.T) {
	assert.True(t, activeRemote.IsActiveRemote(testSession))
	assert.False(t, activeConsole.IsActiveRemote(testSession))
	assert.False(t, connected.IsActiveRemote(testSession))
	assert.False(t, disconnected.IsActiveRemote(testSession))

	assert.Equal(t, "connect query", StateConnectQuery.String())
	assert.Equal(t, "ConnectState(42)", ConnectState(42).String())
}
