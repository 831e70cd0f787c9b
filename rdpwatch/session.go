package rdpwatch

import "fmt"

// SessionID identifies a logon session. It is resolved once when the process
// starts and never changes afterwards.
type SessionID uint32

// ConnectState mirrors the connectivity states reported by the session
// subsystem. Only StateActive and StateDisconnected are acted upon.
type ConnectState uint32

const (
	StateActive ConnectState = iota
	StateConnected
	StateConnectQuery
	StateShadow
	StateDisconnected
	StateIdle
	StateListen
	StateReset
	StateDown
	StateInit
)

var connectStateNames = [...]string{
	StateActive:       "active",
	StateConnected:    "connected",
	StateConnectQuery: "connect query",
	StateShadow:       "shadow",
	StateDisconnected: "disconnected",
	StateIdle:         "idle",
	StateListen:       "listen",
	StateReset:        "reset",
	StateDown:         "down",
	StateInit:         "init",
}

func (s ConnectState) String() string {
	if int(s) < len(connectStateNames) {
		return connectStateNames[s]
	}
	return fmt.Sprintf("ConnectState(%d)", uint32(s))
}

// SessionSnapshot is the result of a single session query.
type SessionSnapshot struct {
	State ConnectState
	// ConsoleSessionID is the session currently attached to the physical
	// console.
	ConsoleSessionID SessionID
}

// IsActiveRemote returns true if the snapshot shows the given session as
// active, and that session is not the one attached to the console.
func (s SessionSnapshot) IsActiveRemote(id SessionID) bool {
	return s.State == StateActive && s.ConsoleSessionID != id
}

// NotifyMask is a set of session notifications, as reported by
// SessionEventSource.
type NotifyMask uint32

const (
	NotifyNone        NotifyMask = 0
	NotifyCreate      NotifyMask = 0x1
	NotifyDelete      NotifyMask = 0x2
	NotifyRename      NotifyMask = 0x4
	NotifyConnect     NotifyMask = 0x8
	NotifyDisconnect  NotifyMask = 0x10
	NotifyLogon       NotifyMask = 0x20
	NotifyLogoff      NotifyMask = 0x40
	NotifyStateChange NotifyMask = 0x80
)

// Has returns true if any of the bits in o are set in m.
func (m NotifyMask) Has(o NotifyMask) bool { return m&o != 0 }

// SessionStateSource queries the current session's connectivity.
type SessionStateSource interface {
	// Query returns the current state of the session this process belongs to.
	Query() (SessionSnapshot, error)
}

// SessionEventSource blocks on session notifications.
type SessionEventSource interface {
	// Wait blocks until one of the events in mask occurs, or until Flush is
	// called, in which case NotifyNone is returned. There is no timeout.
	Wait(mask NotifyMask) (NotifyMask, error)
	// Flush wakes up every pending Wait call.
	Flush() error
	// Close releases the source. Wait must not be pending.
	Close() error
}

// SessionEventOpener opens a new SessionEventSource. It is called every time
// the monitor is started.
type SessionEventOpener func() (SessionEventSource, error)
