// Package service stops and starts system services by name, polling their
// status until they reach the requested state or stall.
package service

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// State is the state of a service, as reported by the service manager.
type State uint32

const (
	Stopped State = iota + 1
	StartPending
	StopPending
	Running
	ContinuePending
	PausePending
	Paused
)

var stateNames = map[State]string{
	Stopped:         "stopped",
	StartPending:    "start pending",
	StopPending:     "stop pending",
	Running:         "running",
	ContinuePending: "continue pending",
	PausePending:    "pause pending",
	Paused:          "paused",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

// Status is a snapshot of a service's status. CheckPoint and WaitHint are the
// service's own progress report while it is in a pending state: CheckPoint
// increases as it makes progress, and WaitHint is how long it expects to take
// until the next increase.
type Status struct {
	State      State
	CheckPoint uint32
	WaitHint   time.Duration
}

// Handle is an opened service.
type Handle interface {
	Query() (Status, error)
	// Stop sends the stop control to the service.
	Stop() (Status, error)
	// Start asks the service manager to start the service.
	Start() error
	Close() error
}

// Manager opens services by name.
type Manager interface {
	Open(name string) (Handle, error)
}

var (
	// ErrTimeout is returned if a service did not reach the requested state in
	// time.
	ErrTimeout = errors.New("timed out waiting for service")
	// ErrAlreadyRunning is returned by Start if the service is already running.
	ErrAlreadyRunning = errors.New("service is already running")
	// ErrUnsupported is returned by Connect on systems without a service
	// manager.
	ErrUnsupported = errors.New("service manager not supported on this platform")
)

// StateError is returned if a service ended up in an unexpected state.
type StateError struct {
	Service string
	Want    State
	Got     State
}

func (err *StateError) Error() string {
	return fmt.Sprintf("service %s is %s, expected %s", err.Service, err.Got, err.Want)
}
