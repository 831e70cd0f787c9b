//go:build windows

package wts

import (
	"os"
	"unsafe"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	wtsapi32 = windows.NewLazySystemDLL("wtsapi32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procWTSQuerySessionInformationW  = wtsapi32.NewProc("WTSQuerySessionInformationW")
	procWTSWaitSystemEvent           = wtsapi32.NewProc("WTSWaitSystemEvent")
	procWTSGetActiveConsoleSessionId = kernel32.NewProc("WTSGetActiveConsoleSessionId")
)

const (
	currentServerHandle = 0          // WTS_CURRENT_SERVER_HANDLE
	currentSession      = 0xFFFFFFFF // WTS_CURRENT_SESSION
	infoConnectState    = 8          // WTSConnectState
	eventFlush          = 0x80000000 // WTS_EVENT_FLUSH
)

// CurrentSessionID returns the session the current process runs in.
func CurrentSessionID() (rdpwatch.SessionID, error) {
	var id uint32
	if err := windows.ProcessIdToSessionId(windows.GetCurrentProcessId(), &id); err != nil {
		return 0, errors.Wrap(err, "ProcessIdToSessionId")
	}
	return rdpwatch.SessionID(id), nil
}

// ActiveConsoleSessionID returns the session attached to the physical
// console.
func ActiveConsoleSessionID() rdpwatch.SessionID {
	r1, _, _ := procWTSGetActiveConsoleSessionId.Call()
	return rdpwatch.SessionID(uint32(r1))
}

// StateSource queries the connect state of the current session. A query costs
// in the order of a million CPU cycles, so it should not be called often.
type StateSource struct{}

// Query queries the current session's connect state and the active console
// session.
func (StateSource) Query() (rdpwatch.SessionSnapshot, error) {
	state, err := queryConnectState()
	if err != nil {
		return rdpwatch.SessionSnapshot{}, err
	}

	return rdpwatch.SessionSnapshot{
		State:            state,
		ConsoleSessionID: ActiveConsoleSessionID(),
	}, nil
}

func queryConnectState() (rdpwatch.ConnectState, error) {
	var buf *uint32
	var n uint32

	r1, _, err := procWTSQuerySessionInformationW.Call(
		currentServerHandle,
		currentSession,
		infoConnectState,
		uintptr(unsafe.Pointer(&buf)),
		uintptr(unsafe.Pointer(&n)),
	)
	if r1 == 0 {
		return 0, os.NewSyscallError("WTSQuerySessionInformationW", err)
	}

	if buf == nil {
		return 0, errors.New("WTSQuerySessionInformationW returned no data")
	}
	defer windows.WTSFreeMemory(uintptr(unsafe.Pointer(buf)))

	if n != uint32(unsafe.Sizeof(*buf)) {
		return 0, errors.Errorf("WTSQuerySessionInformationW returned %d bytes", n)
	}

	return rdpwatch.ConnectState(*buf), nil
}

// EventSource waits on session events of the local server.
//
// Flushing wakes every waiter on the local server handle in this process, not
// only the ones of this source.
type EventSource struct{}

// OpenEvents opens a new EventSource.
func OpenEvents() (rdpwatch.SessionEventSource, error) {
	if err := procWTSWaitSystemEvent.Find(); err != nil {
		return nil, errors.Wrap(err, "WTSWaitSystemEvent unavailable")
	}
	return EventSource{}, nil
}

// Wait blocks until one of the events in mask occurs, or until Flush is
// called. A disconnect that happened before Wait was called is not reported.
func (EventSource) Wait(mask rdpwatch.NotifyMask) (rdpwatch.NotifyMask, error) {
	return waitSystemEvent(uint32(mask))
}

// Flush makes every pending Wait return NotifyNone.
func (EventSource) Flush() error {
	_, err := waitSystemEvent(eventFlush)
	return err
}

// Close does nothing; the local server handle is never closed.
func (EventSource) Close() error { return nil }

func waitSystemEvent(mask uint32) (rdpwatch.NotifyMask, error) {
	var flags uint32

	r1, _, err := procWTSWaitSystemEvent.Call(
		currentServerHandle,
		uintptr(mask),
		uintptr(unsafe.Pointer(&flags)),
	)
	if r1 == 0 {
		return rdpwatch.NotifyNone, os.NewSyscallError("WTSWaitSystemEvent", err)
	}

	return rdpwatch.NotifyMask(flags), nil
}
