//go:build !windows

package wts

import "git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"

// CurrentSessionID returns ErrUnsupported.
func CurrentSessionID() (rdpwatch.SessionID, error) {
	return 0, ErrUnsupported
}

// ActiveConsoleSessionID returns 0.
func ActiveConsoleSessionID() rdpwatch.SessionID { return 0 }

// StateSource is only implemented on Windows.
type StateSource struct{}

// Query returns ErrUnsupported.
func (StateSource) Query() (rdpwatch.SessionSnapshot, error) {
	return rdpwatch.SessionSnapshot{}, ErrUnsupported
}

// OpenEvents returns ErrUnsupported.
func OpenEvents() (rdpwatch.SessionEventSource, error) {
	return nil, ErrUnsupported
}
