package identity

import (
	"os"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// exitProcess is replaced in tests.
var exitProcess = os.Exit

// HostTerminator terminates a host process that the watchdog runs alongside,
// then exits the watchdog itself with status 0 so that whatever relaunches the
// host can relaunch the watchdog too.
type HostTerminator struct {
	HostPID int
}

var _ rdpwatch.Terminator = HostTerminator{}

// PID returns the host's PID.
func (t HostTerminator) PID() int { return t.HostPID }

// Terminate kills the host process and exits. If the host cannot be killed,
// the error is returned and the watchdog keeps running.
func (t HostTerminator) Terminate() error {
	p, err := process.NewProcess(int32(t.HostPID))
	if err != nil {
		return errors.Wrapf(err, "failed to find host process %d", t.HostPID)
	}

	if err := p.Kill(); err != nil {
		return errors.Wrapf(err, "failed to kill host process %d", t.HostPID)
	}

	exitProcess(0)
	return nil
}
