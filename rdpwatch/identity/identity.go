// Package identity decides the role of the process hosting the watchdog from
// that process's executable name.
package identity

import (
	"os"
	"strings"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultRole is assumed when the executable of the host cannot be found.
const DefaultRole = rdpwatch.RoleRemoteClient

// ClipboardRelayNames are the executables classified as RoleClipboardRelay.
var ClipboardRelayNames = []string{"rdpclip.exe"}

// ServiceHostNames are the executables classified as
// RolePrivilegedServiceHost.
var ServiceHostNames = []string{"svchost.exe"}

// RemoteClientNames are the remote desktop client executables. They and any
// other unknown executable are classified as RoleRemoteClient.
var RemoteClientNames = []string{"mstsc.exe", "vmconnect.exe", "msrdc.exe", "msrdcw.exe"}

// Classify classifies an executable path. Matching is on the base name only
// and is case-insensitive.
func Classify(exe string) rdpwatch.ProcessRole {
	name := baseName(exe)

	switch {
	case matchAny(name, ClipboardRelayNames):
		return rdpwatch.RoleClipboardRelay
	case matchAny(name, ServiceHostNames):
		return rdpwatch.RolePrivilegedServiceHost
	default:
		return rdpwatch.RoleRemoteClient
	}
}

// IsRemoteClient returns true if exe is one of RemoteClientNames.
func IsRemoteClient(exe string) bool {
	return matchAny(baseName(exe), RemoteClientNames)
}

// Detect looks up the executable of the process with the given PID and
// classifies it. If the lookup fails, DefaultRole is returned along with the
// error.
func Detect(pid int) (rdpwatch.ProcessRole, string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return DefaultRole, "", errors.Wrapf(err, "failed to find process %d", pid)
	}

	exe, err := p.Exe()
	if err != nil {
		return DefaultRole, "", errors.Wrapf(err, "failed to get executable of process %d", pid)
	}

	return Classify(exe), exe, nil
}

// DetectSelf is Detect for the current process.
func DetectSelf() (rdpwatch.ProcessRole, string, error) {
	return Detect(os.Getpid())
}

// baseName returns the lowercase file name of a path using either slash.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return strings.ToLower(path)
}

func matchAny(name string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}
