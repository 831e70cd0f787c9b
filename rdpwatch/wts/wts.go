// Package wts implements the session sources of package rdpwatch on top of
// the Windows Terminal Services API.
package wts

import (
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned on systems without Terminal Services.
var ErrUnsupported = errors.New("terminal services not supported on this platform")

var (
	_ rdpwatch.SessionStateSource = StateSource{}
	_ rdpwatch.SessionEventOpener = OpenEvents
)
