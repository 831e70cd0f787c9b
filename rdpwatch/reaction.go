package rdpwatch

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ProcessRole is the role of the process hosting the watchdog. It is decided
// once on startup and decides how the watchdog reacts to a disconnect.
type ProcessRole uint8

const (
	// RolePrivilegedServiceHost restarts the dependent service pair.
	RolePrivilegedServiceHost ProcessRole = iota
	// RoleClipboardRelay exits the process. It is always monitored.
	RoleClipboardRelay
	// RoleRemoteClient exits the process. It is only monitored if enabled in
	// the settings.
	RoleRemoteClient
)

var roleNames = [...]string{
	RolePrivilegedServiceHost: "service-host",
	RoleClipboardRelay:        "clipboard-relay",
	RoleRemoteClient:          "remote-client",
}

func (r ProcessRole) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// ParseRole parses the output of ProcessRole.String.
func ParseRole(s string) (ProcessRole, error) {
	for i, name := range roleNames {
		if strings.EqualFold(s, name) {
			return ProcessRole(i), nil
		}
	}
	return 0, errors.Errorf("unknown role %q", s)
}

// AlwaysMonitored returns true if the role is monitored regardless of the
// settings.
func (r ProcessRole) AlwaysMonitored() bool {
	return r != RoleRemoteClient
}

// Reaction is run by the observer that detected a disconnect. It runs on that
// observer's goroutine, which resumes only once React returns.
type Reaction interface {
	React(ctx context.Context)
}

// ReactionFunc is a function that implements Reaction.
type ReactionFunc func(ctx context.Context)

// React calls f.
func (f ReactionFunc) React(ctx context.Context) { f(ctx) }

// Terminator terminates a process. Terminating the current process does not
// return.
type Terminator interface {
	Terminate() error
}

// exitProcess is replaced in tests.
var exitProcess = os.Exit

// ExitTerminator terminates the current process with status 0. The system
// relaunches the process when it is needed again.
type ExitTerminator struct{}

// Terminate exits the current process.
func (ExitTerminator) Terminate() error {
	exitProcess(0)
	return nil
}

// ServicePair is a dependent service and the base service it depends on.
type ServicePair struct {
	Dependent string
	Base      string
}

// ServiceRestarter restarts a ServicePair.
type ServiceRestarter interface {
	// RestartDependentPair returns false if the pair could not be restarted.
	RestartDependentPair(ctx context.Context, pair ServicePair) bool
}

// ReactionPolicy picks the reaction for a ProcessRole.
type ReactionPolicy struct {
	Role       ProcessRole
	Terminator Terminator
	Restarter  ServiceRestarter

	j Journaler

	mu       sync.Mutex
	services ServicePair
}

var _ Reaction = (*ReactionPolicy)(nil)

// NewReactionPolicy creates a new reaction policy.
func NewReactionPolicy(
	role ProcessRole, t Terminator, r ServiceRestarter, pair ServicePair, j Journaler) *ReactionPolicy {

	return &ReactionPolicy{
		Role:       role,
		Terminator: t,
		Restarter:  r,
		j:          j,
		services:   pair,
	}
}

// SetServices changes the service pair restarted by future reactions.
func (p *ReactionPolicy) SetServices(pair ServicePair) {
	p.mu.Lock()
	p.services = pair
	p.mu.Unlock()
}

// Services returns the service pair restarted by reactions.
func (p *ReactionPolicy) Services() ServicePair {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.services
}

// React runs the reaction for the policy's role.
func (p *ReactionPolicy) React(ctx context.Context) {
	switch p.Role {
	case RolePrivilegedServiceHost:
		p.Restarter.RestartDependentPair(ctx, p.Services())

	case RoleClipboardRelay, RoleRemoteClient:
		pid := os.Getpid()
		if t, ok := p.Terminator.(interface{ PID() int }); ok {
			pid = t.PID()
		}

		p.j.Write(&EventProcessTerminating{
			Role: p.Role.String(),
			PID:  pid,
		})

		if err := p.Terminator.Terminate(); err != nil {
			warn(p.j, "reaction", errors.Wrap(err, "failed to terminate process"))
		}

	default:
		warnf(p.j, "reaction", "no reaction for role %d", p.Role)
	}
}
