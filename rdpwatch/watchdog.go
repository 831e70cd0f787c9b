package rdpwatch

import (
	"sync"
	"time"
)

// Options are the user settings consumed by a Watchdog.
type Options struct {
	// ExitRemoteClients enables monitoring in RoleRemoteClient processes.
	ExitRemoteClients bool
	// Services is the pair restarted by RolePrivilegedServiceHost.
	Services ServicePair
}

// WatchdogConfig is everything a Watchdog needs besides its role and options.
type WatchdogConfig struct {
	SessionID  SessionID
	State      SessionStateSource
	OpenEvents SessionEventOpener
	Terminator Terminator
	Restarter  ServiceRestarter

	PollInterval    time.Duration
	EventRetryDelay time.Duration
}

// Watchdog ties a ProcessRole, the user options and a monitor Lifecycle
// together. Processes in RoleClipboardRelay and RolePrivilegedServiceHost are
// monitored for as long as the watchdog is open; RoleRemoteClient processes
// only while ExitRemoteClients is set.
type Watchdog struct {
	Role ProcessRole

	lifecycle *Lifecycle
	policy    *ReactionPolicy
	j         Journaler

	mu   sync.Mutex
	opts Options
}

// NewWatchdog creates a new Watchdog. Nothing is started until Init.
func NewWatchdog(role ProcessRole, cfg WatchdogConfig, j Journaler) *Watchdog {
	policy := NewReactionPolicy(role, cfg.Terminator, cfg.Restarter, ServicePair{}, j)

	lifecycle := NewLifecycle(MonitorConfig{
		SessionID:       cfg.SessionID,
		State:           cfg.State,
		OpenEvents:      cfg.OpenEvents,
		Reaction:        policy,
		PollInterval:    cfg.PollInterval,
		EventRetryDelay: cfg.EventRetryDelay,
	}, j)

	return &Watchdog{
		Role:      role,
		lifecycle: lifecycle,
		policy:    policy,
		j:         j,
	}
}

// Lifecycle returns the watchdog's monitor lifecycle.
func (w *Watchdog) Lifecycle() *Lifecycle { return w.lifecycle }

// Options returns the options currently in effect.
func (w *Watchdog) Options() Options {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.opts
}

// Init applies the initial options and starts monitoring if the role calls for
// it.
func (w *Watchdog) Init(opts Options) error {
	w.apply(opts)

	if w.Role.AlwaysMonitored() || opts.ExitRemoteClients {
		return w.lifecycle.Start()
	}

	return nil
}

// SettingsChanged applies new options. In RoleRemoteClient processes, this
// starts or stops monitoring according to ExitRemoteClients. Other roles are
// always monitored and are not affected.
func (w *Watchdog) SettingsChanged(opts Options) error {
	w.apply(opts)

	if w.Role.AlwaysMonitored() {
		return nil
	}

	if opts.ExitRemoteClients {
		return w.lifecycle.Start()
	}

	w.lifecycle.Stop()
	return nil
}

// Close stops monitoring. It blocks until both observers have exited.
func (w *Watchdog) Close() {
	w.lifecycle.Stop()
}

func (w *Watchdog) apply(opts Options) {
	w.mu.Lock()
	w.opts = opts
	w.mu.Unlock()

	w.policy.SetServices(opts.Services)

	w.j.Write(&EventSettingsChanged{
		ExitRemoteClients: opts.ExitRemoteClients,
		DependentService:  opts.Services.Dependent,
		BaseService:       opts.Services.Base,
	})
}
