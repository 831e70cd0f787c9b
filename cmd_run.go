package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/identity"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/journal"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/service"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/settings"
	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/wts"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type runOptions struct {
	role    string
	hostPID int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the current session until interrupted",
	Long: `Watch the current session until interrupted.

The role is detected from the executable of --host-pid, or of rdpwatch itself
if no host is given. A role given with --role skips the detection. With
--host-pid, terminating means killing the host before rdpwatch exits.

Only one rdpwatch may use a journal file at a time. If another one already
holds it, run exits successfully.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return start(ctx, runOpts)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.role, "role", "",
		"process role (service-host, clipboard-relay or remote-client)")
	runCmd.Flags().IntVar(&runOpts.hostPID, "host-pid", 0, "PID of the process to watch over")
	rootCmd.AddCommand(runCmd)
}

func start(ctx context.Context, opts runOptions) error {
	if journalFile == "" {
		return errors.New("missing --journal path to journal file")
	}

	j, err := journal.NewFileLockJournaler(journalFile)
	if err != nil {
		if errors.Is(err, journal.ErrLockedElsewhere) {
			// Non-fatal error.
			log.Println("rdpwatch is already running")
			return nil
		}

		return errors.Wrap(err, "failed to acquire journal lock")
	}
	defer j.Close()

	journaler := journal.MultiWriter(j, journal.NewHumanWriter("stderr", os.Stderr))
	journaler.Write(&rdpwatch.EventAcquired{PID: os.Getpid()})

	role, err := resolveRole(opts, journaler)
	if err != nil {
		return err
	}

	sessionID, err := wts.CurrentSessionID()
	if err != nil {
		return errors.Wrap(err, "failed to get session")
	}

	s, err := settings.Load(settingsFile)
	if err != nil {
		warn(journaler, "settings", err)
	}

	cfg := rdpwatch.WatchdogConfig{
		SessionID:  sessionID,
		State:      wts.StateSource{},
		OpenEvents: wts.OpenEvents,
		Terminator: rdpwatch.ExitTerminator{},
	}

	if opts.hostPID != 0 {
		cfg.Terminator = identity.HostTerminator{HostPID: opts.hostPID}
	}

	if role == rdpwatch.RolePrivilegedServiceHost {
		m, err := service.Connect()
		if err != nil {
			return errors.Wrap(err, "failed to connect to service manager")
		}
		defer m.Close()

		cfg.Restarter = rdpwatch.NewPairRestarter(service.NewController(m), journaler)
	}

	w := rdpwatch.NewWatchdog(role, cfg, journaler)
	if err := w.Init(watchdogOptions(s)); err != nil {
		return errors.Wrap(err, "failed to start watchdog")
	}
	defer w.Close()

	var changes <-chan rdpwatch.SettingsChange
	if settingsFile != "" {
		changes = rdpwatch.TryWatchSettings(ctx, settingsFile, journaler).Changes
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case change := <-changes:
			next, err := reloadSettings(change)
			if err != nil {
				warn(journaler, "settings", err)
				continue
			}

			if err := w.SettingsChanged(watchdogOptions(next)); err != nil {
				warn(journaler, "watchdog", err)
			}
		}
	}
}

// resolveRole picks the role from the flags, or detects it from the host's
// executable. Detection failures fall back to identity.DefaultRole.
func resolveRole(opts runOptions, j rdpwatch.Journaler) (rdpwatch.ProcessRole, error) {
	if opts.role != "" {
		role, err := rdpwatch.ParseRole(opts.role)
		if err != nil {
			return 0, err
		}

		j.Write(&rdpwatch.EventRoleDetected{Role: role.String()})
		return role, nil
	}

	var role rdpwatch.ProcessRole
	var exe string
	var err error

	if opts.hostPID != 0 {
		role, exe, err = identity.Detect(opts.hostPID)
	} else {
		role, exe, err = identity.DetectSelf()
	}

	ev := &rdpwatch.EventRoleDetected{Role: role.String(), Exe: exe}
	if err != nil {
		ev.Error = err.Error()
	}
	j.Write(ev)

	return role, nil
}

func reloadSettings(change rdpwatch.SettingsChange) (settings.Settings, error) {
	if change.Op == rdpwatch.SettingsRemoved {
		return settings.Default(), nil
	}
	return settings.Load(change.File)
}

func watchdogOptions(s settings.Settings) rdpwatch.Options {
	return rdpwatch.Options{
		ExitRemoteClients: s.ExitRemoteClients,
		Services:          s.Pair(),
	}
}

func warn(j rdpwatch.Journaler, component string, err error) {
	j.Write(&rdpwatch.EventWarning{
		Component: component,
		Error:     err.Error(),
	})
}
