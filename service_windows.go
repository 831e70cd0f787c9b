package main

import (
	"context"
	"log"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
)

const serviceName = "rdpwatch"

// runService runs rdpwatch as the service host if it was started by the
// service control manager. It returns false otherwise.
func runService() (bool, error) {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false, errors.Wrap(err, "failed to check for service")
	}
	if !isService {
		return false, nil
	}

	return true, svc.Run(serviceName, &watchdogService{})
}

type watchdogService struct{}

// Execute is called by Windows to run the service.
func (s *watchdogService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx, runOptions{role: rdpwatch.RolePrivilegedServiceHost.String()})
	}()

	changes <- svc.Status{State: svc.Running, Accepts: svc.AcceptStop | svc.AcceptShutdown}

	for {
		select {
		case err := <-errCh:
			changes <- svc.Status{State: svc.StopPending}
			if err != nil {
				log.Println("watchdog stopped:", err)
				return false, uint32(windows.ERROR_SERVICE_SPECIFIC_ERROR)
			}
			return false, windows.NO_ERROR

		case c := <-r:
			switch c.Cmd {
			case svc.Stop, svc.Shutdown:
				cancel()
			case svc.Interrogate:
				changes <- c.CurrentStatus
			}
		}
	}
}
