//go:build windows

package service

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// SystemManager is a Manager backed by the Windows service control manager.
type SystemManager struct {
	m *mgr.Mgr
}

var _ Manager = (*SystemManager)(nil)

// Connect connects to the local service control manager. The caller must have
// the rights to stop and start the services it opens.
func Connect() (*SystemManager, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to service manager")
	}

	return &SystemManager{m}, nil
}

// Open opens the service with the given name.
func (m *SystemManager) Open(name string) (Handle, error) {
	s, err := m.m.OpenService(name)
	if err != nil {
		return nil, err
	}

	return systemService{s}, nil
}

// Close disconnects from the service control manager.
func (m *SystemManager) Close() error {
	return m.m.Disconnect()
}

type systemService struct {
	s *mgr.Service
}

func (s systemService) Query() (Status, error) {
	st, err := s.s.Query()
	if err != nil {
		return Status{}, err
	}

	return convertStatus(st), nil
}

func (s systemService) Stop() (Status, error) {
	st, err := s.s.Control(svc.Stop)
	if err != nil {
		return Status{}, err
	}

	return convertStatus(st), nil
}

func (s systemService) Start() error {
	return s.s.Start()
}

func (s systemService) Close() error {
	return s.s.Close()
}

func convertStatus(st svc.Status) Status {
	return Status{
		State:      State(st.State),
		CheckPoint: st.CheckPoint,
		WaitHint:   time.Duration(st.WaitHint) * time.Millisecond,
	}
}
