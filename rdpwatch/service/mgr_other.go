//go:build !windows

package service

// SystemManager is a Manager backed by the system service manager. It is only
// implemented on Windows.
type SystemManager struct{}

var _ Manager = (*SystemManager)(nil)

// Connect returns ErrUnsupported.
func Connect() (*SystemManager, error) {
	return nil, ErrUnsupported
}

// Open returns ErrUnsupported.
func (m *SystemManager) Open(name string) (Handle, error) {
	return nil, ErrUnsupported
}

// Close does nothing.
func (m *SystemManager) Close() error { return nil }
