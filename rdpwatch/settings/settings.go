// Package settings loads the watchdog's settings file.
package settings

import (
	"os"
	"path/filepath"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Settings is the content of the settings file.
type Settings struct {
	// ExitRemoteClients also monitors remote desktop client processes (mstsc
	// and related) and terminates them on disconnect.
	ExitRemoteClients bool `toml:"exit_remote_clients"`

	Services Services `toml:"services"`
}

// Services names the dependent service pair restarted by the service host.
type Services struct {
	Dependent string `toml:"dependent"`
	Base      string `toml:"base"`
}

// Default returns the settings used when there is no settings file.
func Default() Settings {
	return Settings{
		ExitRemoteClients: false,
		Services: Services{
			Dependent: "UmRdpService",
			Base:      "TermService",
		},
	}
}

// Pair returns the service pair.
func (s Settings) Pair() rdpwatch.ServicePair {
	return rdpwatch.ServicePair{
		Dependent: s.Services.Dependent,
		Base:      s.Services.Base,
	}
}

// DefaultPath returns the default settings file path, or an empty string if
// there is no user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rdpwatch", "settings.toml")
}

// Load loads the settings file at path. Missing keys keep their defaults, and
// a missing file yields Default.
func Load(path string) (Settings, error) {
	s := Default()

	if path == "" {
		return s, nil
	}

	_, err := toml.DecodeFile(path, &s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), errors.Wrap(err, "failed to decode settings")
	}

	if s.Services.Base == "" {
		return Default(), errors.New("services.base must not be empty")
	}

	return s, nil
}
