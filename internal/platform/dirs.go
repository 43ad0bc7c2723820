package platform

import (
	"os"
	"path/filepath"
)

// AppName names the per-user directories.
const AppName = "craftlaunch"

// DataDir returns $XDG_DATA_HOME/craftlaunch, falling back to
// ~/.local/share/craftlaunch. Empty when no home directory is known.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", func() (string, error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	})
}

// ConfigDir returns $XDG_CONFIG_HOME/craftlaunch, falling back to the
// OS user config directory. Empty when neither is known.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", os.UserConfigDir)
}

func xdgDir(env string, fallback func() (string, error)) string {
	base := os.Getenv(env)
	if base == "" {
		var err error
		if base, err = fallback(); err != nil || base == "" {
			return ""
		}
	}
	return filepath.Join(base, AppName)
}
