package logging

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// AppLogDir returns the platform log directory for an app identifier:
//
//	linux:   $XDG_DATA_HOME/<id>/logs, falling back to ~/.local/share
//	darwin:  ~/Library/Logs/<id>
//	windows: %LOCALAPPDATA%/<id>/logs
func AppLogDir(identifier string) (string, error) {
	if identifier == "" {
		return "", errors.New("empty app identifier")
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Logs", identifier), nil
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			var err error
			if base, err = os.UserCacheDir(); err != nil {
				return "", err
			}
		}
		return filepath.Join(base, identifier, "logs"), nil
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, identifier, "logs"), nil
	}
}
