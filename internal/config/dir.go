package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// appDirName is the directory under the user's config and data
	// directories where ts-automation files are stored
	appDirName string = "ts-automation"
)

func MustConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		panic(fmt.Errorf("cannot obtain user config dir: %w", err))
	}

	return filepath.Join(configDir, appDirName)
}

// DataDir returns the directory for persisted automation state. It
// honors XDG_DATA_HOME and falls back to ~/.local/share.
func DataDir() (string, error) {
	var dataDir string

	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		dataDir = xdgDataHome
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot obtain user home dir: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, appDirName), nil
}
