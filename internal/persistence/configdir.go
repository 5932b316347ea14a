// Package persistence resolves the on-disk config directory and
// commits profile and roster JSON atomically.
package persistence

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "classroomctl"

// ConfigDir resolves the root directory profiles and rosters are stored
// under: REPOBEE_CONFIG_DIR env var first, then the OS project-config
// convention, then a hand-assembled per-OS fallback.
func ConfigDir() (string, error) {
	if dir := os.Getenv("REPOBEE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	}
	return filepath.Join(home, ".config", appName), nil
}
