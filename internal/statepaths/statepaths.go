// Package statepaths resolves on-disk state directories from configuration.
package statepaths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultStateDirName = ".paperpilot"

func StateDir() string {
	return resolveStateDir(viper.GetString("state_dir"))
}

func PreferencesDir() string {
	return filepath.Join(StateDir(), "preferences")
}

func NotificationsDir() string {
	return filepath.Join(StateDir(), "notifications")
}

func DocumentCacheDir() string {
	return filepath.Join(StateDir(), "documents")
}

func resolveStateDir(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		return expandHomePath(configured)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultStateDirName
	}
	return filepath.Join(home, defaultStateDirName)
}

func expandHomePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil && home != "" {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}
