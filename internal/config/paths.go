package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	envConfigDir = "RESTPAD_CONFIG_DIR"
	appDirName   = "restpad"
)

// Dir is the directory holding settings and the default state store.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(envConfigDir)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, appDirName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appDirName)
	}
	return "." + appDirName
}

// LogPath is where the interactive UI writes its log.
func LogPath() string {
	return filepath.Join(Dir(), "restpad.log")
}
