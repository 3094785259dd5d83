package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvConfigPath  = "NBRSNAP_CONFIG"
	ConfigFileName = "nbrsnap.yaml"
	ConfigDirName  = "nbrsnap"
)

// SearchPaths lists config file candidates, highest priority first:
// $NBRSNAP_CONFIG, ./nbrsnap.yaml, the user config dir, then /etc/nbrsnap.
func SearchPaths() []string {
	var paths []string
	if env := os.Getenv(EnvConfigPath); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, ConfigFileName)
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing SearchPaths entry, or "" when
// nbrsnap should run on defaults
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

// DefaultConfigPath is where a new config file is written
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultProfilesPath is the eAPI profile file used when the config names none
func DefaultProfilesPath() string {
	return filepath.Join(configDir(), "eapi.yaml")
}

func configDir() string {
	if dir := userConfigDir(); dir != "" {
		return dir
	}
	return "."
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigDirName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName)
	}
	return ""
}

// ExpandHome resolves a leading ~ against the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
