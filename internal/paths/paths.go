package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName = "mcpterm"

	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "config.json"
)

func configRoot() (string, error) {
	return rootWithFallback("XDG_CONFIG_HOME", os.UserConfigDir, ".config")
}

func stateRoot() (string, error) {
	noOSDefault := func() (string, error) {
		return "", fmt.Errorf("no OS state directory function")
	}

	return rootWithFallback("XDG_STATE_HOME", noOSDefault, filepath.Join(".local", "state"))
}

func rootWithFallback(xdgEnv string, osFn func() (string, error), fallbackDir string) (string, error) {
	// Priority 1: Explicit XDG env var (cross-platform).
	if xdg := os.Getenv(xdgEnv); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	// Priority 2: OS-specific default (macOS ~/Library/..., Windows %AppData%, Linux ~/.config).
	root, err := osFn()
	if err == nil && root != "" {
		return filepath.Join(root, appName), nil
	}

	// Priority 3: Home-dir fallback.
	home, homeErr := os.UserHomeDir()
	if homeErr == nil && home != "" {
		return filepath.Join(home, fallbackDir, appName), nil
	}

	if err != nil {
		return "", err
	}

	return "", fmt.Errorf("resolve user home directory")
}

// ConfigRoot returns the user config root directory for mcpterm.
func ConfigRoot() (string, error) {
	return configRoot()
}

// StateRoot returns the user state root directory for mcpterm.
func StateRoot() (string, error) {
	return stateRoot()
}

// ConfigFile returns the per-user configuration file path.
func ConfigFile() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, ConfigFileName), nil
}

// ConfigSearchPaths lists the configuration files tried, in order, when no
// file is named explicitly: the working directory first, then the user
// config root.
func ConfigSearchPaths() []string {
	candidates := []string{ConfigFileName}

	if file, err := ConfigFile(); err == nil {
		candidates = append(candidates, file)
	}

	return candidates
}

// LogsDir returns the default log directory for mcpterm.
func LogsDir() (string, error) {
	root, err := stateRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, "logs"), nil
}

// DefaultLogFile returns the default log file path for mcpterm.
func DefaultLogFile() (string, error) {
	logsDir, err := LogsDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(logsDir, appName+".log"), nil
}
