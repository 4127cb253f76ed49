// Package config loads mcpterm configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (MCPTERM_*)
//  2. Config file (--config, ./config.json, or ~/.config/mcpterm/config.json)
//  3. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/paths"
)

const (
	// DefaultTickInterval is the default UI tick interval.
	DefaultTickInterval = 250 * time.Millisecond
	// DefaultConnectTimeout bounds endpoint discovery and the initialize handshake.
	DefaultConnectTimeout = mcp.DefaultConnectTimeout
	// DefaultRequestTimeout bounds each JSON-RPC request.
	DefaultRequestTimeout = mcp.DefaultRequestTimeout
	// DefaultClientName is the client name sent in initialize.
	DefaultClientName = "mcpterm"
)

var (
	// ErrNotFound means an explicitly named config file does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrInvalid means the config file could not be parsed or failed validation.
	ErrInvalid = errors.New("invalid config")
)

// Config holds the mcpterm configuration.
type Config struct {
	v       *viper.Viper
	file    string
	servers []mcp.ServerDescriptor
}

type serverEntry struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Load reads configuration from all sources. An empty path searches the
// default locations; finding none yields defaults and no servers.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("ui.tick_interval", DefaultTickInterval)
	v.SetDefault("mcp.connect_timeout", DefaultConnectTimeout)
	v.SetDefault("mcp.request_timeout", DefaultRequestTimeout)
	v.SetDefault("mcp.client_name", DefaultClientName)

	// Environment variables
	v.SetEnvPrefix("MCPTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, err := resolveFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{v: v, file: file}

	if file == "" {
		return cfg, nil
	}

	v.SetConfigFile(file)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, file, err)
	}

	servers, err := decodeServers(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, file, err)
	}

	cfg.servers = servers

	return cfg, nil
}

func resolveFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrNotFound, path)
			}

			return "", fmt.Errorf("stat config file %s: %w", path, err)
		}

		return path, nil
	}

	for _, candidate := range paths.ConfigSearchPaths() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}

func decodeServers(v *viper.Viper) ([]mcp.ServerDescriptor, error) {
	var entries []serverEntry
	if err := v.UnmarshalKey("mcp_servers", &entries); err != nil {
		return nil, fmt.Errorf("decode mcp_servers: %w", err)
	}

	servers := make([]mcp.ServerDescriptor, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("mcp_servers[%d]: name is required", i)
		}

		if seen[name] {
			return nil, fmt.Errorf("mcp_servers[%d]: duplicate server name %q", i, name)
		}

		seen[name] = true

		if err := validateURL(e.URL); err != nil {
			return nil, fmt.Errorf("mcp_servers[%d] (%s): %w", i, name, err)
		}

		servers = append(servers, mcp.ServerDescriptor{Name: name, URL: strings.TrimSpace(e.URL)})
	}

	return servers, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}

	return nil
}

// File returns the config file that was read, or "" when none was found.
func (c *Config) File() string {
	return c.file
}

// Servers returns the configured servers in file order.
func (c *Config) Servers() []mcp.ServerDescriptor {
	return slices.Clone(c.servers)
}

// Server returns the configured server with the given name.
func (c *Config) Server(name string) (mcp.ServerDescriptor, bool) {
	for _, s := range c.servers {
		if s.Name == name {
			return s, true
		}
	}

	return mcp.ServerDescriptor{}, false
}

// Get returns a configuration value.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// Keys returns every known configuration key in sorted order.
func (c *Config) Keys() []string {
	keys := c.v.AllKeys()
	slices.Sort(keys)

	return keys
}

// All returns all configuration as a map.
func (c *Config) All() map[string]any {
	return c.v.AllSettings()
}

// TickInterval returns the UI tick interval.
func (c *Config) TickInterval() time.Duration {
	return c.v.GetDuration("ui.tick_interval")
}

// ConnectTimeout returns the connect watchdog duration; zero disables it.
func (c *Config) ConnectTimeout() time.Duration {
	return c.v.GetDuration("mcp.connect_timeout")
}

// RequestTimeout returns the per-request watchdog duration; zero disables it.
func (c *Config) RequestTimeout() time.Duration {
	return c.v.GetDuration("mcp.request_timeout")
}

// ClientName returns the client name sent during initialize.
func (c *Config) ClientName() string {
	return c.v.GetString("mcp.client_name")
}
