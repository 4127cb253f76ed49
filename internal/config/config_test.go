package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/musher-dev/mcpterm/internal/mcp"
)

// unsetEnvForTest unsets an environment variable and registers cleanup to
// restore its original state (including distinguishing "unset" from "set to
// empty string").
func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

// isolate points every config search location at empty temp directories.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	unsetEnvForTest(t, "MCPTERM_UI_TICK_INTERVAL")
	unsetEnvForTest(t, "MCPTERM_MCP_CONNECT_TIMEOUT")
	unsetEnvForTest(t, "MCPTERM_MCP_REQUEST_TIMEOUT")
	unsetEnvForTest(t, "MCPTERM_MCP_CLIENT_NAME")
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "file", got: cfg.File(), want: ""},
		{name: "servers", got: len(cfg.Servers()), want: 0},
		{name: "tick interval", got: cfg.TickInterval(), want: DefaultTickInterval},
		{name: "connect timeout", got: cfg.ConnectTimeout(), want: DefaultConnectTimeout},
		{name: "request timeout", got: cfg.RequestTimeout(), want: DefaultRequestTimeout},
		{name: "client name", got: cfg.ClientName(), want: DefaultClientName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_Servers(t *testing.T) {
	isolate(t)

	path := writeConfig(t, t.TempDir(), `{
		"mcp_servers": [
			{"name": "local", "url": "http://127.0.0.1:8000/sse"},
			{"name": "remote", "url": "https://mcp.example.com/sse"}
		],
		"mcp": {"connect_timeout": "2s"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []mcp.ServerDescriptor{
		{Name: "local", URL: "http://127.0.0.1:8000/sse"},
		{Name: "remote", URL: "https://mcp.example.com/sse"},
	}

	got := cfg.Servers()
	if len(got) != len(want) {
		t.Fatalf("Servers() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Servers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if cfg.ConnectTimeout() != 2*time.Second {
		t.Errorf("ConnectTimeout() = %v, want 2s", cfg.ConnectTimeout())
	}

	if srv, ok := cfg.Server("remote"); !ok || srv.URL != want[1].URL {
		t.Errorf("Server(remote) = %v, %v", srv, ok)
	}

	if cfg.File() != path {
		t.Errorf("File() = %q, want %q", cfg.File(), path)
	}
}

func TestLoad_SearchesWorkingDirectoryFirst(t *testing.T) {
	isolate(t)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}

	writeConfig(t, cwd, `{"mcp_servers": [{"name": "here", "url": "http://localhost:1/sse"}]}`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Servers(); len(got) != 1 || got[0].Name != "here" {
		t.Errorf("Servers() = %v, want the working directory config", got)
	}
}

func TestLoad_EmptyServerListIsDegraded(t *testing.T) {
	isolate(t)

	cfg, err := Load(writeConfig(t, t.TempDir(), `{"mcp_servers": []}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Servers()) != 0 {
		t.Errorf("Servers() = %v, want none", cfg.Servers())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "malformed json", content: `{"mcp_servers": [`, wantErr: ErrInvalid},
		{name: "missing name", content: `{"mcp_servers": [{"url": "http://x/sse"}]}`, wantErr: ErrInvalid},
		{name: "bad scheme", content: `{"mcp_servers": [{"name": "a", "url": "ftp://x/sse"}]}`, wantErr: ErrInvalid},
		{name: "no host", content: `{"mcp_servers": [{"name": "a", "url": "http:///sse"}]}`, wantErr: ErrInvalid},
		{
			name:    "duplicate names",
			content: `{"mcp_servers": [{"name": "a", "url": "http://x/sse"}, {"name": "a", "url": "http://y/sse"}]}`,
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want %v", err, ErrNotFound)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		envVal string
		got    func(*Config) any
		want   any
	}{
		{
			name:   "tick interval",
			envVar: "MCPTERM_UI_TICK_INTERVAL",
			envVal: "1s",
			got:    func(c *Config) any { return c.TickInterval() },
			want:   time.Second,
		},
		{
			name:   "request timeout disabled",
			envVar: "MCPTERM_MCP_REQUEST_TIMEOUT",
			envVal: "0s",
			got:    func(c *Config) any { return c.RequestTimeout() },
			want:   time.Duration(0),
		},
		{
			name:   "client name",
			envVar: "MCPTERM_MCP_CLIENT_NAME",
			envVal: "probe",
			got:    func(c *Config) any { return c.ClientName() },
			want:   "probe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.envVar, tt.envVal)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if got := tt.got(cfg); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestConfig_All(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	all := cfg.All()
	for _, key := range []string{"ui", "mcp"} {
		if _, ok := all[key]; !ok {
			t.Errorf("All() missing %q key", key)
		}
	}

	if got := cfg.Get("mcp.client_name"); got != DefaultClientName {
		t.Errorf("Get(mcp.client_name) = %v, want %q", got, DefaultClientName)
	}
}

func TestConfig_Keys(t *testing.T) {
	isolate(t)

	path := writeConfig(t, t.TempDir(), `{"mcp_servers": [{"name": "a", "url": "http://a:1/sse"}]}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"mcp.client_name", "mcp.connect_timeout", "mcp.request_timeout", "mcp_servers", "ui.tick_interval"}

	got := cfg.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
