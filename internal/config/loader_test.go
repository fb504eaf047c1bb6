package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Addr != Default().Addr {
		t.Fatalf("unexpected default addr %q", cfg.Addr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \"127.0.0.1:4222\"\nheartbeat_interval: 250ms\nsend_acknowledgements: false\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:4222" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.HeartbeatInterval != 250*time.Millisecond {
		t.Fatalf("heartbeat_interval = %s", cfg.HeartbeatInterval)
	}
	if cfg.SendAcknowledgements {
		t.Fatal("send_acknowledgements should be false")
	}
	// Untouched keys keep their defaults.
	if cfg.MaxHeartbeatFailures != Default().MaxHeartbeatFailures {
		t.Fatalf("max_heartbeat_failures = %d", cfg.MaxHeartbeatFailures)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \"127.0.0.1:4222\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WIREHUB_ADDR", "127.0.0.1:5333")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:5333" {
		t.Fatalf("env override lost, addr = %q", cfg.Addr)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("heartbeat_interval: 50ms\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(nil, path); err == nil {
		t.Fatal("sub-100ms heartbeat interval accepted")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"heartbeat disabled", func(c *Config) { c.HeartbeatInterval = 0 }, true},
		{"heartbeat too fast", func(c *Config) { c.HeartbeatInterval = 99 * time.Millisecond }, false},
		{"no failures allowed", func(c *Config) { c.MaxHeartbeatFailures = 0 }, false},
		{"no sync timeout", func(c *Config) { c.SyncTimeout = 0 }, false},
		{"empty addr", func(c *Config) { c.Addr = "" }, false},
		{"cert without key", func(c *Config) { c.TLSCertFile = "cert.pem" }, false},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}
