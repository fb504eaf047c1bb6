package config

import (
	"fmt"
	"time"
)

// Config holds broker configuration values.
type Config struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// TLS material; both empty means plain stream sockets.
	TLSCertFile string `mapstructure:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file" yaml:"tls_key_file"`

	SendAcknowledgements        bool `mapstructure:"send_acknowledgements" yaml:"send_acknowledgements"`
	SendServerJoinNotifications bool `mapstructure:"send_server_join_notifications" yaml:"send_server_join_notifications"`
	SendChannelNotifications    bool `mapstructure:"send_channel_notifications" yaml:"send_channel_notifications"`

	// HeartbeatInterval of 0 disables heartbeats entirely.
	HeartbeatInterval    time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
	MaxHeartbeatFailures int           `mapstructure:"max_heartbeat_failures" yaml:"max_heartbeat_failures"`

	SyncTimeout   time.Duration `mapstructure:"sync_timeout" yaml:"sync_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// DatabasePath points at the credential store; empty runs open-access login.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                        ":9000",
		LogLevel:                    "info",
		SendAcknowledgements:        true,
		SendServerJoinNotifications: true,
		SendChannelNotifications:    true,
		HeartbeatInterval:           5 * time.Second,
		MaxHeartbeatFailures:        5,
		SyncTimeout:                 10 * time.Second,
		SweepInterval:               10 * time.Second,
		ShutdownTimeout:             5 * time.Second,
	}
}

// Validate rejects parameter combinations the broker cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.HeartbeatInterval != 0 && c.HeartbeatInterval < 100*time.Millisecond {
		return fmt.Errorf("heartbeat_interval must be 0 or at least 100ms, got %s", c.HeartbeatInterval)
	}
	if c.MaxHeartbeatFailures <= 0 {
		return fmt.Errorf("max_heartbeat_failures must be positive, got %d", c.MaxHeartbeatFailures)
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("sync_timeout must be positive, got %s", c.SyncTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("tls_cert_file and tls_key_file must be set together")
	}
	return nil
}
