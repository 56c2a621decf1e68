// Package config handles configuration parsing for slot-clock.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/acolita/slot-clock/internal/ports"
)

// DefaultNTPPort is appended to servers given without a port.
const DefaultNTPPort = "123"

// Resync modes.
const (
	ModeSilent   = "silent"
	ModeAnimated = "animated"
)

// Device kinds.
const (
	DeviceStdout = "stdout"
	DeviceTcell  = "tcell"
)

// DefaultConfigPath returns the default config file path:
// $XDG_CONFIG_HOME/slot-clock/config.yaml or ~/.config/slot-clock/config.yaml
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "slot-clock", "config.yaml")
}

// Config represents the top-level configuration. It is read once at
// startup; edits take effect on restart.
type Config struct {
	Server         string        `yaml:"server"`           // host:port of the NTP server
	UTCOffsetHours int           `yaml:"utc_offset_hours"` // fixed display offset
	Resync         ResyncConfig  `yaml:"resync"`
	NTP            NTPConfig     `yaml:"ntp"`
	Device         DeviceConfig  `yaml:"device"`
	Logging        LoggingConfig `yaml:"logging"`
}

// ResyncConfig defines when and how the clock is resynchronized.
type ResyncConfig struct {
	Interval       time.Duration `yaml:"interval"`
	Mode           string        `yaml:"mode"`             // "silent" or "animated"
	AnimateOnStart bool          `yaml:"animate_on_start"` // play the reveal once at startup
}

// NTPConfig defines time server query settings.
type NTPConfig struct {
	Timeout time.Duration `yaml:"timeout"` // per query
}

// DeviceConfig selects the display.
type DeviceConfig struct {
	Kind string `yaml:"kind"` // "stdout" or "tcell"
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
	File  string `yaml:"file"`  // empty logs to stderr
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:         "es.pool.ntp.org:123",
		UTCOffsetHours: 2,
		Resync: ResyncConfig{
			Interval:       time.Hour,
			Mode:           ModeSilent,
			AnimateOnStart: true,
		},
		NTP: NTPConfig{
			Timeout: 5 * time.Second,
		},
		Device: DeviceConfig{
			Kind: DeviceStdout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
// An optional FileSystem can be passed for testing; if omitted, the real OS is used.
func Load(path string, fsys ...ports.FileSystem) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	var data []byte
	var err error
	if len(fsys) > 0 && fsys[0] != nil {
		data, err = fsys[0].ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration and normalizes the server address.
func (c *Config) Validate() error {
	server, err := normalizeServer(c.Server)
	if err != nil {
		return err
	}
	c.Server = server

	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return fmt.Errorf("utc_offset_hours %d out of range [-12, 14]", c.UTCOffsetHours)
	}
	if c.Resync.Interval <= 0 {
		return fmt.Errorf("resync.interval must be positive, got %s", c.Resync.Interval)
	}
	switch c.Resync.Mode {
	case ModeSilent, ModeAnimated:
	default:
		return fmt.Errorf("resync.mode %q: want %q or %q", c.Resync.Mode, ModeSilent, ModeAnimated)
	}
	if c.NTP.Timeout <= 0 {
		c.NTP.Timeout = 5 * time.Second
	}
	switch c.Device.Kind {
	case DeviceStdout, DeviceTcell:
	default:
		return fmt.Errorf("device.kind %q: want %q or %q", c.Device.Kind, DeviceStdout, DeviceTcell)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: want debug, info, warn or error", c.Logging.Level)
	}

	return nil
}

func normalizeServer(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("server is required")
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// No port given: use the standard NTP port.
		return net.JoinHostPort(strings.Trim(s, "[]"), DefaultNTPPort), nil
	}
	if host == "" {
		return "", fmt.Errorf("server %q has no host", s)
	}
	if port == "" {
		port = DefaultNTPPort
	}
	return net.JoinHostPort(host, port), nil
}

// FormData returns the configuration as prefill for the setup form.
func (c *Config) FormData() ports.ClockFormData {
	return ports.ClockFormData{
		Server:         c.Server,
		UTCOffsetHours: c.UTCOffsetHours,
		ResyncInterval: c.Resync.Interval.String(),
		ResyncMode:     c.Resync.Mode,
		Device:         c.Device.Kind,
	}
}

// ApplyForm copies the setup form's answers into the configuration.
func (c *Config) ApplyForm(data ports.ClockFormData) error {
	interval, err := time.ParseDuration(data.ResyncInterval)
	if err != nil {
		return fmt.Errorf("resync interval: %w", err)
	}
	c.Server = data.Server
	c.UTCOffsetHours = data.UTCOffsetHours
	c.Resync.Interval = interval
	c.Resync.Mode = data.ResyncMode
	c.Device.Kind = data.Device
	return c.Validate()
}

// Save writes the configuration to a YAML file.
// An optional FileSystem can be passed for testing; if omitted, the real OS is used.
func Save(cfg *Config, path string, fsys ...ports.FileSystem) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if len(fsys) > 0 && fsys[0] != nil {
		err = fsys[0].MkdirAll(dir, 0755)
	} else {
		err = os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if len(fsys) > 0 && fsys[0] != nil {
		err = fsys[0].WriteFile(path, data, 0644)
	} else {
		err = os.WriteFile(path, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
