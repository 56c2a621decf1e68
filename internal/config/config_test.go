package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/acolita/slot-clock/internal/ports"
	"github.com/acolita/slot-clock/internal/testing/fakes/fakefs"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server != "es.pool.ntp.org:123" {
		t.Errorf("Server = %q, want %q", cfg.Server, "es.pool.ntp.org:123")
	}
	if cfg.UTCOffsetHours != 2 {
		t.Errorf("UTCOffsetHours = %d, want 2", cfg.UTCOffsetHours)
	}
	if cfg.Resync.Interval != time.Hour {
		t.Errorf("Resync.Interval = %v, want %v", cfg.Resync.Interval, time.Hour)
	}
	if cfg.Resync.Mode != ModeSilent {
		t.Errorf("Resync.Mode = %q, want %q", cfg.Resync.Mode, ModeSilent)
	}
	if !cfg.Resync.AnimateOnStart {
		t.Error("Resync.AnimateOnStart = false, want true")
	}
	if cfg.NTP.Timeout != 5*time.Second {
		t.Errorf("NTP.Timeout = %v, want %v", cfg.NTP.Timeout, 5*time.Second)
	}
	if cfg.Device.Kind != DeviceStdout {
		t.Errorf("Device.Kind = %q, want %q", cfg.Device.Kind, DeviceStdout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	want := filepath.Join("/tmp/xdg", "slot-clock", "config.yaml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Server != DefaultConfig().Server {
		t.Errorf("Server = %q, want default", cfg.Server)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/etc/slot-clock/config.yaml", fakefs.New())
	if err != nil {
		t.Fatalf("Load(missing) error: %v", err)
	}
	if cfg.UTCOffsetHours != 2 {
		t.Errorf("UTCOffsetHours = %d, want default 2", cfg.UTCOffsetHours)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	fsys := fakefs.New()
	fsys.AddFile("/cfg/config.yaml", []byte(":::invalid:::yaml{{{"))

	_, err := Load("/cfg/config.yaml", fsys)
	if err == nil {
		t.Fatal("Load(invalid YAML) expected error, got nil")
	}
}

func TestLoadValidConfig(t *testing.T) {
	doc := `
server: time.example.org:4123
utc_offset_hours: -5
resync:
  interval: 30m
  mode: animated
  animate_on_start: false
ntp:
  timeout: 2s
device:
  kind: tcell
logging:
  level: debug
  file: /var/log/slot-clock.log
`
	fsys := fakefs.New()
	fsys.AddFile("/cfg/config.yaml", []byte(doc))

	cfg, err := Load("/cfg/config.yaml", fsys)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if cfg.Server != "time.example.org:4123" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.UTCOffsetHours != -5 {
		t.Errorf("UTCOffsetHours = %d, want -5", cfg.UTCOffsetHours)
	}
	if cfg.Resync.Interval != 30*time.Minute {
		t.Errorf("Resync.Interval = %v, want 30m", cfg.Resync.Interval)
	}
	if cfg.Resync.Mode != ModeAnimated {
		t.Errorf("Resync.Mode = %q, want %q", cfg.Resync.Mode, ModeAnimated)
	}
	if cfg.Resync.AnimateOnStart {
		t.Error("Resync.AnimateOnStart = true, want false")
	}
	if cfg.NTP.Timeout != 2*time.Second {
		t.Errorf("NTP.Timeout = %v, want 2s", cfg.NTP.Timeout)
	}
	if cfg.Device.Kind != DeviceTcell {
		t.Errorf("Device.Kind = %q, want %q", cfg.Device.Kind, DeviceTcell)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "/var/log/slot-clock.log" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	fsys := fakefs.New()
	fsys.AddFile("/cfg/config.yaml", []byte("utc_offset_hours: 9\n"))

	cfg, err := Load("/cfg/config.yaml", fsys)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.UTCOffsetHours != 9 {
		t.Errorf("UTCOffsetHours = %d, want 9", cfg.UTCOffsetHours)
	}
	// Everything else keeps its default.
	if cfg.Resync.Interval != time.Hour {
		t.Errorf("Resync.Interval = %v, want default 1h", cfg.Resync.Interval)
	}
	if cfg.Server != "es.pool.ntp.org:123" {
		t.Errorf("Server = %q, want default", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"lowest offset", func(c *Config) { c.UTCOffsetHours = -12 }, ""},
		{"highest offset", func(c *Config) { c.UTCOffsetHours = 14 }, ""},
		{"offset too low", func(c *Config) { c.UTCOffsetHours = -13 }, "utc_offset_hours"},
		{"offset too high", func(c *Config) { c.UTCOffsetHours = 15 }, "utc_offset_hours"},
		{"empty server", func(c *Config) { c.Server = "  " }, "server"},
		{"server without host", func(c *Config) { c.Server = ":123" }, "no host"},
		{"zero interval", func(c *Config) { c.Resync.Interval = 0 }, "resync.interval"},
		{"negative interval", func(c *Config) { c.Resync.Interval = -time.Second }, "resync.interval"},
		{"unknown mode", func(c *Config) { c.Resync.Mode = "loud" }, "resync.mode"},
		{"unknown device", func(c *Config) { c.Device.Kind = "lcd" }, "device.kind"},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"level is case insensitive", func(c *Config) { c.Logging.Level = "WARN" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesServer(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pool.ntp.org", "pool.ntp.org:123"},
		{"pool.ntp.org:123", "pool.ntp.org:123"},
		{"pool.ntp.org:", "pool.ntp.org:123"},
		{"10.0.0.1:4123", "10.0.0.1:4123"},
		{"[::1]", "[::1]:123"},
		{"[::1]:124", "[::1]:124"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Server = tt.in
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate(%q) error: %v", tt.in, err)
			continue
		}
		if cfg.Server != tt.want {
			t.Errorf("Validate(%q) server = %q, want %q", tt.in, cfg.Server, tt.want)
		}
	}
}

func TestValidateFixesTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NTP.Timeout = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.NTP.Timeout != 5*time.Second {
		t.Errorf("NTP.Timeout = %v, want 5s", cfg.NTP.Timeout)
	}
}

func TestSaveThenLoad(t *testing.T) {
	fsys := fakefs.New()
	cfg := DefaultConfig()
	cfg.UTCOffsetHours = -3
	cfg.Resync.Interval = 90 * time.Second
	cfg.Resync.Mode = ModeAnimated

	if err := Save(cfg, "/home/u/.config/slot-clock/config.yaml", fsys); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := fsys.ReadFile("/home/u/.config/slot-clock/config.yaml")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "interval: 1m30s") {
		t.Errorf("saved YAML should carry a readable interval, got:\n%s", data)
	}

	got, err := Load("/home/u/.config/slot-clock/config.yaml", fsys)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", *got, *cfg)
	}
}

func TestSaveWriteError(t *testing.T) {
	fsys := fakefs.New()
	fsys.WriteErr = errors.New("disk full")

	err := Save(DefaultConfig(), "/cfg/config.yaml", fsys)
	if err == nil {
		t.Fatal("Save() expected error, got nil")
	}
	if !errors.Is(err, fsys.WriteErr) {
		t.Errorf("Save() error = %v, want it to wrap %v", err, fsys.WriteErr)
	}
}

func TestFormRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	form := cfg.FormData()

	if form.Server != cfg.Server || form.UTCOffsetHours != 2 {
		t.Errorf("FormData() = %+v", form)
	}
	if form.ResyncInterval != "1h0m0s" {
		t.Errorf("FormData().ResyncInterval = %q, want %q", form.ResyncInterval, "1h0m0s")
	}

	form.Server = "time.cloudflare.com"
	form.UTCOffsetHours = 10
	form.ResyncInterval = "15m"
	form.ResyncMode = ModeAnimated
	form.Device = DeviceTcell

	if err := cfg.ApplyForm(form); err != nil {
		t.Fatalf("ApplyForm() error: %v", err)
	}
	if cfg.Server != "time.cloudflare.com:123" {
		t.Errorf("Server = %q, want port added", cfg.Server)
	}
	if cfg.UTCOffsetHours != 10 || cfg.Resync.Interval != 15*time.Minute {
		t.Errorf("ApplyForm() config = %+v", cfg)
	}
	if cfg.Resync.Mode != ModeAnimated || cfg.Device.Kind != DeviceTcell {
		t.Errorf("ApplyForm() config = %+v", cfg)
	}
}

func TestApplyFormRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		form ports.ClockFormData
	}{
		{"bad interval", ports.ClockFormData{Server: "a:123", ResyncInterval: "soon", ResyncMode: ModeSilent, Device: DeviceStdout}},
		{"bad offset", ports.ClockFormData{Server: "a:123", UTCOffsetHours: 20, ResyncInterval: "1h", ResyncMode: ModeSilent, Device: DeviceStdout}},
		{"bad mode", ports.ClockFormData{Server: "a:123", ResyncInterval: "1h", ResyncMode: "x", Device: DeviceStdout}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := DefaultConfig().ApplyForm(tt.form); err == nil {
				t.Error("ApplyForm() expected error, got nil")
			}
		})
	}
}

// --- Watcher tests ---

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewWatcher(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	writeConfigFile(t, path, "utc_offset_hours: 4\n")

	w, err := NewWatcher(path, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if got := w.Config().UTCOffsetHours; got != 4 {
		t.Errorf("Config().UTCOffsetHours = %d, want 4", got)
	}
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher("/nonexistent/slot-clock/config.yaml", nil, nil)
	if err == nil {
		t.Fatal("NewWatcher(missing dir) expected error, got nil")
	}
}

func TestWatcherReportsChange(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	writeConfigFile(t, path, "utc_offset_hours: 2\n")

	var mu sync.Mutex
	var changed *Config

	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		changed = cfg
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	writeConfigFile(t, path, "utc_offset_hours: 7\n")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		c := changed
		mu.Unlock()
		if c != nil && c.UTCOffsetHours == 7 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if got := w.Config().UTCOffsetHours; got != 7 {
		t.Errorf("Config().UTCOffsetHours = %d after change, want 7", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if changed == nil {
		t.Fatal("onChange callback was never called")
	}
	if changed.UTCOffsetHours != 7 {
		t.Errorf("onChange received UTCOffsetHours = %d, want 7", changed.UTCOffsetHours)
	}
}

func TestWatcherIgnoresInvalidChange(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	writeConfigFile(t, path, "utc_offset_hours: 2\n")

	var mu sync.Mutex
	var seen []int

	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		seen = append(seen, cfg.UTCOffsetHours)
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	// Valid YAML, out-of-range offset: rejected by validation.
	writeConfigFile(t, path, "utc_offset_hours: 99\n")
	time.Sleep(500 * time.Millisecond)

	if got := w.Config().UTCOffsetHours; got == 99 {
		t.Errorf("Config().UTCOffsetHours = %d, invalid change should have been rejected", got)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, off := range seen {
		if off == 99 {
			t.Error("onChange received an invalid config")
		}
	}
}

func TestWatcherIgnoresUnparsableChange(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	writeConfigFile(t, path, "utc_offset_hours: 2\n")

	w, err := NewWatcher(path, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	writeConfigFile(t, path, ":::invalid{{{")
	time.Sleep(500 * time.Millisecond)

	if got := w.Config().UTCOffsetHours; got != 2 {
		t.Errorf("Config().UTCOffsetHours = %d, want 2 (preserved after bad edit)", got)
	}
}

func TestWatcherClose(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	writeConfigFile(t, path, "utc_offset_hours: 2\n")

	w, err := NewWatcher(path, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}
