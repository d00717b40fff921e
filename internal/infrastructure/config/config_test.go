package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
bridge:
  id: "nevoton-test"
device:
  host: "192.168.1.50"
  password: "sauna-secret"
  scan_interval: 10
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ID != "nevoton-test" {
		t.Errorf("Bridge.ID = %q, want %q", cfg.Bridge.ID, "nevoton-test")
	}

	if cfg.Device.Host != "192.168.1.50" {
		t.Errorf("Device.Host = %q, want %q", cfg.Device.Host, "192.168.1.50")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if cfg.GetScanInterval() != 10*time.Second {
		t.Errorf("GetScanInterval() = %v, want 10s", cfg.GetScanInterval())
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
device:
  host: "10.0.0.5"
  password: "secret"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ScanInterval != 10 {
		t.Errorf("Device.ScanInterval = %d, want default 10", cfg.Device.ScanInterval)
	}
	if cfg.Device.Timeout != 10 {
		t.Errorf("Device.Timeout = %d, want default 10", cfg.Device.Timeout)
	}
	if cfg.MQTT.Broker.ClientID != "nevoton-bridge" {
		t.Errorf("MQTT.Broker.ClientID = %q, want default nevoton-bridge", cfg.MQTT.Broker.ClientID)
	}
	if cfg.Bridge.HealthInterval != 30 {
		t.Errorf("Bridge.HealthInterval = %d, want default 30", cfg.Bridge.HealthInterval)
	}
	if cfg.Database.RetentionDays != 30 {
		t.Errorf("Database.RetentionDays = %d, want default 30", cfg.Database.RetentionDays)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
device:
  host: "192.168.1.50"
  password: "from-file"
`
	t.Setenv("NEVOTON_DEVICE_HOST", "10.1.1.1")
	t.Setenv("NEVOTON_DEVICE_PASSWORD", "from-env")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Host != "10.1.1.1" {
		t.Errorf("Device.Host = %q, want env override %q", cfg.Device.Host, "10.1.1.1")
	}
	if cfg.Device.Password != "from-env" {
		t.Errorf("Device.Password = %q, want env override %q", cfg.Device.Password, "from-env")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Device.Host = "192.168.1.50"
		cfg.Device.Password = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name:    "missing device host",
			modify:  func(c *Config) { c.Device.Host = "" },
			wantErr: true,
		},
		{
			name:    "missing device password",
			modify:  func(c *Config) { c.Device.Password = "" },
			wantErr: true,
		},
		{
			name:    "zero scan interval",
			modify:  func(c *Config) { c.Device.ScanInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			modify:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "api port ignored when disabled",
			modify:  func(c *Config) { c.API.Enabled = false; c.API.Port = 0 },
			wantErr: false,
		},
		{
			name:    "missing bridge id",
			modify:  func(c *Config) { c.Bridge.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing database path",
			modify:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "negative retention",
			modify:  func(c *Config) { c.Database.RetentionDays = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
