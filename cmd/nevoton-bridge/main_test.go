package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("NEVOTON_CONFIG")
	defer os.Setenv("NEVOTON_CONFIG", originalEnv)

	os.Setenv("NEVOTON_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDeviceConfig verifies run fails when the device section
// is incomplete. The sauna controller's host and password have no sane
// defaults, so validation must reject this config.
func TestRun_MissingDeviceConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
bridge:
  id: test-sauna

device:
  host: ""
  password: ""
  scan_interval: 10
  timeout: 10

database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 60

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("NEVOTON_CONFIG")
	defer os.Setenv("NEVOTON_CONFIG", originalEnv)
	os.Setenv("NEVOTON_CONFIG", configPath)

	// Env overrides would paper over the empty device section.
	for _, key := range []string{"NEVOTON_DEVICE_HOST", "NEVOTON_DEVICE_PASSWORD"} {
		if v := os.Getenv(key); v != "" {
			defer os.Setenv(key, v)
			os.Unsetenv(key)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty device host and password")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("NEVOTON_CONFIG")
	defer os.Setenv("NEVOTON_CONFIG", originalEnv)

	os.Unsetenv("NEVOTON_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("NEVOTON_CONFIG")
	defer os.Setenv("NEVOTON_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("NEVOTON_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
