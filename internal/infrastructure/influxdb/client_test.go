package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-nevoton/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestCloseNeverConnected(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestFlushDisconnected(t *testing.T) {
	// Must not panic with no write API or connection.
	c := &Client{}
	c.Flush()
}

func TestWritesDisconnectedAreNoOps(t *testing.T) {
	// A disconnected client silently drops writes rather than panicking,
	// so telemetry failures can never take down the poll loop.
	c := &Client{}
	c.WritePointMetric("sauna-01", "temp_air", 78)
	c.WriteSnapshotMetrics("sauna-01", map[string]float64{"temp_air": 78, "hum_air": 40})
	c.WritePollMetric("sauna-01", 125.0, true)
}
