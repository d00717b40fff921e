package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePointMetric records a single numeric device point reading.
//
// This is the primary method for sauna telemetry: each numeric point in a
// snapshot (temperature, humidity, dimmer level) becomes one measurement
// row tagged with the device and point name. The write is non-blocking;
// data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Bridge-assigned device identifier (e.g., "sauna-01")
//   - point: The device point name (e.g., "temp_air", "hum_air")
//   - value: The numeric value to record
//
// Example:
//
//	client.WritePointMetric("sauna-01", "temp_air", 78)
//	client.WritePointMetric("sauna-01", "hum_air", 42)
func (c *Client) WritePointMetric(deviceID string, point string, value float64) {
	if !c.IsConnected() {
		return
	}

	p := write.NewPoint(
		"sauna_points",
		map[string]string{
			"device_id": deviceID,
			"point":     point,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(p)
}

// WriteSnapshotMetrics records every numeric point of a snapshot in one call.
//
// Boolean-style points (switches reported as 0/1) are recorded as numbers
// so heating duty cycle can be derived in queries.
func (c *Client) WriteSnapshotMetrics(deviceID string, points map[string]float64) {
	if !c.IsConnected() {
		return
	}

	now := time.Now()
	for name, value := range points {
		p := write.NewPoint(
			"sauna_points",
			map[string]string{
				"device_id": deviceID,
				"point":     name,
			},
			map[string]interface{}{
				"value": value,
			},
			now,
		)
		c.writeAPI.WritePoint(p)
	}
}

// WritePollMetric records the outcome of a device poll.
//
// Used for tracking device reachability and poll latency over time.
//
// Parameters:
//   - deviceID: Bridge-assigned device identifier
//   - durationMs: Poll round-trip time in milliseconds
//   - success: Whether the poll completed without error
func (c *Client) WritePollMetric(deviceID string, durationMs float64, success bool) {
	if !c.IsConnected() {
		return
	}

	successVal := 0
	if success {
		successVal = 1
	}

	p := write.NewPoint(
		"sauna_polls",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"duration_ms": durationMs,
			"success":     successVal,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(p)
}
