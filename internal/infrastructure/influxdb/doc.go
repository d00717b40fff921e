// Package influxdb provides time-series telemetry for the bridge.
//
// Numeric device points from each poll are written to InfluxDB so that
// temperature curves, humidity trends, and heater duty cycles can be
// graphed over weeks rather than the short window kept in SQLite.
//
// Telemetry is strictly optional: the bridge runs fully without it when
// influxdb.enabled is false, and write failures never affect polling or
// command handling (writes are async and batched; errors surface only
// through the SetOnError callback).
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err // or skip telemetry on influxdb.ErrDisabled
//	}
//	client.WritePointMetric("sauna-01", "Temperature_REAL", 78)
package influxdb
