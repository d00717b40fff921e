// Package sauna holds the domain model for the Nevoton Komfort sauna
// controller: the registry of named device points, write validation
// against each point's limits, and SQLite-backed snapshot history.
//
// The device exposes its state as a flat set of named "specific" points
// (switches, sensors, timers, a light dimmer). The registry in points.go
// is the single source of truth for which points exist, which are
// writable, and what ranges the device accepts.
package sauna
