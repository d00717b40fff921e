package nevoton

import (
	"fmt"
	"time"
)

// MQTT message types for communication between Gray Logic Core and the
// Nevoton bridge. Topics follow the flat bridge scheme:
// graylogic/{category}/nevoton/{device_id}.

// Protocol is the bridge's protocol identifier on the bus.
const Protocol = "nevoton"

// CommandMessage is sent from Core to the bridge to write a parameter.
// Topic: graylogic/command/nevoton/{device_id}
type CommandMessage struct {
	// ID uniquely identifies this command for correlation with acks.
	ID string `json:"id"`

	// Timestamp is when the command was issued (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// DeviceID is the Gray Logic device identifier.
	DeviceID string `json:"device_id"`

	// Point is the device parameter name (e.g., "Heat_switch").
	Point string `json:"point"`

	// Value is the requested value. Fractional values are truncated
	// to integers before transmission.
	Value float64 `json:"value"`

	// Source indicates where the command originated.
	// Values: "api", "automation", "scene"
	Source string `json:"source,omitempty"`
}

// AckStatus represents the acknowledgment status of a command.
type AckStatus string

const (
	// AckApplied indicates the device acknowledged the write.
	AckApplied AckStatus = "applied"

	// AckRejected indicates the command failed validation and was
	// never sent to the device.
	AckRejected AckStatus = "rejected"

	// AckFailed indicates the device refused the write or the
	// exchange failed.
	AckFailed AckStatus = "failed"
)

// Error codes for command failures.
const (
	ErrCodeUnknownPoint      = "UNKNOWN_POINT"
	ErrCodeReadOnlyPoint     = "READ_ONLY_POINT"
	ErrCodeValueOutOfRange   = "VALUE_OUT_OF_RANGE"
	ErrCodeDeviceUnreachable = "DEVICE_UNREACHABLE"
	ErrCodeDeviceRefused     = "DEVICE_REFUSED"
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeProtocolError     = "PROTOCOL_ERROR"
)

// AckMessage is sent from the bridge to Core to acknowledge a command.
// Topic: graylogic/ack/nevoton/{device_id}
type AckMessage struct {
	// CommandID is the ID from the original command.
	CommandID string `json:"command_id"`

	// Timestamp is when the acknowledgment was sent (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// DeviceID is the Gray Logic device identifier.
	DeviceID string `json:"device_id"`

	// Status indicates the acknowledgment status.
	Status AckStatus `json:"status"`

	// Protocol is the protocol identifier ("nevoton").
	Protocol string `json:"protocol"`

	// Point is the device parameter name from the command.
	Point string `json:"point"`

	// Error contains details if status is not "applied".
	Error *AckError `json:"error,omitempty"`
}

// AckError contains error details for failed commands.
type AckError struct {
	// Code is the error code (e.g., "DEVICE_REFUSED").
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// StateMessage is sent from the bridge to Core when the snapshot changes.
// Topic: graylogic/state/nevoton/{device_id}
// QoS: 1, Retained: Yes
type StateMessage struct {
	// DeviceID is the Gray Logic device identifier.
	DeviceID string `json:"device_id"`

	// Timestamp is when the state was observed (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// State is the full point snapshot, published wholesale on each
	// change (no partial merges).
	State map[string]any `json:"state"`

	// Changed lists the points that differ from the previous snapshot.
	Changed []string `json:"changed,omitempty"`

	// Protocol is the protocol identifier ("nevoton").
	Protocol string `json:"protocol"`
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is polling normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates consecutive poll failures or a lost
	// broker connection.
	HealthDegraded HealthStatus = "degraded"

	// HealthAuthFailed indicates the device rejected the credential.
	// Terminal until the password is reconfigured.
	HealthAuthFailed HealthStatus = "auth_failed"

	// HealthOffline indicates the bridge is not connected (from LWT).
	HealthOffline HealthStatus = "offline"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is sent from the bridge to Core to report status.
// Topic: graylogic/health/nevoton
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// Bridge is the bridge identifier (e.g., "nevoton-sauna").
	Bridge string `json:"bridge"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Device describes the controller, when known.
	Device *DeviceStatus `json:"device,omitempty"`

	// Statistics contains request counters.
	Statistics *BridgeStatistics `json:"statistics,omitempty"`

	// Reason explains the status (especially for degraded/auth_failed).
	Reason string `json:"reason,omitempty"`
}

// DeviceStatus describes the polled controller.
type DeviceStatus struct {
	// ID is the controller's own device id.
	ID string `json:"id,omitempty"`

	// MAC is the controller's station MAC address.
	MAC string `json:"mac,omitempty"`

	// Firmware is the controller's firmware version.
	Firmware string `json:"firmware,omitempty"`

	// Model is the controller's module name.
	Model string `json:"model,omitempty"`

	// LastSeen is the time of the last successful exchange.
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// BridgeStatistics contains operational metrics.
type BridgeStatistics struct {
	// RequestsTotal is the total number of device exchanges attempted.
	RequestsTotal uint64 `json:"requests_total"`

	// ErrorsTotal is the total number of failed exchanges.
	ErrorsTotal uint64 `json:"errors_total"`

	// ConsecutiveFailures is the current run of failed polls.
	ConsecutiveFailures int `json:"consecutive_failures"`
}

// NewAckMessage creates an acknowledgment for an applied command.
func NewAckMessage(cmd CommandMessage, status AckStatus) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		DeviceID:  cmd.DeviceID,
		Status:    status,
		Protocol:  Protocol,
		Point:     cmd.Point,
	}
}

// NewAckError creates an acknowledgment with error details.
func NewAckError(cmd CommandMessage, status AckStatus, code, message string) AckMessage {
	ack := NewAckMessage(cmd, status)
	ack.Error = &AckError{
		Code:    code,
		Message: message,
	}
	return ack
}

// NewStateMessage creates a state message for a device.
func NewStateMessage(deviceID string, state map[string]any, changed []string) StateMessage {
	return StateMessage{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC(),
		State:     state,
		Changed:   changed,
		Protocol:  Protocol,
	}
}

// NewLWTMessage creates a Last Will and Testament message for MQTT.
// Published by the broker if the bridge disconnects unexpectedly.
func NewLWTMessage(bridgeID string) HealthMessage {
	return HealthMessage{
		Bridge:    bridgeID,
		Timestamp: time.Now().UTC(),
		Status:    HealthOffline,
		Reason:    "unexpected_disconnect",
	}
}

// Topic helpers

// topicPrefix is the base topic for all Gray Logic messages.
const topicPrefix = "graylogic"

// StateTopic returns the MQTT topic for state updates.
// Example: graylogic/state/nevoton/sauna-01
func StateTopic(deviceID string) string {
	return fmt.Sprintf("%s/state/%s/%s", topicPrefix, Protocol, deviceID)
}

// CommandTopic returns the MQTT topic for commands to a device.
// Example: graylogic/command/nevoton/sauna-01
func CommandTopic(deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", topicPrefix, Protocol, deviceID)
}

// AckTopic returns the MQTT topic for command acknowledgments.
// Example: graylogic/ack/nevoton/sauna-01
func AckTopic(deviceID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", topicPrefix, Protocol, deviceID)
}

// HealthTopic returns the MQTT topic for health status.
// Example: graylogic/health/nevoton
func HealthTopic() string {
	return fmt.Sprintf("%s/health/%s", topicPrefix, Protocol)
}

// CommandSubscribeTopic returns the subscription pattern for all commands.
// Example: graylogic/command/nevoton/#
func CommandSubscribeTopic() string {
	return fmt.Sprintf("%s/command/%s/#", topicPrefix, Protocol)
}
