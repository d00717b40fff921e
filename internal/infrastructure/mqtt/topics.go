package mqtt

import "fmt"

// Topic prefix for all Gray Logic bus traffic.
//
// Bridge topics use the flat scheme: graylogic/{category}/{protocol}/{address}
const TopicPrefix = "graylogic"

// Topics provides builders for the Gray Logic MQTT topics this bridge
// publishes and subscribes to. Using these helpers keeps topic naming
// consistent with the Core side of the bus.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.BridgeState("nevoton", "sauna-01")
//	// Returns: "graylogic/state/nevoton/sauna-01"
type Topics struct{}

// BridgeState returns the topic for device state updates from a bridge.
//
// Example: graylogic/state/nevoton/sauna-01
func (Topics) BridgeState(protocol, deviceID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, protocol, deviceID)
}

// BridgeCommand returns the topic for commands to a bridge.
//
// Example: graylogic/command/nevoton/sauna-01
func (Topics) BridgeCommand(protocol, deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, protocol, deviceID)
}

// BridgeCommandWildcard returns the subscription pattern matching commands
// for every device handled by a protocol.
//
// Example: graylogic/command/nevoton/+
func (Topics) BridgeCommandWildcard(protocol string) string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, protocol)
}

// BridgeAck returns the topic for command acknowledgements from a bridge.
//
// Example: graylogic/ack/nevoton/sauna-01
func (Topics) BridgeAck(protocol, deviceID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, protocol, deviceID)
}

// BridgeHealth returns the topic for bridge health status.
//
// Example: graylogic/health/nevoton
func (Topics) BridgeHealth(protocol string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, protocol)
}

// BridgeStatus returns the topic for a bridge's connection status
// (online/offline, including the LWT).
//
// Example: graylogic/system/status/nevoton-bridge
func (Topics) BridgeStatus(clientID string) string {
	return fmt.Sprintf("%s/system/status/%s", TopicPrefix, clientID)
}
