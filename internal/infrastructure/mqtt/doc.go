// Package mqtt provides the bridge's connection to the Gray Logic bus.
//
// This package manages:
//   - Connection to the Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The bridge is a leaf on the Gray Logic bus: it publishes device state
// and health, and subscribes to commands addressed to its protocol.
//
//	Gray Logic Core ↔ MQTT Broker ↔ nevoton-bridge ↔ sauna controller
//
// State topics are retained so Core picks up current state immediately
// after a restart; acks and commands are not retained.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	err = client.Subscribe(topics.BridgeCommandWildcard("nevoton"), 1,
//	    func(topic string, payload []byte) error {
//	        return handleCommand(topic, payload)
//	    })
package mqtt
