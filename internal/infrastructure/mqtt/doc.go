// Package mqtt provides the MQTT connection used to publish device events.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The service only publishes; it never subscribes. See Topics for the
// hierarchy.
//
// # Security Considerations
//
//   - Enable TLS (broker.tls) for anything beyond a local broker
//   - Credentials come from GOVEE_MQTT_USERNAME / GOVEE_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(client.Topics().DeviceCommand("AA:BB"), payload, 1, false)
package mqtt
