//go:build integration

package mqtt

import (
	"context"
	"testing"

	"github.com/nerrad567/govee-web/internal/infrastructure/config"
)

// Integration tests against a real broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "goveeweb-integration-test",
		},
		QoS:         1,
		TopicPrefix: "goveeweb-test",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestIntegration_ConnectPublishClose(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Publish(client.Topics().DeviceCommand("AA:BB"), []byte(`{"name":"turn"}`), client.QoS(), false); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := client.Publish(client.Topics().DeviceState("AA:BB"), []byte(`{"powerState":"on"}`), client.QoS(), true); err != nil {
		t.Errorf("Publish(retained) error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
