package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/govee-web/internal/device"
	"github.com/nerrad567/govee-web/internal/infrastructure/mqtt"
)

// Broker is the subset of the MQTT client the Publisher needs.
// *mqtt.Client satisfies it.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Topics() mqtt.Topics
	QoS() byte
}

// StateEvent is the retained payload on a device state topic.
type StateEvent struct {
	device.State
	Timestamp time.Time `json:"timestamp"`
}

// Publisher turns controller notifications into MQTT messages.
type Publisher struct {
	broker Broker
	now    func() time.Time
}

var (
	_ device.CommandSink = (*Publisher)(nil)
	_ device.StateSink   = (*Publisher)(nil)
)

// NewPublisher creates a Publisher on broker.
func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker, now: time.Now}
}

// DeviceCommanded publishes cmd on the device's command topic.
func (p *Publisher) DeviceCommanded(_ context.Context, cmd device.Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command event: %w", err)
	}
	topic := p.broker.Topics().DeviceCommand(cmd.DeviceID)
	if err := p.broker.Publish(topic, payload, p.broker.QoS(), false); err != nil {
		return fmt.Errorf("publishing command event: %w", err)
	}
	return nil
}

// DeviceStateRead publishes st as the retained state of the device.
func (p *Publisher) DeviceStateRead(_ context.Context, st device.State) error {
	payload, err := json.Marshal(StateEvent{State: st, Timestamp: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding state event: %w", err)
	}
	topic := p.broker.Topics().DeviceState(st.ID)
	if err := p.broker.Publish(topic, payload, p.broker.QoS(), true); err != nil {
		return fmt.Errorf("publishing state event: %w", err)
	}
	return nil
}
