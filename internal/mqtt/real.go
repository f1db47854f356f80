package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"smart_kettle/internal/thermal"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
}

// NewRealPublisher connects to broker. The broker marks the kettle offline
// through the last will if the connection drops.
func NewRealPublisher(broker, clientID, topic string) (*RealPublisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	availability := AvailabilityTopic(topic)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(availability, "offline", 1, true).
		SetOnConnectHandler(func(c paho.Client) {
			c.Publish(availability, 1, true, "online")
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{
		client: client,
		topic:  topic,
	}, nil
}

// Publish sends an event, QoS 0 and not retained.
func (p *RealPublisher) Publish(event thermal.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(EventsTopic(p.topic), 0, false, payload)
}

// PublishState sends the snapshot, QoS 1 and retained so new dashboards
// see the current mode immediately.
func (p *RealPublisher) PublishState(state thermal.State) error {
	payload, err := FormatState(state)
	if err != nil {
		return fmt.Errorf("format state: %w", err)
	}
	return p.send(StateTopic(p.topic), 1, true, payload)
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close marks the kettle offline and disconnects.
func (p *RealPublisher) Close() error {
	token := p.client.Publish(AvailabilityTopic(p.topic), 1, true, "offline")
	token.WaitTimeout(publishTimeout)
	p.client.Disconnect(1000)
	return nil
}
