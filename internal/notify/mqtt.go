package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTopic is the topic prefix used when none is configured.
	DefaultTopic = "athan"

	publishTimeout = 10 * time.Second
)

// Publisher is the part of mqtt.Client used for delivery.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes notifications to <topic>/notify and dismissals to
// <topic>/dismiss.
type MQTTNotifier struct {
	client Publisher
	topic  string
}

// NewMQTTNotifier wraps a connected client. An empty topic uses DefaultTopic.
func NewMQTTNotifier(client Publisher, topic string) *MQTTNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTNotifier{client: client, topic: topic}
}

type dismissal struct {
	ID int `json:"id"`
}

func (m *MQTTNotifier) Notify(ctx context.Context, n Notification) error {
	return m.publish(ctx, m.topic+"/notify", n)
}

func (m *MQTTNotifier) Dismiss(ctx context.Context, id int) error {
	return m.publish(ctx, m.topic+"/dismiss", dismissal{ID: id})
}

func (m *MQTTNotifier) publish(ctx context.Context, topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	token := m.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// NewMQTTClient connects to broker as clientID.
func NewMQTTClient(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}
