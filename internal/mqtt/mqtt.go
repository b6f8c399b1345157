package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/domain"
)

const (
	qos             = 1
	connectTimeout  = 10 * time.Second
	disconnectQuiet = 250
)

// Connect dials the broker. An empty clientID lets the broker assign one.
func Connect(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Str("broker", broker).Msg("mqtt connection lost")
		})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Info().Str("broker", broker).Msg("mqtt connected")
	return client, nil
}

// Disconnect waits briefly for in-flight work before closing.
func Disconnect(client paho.Client) {
	client.Disconnect(disconnectQuiet)
}

// Publisher sends readings as JSON to one topic.
type Publisher struct {
	client paho.Client
	topic  string
}

func NewPublisher(client paho.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

func (p *Publisher) Emit(ctx context.Context, r domain.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	token := p.client.Publish(p.topic, qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish to %s: %w", p.topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler consumes one message payload.
type Handler func(ctx context.Context, topic string, payload []byte) error

// Subscribe routes every message on topic to h. Handler errors are logged.
func Subscribe(ctx context.Context, client paho.Client, topic string, h Handler) error {
	cb := func(_ paho.Client, msg paho.Message) {
		if err := h(ctx, msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
		}
	}
	if token := client.Subscribe(topic, qos, cb); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Info().Str("topic", topic).Msg("subscribed")
	return nil
}
