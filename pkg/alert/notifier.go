package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
	kafka "github.com/segmentio/kafka-go"
)

// Notifier delivers an alert event to an external channel. Notifiers are
// invoked synchronously after the event has been durably recorded; a notifier
// failure never unwinds the recording or the pass.
type Notifier interface {
	Notify(ctx context.Context, event types.AlertEvent) error
}

const webhookTimeout = 10 * time.Second

// WebhookNotifier posts the event as JSON to a configured URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event types.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "could not encode alert payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "could not build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook post failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// KafkaNotifier publishes events to a Kafka topic.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(bootstrapServers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:      kafka.TCP(bootstrapServers...),
			Topic:     topic,
			BatchSize: 1,
		},
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event types.AlertEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "could not encode alert payload")
	}
	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
		return errors.Wrap(err, "could not write alert to kafka")
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
