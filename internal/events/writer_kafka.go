package events

import (
	"context"
	"encoding/json"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter ships cloudevents envelopes to a kafka topic, keyed by
// event id.
type KafkaWriter struct {
	writer *kafka.Writer
}

var _ Writer = (*KafkaWriter)(nil)

func NewKafkaWriter(brokers []string) *KafkaWriter {
	return &KafkaWriter{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(e.ID()),
		Value: data,
	})
}

func (k *KafkaWriter) Close(_ context.Context) error {
	return k.writer.Close()
}
