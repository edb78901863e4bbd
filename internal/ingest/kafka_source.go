package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/contentgrid/content-search/internal/events"
	"github.com/contentgrid/content-search/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaSource reads change events from the repository's kafka topic and
// feeds the dispatcher. Offsets are committed only after the event is
// enqueued, so a crash replays uncommitted events; the writer's
// sequence-idempotence makes the replay harmless.
type KafkaSource struct {
	reader *kafka.Reader
}

func NewKafkaSource(brokers []string, topic, groupID string) *KafkaSource {
	return &KafkaSource{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
	}
}

// Run consumes until ctx is cancelled.
func (s *KafkaSource) Run(ctx context.Context, dispatcher *Dispatcher) error {
	log := zap.S().Named("kafka_source")
	log.Infow("kafka source started", "topic", s.reader.Config().Topic, "group_id", s.reader.Config().GroupID)

	for {
		if ctx.Err() != nil {
			return nil
		}

		m, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warnw("failed to fetch message", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		ev, err := decodeChangeEvent(m.Value)
		if err != nil {
			// malformed events never halt the stream
			metrics.IncreaseEventsDroppedMetric("malformed")
			log.Warnw("dropping undecodable change event", "error", err, "offset", m.Offset)
			if err := s.reader.CommitMessages(ctx, m); err != nil {
				log.Warnw("failed to commit offset", "error", err)
			}
			continue
		}

		if err := dispatcher.Enqueue(ev); err != nil {
			if errors.Is(err, ErrDispatcherStopped) {
				return nil
			}
			return err
		}

		if err := s.reader.CommitMessages(ctx, m); err != nil {
			log.Warnw("failed to commit offset", "error", err)
		}
	}
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

// decodeChangeEvent accepts either a cloudevents JSON envelope wrapping
// the change record or the bare record itself.
func decodeChangeEvent(data []byte) (events.ChangeEvent, error) {
	envelope := cloudevents.NewEvent()
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data()) > 0 {
		ev := events.ChangeEvent{}
		if err := json.Unmarshal(envelope.Data(), &ev); err != nil {
			return events.ChangeEvent{}, err
		}
		return ev, nil
	}

	ev := events.ChangeEvent{}
	if err := json.Unmarshal(data, &ev); err != nil {
		return events.ChangeEvent{}, err
	}
	return ev, nil
}
