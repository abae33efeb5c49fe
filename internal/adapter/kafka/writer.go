package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quakeline/nordic-etl/internal/config"
	"github.com/quakeline/nordic-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces assembled events to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple events to the sink Kafka topic
// in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	w.logger.Debug("publishing events", "count", len(msgs), "topic", w.writer.Topic)
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Event into a Kafka message. The event's
// file-derived resource id is the partition key, so re-parsing the same
// bulletin overwrites rather than duplicates downstream.
func serializeToMessage(event domain.Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event %s: %w", event.ResourceID, err)
	}
	return kafkago.Message{
		Key:   []byte(event.ResourceID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "origin_count", Value: []byte(fmt.Sprintf("%d", len(event.Origins)))},
			{Key: "assembled_at", Value: []byte(event.AssembledAt.Format(time.RFC3339))},
		},
	}, nil
}
