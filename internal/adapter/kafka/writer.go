package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// Writer exports computed readings to a Kafka topic.
// It implements pipeline.ReadingPublisher.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates an asynchronous Kafka producer for the telemetry topic.
// Writes never block the calculator; delivery failures are reported through
// the completion callback.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &Writer{logger: logger, metrics: metrics}
	w.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
		Async:        true,
		Completion:   w.complete,
	}
	return w
}

// PublishReading serializes and enqueues one reading.
func (w *Writer) PublishReading(ctx context.Context, r domain.Reading) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) complete(messages []kafkago.Message, err error) {
	if err == nil {
		return
	}
	w.metrics.TelemetryErrors.Add(float64(len(messages)))
	w.logger.Warn("telemetry delivery failed", "error", err, "messages", len(messages))
}

// serializeToMessage marshals a Reading into a Kafka message keyed by node ID.
func serializeToMessage(r domain.Reading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading %d: %w", r.Sequence, err)
	}
	return kafkago.Message{
		Key:   []byte(r.NodeID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "band", Value: []byte(r.Band.String())},
			{Key: "computed_at", Value: []byte(r.ComputedAt.Format(time.RFC3339Nano))},
		},
	}, nil
}
