package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tutorme-app/tutorme/libs/kafkax"
	otelx "github.com/tutorme-app/tutorme/libs/otel"
)

type Publisher struct {
	recorder  *Recorder
	logger    *slog.Logger
	brokers   []string
	pollEvery time.Duration
}

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
}

func NewPublisher(recorder *Recorder, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	return &Publisher{
		recorder:  recorder,
		logger:    logger,
		brokers:   kafkax.SplitBrokers(cfg.Brokers),
		pollEvery: cfg.PollEvery,
	}
}

// Run polls for pending events until ctx is cancelled. One publisher instance
// per deployment; events are keyed by aggregate id so per-booking ordering
// survives partitioning.
func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.publishPending(ctx, writer); err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) publishPending(ctx context.Context, writer *kafka.Writer) error {
	events, err := p.recorder.Pending(ctx)
	if err != nil {
		return err
	}

	for _, evt := range events {
		msgCtx := otelx.ContextWithTraceContext(ctx, evt.Traceparent, evt.Tracestate)
		msg := kafka.Message{
			Topic: evt.EventType,
			Key:   []byte(evt.AggregateID),
			Value: evt.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(evt.EventID)},
				{Key: "event_type", Value: []byte(evt.EventType)},
			},
		}
		msg.Headers = kafkax.InjectTraceHeaders(msgCtx, msg.Headers)
		if err := writer.WriteMessages(ctx, msg); err != nil {
			return err
		}
		if err := p.recorder.MarkSent(ctx, evt.EventID); err != nil {
			return err
		}
	}
	return nil
}
