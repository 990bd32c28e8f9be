package publisher

import (
	"context"
	"log/slog"
	"time"

	r "github.com/bakehouse/storefront/internal/checkout/repository"
	"github.com/segmentio/kafka-go"
)

const (
	batchSize      = 100
	eventRetention = 7 * 24 * time.Hour
	defaultEvent   = time.Second
	defaultCleanup = time.Hour
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller publishes checkout outbox events to Kafka and purges the ones
// already published.
type OutboxPoller struct {
	eventTick   time.Duration
	cleanupTick time.Duration
	repo        r.RepoInterface
	writer      MessageWriter
	log         *slog.Logger
}

func NewOutboxPoller(repo r.RepoInterface, topic string, log *slog.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newOutboxPoller(repo, w, log)
}

func newOutboxPoller(repo r.RepoInterface, w MessageWriter, log *slog.Logger) *OutboxPoller {
	if log == nil {
		log = slog.Default()
	}
	return &OutboxPoller{
		eventTick:   defaultEvent,
		cleanupTick: defaultCleanup,
		repo:        repo,
		writer:      w,
		log:         log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) error {
	eventTicker := time.NewTicker(p.eventTick)
	cleanupTicker := time.NewTicker(p.cleanupTick)
	defer eventTicker.Stop()
	defer cleanupTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-cleanupTicker.C:
			p.purgePublishedEvents(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range events {
		if err := p.publishToKafka(ctx, event); err != nil {
			p.log.ErrorContext(ctx, "failed to publish outbox event", "event_id", event.ID, "error", err)
			// events go out in id order; the rest wait for the next tick
			return
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.ErrorContext(ctx, "failed to mark outbox event as processed", "event_id", event.ID, "error", err)
			continue
		}
		p.log.DebugContext(ctx, "outbox event published", "event_id", event.ID, "order_id", event.AggregateID)
	}
}

func (p *OutboxPoller) purgePublishedEvents(ctx context.Context) {
	n, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-eventRetention))
	if err != nil {
		p.log.ErrorContext(ctx, "failed to purge published outbox events", "error", err)
		return
	}
	if n > 0 {
		p.log.InfoContext(ctx, "purged published outbox events", "count", n)
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *r.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps one order on one partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
