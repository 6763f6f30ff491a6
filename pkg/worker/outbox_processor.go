package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	"github.com/healthbook/booking-api/pkg/logger"
	"github.com/healthbook/booking-api/pkg/messaging"
	"github.com/healthbook/booking-api/pkg/metrics"
)

// EventsChannel is the broker channel all outbox events are published on.
const EventsChannel = "healthbook.events"

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int

	// RetentionPeriod is how long processed events are kept before the
	// cleanup pass deletes them.
	RetentionPeriod time.Duration
	CleanupInterval time.Duration
}

func (c *OutboxProcessorConfig) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	// Zero means unset. Negative values are honored so callers can make
	// every processed event immediately eligible for cleanup.
	if c.RetentionPeriod == 0 {
		c.RetentionPeriod = 7 * 24 * time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Hour
	}
}

type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *OutboxProcessor {
	config.applyDefaults()
	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  log,
		metrics: m,
	}
}

// Start polls for pending events until ctx is cancelled. A slower second
// ticker deletes processed events older than the retention period.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox events")
			}
		case <-cleanupTicker.C:
			p.cleanupProcessed(ctx)
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	start := time.Now()
	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	p.metrics.DatabaseLatency.WithLabelValues("get_pending_events").Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to fetch pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, evt := range events {
		if err := p.publish(ctx, evt); err != nil {
			p.handleFailure(ctx, evt, err)
			continue
		}

		if err := p.repo.MarkProcessed(ctx, evt.ID); err != nil {
			p.logger.Error(err, "failed to mark event processed")
			continue
		}
		p.metrics.OutboxEventsProcessed.Inc()
	}

	return nil
}

// cleanupProcessed deletes processed events past the retention period.
// Pending and failed rows are never touched.
func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.RetentionPeriod)

	start := time.Now()
	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	p.metrics.DatabaseLatency.WithLabelValues("delete_processed").Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("delete_processed", "error").Inc()
		p.logger.Error(err, "failed to delete processed outbox events")
		return
	}
	p.metrics.DatabaseOperations.WithLabelValues("delete_processed", "success").Inc()

	if deleted > 0 {
		p.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
		}).Info("deleted processed outbox events past retention")
	}
}

func (p *OutboxProcessor) publish(ctx context.Context, evt *model.OutboxEvent) error {
	msg := messaging.Message{
		Type:    evt.EventType,
		Payload: evt.Payload,
	}
	return p.broker.Publish(ctx, EventsChannel, msg)
}

func (p *OutboxProcessor) handleFailure(ctx context.Context, evt *model.OutboxEvent, pubErr error) {
	p.metrics.OutboxRetries.WithLabelValues(evt.EventType).Inc()

	if evt.RetryCount+1 >= p.config.RetryAttempts {
		p.metrics.OutboxEventsFailed.Inc()
		msg := pubErr.Error()
		if err := p.repo.MarkFailed(ctx, evt.ID, &msg); err != nil {
			p.logger.Error(err, "failed to mark event failed")
		}
		return
	}

	if err := p.repo.IncrementRetry(ctx, evt.ID); err != nil {
		p.logger.Error(err, "failed to increment retry count")
	}
}
