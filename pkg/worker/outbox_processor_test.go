package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	"github.com/healthbook/booking-api/internal/repository/memory"
	"github.com/healthbook/booking-api/pkg/logger"
	"github.com/healthbook/booking-api/pkg/messaging"
	"github.com/healthbook/booking-api/pkg/metrics"
)

// Prometheus collectors register globally, so the suite shares one set.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Metrics
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("booking_test", "outbox")
	})
	return testMetrics
}

type fakeBroker struct {
	mu        sync.Mutex
	published []messaging.Message
	failNext  int
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNext > 0 {
		b.failNext--
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, message.(messaging.Message))
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBroker) Close() error { return nil }

func newTestProcessor(t *testing.T, broker *fakeBroker, retryAttempts int) (*OutboxProcessor, *memory.OutboxRepository) {
	t.Helper()
	repo := memory.NewOutboxRepository()
	p := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		RetryAttempts: retryAttempts,
	}, logger.NewLogger(nil), sharedMetrics())
	return p, repo
}

func seedEvent(t *testing.T, repo *memory.OutboxRepository) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"hello": "world"})
	require.NoError(t, err)

	event := &model.OutboxEvent{
		EventType: model.EventDoctorVerificationDecided,
		Payload:   payload,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	broker := &fakeBroker{}
	p, repo := newTestProcessor(t, broker, 3)
	seedEvent(t, repo)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, broker.published, 1)
	assert.Equal(t, model.EventDoctorVerificationDecided, broker.published[0].Type)

	pending, err := repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessEventsCountsDatabaseOperations(t *testing.T) {
	broker := &fakeBroker{}
	p, repo := newTestProcessor(t, broker, 3)
	seedEvent(t, repo)

	success := sharedMetrics().DatabaseOperations.WithLabelValues("get_pending_events", "success")
	before := testutil.ToFloat64(success)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, before+1, testutil.ToFloat64(success))
}

func TestCleanupDeletesProcessedEventsPastRetention(t *testing.T) {
	broker := &fakeBroker{}
	repo := memory.NewOutboxRepository()
	// Negative retention makes every processed event eligible right away.
	p := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:       10,
		RetentionPeriod: -time.Hour,
	}, logger.NewLogger(nil), sharedMetrics())

	processed := seedEvent(t, repo)
	require.NoError(t, p.processEvents(context.Background()))
	pendingEvt := seedEvent(t, repo)

	p.cleanupProcessed(context.Background())

	// The processed event is gone, the pending one is untouched.
	assert.ErrorIs(t, repo.MarkProcessed(context.Background(), processed.ID), repository.ErrNotFound)
	pending, err := repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingEvt.ID, pending[0].ID)
}

func TestProcessEventsRetriesOnFailure(t *testing.T) {
	broker := &fakeBroker{failNext: 1}
	p, repo := newTestProcessor(t, broker, 3)
	seedEvent(t, repo)

	require.NoError(t, p.processEvents(context.Background()))

	// Still pending after one failure.
	pending, err := repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)

	// Broker healthy again: the retry drains it.
	require.NoError(t, p.processEvents(context.Background()))
	pending, err = repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Len(t, broker.published, 1)
}

func TestProcessEventsMarksFailedAfterRetriesExhausted(t *testing.T) {
	broker := &fakeBroker{failNext: 10}
	p, repo := newTestProcessor(t, broker, 2)
	seedEvent(t, repo)

	// attempt 1: retry count 0 -> 1; attempt 2: 1+1 >= 2, marked failed.
	require.NoError(t, p.processEvents(context.Background()))
	require.NoError(t, p.processEvents(context.Background()))

	pending, err := repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Empty(t, broker.published)
}
