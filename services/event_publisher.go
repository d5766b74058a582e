package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DealDocs/dealdocs-backend/logger"
	"github.com/DealDocs/dealdocs-backend/types"
)

// RedisEventPublisher implements types.EventPublisher using Redis Pub/Sub.
// Verification outcomes are published on a per-deal channel so the
// orchestration layer can advance or park the pipeline.
type RedisEventPublisher struct {
	redisClient *redis.Client
	log         *zap.SugaredLogger
	metrics     *eventMetrics
}

var _ types.EventPublisher = (*RedisEventPublisher)(nil)

type eventMetrics struct {
	publishLatency prometheus.Histogram
	errorCount     prometheus.Counter
	eventCount     *prometheus.CounterVec
}

var (
	eventMetricsOnce   sync.Once
	sharedEventMetrics *eventMetrics
)

// initEventMetrics registers the collectors once; every publisher instance
// shares them.
func initEventMetrics() *eventMetrics {
	eventMetricsOnce.Do(func() {
		sharedEventMetrics = &eventMetrics{
			publishLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "dealdocs_event_publish_duration_seconds",
				Help:    "Time taken to publish events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.NewCounter(prometheus.CounterOpts{
				Name: "dealdocs_event_errors_total",
				Help: "Total number of event publishing errors",
			}),
			eventCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dealdocs_events_published_total",
				Help: "Total number of events published",
			}, []string{"event_type"}),
		}
	})
	return sharedEventMetrics
}

// NewRedisEventPublisher returns a new publisher on the given client.
func NewRedisEventPublisher(redisClient *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: redisClient,
		log:         logger.GetLogger(),
		metrics:     initEventMetrics(),
	}
}

// Publish serializes the event and publishes it on the "deal:{dealID}"
// channel.
func (p *RedisEventPublisher) Publish(ctx context.Context, dealID string, event types.Event) error {
	startTime := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(startTime).Seconds())
	}()

	if err := event.Validate(); err != nil {
		p.metrics.errorCount.Inc()
		return fmt.Errorf("invalid event: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.metrics.errorCount.Inc()
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("deal:%s", dealID)
	if err := p.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		p.metrics.errorCount.Inc()
		return fmt.Errorf("failed to publish event to %s: %w", channel, err)
	}

	p.metrics.eventCount.WithLabelValues(string(event.Type)).Inc()
	p.log.Debugw("Published event", "channel", channel, "type", event.Type, "event_id", event.ID)
	return nil
}
