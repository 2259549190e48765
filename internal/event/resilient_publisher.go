package event

import (
	"context"
	"time"

	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/metrics"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// ResilientPublisher wraps a Bus to add retry logic. Publication is
// best-effort: callers are never failed because a subscriber misbehaved.
type ResilientPublisher struct {
	inner  Bus
	config ResilientConfig
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) *ResilientPublisher {
	return &ResilientPublisher{
		inner:  inner,
		config: config,
	}
}

// Publish attempts to publish an event. If it fails, it initiates a
// background retry loop and returns nil immediately; the caller is
// decoupled from the retry mechanism.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()

	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	metrics.EventHandlerErrors.WithLabelValues(string(event.Type)).Inc()
	logger.Warn("Failed to publish event, initiating async retry",
		"event_type", event.Type,
		"error", err,
		"retries", p.config.MaxRetries)

	// The original request context may be cancelled before the retries
	// finish, so the loop runs detached.
	go p.retryLoop(event)

	return nil
}

// Subscribe delegates to the wrapped bus.
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) retryLoop(event Event) {
	ctx := context.Background()

	for i := 1; i <= p.config.MaxRetries; i++ {
		time.Sleep(p.config.RetryDelay * time.Duration(i)) // linear backoff

		err := p.inner.Publish(ctx, event)
		if err == nil {
			logger.Info("Successfully published event after retry",
				"event_type", event.Type,
				"attempt", i)
			return
		}

		metrics.EventHandlerErrors.WithLabelValues(string(event.Type)).Inc()
		logger.Warn("Retry failed",
			"event_type", event.Type,
			"attempt", i,
			"error", err)
	}

	logger.Error("Dropping event after exhausting retries",
		"event_type", event.Type,
		"retries", p.config.MaxRetries)
}
