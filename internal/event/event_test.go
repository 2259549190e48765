package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/tradequest/internal/testing/leaktest"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()

	var received atomic.Int32
	bus.Subscribe(AchievementUnlocked, func(ctx context.Context, e Event) error {
		received.Add(1)
		payload, ok := e.Payload.(AchievementUnlockedPayloadV1)
		require.True(t, ok)
		assert.Equal(t, "user-1", payload.UserID)
		return nil
	})

	err := bus.Publish(context.Background(), NewAchievementUnlockedEvent("user-1", "first_trade", "First Steps", "common", 50))
	require.NoError(t, err)
	assert.Equal(t, int32(1), received.Load())
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	err := bus.Publish(context.Background(), NewContestCreatedEvent("ABC123", "host", "Friday night", 5))
	assert.NoError(t, err)
}

func TestMemoryBus_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewMemoryBus()

	var second atomic.Bool
	bus.Subscribe(TradeSettled, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(TradeSettled, func(ctx context.Context, e Event) error {
		second.Store(true)
		return nil
	})

	err := bus.Publish(context.Background(), NewTradeSettledEvent("user-1", "BUY", decimal.NewFromInt(500), 100))
	assert.Error(t, err)
	assert.True(t, second.Load(), "second handler should run despite first failing")
}

func TestResilientPublisher_RetriesInBackground(t *testing.T) {
	bus := NewMemoryBus()

	var attempts atomic.Int32
	bus.Subscribe(ContestFinished, func(ctx context.Context, e Event) error {
		if attempts.Add(1) < 2 {
			return errors.New("transient")
		}
		return nil
	})

	p := NewResilientPublisher(bus, ResilientConfig{MaxRetries: 3, RetryDelay: time.Millisecond})

	err := p.Publish(context.Background(), NewContestFinishedEvent("ABC123", "user-1", decimal.NewFromInt(250), 5))
	require.NoError(t, err, "caller should never see subscriber failures")

	assert.Eventually(t, func() bool {
		return attempts.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestResilientPublisher_RetryLoopExits(t *testing.T) {
	bus := NewMemoryBus()
	bus.Subscribe(ContestFinished, func(ctx context.Context, e Event) error {
		return errors.New("permanent")
	})

	p := NewResilientPublisher(bus, ResilientConfig{MaxRetries: 2, RetryDelay: time.Millisecond})

	checker := leaktest.NewGoroutineChecker(t)
	err := p.Publish(context.Background(), NewContestFinishedEvent("ABC123", "user-1", decimal.NewFromInt(1), 5))
	require.NoError(t, err)

	// The detached retry loop must terminate after exhausting retries.
	time.Sleep(50 * time.Millisecond)
	checker.Check(0)
}
