// Package event is the in-process publish/subscribe backbone. Services
// publish domain facts; subscribers (logging, metrics) stay decoupled from
// the engines that produce them.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// EventSchemaVersion tags payload shapes for forward compatibility.
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Event types
const (
	TradeSettled        Type = "trade.settled"
	AchievementUnlocked Type = "achievement.unlocked"
	ContestCreated      Type = "contest.created"
	ContestFinished     Type = "contest.finished"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"`
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Typed event payloads

// TradeSettledPayloadV1 records a single-player settlement.
type TradeSettledPayloadV1 struct {
	UserID    string          `json:"user_id"`
	Position  string          `json:"position"`
	PnL       decimal.Decimal `json:"pnl"`
	XP        int64           `json:"xp"`
	Timestamp int64           `json:"timestamp"`
}

// AchievementUnlockedPayloadV1 records one one-time unlock.
type AchievementUnlockedPayloadV1 struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	XPReward      int64  `json:"xp_reward"`
	Rarity        string `json:"rarity"`
}

// ContestCreatedPayloadV1 records a new contest.
type ContestCreatedPayloadV1 struct {
	ContestID string `json:"contest_id"`
	HostID    string `json:"host_id"`
	Title     string `json:"title"`
	MaxRounds int    `json:"max_rounds"`
}

// ContestFinishedPayloadV1 records a participant reaching terminal state.
type ContestFinishedPayloadV1 struct {
	ContestID    string          `json:"contest_id"`
	UserID       string          `json:"user_id"`
	Profit       decimal.Decimal `json:"profit"`
	RoundsPlayed int             `json:"rounds_played"`
}

// Type-safe event constructors

// NewTradeSettledEvent creates a trade settled event
func NewTradeSettledEvent(userID, position string, pnl decimal.Decimal, xp int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TradeSettled,
		Payload: TradeSettledPayloadV1{
			UserID:    userID,
			Position:  position,
			PnL:       pnl,
			XP:        xp,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewAchievementUnlockedEvent creates an achievement unlocked event
func NewAchievementUnlockedEvent(userID, achievementID, name, rarity string, xpReward int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    AchievementUnlocked,
		Payload: AchievementUnlockedPayloadV1{
			UserID:        userID,
			AchievementID: achievementID,
			Name:          name,
			XPReward:      xpReward,
			Rarity:        rarity,
		},
	}
}

// NewContestCreatedEvent creates a contest created event
func NewContestCreatedEvent(contestID, hostID, title string, maxRounds int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ContestCreated,
		Payload: ContestCreatedPayloadV1{
			ContestID: contestID,
			HostID:    hostID,
			Title:     title,
			MaxRounds: maxRounds,
		},
	}
}

// NewContestFinishedEvent creates a contest finished event
func NewContestFinishedEvent(contestID, userID string, profit decimal.Decimal, roundsPlayed int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ContestFinished,
		Payload: ContestFinishedPayloadV1{
			ContestID:    contestID,
			UserID:       userID,
			Profit:       profit,
			RoundsPlayed: roundsPlayed,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run
// synchronously; a failing handler never blocks the others.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
