package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated         EventType = "user_created"
	EventTypeCreditsDeducted     EventType = "credits_deducted"
	EventTypeCreditsAwarded      EventType = "credits_awarded"
	EventTypeMessageRecorded     EventType = "message_recorded"
	EventTypeDailyResetCompleted EventType = "daily_reset_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent is emitted when a user is created on first interaction
type UserCreatedEvent struct {
	UserID         int64 `json:"user_id,string"`
	InitialCredits int64 `json:"initial_credits"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// CreditsDeductedEvent is emitted after a successful credit deduction
type CreditsDeductedEvent struct {
	UserID     int64 `json:"user_id,string"`
	Cost       int64 `json:"cost"`
	NewBalance int64 `json:"new_balance"`
}

func (e CreditsDeductedEvent) Type() EventType {
	return EventTypeCreditsDeducted
}

// CreditsAwardedEvent is emitted after a vote or purchase bonus is applied
type CreditsAwardedEvent struct {
	UserID     int64  `json:"user_id,string"`
	Amount     int64  `json:"amount"`
	Kind       string `json:"kind"`
	NewBalance int64  `json:"new_balance"`
}

func (e CreditsAwardedEvent) Type() EventType {
	return EventTypeCreditsAwarded
}

// MessageRecordedEvent is emitted when guild activity is recorded for a user
type MessageRecordedEvent struct {
	UserID            int64 `json:"user_id,string"`
	GuildID           int64 `json:"guild_id,string"`
	Intimacy          int   `json:"intimacy"`
	DailyMessageCount int64 `json:"daily_message_count"`
}

func (e MessageRecordedEvent) Type() EventType {
	return EventTypeMessageRecorded
}

// DailyResetCompletedEvent is emitted once per finished daily reset run
type DailyResetCompletedEvent struct {
	CreditCount    int           `json:"credit_count"`
	ResetCount     int           `json:"reset_count"`
	CreditFailures int           `json:"credit_failures"`
	ResetFailures  int           `json:"reset_failures"`
	Duration       time.Duration `json:"duration"`
}

func (e DailyResetCompletedEvent) Type() EventType {
	return EventTypeDailyResetCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages in-process event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so request paths never block on them
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event with a background context.
// It lets the bus stand in wherever an event publisher is expected.
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}
