package events

import (
	"context"
	"sync"
	"time"

	"lotto/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeAccountOpened EventType = "account_opened"
	EventTypePlayPlaced    EventType = "play_placed"
	EventTypePlayDeleted   EventType = "play_deleted"
	EventTypePlayEdited    EventType = "play_edited"
	EventTypePlayRefunded  EventType = "play_refunded"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	Username        string                 `json:"username"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                  `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountOpenedEvent represents a new account
type AccountOpenedEvent struct {
	Username       string `json:"username"`
	InitialBalance int64  `json:"initial_balance"`
}

func (e AccountOpenedEvent) Type() EventType {
	return EventTypeAccountOpened
}

// PlayPlacedEvent represents a play that was drawn and written to the ledger
type PlayPlacedEvent struct {
	Username string    `json:"username"`
	PlayTime time.Time `json:"play_time"`
	Draw     string    `json:"draw"`
	Tickets  int       `json:"tickets"`
	TotalBet int64     `json:"total_bet"`
	TotalWin int64     `json:"total_win"`
}

func (e PlayPlacedEvent) Type() EventType {
	return EventTypePlayPlaced
}

// PlayDeletedEvent represents a play removed from the ledger
type PlayDeletedEvent struct {
	Username   string    `json:"username"`
	PlayTime   time.Time `json:"play_time"`
	Draw       string    `json:"draw"`
	DeletedBet int64     `json:"deleted_bet"`
	DeletedWin int64     `json:"deleted_win"`
	Clamped    bool      `json:"clamped"`
}

func (e PlayDeletedEvent) Type() EventType {
	return EventTypePlayDeleted
}

// PlayEditedEvent represents an edit to the rows or total of a play
type PlayEditedEvent struct {
	Username      string    `json:"username"`
	PlayTime      time.Time `json:"play_time"`
	Draw          string    `json:"draw"`
	OriginalTotal int64     `json:"original_total"`
	EffectiveBet  int64     `json:"effective_bet"`
	Adjustment    int64     `json:"adjustment"`
}

func (e PlayEditedEvent) Type() EventType {
	return EventTypePlayEdited
}

// PlayRefundedEvent represents a refunded play
type PlayRefundedEvent struct {
	Username string    `json:"username"`
	PlayTime time.Time `json:"play_time"`
	Draw     string    `json:"draw"`
	Refunded int64     `json:"refunded"`
}

func (e PlayRefundedEvent) Type() EventType {
	return EventTypePlayRefunded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
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

// SubscribeAll adds a handler for every event type in types
func (b *Bus) SubscribeAll(types []EventType, handler Handler) {
	for _, t := range types {
		b.Subscribe(t, handler)
	}
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

	// Handlers run asynchronously so a slow subscriber never blocks a request
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

// AllEventTypes lists every event type the ledger emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeBalanceChange,
		EventTypeAccountOpened,
		EventTypePlayPlaced,
		EventTypePlayDeleted,
		EventTypePlayEdited,
		EventTypePlayRefunded,
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Pending returns the events waiting for commit
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Handlers outlive the request, so they get a fresh context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		if b.real != nil {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
