// Package events provides the in-process event bus used to fan out
// ledger and trade lifecycle notifications to subscribers.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	TradeCreated       EventType = "TRADE_CREATED"
	TradeUpdated       EventType = "TRADE_UPDATED"
	TradeDeleted       EventType = "TRADE_DELETED"
	TradeRolled        EventType = "TRADE_ROLLED"
	TradeStatusChanged EventType = "TRADE_STATUS_CHANGED"

	CashFlowCreated EventType = "CASH_FLOW_CREATED"
	CashFlowDeleted EventType = "CASH_FLOW_DELETED"

	LedgerRebuilt     EventType = "LEDGER_REBUILT"
	BankrollChanged   EventType = "BANKROLL_CHANGED"
	CommissionChanged EventType = "COMMISSION_CHANGED"

	AccountCreated EventType = "ACCOUNT_CREATED"
	TickerCreated  EventType = "TICKER_CREATED"

	BackupCompleted     EventType = "BACKUP_COMPLETED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// AllTypes returns every known event type. Stream subscribers that want the
// full firehose register a handler for each.
func AllTypes() []EventType {
	return []EventType{
		TradeCreated,
		TradeUpdated,
		TradeDeleted,
		TradeRolled,
		TradeStatusChanged,
		CashFlowCreated,
		CashFlowDeleted,
		LedgerRebuilt,
		BankrollChanged,
		CommissionChanged,
		AccountCreated,
		TickerCreated,
		BackupCompleted,
		SystemStatusChanged,
		ErrorOccurred,
	}
}

// Event represents a system event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Module    string      `json:"module"`
	Data      interface{} `json:"data,omitempty"`
}

// Handler processes a delivered event. Handlers run synchronously on the
// emitter's goroutine and must not block.
type Handler func(event *Event)

// Bus is a synchronous in-process pub/sub event bus
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("service", "events").Logger(),
	}
}

// Subscribe registers a handler for an event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event with a generic data payload
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	b.publish(&Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	})
}

// EmitData publishes a typed payload, deriving the event type from the data
func (b *Bus) EmitData(module string, data EventData) {
	b.publish(&Event{
		ID:        uuid.New().String(),
		Type:      data.EventType(),
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	})
}

// EmitError publishes an error event
func (b *Bus) EmitError(module string, err error, context map[string]interface{}) {
	b.EmitData(module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}

func (b *Bus) publish(event *Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(event.Type)).
		Str("module", event.Module).
		Int("subscribers", len(handlers)).
		Msg("Event emitted")

	for _, handler := range handlers {
		handler(event)
	}
}
