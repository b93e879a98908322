package events

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return NewBus(zerolog.Nop())
}

func TestSubscribeAndEmit(t *testing.T) {
	bus := newTestBus()

	var received *Event
	bus.Subscribe(TradeCreated, func(event *Event) {
		received = event
	})

	bus.Emit(TradeCreated, "trades", map[string]interface{}{
		"trade_id": int64(42),
	})

	require.NotNil(t, received)
	assert.Equal(t, TradeCreated, received.Type)
	assert.Equal(t, "trades", received.Module)
	assert.NotEmpty(t, received.ID)
	assert.False(t, received.Timestamp.IsZero())
}

func TestEmitDataDerivesTypeFromPayload(t *testing.T) {
	bus := newTestBus()

	var received *Event
	bus.Subscribe(LedgerRebuilt, func(event *Event) {
		received = event
	})

	bus.EmitData("ledger", &LedgerRebuiltData{
		Account: "primary",
		Ticker:  "AMD",
		Events:  7,
	})

	require.NotNil(t, received)
	assert.Equal(t, LedgerRebuilt, received.Type)

	data, ok := received.Data.(*LedgerRebuiltData)
	require.True(t, ok)
	assert.Equal(t, "AMD", data.Ticker)
	assert.Equal(t, 7, data.Events)
}

func TestEmitWithoutSubscribersDoesNotPanic(t *testing.T) {
	bus := newTestBus()

	assert.NotPanics(t, func() {
		bus.Emit(BankrollChanged, "bankroll", nil)
	})
}

func TestHandlersOnlyReceiveSubscribedType(t *testing.T) {
	bus := newTestBus()

	var tradeEvents, cashEvents int
	bus.Subscribe(TradeCreated, func(event *Event) { tradeEvents++ })
	bus.Subscribe(CashFlowCreated, func(event *Event) { cashEvents++ })

	bus.Emit(TradeCreated, "trades", nil)
	bus.Emit(TradeCreated, "trades", nil)
	bus.Emit(CashFlowCreated, "cashflows", nil)

	assert.Equal(t, 2, tradeEvents)
	assert.Equal(t, 1, cashEvents)
}

func TestMultipleHandlersAllInvoked(t *testing.T) {
	bus := newTestBus()

	var first, second bool
	bus.Subscribe(TradeDeleted, func(event *Event) { first = true })
	bus.Subscribe(TradeDeleted, func(event *Event) { second = true })

	bus.Emit(TradeDeleted, "trades", nil)

	assert.True(t, first)
	assert.True(t, second)
}

func TestEmitError(t *testing.T) {
	bus := newTestBus()

	var received *Event
	bus.Subscribe(ErrorOccurred, func(event *Event) {
		received = event
	})

	bus.EmitError("scheduler", errors.New("checkpoint failed"), map[string]interface{}{
		"job": "wal_checkpoint",
	})

	require.NotNil(t, received)
	data, ok := received.Data.(*ErrorEventData)
	require.True(t, ok)
	assert.Equal(t, "checkpoint failed", data.Error)
	assert.Equal(t, "wal_checkpoint", data.Context["job"])
}

func TestAllTypesCoversLifecycleEvents(t *testing.T) {
	types := AllTypes()

	assert.Contains(t, types, TradeCreated)
	assert.Contains(t, types, LedgerRebuilt)
	assert.Contains(t, types, BackupCompleted)
	assert.GreaterOrEqual(t, len(types), 15)
}
