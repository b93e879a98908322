package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acquisition(date string, dateUnix, seq int64, shares, cost float64) Event {
	return NewAcquisition(date, dateUnix, seq, nil, "BUY", shares, cost)
}

func disposition(date string, dateUnix, seq int64, shares float64) Event {
	return NewDisposition(date, dateUnix, seq, nil, "SELL", shares)
}

func cashOnly(date string, dateUnix, seq int64, amount float64) Event {
	return NewCashOnly(date, dateUnix, seq, nil, "PREMIUM", amount)
}

func TestBuildAverageCostDisposal(t *testing.T) {
	// Buy 100 @ $10, sell 40 @ $12: the sale price never touches the
	// remaining basis, which is relieved at the $10 average.
	events := []Event{
		acquisition("2024-01-02", 1704153600, 1, 100, 10.00),
		disposition("2024-01-15", 1705276800, 2, 40),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 2)

	assert.Equal(t, 100.0, entries[0].RunningShares)
	assert.Equal(t, 1000.00, entries[0].RunningBasis)
	assert.Equal(t, 10.00, entries[0].BasisPerShare)

	assert.Equal(t, -40.0, entries[1].Shares)
	assert.Equal(t, 60.0, entries[1].RunningShares)
	assert.Equal(t, 600.00, entries[1].RunningBasis)
	assert.Equal(t, 10.00, entries[1].BasisPerShare)
	assert.Equal(t, 10.00, entries[1].CostPerShare)
	assert.Equal(t, -400.00, entries[1].Amount)
}

func TestBuildIsIdempotent(t *testing.T) {
	events := []Event{
		acquisition("2024-01-02", 1704153600, 1, 100, 10.00),
		cashOnly("2024-01-05", 1704412800, 2, -198.00),
		disposition("2024-01-15", 1705276800, 3, 40),
	}

	first := Build(1, 1, events)
	second := Build(1, 1, events)

	assert.Equal(t, first, second)
}

func TestBuildConservesShares(t *testing.T) {
	events := []Event{
		acquisition("2024-01-02", 1704153600, 1, 100, 10.00),
		disposition("2024-01-10", 1704844800, 2, 30),
		acquisition("2024-02-01", 1706745600, 3, 50, 12.00),
		disposition("2024-02-20", 1708387200, 4, 120),
		cashOnly("2024-03-01", 1709251200, 5, -50.00),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, len(events))

	var sum float64
	for _, e := range entries {
		sum += e.Shares
	}
	assert.InDelta(t, entries[len(entries)-1].RunningShares, sum, 1e-9)
}

func TestBuildCarriesBasisPerShareForwardAtZeroShares(t *testing.T) {
	events := []Event{
		acquisition("2024-01-02", 1704153600, 1, 100, 10.00),
		disposition("2024-01-10", 1704844800, 2, 100),
		cashOnly("2024-01-20", 1705708800, 3, -150.00),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 3)

	// Position fully closed: shares hit zero, previous 10.00 carries.
	assert.Equal(t, 0.0, entries[1].RunningShares)
	assert.Equal(t, 10.00, entries[1].BasisPerShare)

	// Cash-only event at zero shares still carries 10.00, never divides.
	assert.Equal(t, 0.0, entries[2].RunningShares)
	assert.Equal(t, -150.00, entries[2].RunningBasis)
	assert.Equal(t, 10.00, entries[2].BasisPerShare)
}

func TestBuildAllowsNegativeShares(t *testing.T) {
	// Disposing more than held is short-position bookkeeping, not an
	// error. Relief beyond the held shares happens at the same average.
	events := []Event{
		acquisition("2024-01-02", 1704153600, 1, 50, 10.00),
		disposition("2024-01-10", 1704844800, 2, 80),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 2)

	assert.Equal(t, -30.0, entries[1].RunningShares)
	assert.Equal(t, -300.00, entries[1].RunningBasis)
	assert.Equal(t, 10.00, entries[1].BasisPerShare)
}

func TestBuildDispositionIntoShortReliefsAtZero(t *testing.T) {
	// With no long position the average cost guard yields zero relief.
	events := []Event{
		disposition("2024-01-02", 1704153600, 1, 40),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 1)

	assert.Equal(t, -40.0, entries[0].RunningShares)
	assert.Equal(t, 0.00, entries[0].RunningBasis)
	assert.Equal(t, 0.00, entries[0].CostPerShare)
	assert.Equal(t, 0.00, entries[0].Amount)
}

func TestBuildOrdersByDateThenSeq(t *testing.T) {
	// Same-date events replay in creation sequence; later input order
	// must not matter.
	events := []Event{
		disposition("2024-01-02", 1704153600, 2, 40),
		acquisition("2024-01-02", 1704153600, 1, 100, 10.00),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, 100.0, entries[0].Shares)
	assert.Equal(t, 60.0, entries[1].RunningShares)
	assert.Equal(t, 600.00, entries[1].RunningBasis)
}

func TestBuildOptionPremiumLowersBasis(t *testing.T) {
	// An assigned put: premium credit first, shares at the strike second.
	// The collected premium lowers the effective basis per share.
	events := []Event{
		cashOnly("2024-01-02", 1704153600, 1, -198.00),
		acquisition("2024-02-16", 1708041600, 1, 200, 50.00),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 2)

	assert.Equal(t, -198.00, entries[0].RunningBasis)
	assert.Equal(t, 0.0, entries[0].RunningShares)
	assert.Equal(t, 0.00, entries[0].BasisPerShare)

	assert.Equal(t, 200.0, entries[1].RunningShares)
	assert.Equal(t, 9802.00, entries[1].RunningBasis)
	assert.Equal(t, 49.01, entries[1].BasisPerShare)
}

func TestBuildEmptyPartition(t *testing.T) {
	entries := Build(1, 1, nil)
	assert.Empty(t, entries)
}

func TestBuildRoundsRunningValuesHalfUp(t *testing.T) {
	events := []Event{
		acquisition("2024-01-02", 1704153600, 1, 3, 23.275),
	}

	entries := Build(1, 1, events)
	require.Len(t, entries, 1)

	// 3 * 23.275 = 69.825 rounds half-up to 69.83, not banker's 69.82.
	assert.Equal(t, 69.83, entries[0].RunningBasis)
	assert.Equal(t, 23.28, entries[0].CostPerShare)
}
