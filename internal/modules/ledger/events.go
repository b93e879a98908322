package ledger

// EventKind tags a cost basis event with its variant. Each kind carries
// only the fields it needs; the builder never inspects nullable columns
// to work out what a row means.
type EventKind int

const (
	// KindAcquisition adds shares to the position at a known cost.
	KindAcquisition EventKind = iota
	// KindDisposition removes shares; basis is relieved at average cost.
	KindDisposition
	// KindCashOnly moves basis without moving shares (option premium
	// credits, dividends). Negative amounts lower the basis.
	KindCashOnly
)

func (k EventKind) String() string {
	switch k {
	case KindAcquisition:
		return "acquisition"
	case KindDisposition:
		return "disposition"
	case KindCashOnly:
		return "cash_only"
	}
	return "unknown"
}

// Event is one share-affecting or cash-only event in a (account, ticker)
// partition. Events are replayed in (DateUnix, Seq) order; Seq is the
// creation sequence that breaks same-date ties.
type Event struct {
	Kind        EventKind
	Date        string // YYYY-MM-DD
	DateUnix    int64  // midnight UTC, the ordering key
	Seq         int64
	TradeID     *int64
	Description string

	// Acquisition and disposition fields.
	Shares       float64
	CostPerShare float64 // acquisitions only; dispositions use average cost

	// Cash-only field: signed basis delta.
	Amount float64
}

// NewAcquisition builds an event that adds shares at a cost.
func NewAcquisition(date string, dateUnix, seq int64, tradeID *int64, description string, shares, costPerShare float64) Event {
	return Event{
		Kind:         KindAcquisition,
		Date:         date,
		DateUnix:     dateUnix,
		Seq:          seq,
		TradeID:      tradeID,
		Description:  description,
		Shares:       shares,
		CostPerShare: costPerShare,
	}
}

// NewDisposition builds an event that removes shares. The relief cost is
// determined by the builder from the running average at replay time.
func NewDisposition(date string, dateUnix, seq int64, tradeID *int64, description string, shares float64) Event {
	return Event{
		Kind:        KindDisposition,
		Date:        date,
		DateUnix:    dateUnix,
		Seq:         seq,
		TradeID:     tradeID,
		Description: description,
		Shares:      shares,
	}
}

// NewCashOnly builds a zero-share event that shifts the basis by amount.
func NewCashOnly(date string, dateUnix, seq int64, tradeID *int64, description string, amount float64) Event {
	return Event{
		Kind:        KindCashOnly,
		Date:        date,
		DateUnix:    dateUnix,
		Seq:         seq,
		TradeID:     tradeID,
		Description: description,
		Amount:      amount,
	}
}
