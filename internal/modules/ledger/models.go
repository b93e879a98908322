// Package ledger implements the cost basis ledger: the ordered running
// record of what a position in one (account, ticker) partition cost.
// Partitions are always regenerated wholesale from their contributing
// events, never patched in place.
package ledger

import "time"

// Entry is one row of the cost basis ledger. Shares is the signed delta
// (positive acquires, negative disposes); RunningBasis and RunningShares
// are the accumulator state after applying this row; BasisPerShare is
// carried forward from the previous row whenever RunningShares is zero.
type Entry struct {
	ID              int64     `json:"id" msgpack:"id"`
	AccountID       int64     `json:"account_id" msgpack:"account_id"`
	TickerID        int64     `json:"ticker_id" msgpack:"ticker_id"`
	TradeID         *int64    `json:"trade_id,omitempty" msgpack:"trade_id"`
	TransactionDate string    `json:"transaction_date" msgpack:"transaction_date"` // YYYY-MM-DD
	Seq             int64     `json:"seq" msgpack:"seq"`
	Description     string    `json:"description" msgpack:"description"`
	Shares          float64   `json:"shares" msgpack:"shares"`
	CostPerShare    float64   `json:"cost_per_share" msgpack:"cost_per_share"`
	Amount          float64   `json:"amount" msgpack:"amount"`
	RunningBasis    float64   `json:"running_basis" msgpack:"running_basis"`
	RunningShares   float64   `json:"running_shares" msgpack:"running_shares"`
	BasisPerShare   float64   `json:"basis_per_share" msgpack:"basis_per_share"`
	CreatedAt       time.Time `json:"created_at" msgpack:"-"`
}

// Totals summarizes the final state of one partition: the last row's
// running values plus the symbol for display.
type Totals struct {
	AccountID     int64   `json:"account_id" msgpack:"account_id"`
	TickerID      int64   `json:"ticker_id" msgpack:"ticker_id"`
	Symbol        string  `json:"symbol" msgpack:"symbol"`
	CompanyName   string  `json:"company_name,omitempty" msgpack:"company_name"`
	EntryCount    int     `json:"entry_count" msgpack:"entry_count"`
	RunningBasis  float64 `json:"running_basis" msgpack:"running_basis"`
	RunningShares float64 `json:"running_shares" msgpack:"running_shares"`
	BasisPerShare float64 `json:"basis_per_share" msgpack:"basis_per_share"`
}

// Snapshot is the cached read model for one partition: the ordered
// entries plus their totals.
type Snapshot struct {
	Entries []Entry `json:"entries" msgpack:"entries"`
	Totals  Totals  `json:"totals" msgpack:"totals"`
}
