package cash_flows

import "time"

// Flow types. These match the CHECK constraint on the cash_flows table.
// Amounts are always stored positive; the type determines the sign when
// flows are aggregated into a bankroll total.
const (
	FlowDeposit       = "DEPOSIT"
	FlowWithdrawal    = "WITHDRAWAL"
	FlowPremiumCredit = "PREMIUM_CREDIT"
	FlowPremiumDebit  = "PREMIUM_DEBIT"
	FlowBuy           = "BUY"
	FlowSell          = "SELL"
)

// ValidFlowType reports whether t is one of the recognized flow types.
func ValidFlowType(t string) bool {
	switch t {
	case FlowDeposit, FlowWithdrawal, FlowPremiumCredit, FlowPremiumDebit, FlowBuy, FlowSell:
		return true
	}
	return false
}

// CashFlow represents a single cash movement on an account: a manual
// deposit or withdrawal, an option premium credit or debit, or a stock
// purchase or sale (including assignment settlements).
//
// Flows derived from trades carry the originating TradeID so they can be
// removed when the trade is deleted or its assignment is reversed.
type CashFlow struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	TickerID    *int64    `json:"ticker_id,omitempty"`
	TradeID     *int64    `json:"trade_id,omitempty"`
	FlowType    string    `json:"flow_type"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Seq         int64     `json:"seq"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignedAmount returns the amount with the sign implied by the flow type.
// Deposits, premium credits, and sales add cash; withdrawals, premium
// debits, and purchases remove it.
func (cf *CashFlow) SignedAmount() float64 {
	switch cf.FlowType {
	case FlowDeposit, FlowPremiumCredit, FlowSell:
		return cf.Amount
	case FlowWithdrawal, FlowPremiumDebit, FlowBuy:
		return -cf.Amount
	}
	return 0
}

// CreateCashFlowRequest is the payload for creating a manual cash flow.
type CreateCashFlowRequest struct {
	AccountID   int64   `json:"account_id"`
	FlowType    string  `json:"flow_type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Description string  `json:"description"`
}
