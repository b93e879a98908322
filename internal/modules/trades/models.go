package trades

import (
	"fmt"
	"strings"
	"time"
)

// Trade types. Option positions are sold rolls of the wheel; stock legs
// and dividends feed the cost basis ledger without option analytics.
const (
	TypePutRoll     = "put_roll"
	TypeCallRoll    = "call_roll"
	TypeBuyToOpen   = "buy_to_open"
	TypeSellToClose = "sell_to_close"
	TypeAssigned    = "assigned"
	TypeDividend    = "dividend"
)

// Trade statuses. "rolled" is terminal: a rolled trade is frozen and its
// successor carries the position forward.
const (
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusAssigned = "assigned"
	StatusExpired  = "expired"
	StatusRolled   = "rolled"
)

// ValidTradeType reports whether t is one of the recognized trade types.
func ValidTradeType(t string) bool {
	switch t {
	case TypePutRoll, TypeCallRoll, TypeBuyToOpen, TypeSellToClose, TypeAssigned, TypeDividend:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the recognized trade statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusClosed, StatusAssigned, StatusExpired, StatusRolled:
		return true
	}
	return false
}

// Trade represents one trade record: a sold option, a stock leg, or a
// dividend. Option analytics fields are nil for non-option rows.
//
// CommissionPerShare is frozen at write time from the account's commission
// schedule; later schedule changes never alter it, and a trade_date edit
// does not re-resolve it.
type Trade struct {
	ID                  int64    `json:"id"`
	AccountID           int64    `json:"account_id"`
	TickerID            int64    `json:"ticker_id"`
	Ticker              string   `json:"ticker,omitempty"`
	TradeType           string   `json:"trade_type"`
	TradeDate           string   `json:"trade_date"`                // YYYY-MM-DD
	ExpirationDate      *string  `json:"expiration_date,omitempty"` // YYYY-MM-DD, nil for stock legs
	NumOfContracts      int64    `json:"num_of_contracts"`          // shares for stock legs
	StrikePrice         float64  `json:"strike_price"`
	Premium             float64  `json:"premium"` // per share
	Status              string   `json:"status"`
	CommissionPerShare  float64  `json:"commission_per_share"`
	NetCreditPerShare   *float64 `json:"net_credit_per_share,omitempty"`
	RiskCapitalPerShare *float64 `json:"risk_capital_per_share,omitempty"`
	MarginCapital       *float64 `json:"margin_capital,omitempty"`
	MarginPercent       float64  `json:"margin_percent"`
	RORC                *float64 `json:"rorc,omitempty"`
	ARORC               *float64 `json:"arorc,omitempty"`
	TotalPremium        float64  `json:"total_premium"`
	TradeParentID       *int64   `json:"trade_parent_id,omitempty"`
	Seq                 int64    `json:"seq"`
	Notes               string   `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsOption reports whether the trade is a sold option position that
// carries risk/return analytics.
func (t *Trade) IsOption() bool {
	return t.TradeType == TypePutRoll || t.TradeType == TypeCallRoll
}

// IsStockLeg reports whether the trade moves shares directly.
func (t *Trade) IsStockLeg() bool {
	return t.TradeType == TypeBuyToOpen || t.TradeType == TypeSellToClose || t.TradeType == TypeAssigned
}

// StatusHistoryEntry records one status transition of a trade.
type StatusHistoryEntry struct {
	ID        int64     `json:"id"`
	TradeID   int64     `json:"trade_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// CreateTradeRequest is the payload for creating a trade.
// AccountID of zero selects the default account. CommissionPerShare, when
// supplied, overrides the schedule resolution.
type CreateTradeRequest struct {
	AccountID          int64    `json:"account_id"`
	Ticker             string   `json:"ticker"`
	TradeType          string   `json:"trade_type"`
	TradeDate          string   `json:"trade_date"`
	ExpirationDate     *string  `json:"expiration_date"`
	NumOfContracts     int64    `json:"num_of_contracts"`
	StrikePrice        float64  `json:"strike_price"`
	Premium            float64  `json:"premium"`
	Status             string   `json:"status"`
	MarginPercent      *float64 `json:"margin_percent"`
	CommissionPerShare *float64 `json:"commission_per_share"`
	Notes              string   `json:"notes"`
}

// UpdateTradeRequest is the payload for partial trade updates. Nil fields
// are left untouched. Commission changes only when explicitly supplied.
type UpdateTradeRequest struct {
	TradeDate          *string  `json:"trade_date"`
	ExpirationDate     *string  `json:"expiration_date"`
	NumOfContracts     *int64   `json:"num_of_contracts"`
	StrikePrice        *float64 `json:"strike_price"`
	Premium            *float64 `json:"premium"`
	Status             *string  `json:"status"`
	MarginPercent      *float64 `json:"margin_percent"`
	CommissionPerShare *float64 `json:"commission_per_share"`
	Notes              *string  `json:"notes"`
}

// RollTradeRequest is the payload for rolling an open option into a
// successor position. Contracts default to the predecessor's count.
type RollTradeRequest struct {
	TradeDate      string   `json:"trade_date"`
	ExpirationDate string   `json:"expiration_date"`
	StrikePrice    float64  `json:"strike_price"`
	Premium        float64  `json:"premium"`
	NumOfContracts *int64   `json:"num_of_contracts"`
	MarginPercent  *float64 `json:"margin_percent"`
}

// ValidationError represents a trade validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}
