// Package tickers manages the ticker symbol catalog and company name lookups.
package tickers

import "time"

// Ticker represents a tracked symbol
type Ticker struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TopSymbol is one row of the most-traded symbols summary
type TopSymbol struct {
	Symbol          string `json:"symbol"`
	CompanyName     string `json:"company_name,omitempty"`
	TradeCount      int    `json:"trade_count"`
	HasOpenTrade    bool   `json:"has_open_trade"`
	StaleAssignment bool   `json:"stale_assignment"`
}
