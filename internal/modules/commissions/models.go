// Package commissions manages per-account commission schedules and resolves
// the rate in effect for a trade date.
package commissions

import "time"

// Commission is one row of an account's commission schedule. Rate is the
// per-share commission that takes effect on EffectiveDate.
type Commission struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"account_id"`
	Rate          float64   `json:"rate"`
	EffectiveDate int64     `json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateCommissionRequest is the payload for adding a schedule entry
type CreateCommissionRequest struct {
	AccountID     int64   `json:"account_id"`
	Rate          float64 `json:"rate"`
	EffectiveDate string  `json:"effective_date"`
}
