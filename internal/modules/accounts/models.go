// Package accounts manages trading accounts and their starting balances.
package accounts

import "time"

// Account represents a trading account
type Account struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	StartingBalance float64   `json:"starting_balance"`
	IsDefault       bool      `json:"is_default"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateAccountRequest is the payload for creating an account
type CreateAccountRequest struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	StartingBalance float64 `json:"starting_balance"`
	IsDefault       bool    `json:"is_default"`
}
