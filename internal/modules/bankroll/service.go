// Package bankroll computes account capital: what the account holds,
// what open positions reserve, and what remains deployable. It is a pure
// read-side aggregator over already-persisted trades and cash flows.
package bankroll

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/modules/accounts"
	"github.com/greenmangroup/wheelhouse/internal/modules/cash_flows"
	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	"github.com/greenmangroup/wheelhouse/pkg/formulas"
)

// Status filters for the used-in-trades side. The filter narrows which
// trades reserve capital; it never changes the total bankroll.
const (
	FilterOpen      = "open"
	FilterCompleted = "completed"
)

// Bankroll is the capital summary for one account over a date range.
type Bankroll struct {
	AccountID       int64              `json:"account_id"`
	StartingBalance float64            `json:"starting_balance"`
	Total           float64            `json:"total"`
	Used            float64            `json:"used"`
	Available       float64            `json:"available"`
	FlowsByType     map[string]float64 `json:"flows_by_type,omitempty"`
}

// Service computes bankroll summaries.
type Service struct {
	log       zerolog.Logger
	accounts  *accounts.Repository
	cashFlows *cash_flows.Repository
	trades    *trades.Repository
}

// NewService creates a new bankroll service.
func NewService(
	accountsRepo *accounts.Repository,
	cashFlowsRepo *cash_flows.Repository,
	tradesRepo *trades.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		log:       log.With().Str("service", "bankroll").Logger(),
		accounts:  accountsRepo,
		cashFlows: cashFlowsRepo,
		trades:    tradesRepo,
	}
}

// Get computes an account's bankroll. startDate and endDate (YYYY-MM-DD,
// either may be empty) bound the cash flows feeding the total;
// statusFilter selects which trades count as using capital:
//
//	"open"      - open trades only
//	"completed" - closed and assigned trades
//	""          - open and assigned (capital currently committed)
func (s *Service) Get(accountID int64, startDate, endDate, statusFilter string) (*Bankroll, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %d", accountID)
	}

	flowSum, err := s.cashFlows.SumSigned(accountID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash flows: %w", err)
	}

	statuses, err := statusesFor(statusFilter)
	if err != nil {
		return nil, err
	}

	used, err := s.trades.SumMarginCapital(accountID, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to sum margin capital: %w", err)
	}

	byType, err := s.cashFlows.SumByType(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash flows by type: %w", err)
	}

	total := formulas.RoundCurrency(account.StartingBalance + flowSum)
	used = formulas.RoundCurrency(used)

	return &Bankroll{
		AccountID:       accountID,
		StartingBalance: account.StartingBalance,
		Total:           total,
		Used:            used,
		Available:       formulas.RoundCurrency(total - used),
		FlowsByType:     byType,
	}, nil
}

// GetDefault computes the bankroll of the default account.
func (s *Service) GetDefault(startDate, endDate, statusFilter string) (*Bankroll, error) {
	account, err := s.accounts.GetDefault()
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("no default account configured")
	}
	return s.Get(account.ID, startDate, endDate, statusFilter)
}

// statusesFor maps a status filter to the trade statuses that reserve
// capital under it.
func statusesFor(filter string) ([]string, error) {
	switch filter {
	case FilterOpen:
		return []string{trades.StatusOpen}, nil
	case FilterCompleted:
		return []string{trades.StatusClosed, trades.StatusAssigned}, nil
	case "":
		return []string{trades.StatusOpen, trades.StatusAssigned}, nil
	}
	return nil, fmt.Errorf("unknown status filter %q", filter)
}
