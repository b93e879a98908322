package trades

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/modules/accounts"
	"github.com/greenmangroup/wheelhouse/internal/modules/cash_flows"
	"github.com/greenmangroup/wheelhouse/internal/modules/commissions"
	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
	"github.com/greenmangroup/wheelhouse/internal/utils"
	"github.com/greenmangroup/wheelhouse/pkg/formulas"
)

// LedgerRebuilder regenerates the cost basis partition affected by a trade
// mutation. Implemented by the ledger service; declared here to avoid a
// circular dependency between the trades and ledger packages.
type LedgerRebuilder interface {
	RebuildPartition(accountID, tickerID int64) error
}

// Service coordinates the trade lifecycle: validation, commission
// resolution, option analytics, derived cash flows, roll chains, and the
// synchronous ledger rebuild every mutation triggers.
//
// Every mutating method leaves the cost basis ledger consistent with the
// committed trade data before it returns.
type Service struct {
	log         zerolog.Logger
	repo        *Repository
	accounts    *accounts.Repository
	tickers     *tickers.Repository
	commissions *commissions.Repository
	cashFlows   *cash_flows.Repository
	rebuilder   LedgerRebuilder
	bus         *events.Bus
}

// NewService creates a new trade service.
func NewService(
	repo *Repository,
	accountsRepo *accounts.Repository,
	tickersRepo *tickers.Repository,
	commissionsRepo *commissions.Repository,
	cashFlowsRepo *cash_flows.Repository,
	rebuilder LedgerRebuilder,
	bus *events.Bus,
	log zerolog.Logger,
) *Service {
	return &Service{
		log:         log.With().Str("service", "trades").Logger(),
		repo:        repo,
		accounts:    accountsRepo,
		tickers:     tickersRepo,
		commissions: commissionsRepo,
		cashFlows:   cashFlowsRepo,
		rebuilder:   rebuilder,
		bus:         bus,
	}
}

// Get retrieves a trade by ID, nil when not found.
func (s *Service) Get(id int64) (*Trade, error) {
	return s.repo.GetByID(id)
}

// List retrieves trades matching the filter.
func (s *Service) List(filter ListFilter) ([]Trade, error) {
	return s.repo.List(filter)
}

// StatusHistory retrieves a trade's status transitions.
func (s *Service) StatusHistory(tradeID int64) ([]StatusHistoryEntry, error) {
	return s.repo.GetStatusHistory(tradeID)
}

// Create validates and persists a new trade, resolves and freezes its
// commission, computes option analytics, writes the premium cash flow for
// option credits, and rebuilds the affected ledger partition.
func (s *Service) Create(req CreateTradeRequest) (*Trade, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	account, err := s.resolveAccount(req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ValidationError{Field: "account_id", Message: "account not found"}
	}

	ticker, err := s.tickers.GetOrCreate(req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ticker: %w", err)
	}

	status := req.Status
	if status == "" {
		status = StatusOpen
	}

	marginPercent := 100.0
	if req.MarginPercent != nil {
		marginPercent = *req.MarginPercent
	}

	trade := &Trade{
		AccountID:      account.ID,
		TickerID:       ticker.ID,
		Ticker:         ticker.Symbol,
		TradeType:      req.TradeType,
		TradeDate:      req.TradeDate,
		ExpirationDate: req.ExpirationDate,
		NumOfContracts: req.NumOfContracts,
		StrikePrice:    req.StrikePrice,
		Premium:        req.Premium,
		Status:         status,
		MarginPercent:  marginPercent,
		Notes:          req.Notes,
	}

	// Commission is frozen at write time. An explicit value wins; otherwise
	// option trades resolve the account schedule as of the trade date.
	if req.CommissionPerShare != nil {
		trade.CommissionPerShare = *req.CommissionPerShare
	} else if trade.IsOption() {
		tradeDateUnix, err := utils.DateToUnix(trade.TradeDate)
		if err != nil {
			return nil, ValidationError{Field: "trade_date", Message: "must be YYYY-MM-DD"}
		}
		rate, err := s.commissions.Resolve(account.ID, tradeDateUnix)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve commission: %w", err)
		}
		trade.CommissionPerShare = rate
	}

	s.applyAnalytics(trade)

	created, err := s.repo.Create(trade)
	if err != nil {
		return nil, err
	}

	if created.IsOption() && created.TotalPremium > 0 {
		if err := s.writePremiumFlow(created); err != nil {
			return nil, err
		}
	}
	if created.IsOption() && created.Status == StatusAssigned {
		if err := s.writeAssignmentFlow(created); err != nil {
			return nil, err
		}
	}

	if err := s.rebuild(created.AccountID, created.TickerID); err != nil {
		return nil, err
	}

	s.bus.EmitData("trades", &events.TradeCreatedData{
		TradeID:      created.ID,
		Account:      account.Name,
		Ticker:       ticker.Symbol,
		TradeType:    created.TradeType,
		Status:       created.Status,
		TotalPremium: created.TotalPremium,
	})

	s.log.Info().
		Int64("trade_id", created.ID).
		Str("ticker", ticker.Symbol).
		Str("trade_type", created.TradeType).
		Float64("total_premium", created.TotalPremium).
		Msg("Trade created")

	return created, nil
}

// Update applies a partial edit to a trade. Analytics are recomputed when
// trade_date, expiration_date, strike_price, premium, contract count, or
// commission changes; an edited trade_date does NOT re-resolve the frozen
// commission. Status transitions are recorded in the history table, and
// assignment transitions maintain the settlement cash flow. The ledger
// partition is rebuilt before returning.
func (s *Service) Update(id int64, req UpdateTradeRequest) (*Trade, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if err := validateUpdate(existing, req); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	analyticsChanged := false

	if req.TradeDate != nil && *req.TradeDate != existing.TradeDate {
		fields["trade_date"] = *req.TradeDate
		existing.TradeDate = *req.TradeDate
		analyticsChanged = true
	}
	if req.ExpirationDate != nil {
		if existing.ExpirationDate == nil || *req.ExpirationDate != *existing.ExpirationDate {
			fields["expiration_date"] = *req.ExpirationDate
			existing.ExpirationDate = req.ExpirationDate
			analyticsChanged = true
		}
	}
	if req.NumOfContracts != nil && *req.NumOfContracts != existing.NumOfContracts {
		fields["num_of_contracts"] = *req.NumOfContracts
		existing.NumOfContracts = *req.NumOfContracts
		analyticsChanged = true
	}
	if req.StrikePrice != nil && *req.StrikePrice != existing.StrikePrice {
		fields["strike_price"] = *req.StrikePrice
		existing.StrikePrice = *req.StrikePrice
		analyticsChanged = true
	}
	if req.Premium != nil && *req.Premium != existing.Premium {
		fields["premium"] = *req.Premium
		existing.Premium = *req.Premium
		analyticsChanged = true
	}
	if req.CommissionPerShare != nil && *req.CommissionPerShare != existing.CommissionPerShare {
		fields["commission_per_share"] = *req.CommissionPerShare
		existing.CommissionPerShare = *req.CommissionPerShare
		analyticsChanged = true
	}
	if req.MarginPercent != nil && *req.MarginPercent != existing.MarginPercent {
		fields["margin_percent"] = *req.MarginPercent
		existing.MarginPercent = *req.MarginPercent
		analyticsChanged = true
	}
	if req.Notes != nil && *req.Notes != existing.Notes {
		fields["notes"] = nullString(*req.Notes)
	}

	oldTotalPremium := existing.TotalPremium
	if analyticsChanged {
		s.applyAnalytics(existing)
		fields["net_credit_per_share"] = existing.NetCreditPerShare
		fields["risk_capital_per_share"] = existing.RiskCapitalPerShare
		fields["margin_capital"] = existing.MarginCapital
		fields["rorc"] = existing.RORC
		fields["arorc"] = existing.ARORC
		fields["total_premium"] = existing.TotalPremium
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}

	oldStatus := existing.Status
	statusChanged := req.Status != nil && *req.Status != existing.Status
	if statusChanged {
		if err := s.repo.UpdateStatus(id, oldStatus, *req.Status); err != nil {
			return nil, err
		}
		existing.Status = *req.Status
	}

	// Keep derived cash flows in step with the edited trade.
	if existing.IsOption() {
		if analyticsChanged && existing.TotalPremium != oldTotalPremium {
			if err := s.refreshPremiumFlow(existing); err != nil {
				return nil, err
			}
		}
		becameAssigned := statusChanged && existing.Status == StatusAssigned
		leftAssigned := statusChanged && oldStatus == StatusAssigned
		assignedEdited := analyticsChanged && existing.Status == StatusAssigned && !statusChanged
		switch {
		case becameAssigned, assignedEdited:
			if err := s.refreshAssignmentFlow(existing); err != nil {
				return nil, err
			}
		case leftAssigned:
			if err := s.clearAssignmentFlow(existing.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.rebuild(existing.AccountID, existing.TickerID); err != nil {
		return nil, err
	}

	accountName := s.accountName(existing.AccountID)
	s.bus.EmitData("trades", &events.TradeUpdatedData{
		TradeID: existing.ID,
		Account: accountName,
		Ticker:  existing.Ticker,
	})
	if statusChanged {
		s.bus.EmitData("trades", &events.TradeStatusChangedData{
			TradeID:   existing.ID,
			Account:   accountName,
			Ticker:    existing.Ticker,
			OldStatus: oldStatus,
			NewStatus: existing.Status,
		})
	}

	s.log.Info().Int64("trade_id", id).Bool("analytics_recomputed", analyticsChanged).Msg("Trade updated")

	return s.repo.GetByID(id)
}

// Delete removes a trade together with its derived cash flows and rebuilds
// the affected ledger partition. Trades with roll successors are protected:
// deleting a chain link would orphan the successor's parent reference.
func (s *Service) Delete(id int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %d", ErrTradeNotFound, id)
	}

	children, err := s.repo.GetChildren(id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ValidationError{Field: "id", Message: "trade has roll successors and cannot be deleted"}
	}

	if _, err := s.cashFlows.DeleteByTradeID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if err := s.rebuild(existing.AccountID, existing.TickerID); err != nil {
		return err
	}

	s.bus.EmitData("trades", &events.TradeDeletedData{
		TradeID: id,
		Account: s.accountName(existing.AccountID),
		Ticker:  existing.Ticker,
	})

	s.log.Info().Int64("trade_id", id).Str("ticker", existing.Ticker).Msg("Trade deleted")

	return nil
}

// Roll closes an open option position into a successor: the successor is
// created with trade_parent_id pointing at the predecessor, a freshly
// resolved commission, and its own analytics and premium flow; the
// predecessor is then frozen in "rolled" status permanently.
func (s *Service) Roll(id int64, req RollTradeRequest) (*Trade, error) {
	predecessor, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if predecessor == nil {
		return nil, nil
	}

	if !predecessor.IsOption() {
		return nil, ValidationError{Field: "id", Message: "only option trades can be rolled"}
	}
	if predecessor.Status != StatusOpen {
		return nil, ValidationError{Field: "status", Message: fmt.Sprintf("only open trades can be rolled, status is %q", predecessor.Status)}
	}
	if err := validateRoll(req); err != nil {
		return nil, err
	}

	contracts := predecessor.NumOfContracts
	if req.NumOfContracts != nil {
		contracts = *req.NumOfContracts
	}
	marginPercent := predecessor.MarginPercent
	if req.MarginPercent != nil {
		marginPercent = *req.MarginPercent
	}

	successor := &Trade{
		AccountID:      predecessor.AccountID,
		TickerID:       predecessor.TickerID,
		Ticker:         predecessor.Ticker,
		TradeType:      predecessor.TradeType,
		TradeDate:      req.TradeDate,
		ExpirationDate: &req.ExpirationDate,
		NumOfContracts: contracts,
		StrikePrice:    req.StrikePrice,
		Premium:        req.Premium,
		Status:         StatusOpen,
		MarginPercent:  marginPercent,
		TradeParentID:  &predecessor.ID,
	}

	// The successor gets a fresh schedule resolution as of its own date;
	// the predecessor's frozen rate is never inherited.
	tradeDateUnix, err := utils.DateToUnix(successor.TradeDate)
	if err != nil {
		return nil, ValidationError{Field: "trade_date", Message: "must be YYYY-MM-DD"}
	}
	rate, err := s.commissions.Resolve(successor.AccountID, tradeDateUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commission: %w", err)
	}
	successor.CommissionPerShare = rate

	s.applyAnalytics(successor)

	created, err := s.repo.Create(successor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(predecessor.ID, predecessor.Status, StatusRolled); err != nil {
		return nil, err
	}

	if created.TotalPremium > 0 {
		flow := &cash_flows.CashFlow{
			AccountID:   created.AccountID,
			TickerID:    &created.TickerID,
			TradeID:     &created.ID,
			FlowType:    cash_flows.FlowPremiumCredit,
			Amount:      created.TotalPremium,
			Date:        created.TradeDate,
			Description: RollDescription(created, predecessor),
		}
		if _, err := s.cashFlows.Create(flow); err != nil {
			return nil, fmt.Errorf("failed to write premium flow: %w", err)
		}
	}

	if err := s.rebuild(created.AccountID, created.TickerID); err != nil {
		return nil, err
	}

	s.bus.EmitData("trades", &events.TradeRolledData{
		PredecessorID: predecessor.ID,
		SuccessorID:   created.ID,
		Account:       s.accountName(created.AccountID),
		Ticker:        created.Ticker,
	})

	s.log.Info().
		Int64("predecessor_id", predecessor.ID).
		Int64("successor_id", created.ID).
		Str("ticker", created.Ticker).
		Msg("Trade rolled")

	return created, nil
}

// applyAnalytics computes the derived fields for a trade. Option trades get
// the full risk/return chain; stock legs and dividends carry only the total.
func (s *Service) applyAnalytics(t *Trade) {
	t.TotalPremium = formulas.TotalPremium(t.Premium, t.NumOfContracts, t.IsOption())

	if !t.IsOption() {
		t.NetCreditPerShare = nil
		t.RiskCapitalPerShare = nil
		t.MarginCapital = nil
		t.RORC = nil
		t.ARORC = nil
		return
	}

	dte := 0
	if t.ExpirationDate != nil {
		tradeUnix, err1 := utils.DateToUnix(t.TradeDate)
		expUnix, err2 := utils.DateToUnix(*t.ExpirationDate)
		if err1 == nil && err2 == nil {
			dte = utils.DaysBetweenUnix(tradeUnix, expUnix)
		}
	}

	m := formulas.ComputeOption(formulas.OptionInputs{
		Premium:            t.Premium,
		CommissionPerShare: t.CommissionPerShare,
		StrikePrice:        t.StrikePrice,
		Contracts:          t.NumOfContracts,
		DaysToExpiration:   dte,
		MarginPercent:      t.MarginPercent,
	})

	t.NetCreditPerShare = &m.NetCreditPerShare
	t.RiskCapitalPerShare = &m.RiskCapitalPerShare
	t.MarginCapital = &m.MarginCapital
	t.RORC = &m.RORC
	t.ARORC = m.ARORC
}

// writePremiumFlow records the gross credit collected when an option is sold.
func (s *Service) writePremiumFlow(t *Trade) error {
	flow := &cash_flows.CashFlow{
		AccountID:   t.AccountID,
		TickerID:    &t.TickerID,
		TradeID:     &t.ID,
		FlowType:    cash_flows.FlowPremiumCredit,
		Amount:      t.TotalPremium,
		Date:        t.TradeDate,
		Description: OptionOpenDescription(t),
	}
	if _, err := s.cashFlows.Create(flow); err != nil {
		return fmt.Errorf("failed to write premium flow: %w", err)
	}
	return nil
}

// refreshPremiumFlow rewrites the premium flow after an edit changed the
// trade's total premium.
func (s *Service) refreshPremiumFlow(t *Trade) error {
	if _, err := s.cashFlows.DeleteByTradeAndType(t.ID, cash_flows.FlowPremiumCredit); err != nil {
		return err
	}
	if t.TotalPremium > 0 {
		return s.writePremiumFlow(t)
	}
	return nil
}

// writeAssignmentFlow records the share settlement of an assigned option:
// an assigned put buys stock at the strike, an assigned call sells it.
// Dated at expiration, when assignment settles.
func (s *Service) writeAssignmentFlow(t *Trade) error {
	flowType := cash_flows.FlowBuy
	if t.TradeType == TypeCallRoll {
		flowType = cash_flows.FlowSell
	}

	date := t.TradeDate
	if t.ExpirationDate != nil {
		date = *t.ExpirationDate
	}

	amount := formulas.RoundCurrency(t.StrikePrice * float64(t.NumOfContracts) * formulas.SharesPerContract)

	flow := &cash_flows.CashFlow{
		AccountID:   t.AccountID,
		TickerID:    &t.TickerID,
		TradeID:     &t.ID,
		FlowType:    flowType,
		Amount:      amount,
		Date:        date,
		Description: AssignedDescription(t),
	}
	if _, err := s.cashFlows.Create(flow); err != nil {
		return fmt.Errorf("failed to write assignment flow: %w", err)
	}
	return nil
}

// refreshAssignmentFlow rewrites the settlement flow after an assignment or
// an edit to an assigned trade's terms.
func (s *Service) refreshAssignmentFlow(t *Trade) error {
	if err := s.clearAssignmentFlow(t.ID); err != nil {
		return err
	}
	return s.writeAssignmentFlow(t)
}

// clearAssignmentFlow removes the settlement flow when an assignment is
// reversed.
func (s *Service) clearAssignmentFlow(tradeID int64) error {
	if _, err := s.cashFlows.DeleteByTradeAndType(tradeID, cash_flows.FlowBuy); err != nil {
		return err
	}
	if _, err := s.cashFlows.DeleteByTradeAndType(tradeID, cash_flows.FlowSell); err != nil {
		return err
	}
	return nil
}

// rebuild regenerates the ledger partition synchronously. A trade mutation
// is not complete until the partition reflects it.
func (s *Service) rebuild(accountID, tickerID int64) error {
	if s.rebuilder == nil {
		return nil
	}
	if err := s.rebuilder.RebuildPartition(accountID, tickerID); err != nil {
		return fmt.Errorf("failed to rebuild ledger partition: %w", err)
	}
	return nil
}

// resolveAccount loads the requested account, or the default when id is 0.
func (s *Service) resolveAccount(id int64) (*accounts.Account, error) {
	if id == 0 {
		return s.accounts.GetDefault()
	}
	return s.accounts.GetByID(id)
}

// accountName resolves an account's display name for event payloads.
func (s *Service) accountName(id int64) string {
	account, err := s.accounts.GetByID(id)
	if err != nil || account == nil {
		return ""
	}
	return account.Name
}

// validateCreate checks a create request field by field.
func validateCreate(req CreateTradeRequest) error {
	var errs ValidationErrors

	if req.Ticker == "" {
		errs = append(errs, ValidationError{Field: "ticker", Message: "ticker is required"})
	}
	if !ValidTradeType(req.TradeType) {
		errs = append(errs, ValidationError{Field: "trade_type", Message: fmt.Sprintf("unknown trade type %q", req.TradeType)})
	}
	if req.TradeDate == "" {
		errs = append(errs, ValidationError{Field: "trade_date", Message: "trade_date is required"})
	} else if _, err := utils.DateToUnix(req.TradeDate); err != nil {
		errs = append(errs, ValidationError{Field: "trade_date", Message: "must be YYYY-MM-DD"})
	}
	if req.Status != "" && !ValidStatus(req.Status) {
		errs = append(errs, ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", req.Status)})
	}
	if req.NumOfContracts <= 0 {
		errs = append(errs, ValidationError{Field: "num_of_contracts", Message: "must be greater than 0"})
	}
	if !finite(req.Premium) || req.Premium < 0 {
		errs = append(errs, ValidationError{Field: "premium", Message: "must be a non-negative number"})
	}
	if req.MarginPercent != nil && (*req.MarginPercent <= 0 || !finite(*req.MarginPercent)) {
		errs = append(errs, ValidationError{Field: "margin_percent", Message: "must be greater than 0"})
	}
	if req.CommissionPerShare != nil && (*req.CommissionPerShare < 0 || !finite(*req.CommissionPerShare)) {
		errs = append(errs, ValidationError{Field: "commission_per_share", Message: "must be a non-negative number"})
	}

	if req.TradeType == TypePutRoll || req.TradeType == TypeCallRoll {
		if req.StrikePrice <= 0 {
			errs = append(errs, ValidationError{Field: "strike_price", Message: "must be greater than 0"})
		}
		if req.ExpirationDate == nil || *req.ExpirationDate == "" {
			errs = append(errs, ValidationError{Field: "expiration_date", Message: "expiration_date is required for options"})
		} else if _, err := utils.DateToUnix(*req.ExpirationDate); err != nil {
			errs = append(errs, ValidationError{Field: "expiration_date", Message: "must be YYYY-MM-DD"})
		}
	} else if req.ExpirationDate != nil && *req.ExpirationDate != "" {
		if _, err := utils.DateToUnix(*req.ExpirationDate); err != nil {
			errs = append(errs, ValidationError{Field: "expiration_date", Message: "must be YYYY-MM-DD"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateUpdate checks the supplied fields of a partial update against the
// trade they will land on.
func validateUpdate(existing *Trade, req UpdateTradeRequest) error {
	var errs ValidationErrors

	if existing.Status == StatusRolled {
		return ValidationError{Field: "status", Message: "rolled trades are frozen"}
	}

	if req.TradeDate != nil {
		if _, err := utils.DateToUnix(*req.TradeDate); err != nil {
			errs = append(errs, ValidationError{Field: "trade_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if req.ExpirationDate != nil {
		if _, err := utils.DateToUnix(*req.ExpirationDate); err != nil {
			errs = append(errs, ValidationError{Field: "expiration_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if req.NumOfContracts != nil && *req.NumOfContracts <= 0 {
		errs = append(errs, ValidationError{Field: "num_of_contracts", Message: "must be greater than 0"})
	}
	if req.StrikePrice != nil && existing.IsOption() && *req.StrikePrice <= 0 {
		errs = append(errs, ValidationError{Field: "strike_price", Message: "must be greater than 0"})
	}
	if req.Premium != nil && (!finite(*req.Premium) || *req.Premium < 0) {
		errs = append(errs, ValidationError{Field: "premium", Message: "must be a non-negative number"})
	}
	if req.MarginPercent != nil && (*req.MarginPercent <= 0 || !finite(*req.MarginPercent)) {
		errs = append(errs, ValidationError{Field: "margin_percent", Message: "must be greater than 0"})
	}
	if req.CommissionPerShare != nil && (*req.CommissionPerShare < 0 || !finite(*req.CommissionPerShare)) {
		errs = append(errs, ValidationError{Field: "commission_per_share", Message: "must be a non-negative number"})
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			errs = append(errs, ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *req.Status)})
		} else if *req.Status == StatusRolled && existing.Status != StatusRolled {
			errs = append(errs, ValidationError{Field: "status", Message: "trades are rolled through the roll operation, not a status edit"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRoll checks a roll request.
func validateRoll(req RollTradeRequest) error {
	var errs ValidationErrors

	if req.TradeDate == "" {
		errs = append(errs, ValidationError{Field: "trade_date", Message: "trade_date is required"})
	} else if _, err := utils.DateToUnix(req.TradeDate); err != nil {
		errs = append(errs, ValidationError{Field: "trade_date", Message: "must be YYYY-MM-DD"})
	}
	if req.ExpirationDate == "" {
		errs = append(errs, ValidationError{Field: "expiration_date", Message: "expiration_date is required"})
	} else if _, err := utils.DateToUnix(req.ExpirationDate); err != nil {
		errs = append(errs, ValidationError{Field: "expiration_date", Message: "must be YYYY-MM-DD"})
	}
	if req.StrikePrice <= 0 {
		errs = append(errs, ValidationError{Field: "strike_price", Message: "must be greater than 0"})
	}
	if !finite(req.Premium) || req.Premium < 0 {
		errs = append(errs, ValidationError{Field: "premium", Message: "must be a non-negative number"})
	}
	if req.NumOfContracts != nil && *req.NumOfContracts <= 0 {
		errs = append(errs, ValidationError{Field: "num_of_contracts", Message: "must be greater than 0"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
