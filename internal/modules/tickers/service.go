package tickers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/clients/alphavantage"
)

// Service resolves company names for tickers, caching results in the
// tickers table so each symbol hits the API at most once.
type Service struct {
	repo   *Repository
	client alphavantage.ClientInterface
	log    zerolog.Logger
}

// NewService creates a new ticker service. The Alpha Vantage client may be
// nil when no API key is configured; lookups then fall back to the symbol.
func NewService(repo *Repository, client alphavantage.ClientInterface, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		client: client,
		log:    log.With().Str("service", "tickers").Logger(),
	}
}

// CompanyInfo returns the company name for a symbol. The stored name wins;
// otherwise the Alpha Vantage search result is cached and returned. Any
// lookup failure falls back to the bare symbol.
func (s *Service) CompanyInfo(ctx context.Context, symbol string) (*Ticker, error) {
	ticker, err := s.repo.GetOrCreate(symbol)
	if err != nil {
		return nil, err
	}

	if ticker.CompanyName != "" {
		return ticker, nil
	}

	if s.client == nil {
		ticker.CompanyName = ticker.Symbol
		return ticker, nil
	}

	name, err := s.client.SearchCompanyName(ctx, ticker.Symbol)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("symbol", ticker.Symbol).
			Msg("Company name lookup failed, falling back to symbol")
		ticker.CompanyName = ticker.Symbol
		return ticker, nil
	}

	if err := s.repo.UpdateCompanyName(ticker.ID, name); err != nil {
		s.log.Warn().Err(err).Str("symbol", ticker.Symbol).Msg("Failed to cache company name")
	}
	ticker.CompanyName = name

	return ticker, nil
}

// TopSymbols returns the most traded symbols
func (s *Service) TopSymbols(limit int) ([]TopSymbol, error) {
	return s.repo.TopSymbols(limit)
}
