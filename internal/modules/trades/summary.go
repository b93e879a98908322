package trades

import (
	"sort"
	"time"

	"github.com/greenmangroup/wheelhouse/pkg/formulas"
)

// Summary aggregates option trade performance. Stock legs and rolled
// chain links are excluded: a rolled trade's economics continue in its
// successor, so counting both would double the position.
type Summary struct {
	TotalTrades    int      `json:"total_trades"`
	OpenTrades     int      `json:"open_trades"`
	ClosedTrades   int      `json:"closed_trades"`
	AssignedTrades int      `json:"assigned_trades"`
	ExpiredTrades  int      `json:"expired_trades"`
	Wins           int      `json:"wins"`
	Losses         int      `json:"losses"`
	WinningPercent float64  `json:"winning_percent"`
	TotalPremium   float64  `json:"total_premium"`
	TotalNetCredit float64  `json:"total_net_credit"`
	MarginInUse    float64  `json:"margin_in_use"`
	ARORCMean      *float64 `json:"arorc_mean,omitempty"`
	ARORCStdDev    *float64 `json:"arorc_std_dev,omitempty"`
	DaysDone       int      `json:"days_done"`
	DaysRemaining  int      `json:"days_remaining"`
}

// Summary computes aggregate performance for the trades matching the
// filter, as of now.
func (s *Service) Summary(filter ListFilter) (*Summary, error) {
	return s.summaryAsOf(filter, time.Now().UTC())
}

// summaryAsOf is the clock-injected implementation behind Summary.
func (s *Service) summaryAsOf(filter ListFilter, now time.Time) (*Summary, error) {
	all, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var arorcs []float64

	for i := range all {
		t := &all[i]
		if !t.IsOption() || t.Status == StatusRolled {
			continue
		}

		summary.TotalTrades++
		summary.TotalPremium = formulas.RoundCurrency(summary.TotalPremium + t.TotalPremium)
		if t.NetCreditPerShare != nil {
			credit := *t.NetCreditPerShare * float64(t.NumOfContracts*formulas.SharesPerContract)
			summary.TotalNetCredit = formulas.RoundCurrency(summary.TotalNetCredit + credit)
		}

		switch t.Status {
		case StatusOpen:
			summary.OpenTrades++
			if t.MarginCapital != nil {
				summary.MarginInUse = formulas.RoundCurrency(summary.MarginInUse + *t.MarginCapital)
			}
		case StatusClosed:
			summary.ClosedTrades++
		case StatusAssigned:
			summary.AssignedTrades++
			if t.MarginCapital != nil {
				summary.MarginInUse = formulas.RoundCurrency(summary.MarginInUse + *t.MarginCapital)
			}
		case StatusExpired:
			summary.ExpiredTrades++
		}

		if t.Status != StatusOpen && t.TotalPremium > 0 {
			summary.Wins++
		}
		if t.ARORC != nil {
			arorcs = append(arorcs, *t.ARORC)
		}
	}

	completed := summary.ClosedTrades + summary.AssignedTrades + summary.ExpiredTrades
	summary.Losses = completed - summary.Wins
	summary.WinningPercent = formulas.WinRate(summary.Wins, completed)

	if len(arorcs) > 0 {
		mean := formulas.RoundPercent(formulas.Mean(arorcs))
		summary.ARORCMean = &mean
	}
	if len(arorcs) > 1 {
		stddev := formulas.RoundPercent(formulas.StdDev(arorcs))
		summary.ARORCStdDev = &stddev
	}

	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC)
	summary.DaysDone = int(now.Sub(yearStart).Hours() / 24)
	summary.DaysRemaining = int(yearEnd.Sub(now).Hours() / 24)

	return summary, nil
}

// ChartPoint is one day of collected premium with its smoothed trend.
type ChartPoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Premium float64 `json:"premium"`
	Trend   float64 `json:"trend"`
}

// premiumTrendPeriod is the moving-average window for the premium chart.
const premiumTrendPeriod = 7

// PremiumChart returns the daily collected premium of the matching option
// trades with a moving-average trend line.
func (s *Service) PremiumChart(filter ListFilter) ([]ChartPoint, error) {
	all, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]float64)
	for i := range all {
		t := &all[i]
		if !t.IsOption() {
			continue
		}
		daily[t.TradeDate] = formulas.RoundCurrency(daily[t.TradeDate] + t.TotalPremium)
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	premiums := make([]float64, len(dates))
	for i, date := range dates {
		premiums[i] = daily[date]
	}

	trend := formulas.PremiumTrend(premiums, premiumTrendPeriod)

	points := make([]ChartPoint, len(dates))
	for i, date := range dates {
		points[i] = ChartPoint{
			Date:    date,
			Premium: premiums[i],
			Trend:   formulas.RoundCurrency(trend[i]),
		}
	}
	return points, nil
}
