package formulas

import "github.com/shopspring/decimal"

// SharesPerContract is the standard equity option multiplier.
const SharesPerContract = 100

// daysPerYear is the annualization basis for ARORC.
const daysPerYear = 365

// OptionInputs holds the raw parameters of a cash-secured option trade.
// Premium and commission are per-share amounts.
type OptionInputs struct {
	Premium            float64
	CommissionPerShare float64
	StrikePrice        float64
	Contracts          int64
	DaysToExpiration   int
	MarginPercent      float64 // 0 means the default of 100
}

// OptionMetrics holds the derived risk/return fields for one option trade.
// All values are already rounded: currency to 2 decimals, percentages to 1,
// both half-up. ARORC is nil when days-to-expiration is not positive.
type OptionMetrics struct {
	NetCreditPerShare   float64
	RiskCapitalPerShare float64
	MarginCapital       float64
	RORC                float64
	ARORC               *float64
	MarginAdjustedRORC  float64
}

// NetCredit calculates the per-share credit retained after commission.
//
// Formula: net_credit = premium - commission_per_share
func NetCredit(premium, commissionPerShare float64) float64 {
	return decimal.NewFromFloat(premium).
		Sub(decimal.NewFromFloat(commissionPerShare)).
		InexactFloat64()
}

// RiskCapital calculates the per-share capital securing the position.
// The same strike-minus-credit formula applies to puts and calls.
//
// Formula: risk_capital = strike_price - net_credit
func RiskCapital(strikePrice, netCredit float64) float64 {
	return decimal.NewFromFloat(strikePrice).
		Sub(decimal.NewFromFloat(netCredit)).
		InexactFloat64()
}

// MarginCapital calculates the total capital reserved for the trade.
// Uses the unrounded risk capital so multi-contract positions don't
// accumulate rounding drift.
//
// Formula: margin_capital = risk_capital * contracts * 100
func MarginCapital(riskCapital float64, contracts int64) float64 {
	return decimal.NewFromFloat(riskCapital).
		Mul(decimal.NewFromInt(contracts * SharesPerContract)).
		Round(2).InexactFloat64()
}

// RORC calculates the return on risk capital as a percentage.
// Zero risk capital yields 0, never a division error.
//
// Formula: RORC% = (net_credit / risk_capital) * 100
func RORC(netCredit, riskCapital float64) float64 {
	if riskCapital == 0 {
		return 0
	}
	return decimal.NewFromFloat(netCredit).
		Div(decimal.NewFromFloat(riskCapital)).
		Mul(decimal.NewFromInt(100)).
		Round(1).InexactFloat64()
}

// ARORC annualizes a rounded RORC percentage over the trade's lifetime.
// Returns nil when daysToExpiration is zero or negative; the field stays
// unset rather than reporting a misleading 0.
//
// Formula: ARORC% = (365 / days_to_expiration) * RORC%
func ARORC(rorc float64, daysToExpiration int) *float64 {
	if daysToExpiration <= 0 {
		return nil
	}
	v := decimal.NewFromInt(daysPerYear).
		Div(decimal.NewFromInt(int64(daysToExpiration))).
		Mul(decimal.NewFromFloat(rorc)).
		Round(1).InexactFloat64()
	return &v
}

// MarginAdjustedRORC calculates RORC against the margin-efficiency
// denominator risk_capital * (margin_percent / 100). With the default
// margin of 100% this equals plain RORC.
func MarginAdjustedRORC(netCredit, riskCapital, marginPercent float64) float64 {
	if marginPercent <= 0 {
		marginPercent = 100
	}
	denominator := decimal.NewFromFloat(riskCapital).
		Mul(decimal.NewFromFloat(marginPercent)).
		Div(decimal.NewFromInt(100))
	if denominator.IsZero() {
		return 0
	}
	return decimal.NewFromFloat(netCredit).
		Div(denominator).
		Mul(decimal.NewFromInt(100)).
		Round(1).InexactFloat64()
}

// TotalPremium calculates the full dollar premium of a trade. Option
// contracts control 100 shares; stock legs trade share-for-share.
func TotalPremium(premium float64, contracts int64, isOption bool) float64 {
	multiplier := contracts
	if isOption {
		multiplier = contracts * SharesPerContract
	}
	return decimal.NewFromFloat(premium).
		Mul(decimal.NewFromInt(multiplier)).
		Round(2).InexactFloat64()
}

// ComputeOption derives the full metric set for one option trade.
// The net-credit/risk-capital chain stays unrounded internally; only the
// persisted fields are rounded. ARORC annualizes the rounded
// margin-adjusted figure, which at the default 100% margin is plain RORC.
func ComputeOption(in OptionInputs) OptionMetrics {
	netCredit := NetCredit(in.Premium, in.CommissionPerShare)
	riskCapital := RiskCapital(in.StrikePrice, netCredit)
	rorc := RORC(netCredit, riskCapital)
	marginAdjusted := MarginAdjustedRORC(netCredit, riskCapital, in.MarginPercent)

	return OptionMetrics{
		NetCreditPerShare:   RoundCurrency(netCredit),
		RiskCapitalPerShare: RoundCurrency(riskCapital),
		MarginCapital:       MarginCapital(riskCapital, in.Contracts),
		RORC:                rorc,
		ARORC:               ARORC(marginAdjusted, in.DaysToExpiration),
		MarginAdjustedRORC:  marginAdjusted,
	}
}
