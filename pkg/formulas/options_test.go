package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeOptionCashSecuredPut(t *testing.T) {
	// Two $50 puts sold at $1.00 with a $0.01/share commission, 30 days out.
	metrics := ComputeOption(OptionInputs{
		Premium:            1.00,
		CommissionPerShare: 0.01,
		StrikePrice:        50.00,
		Contracts:          2,
		DaysToExpiration:   30,
	})

	assert.Equal(t, 0.99, metrics.NetCreditPerShare)
	assert.Equal(t, 49.01, metrics.RiskCapitalPerShare)
	assert.Equal(t, 9802.00, metrics.MarginCapital)
	assert.Equal(t, 2.0, metrics.RORC)
	if assert.NotNil(t, metrics.ARORC) {
		assert.Equal(t, 24.3, *metrics.ARORC)
	}
	// Default 100% margin leaves the adjusted figure equal to RORC
	assert.Equal(t, 2.0, metrics.MarginAdjustedRORC)
}

func TestARORCUndefinedWithoutExpiration(t *testing.T) {
	metrics := ComputeOption(OptionInputs{
		Premium:            1.50,
		CommissionPerShare: 0.005,
		StrikePrice:        25.00,
		Contracts:          1,
		DaysToExpiration:   0,
	})

	assert.Nil(t, metrics.ARORC)
	assert.NotZero(t, metrics.RORC)

	metrics = ComputeOption(OptionInputs{
		Premium:            1.50,
		StrikePrice:        25.00,
		Contracts:          1,
		DaysToExpiration:   -3,
	})
	assert.Nil(t, metrics.ARORC)
}

func TestRORCZeroRiskCapital(t *testing.T) {
	// Strike fully financed by the credit: no capital at risk, 0 not a panic.
	assert.Equal(t, 0.0, RORC(5.00, 0))

	metrics := ComputeOption(OptionInputs{
		Premium:          5.00,
		StrikePrice:      5.00,
		Contracts:        1,
		DaysToExpiration: 30,
	})
	assert.Equal(t, 0.0, metrics.RORC)
	if assert.NotNil(t, metrics.ARORC) {
		assert.Equal(t, 0.0, *metrics.ARORC)
	}
}

func TestMarginAdjustedRORC(t *testing.T) {
	tests := []struct {
		name          string
		netCredit     float64
		riskCapital   float64
		marginPercent float64
		expected      float64
	}{
		{
			name:          "full margin equals plain RORC",
			netCredit:     0.99,
			riskCapital:   49.01,
			marginPercent: 100,
			expected:      2.0,
		},
		{
			name:          "20 percent margin requirement",
			netCredit:     0.99,
			riskCapital:   49.01,
			marginPercent: 20,
			expected:      10.1,
		},
		{
			name:          "zero margin falls back to default",
			netCredit:     0.99,
			riskCapital:   49.01,
			marginPercent: 0,
			expected:      2.0,
		},
		{
			name:          "zero risk capital guarded",
			netCredit:     1.00,
			riskCapital:   0,
			marginPercent: 100,
			expected:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarginAdjustedRORC(tt.netCredit, tt.riskCapital, tt.marginPercent)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMarginCapitalUsesUnroundedRiskCapital(t *testing.T) {
	// Commission of half a cent: risk capital displays as 49.01 but margin
	// is computed from the exact 49.005.
	netCredit := NetCredit(1.00, 0.005)
	riskCapital := RiskCapital(50.00, netCredit)

	assert.Equal(t, 0.995, netCredit)
	assert.Equal(t, 49.005, riskCapital)
	assert.Equal(t, 49.01, RoundCurrency(riskCapital))
	assert.Equal(t, 9801.00, MarginCapital(riskCapital, 2))
}

func TestTotalPremium(t *testing.T) {
	assert.Equal(t, 250.00, TotalPremium(2.50, 1, true))
	assert.Equal(t, 500.00, TotalPremium(50.00, 10, false))
	assert.Equal(t, 198.00, TotalPremium(0.99, 2, true))
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.115, 0.12},
		{0.114, 0.11},
		{69.835, 69.84},
		{33.895, 33.90},
		{26.385, 26.39},
		{-0.005, -0.01},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RoundCurrency(tt.input), "RoundCurrency(%v)", tt.input)
	}

	assert.Equal(t, 24.3, RoundPercent(24.333))
	assert.Equal(t, 2.0, RoundPercent(2.0199))
	assert.Equal(t, 24.6, RoundPercent(24.55))
}
