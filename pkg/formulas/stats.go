package formulas

import (
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// WinRate calculates the percentage of wins over completed trades,
// rounded to 1 decimal. Returns 0 when there are no completed trades.
func WinRate(wins, completed int) float64 {
	if completed == 0 {
		return 0
	}
	return RoundPercent(float64(wins) / float64(completed) * 100)
}

// PremiumTrend smooths a daily premium series with a simple moving
// average. The result is aligned with the input; positions before the
// window has filled are zero. Series shorter than the period are
// returned as-is, unsmoothed.
func PremiumTrend(daily []float64, period int) []float64 {
	if period <= 1 || len(daily) < period {
		return daily
	}
	return talib.Sma(daily, period)
}
