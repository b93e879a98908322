package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.Equal(t, 4.0, Mean([]float64{2, 4, 6}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 2.0, StdDev([]float64{2, 4, 6}))
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 70.0, WinRate(7, 10))
	assert.Equal(t, 66.7, WinRate(2, 3))
	assert.Equal(t, 100.0, WinRate(5, 5))
}

func TestPremiumTrend(t *testing.T) {
	// Too short for the window: returned unsmoothed
	short := []float64{100, 200}
	assert.Equal(t, short, PremiumTrend(short, 5))

	smoothed := PremiumTrend([]float64{1, 2, 3, 4, 5}, 2)
	assert.Len(t, smoothed, 5)
	assert.Equal(t, 0.0, smoothed[0])
	assert.Equal(t, 1.5, smoothed[1])
	assert.Equal(t, 4.5, smoothed[4])
}
