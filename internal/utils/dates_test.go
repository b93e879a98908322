package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateToUnix(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int64
		shouldError bool
	}{
		{
			name:     "epoch day",
			input:    "1970-01-01",
			expected: 0,
		},
		{
			name:     "regular date",
			input:    "2024-03-01",
			expected: 1709251200,
		},
		{
			name:        "empty string",
			input:       "",
			shouldError: true,
		},
		{
			name:        "wrong format",
			input:       "03/01/2024",
			shouldError: true,
		},
		{
			name:        "invalid day",
			input:       "2024-02-31",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DateToUnix(tt.input)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnixToDateRoundTrip(t *testing.T) {
	ts, err := DateToUnix("2025-07-18")
	assert.NoError(t, err)
	assert.Equal(t, "2025-07-18", UnixToDate(ts))
}

func TestEndOfDayUnix(t *testing.T) {
	start, err := DateToUnix("2024-06-01")
	assert.NoError(t, err)

	end, err := EndOfDayUnix("2024-06-01")
	assert.NoError(t, err)

	// Same day spans exactly 86399 seconds from midnight to 23:59:59
	assert.Equal(t, int64(86399), end-start)

	_, err = EndOfDayUnix("not-a-date")
	assert.Error(t, err)
}

func TestDaysBetweenUnix(t *testing.T) {
	from, _ := DateToUnix("2024-03-01")
	to, _ := DateToUnix("2024-03-31")

	assert.Equal(t, 30, DaysBetweenUnix(from, to))
	assert.Equal(t, -30, DaysBetweenUnix(to, from))
	assert.Equal(t, 0, DaysBetweenUnix(from, from))
}

func TestFormatExpiry(t *testing.T) {
	ts, _ := DateToUnix("2025-03-21")
	assert.Equal(t, "21-MAR-25", FormatExpiry(ts))

	ts, _ = DateToUnix("2024-12-05")
	assert.Equal(t, "05-DEC-24", FormatExpiry(ts))
}
