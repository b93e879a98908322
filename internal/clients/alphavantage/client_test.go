package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewClient tests client creation.
func TestNewClient(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, 25, client.GetRemainingRequests())
}

// TestRateLimiting tests the rate limiting functionality.
func TestRateLimiting(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	// Simulate using all requests
	for i := 0; i < 25; i++ {
		remaining := client.GetRemainingRequests()
		assert.Equal(t, 25-i, remaining)
		err := client.checkRateLimit()
		require.NoError(t, err)
	}

	// 26th request should fail
	err := client.checkRateLimit()
	assert.Error(t, err)
	assert.IsType(t, ErrRateLimitExceeded{}, err)
}

// TestResetDailyCounter tests counter reset.
func TestResetDailyCounter(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < 10; i++ {
		_ = client.checkRateLimit()
	}
	assert.Equal(t, 15, client.GetRemainingRequests())

	client.ResetDailyCounter()
	assert.Equal(t, 25, client.GetRemainingRequests())
}

// TestCaching tests the cache functionality.
func TestCaching(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	client.setCache("test-key", "test data", time.Hour)

	cached, ok := client.getFromCache("test-key")
	assert.True(t, ok)
	assert.Equal(t, "test data", cached)

	_, ok = client.getFromCache("non-existent")
	assert.False(t, ok)
}

// TestCacheExpiration tests cache expiration.
func TestCacheExpiration(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	client.setCache("test-key", "test data", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := client.getFromCache("test-key")
	assert.False(t, ok)
}

// TestClearCache tests cache clearing.
func TestClearCache(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	client.setCache("key1", "data1", time.Hour)
	client.setCache("key2", "data2", time.Hour)

	client.ClearCache()

	_, ok1 := client.getFromCache("key1")
	_, ok2 := client.getFromCache("key2")
	assert.False(t, ok1)
	assert.False(t, ok2)
}

// TestBuildCacheKey tests cache key generation.
func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		function string
		params   map[string]string
	}{
		{
			name:     "Simple function",
			function: "SYMBOL_SEARCH",
			params:   map[string]string{"keywords": "IBM"},
		},
		{
			name:     "With apikey excluded",
			function: "SYMBOL_SEARCH",
			params: map[string]string{
				"keywords": "MSFT",
				"apikey":   "secret", // Should be excluded
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := buildCacheKey(tt.function, tt.params)
			assert.Contains(t, key, tt.function)
			assert.NotContains(t, key, "apikey=")
			assert.NotContains(t, key, "secret")
		})
	}
}

// TestParseFloat64 tests float parsing.
func TestParseFloat64(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"123.45", 123.45},
		{"0", 0},
		{"None", 0},
		{"", 0},
		{"null", 0},
		{"-", 0},
		{"50.5%", 50.5},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseFloat64(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestParseSymbolSearch tests symbol search parsing.
func TestParseSymbolSearch(t *testing.T) {
	jsonData := `{
		"bestMatches": [
			{
				"1. symbol": "IBM",
				"2. name": "International Business Machines Corp",
				"3. type": "Equity",
				"4. region": "United States",
				"5. marketOpen": "09:30",
				"6. marketClose": "16:00",
				"7. timezone": "UTC-05",
				"8. currency": "USD",
				"9. matchScore": "1.0000"
			},
			{
				"1. symbol": "IBM.LON",
				"2. name": "International Business Machines GDR",
				"3. type": "Equity",
				"4. region": "United Kingdom",
				"8. currency": "GBP",
				"9. matchScore": "0.6154"
			}
		]
	}`

	matches, err := parseSymbolSearch([]byte(jsonData))
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Sorted by match score descending
	assert.Equal(t, "IBM", matches[0].Symbol)
	assert.Equal(t, "International Business Machines Corp", matches[0].Name)
	assert.Equal(t, "Equity", matches[0].Type)
	assert.Equal(t, "USD", matches[0].Currency)
	assert.Equal(t, 1.0, matches[0].MatchScore)
	assert.Equal(t, "IBM.LON", matches[1].Symbol)
}

// TestSearchCompanyName tests end-to-end resolution against a stub server.
func TestSearchCompanyName(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{
			"bestMatches": [
				{"1. symbol": "AMD", "2. name": "Advanced Micro Devices Inc", "9. matchScore": "1.0000"}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	name, err := client.SearchCompanyName(context.Background(), "amd")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Micro Devices Inc", name)
	assert.Contains(t, gotQuery, "function=SYMBOL_SEARCH")
	assert.Contains(t, gotQuery, "keywords=AMD")

	// Second lookup serves from cache; quota is consumed exactly once
	remaining := client.GetRemainingRequests()
	name, err = client.SearchCompanyName(context.Background(), "AMD")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Micro Devices Inc", name)
	assert.Equal(t, remaining, client.GetRemainingRequests())
}

// TestSearchCompanyNameNoMatch tests the not-found path.
func TestSearchCompanyNameNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bestMatches": []}`)
	}))
	defer server.Close()

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	_, err := client.SearchCompanyName(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.IsType(t, ErrSymbolNotFound{}, err)
	assert.Contains(t, err.Error(), "ZZZZ")
}

// TestSearchCompanyNameMissingKey tests the unconfigured-key path.
func TestSearchCompanyNameMissingKey(t *testing.T) {
	client := NewClient("", zerolog.Nop())

	_, err := client.SearchCompanyName(context.Background(), "AMD")
	require.Error(t, err)
	assert.IsType(t, ErrInvalidAPIKey{}, err)
}

// TestErrorTypes tests error type implementations.
func TestErrorTypes(t *testing.T) {
	t.Run("ErrRateLimitExceeded", func(t *testing.T) {
		err := ErrRateLimitExceeded{}
		assert.Contains(t, err.Error(), "rate limit")
	})

	t.Run("ErrInvalidAPIKey", func(t *testing.T) {
		err := ErrInvalidAPIKey{}
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("ErrSymbolNotFound", func(t *testing.T) {
		err := ErrSymbolNotFound{Symbol: "XYZ"}
		assert.Contains(t, err.Error(), "XYZ")
	})
}

// TestAPIErrorDetection tests detection of API error responses.
func TestAPIErrorDetection(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name:        "Rate limit message",
			body:        `{"Note": "API call frequency is limited"}`,
			expectError: true,
		},
		{
			name:        "Thank you message",
			body:        `Thank you for using Alpha Vantage!`,
			expectError: true,
		},
		{
			name:        "Invalid call",
			body:        `{"Error Message": "Invalid API call"}`,
			expectError: true,
		},
		{
			name:        "Valid response",
			body:        `{"bestMatches": []}`,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.checkAPIError([]byte(tt.body))
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestNextMidnightUTC tests the midnight calculation.
func TestNextMidnightUTC(t *testing.T) {
	midnight := nextMidnightUTC()

	now := time.Now().UTC()
	assert.True(t, midnight.After(now))
	assert.Equal(t, 0, midnight.Hour())
	assert.Equal(t, 0, midnight.Minute())
	assert.Equal(t, 0, midnight.Second())
}

// TestInterfaceImplementation verifies Client implements ClientInterface.
func TestInterfaceImplementation(t *testing.T) {
	var _ ClientInterface = (*Client)(nil)
}
