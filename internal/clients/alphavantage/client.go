// Package alphavantage provides a client for the Alpha Vantage SYMBOL_SEARCH
// endpoint, used to resolve ticker symbols to company names. Results are
// cached in-memory and requests are rate limited to the free tier quota.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"

	// Free tier allows 25 requests per day.
	dailyRequestLimit = 25

	// Company names change rarely; search results stay cached for a day.
	searchCacheTTL = 24 * time.Hour

	requestTimeout = 5 * time.Second
)

// ErrRateLimitExceeded is returned when the daily request quota is exhausted
type ErrRateLimitExceeded struct{}

func (e ErrRateLimitExceeded) Error() string {
	return "alphavantage: daily rate limit exceeded"
}

// ErrInvalidAPIKey is returned when no API key is configured or the key is rejected
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alphavantage: invalid or missing API key"
}

// ErrSymbolNotFound is returned when SYMBOL_SEARCH has no match for a symbol
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("alphavantage: no match found for symbol %s", e.Symbol)
}

// SymbolMatch is one entry of a SYMBOL_SEARCH response
type SymbolMatch struct {
	Symbol     string
	Name       string
	Type       string
	Region     string
	Currency   string
	MatchScore float64
}

// ClientInterface defines the surface consumed by the tickers service
type ClientInterface interface {
	SearchCompanyName(ctx context.Context, symbol string) (string, error)
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Client is an Alpha Vantage API client with daily rate limiting and caching
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu           sync.Mutex
	requestCount int
	resetAt      time.Time

	cacheMu sync.RWMutex
	cache   map[string]cacheEntry
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log.With().Str("client", "alphavantage").Logger(),
		resetAt:    nextMidnightUTC(),
		cache:      make(map[string]cacheEntry),
	}
}

// SearchCompanyName resolves a ticker symbol to its company name using
// SYMBOL_SEARCH. An exact (case-insensitive) symbol match wins; otherwise the
// highest-scored match is used.
func (c *Client) SearchCompanyName(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", ErrSymbolNotFound{Symbol: symbol}
	}
	if c.apiKey == "" {
		return "", ErrInvalidAPIKey{}
	}

	cacheKey := buildCacheKey("SYMBOL_SEARCH", map[string]string{"keywords": symbol})
	if cached, ok := c.getFromCache(cacheKey); ok {
		if name, ok := cached.(string); ok {
			return name, nil
		}
	}

	if err := c.checkRateLimit(); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", symbol)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("symbol search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	if err := c.checkAPIError(body); err != nil {
		return "", err
	}

	matches, err := parseSymbolSearch(body)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrSymbolNotFound{Symbol: symbol}
	}

	name := matches[0].Name
	for _, m := range matches {
		if strings.EqualFold(m.Symbol, symbol) {
			name = m.Name
			break
		}
	}

	c.setCache(cacheKey, name, searchCacheTTL)

	c.log.Debug().
		Str("symbol", symbol).
		Str("company_name", name).
		Msg("Resolved company name")

	return name, nil
}

// GetRemainingRequests returns how many requests remain in today's quota
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeResetCounter()
	return dailyRequestLimit - c.requestCount
}

// ResetDailyCounter resets the daily request counter
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount = 0
	c.resetAt = nextMidnightUTC()
}

// checkRateLimit consumes one request from the daily quota
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeResetCounter()
	if c.requestCount >= dailyRequestLimit {
		return ErrRateLimitExceeded{}
	}
	c.requestCount++
	return nil
}

func (c *Client) maybeResetCounter() {
	if time.Now().UTC().After(c.resetAt) {
		c.requestCount = 0
		c.resetAt = nextMidnightUTC()
	}
}

// checkAPIError detects Alpha Vantage error payloads, which come back with
// HTTP 200 and a JSON note instead of data.
func (c *Client) checkAPIError(body []byte) error {
	s := string(body)
	if strings.Contains(s, "Thank you for using Alpha Vantage") ||
		strings.Contains(s, "call frequency") ||
		strings.Contains(s, "rate limit") {
		return ErrRateLimitExceeded{}
	}
	if strings.Contains(s, "Invalid API call") || strings.Contains(s, "\"Error Message\"") {
		return ErrInvalidAPIKey{}
	}
	return nil
}

// Cache helpers

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) setCache(key string, data interface{}, ttl time.Duration) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{data: data, expiresAt: time.Now().Add(ttl)}
}

// ClearCache removes all cached entries
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// buildCacheKey builds a deterministic cache key from function name and
// parameters. The API key is never part of the key.
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(function)
	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
	}
	return sb.String()
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// parseSymbolSearch parses a SYMBOL_SEARCH response
func parseSymbolSearch(body []byte) ([]SymbolMatch, error) {
	var raw struct {
		BestMatches []map[string]string `json:"bestMatches"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse symbol search response: %w", err)
	}

	matches := make([]SymbolMatch, 0, len(raw.BestMatches))
	for _, m := range raw.BestMatches {
		matches = append(matches, SymbolMatch{
			Symbol:     m["1. symbol"],
			Name:       m["2. name"],
			Type:       m["3. type"],
			Region:     m["4. region"],
			Currency:   m["8. currency"],
			MatchScore: parseFloat64(m["9. matchScore"]),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches, nil
}

// parseFloat64 parses a numeric string, treating sentinel values as zero
func parseFloat64(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "None" || s == "null" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
