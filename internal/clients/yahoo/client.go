// Package yahoo provides a Yahoo Finance HTTP client for quotes, FX pairs and price history.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const quoteFields = "symbol,quoteType,exchange,currency,regularMarketOpen,regularMarketPrice,bid,ask,regularMarketVolume"

// Client is a Yahoo Finance API client
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
// Request deadlines come from the caller's context.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// yahooQuoteResponse represents the response from Yahoo Finance quote API
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// yahooChartResponse represents the response from Yahoo Finance chart API.
// Series values are pointers because Yahoo reports missing samples as null.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetInstrumentInfo fetches instrument metadata and the latest quote figures.
// Returns domain.ErrNotFound when Yahoo knows nothing about symbol.
func (c *Client) GetInstrumentInfo(ctx context.Context, symbol string) (*domain.InstrumentInfo, error) {
	quote, err := c.getQuoteInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	currency, divisor := normalizeCurrency(getString(quote, "currency", ""))

	return &domain.InstrumentInfo{
		Symbol:       getString(quote, "symbol", symbol),
		QuoteType:    domain.ProductType(strings.ToUpper(getString(quote, "quoteType", ""))),
		ExchangeCode: getString(quote, "exchange", ""),
		Currency:     currency,
		MarketOpen:   scale(getFloat64(quote, "regularMarketOpen"), divisor),
		Price:        scale(getFloat64(quote, "regularMarketPrice"), divisor),
		Bid:          scale(getFloat64(quote, "bid"), divisor),
		Ask:          scale(getFloat64(quote, "ask"), divisor),
		Volume:       getInt64(quote, "regularMarketVolume"),
	}, nil
}

// minorUnits lists quote currencies Yahoo reports in hundredths of the major unit
var minorUnits = map[string]domain.Currency{
	"GBp": "GBP",
	"GBX": "GBP",
	"ZAc": "ZAR",
	"ILA": "ILS",
}

// normalizeCurrency maps a Yahoo currency code to its ISO major unit and the divisor
// that converts quoted prices into it
func normalizeCurrency(code string) (domain.Currency, float64) {
	if major, ok := minorUnits[code]; ok {
		return major, 100
	}
	return domain.Currency(strings.ToUpper(code)), 1
}

func scale(v *float64, divisor float64) *float64 {
	if v == nil || divisor == 1 {
		return v
	}
	scaled := *v / divisor
	return &scaled
}

// GetLatestPrice returns the most recent regular market price for symbol
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := c.getQuoteInfo(ctx, symbol)
	if err != nil {
		return 0, err
	}

	price := getFloat64(quote, "regularMarketPrice")
	if price == nil {
		return 0, fmt.Errorf("no price returned for %s", symbol)
	}
	return *price, nil
}

// GetHistory returns daily closes for symbol in [start, end)
func (c *Client) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.RatePoint, error) {
	bars, err := c.Download(ctx, symbol, start, end, "1d")
	if err != nil {
		return nil, err
	}

	points := make([]domain.RatePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, domain.RatePoint{Date: bar.Date, Rate: bar.Close})
	}
	return points, nil
}

// Download fetches OHLCV bars for symbol in [start, end) at the given interval.
// Bars with any missing price are skipped. Dates are in the exchange's timezone and
// prices in the major currency unit.
func (c *Client) Download(ctx context.Context, symbol string, start, end time.Time, interval string) ([]domain.Bar, error) {
	params := url.Values{}
	params.Add("period1", strconv.FormatInt(start.Unix(), 10))
	params.Add("period2", strconv.FormatInt(end.Unix(), 10))
	params.Add("interval", interval)
	params.Add("includePrePost", "false")

	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()

	var result yahooChartResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}

	if result.Chart.Error != nil {
		if strings.EqualFold(result.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Yahoo Finance API error: %s", result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrNotFound)
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in chart response")
		return []domain.Bar{}, nil
	}

	loc := time.UTC
	if chartData.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(chartData.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	_, divisor := normalizeCurrency(chartData.Meta.Currency)

	quote := chartData.Indicators.Quote[0]
	bars := make([]domain.Bar, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		open, high, low, closePrice := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if open == nil || high == nil || low == nil || closePrice == nil {
			continue
		}

		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		bars = append(bars, domain.Bar{
			Date:   time.Unix(ts, 0).In(loc),
			Open:   *open / divisor,
			High:   *high / divisor,
			Low:    *low / divisor,
			Close:  *closePrice / divisor,
			Volume: volume,
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("interval", interval).
		Int("count", len(bars)).
		Msg("Fetched chart data")

	return bars, nil
}

// getQuoteInfo fetches quote information from Yahoo Finance API
func (c *Client) getQuoteInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", quoteFields)

	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	var result yahooQuoteResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrNotFound)
	}

	return result.QuoteResponse.Result[0], nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		// Chart errors still carry a JSON body describing the failure
		if jsonErr := json.Unmarshal(body, out); jsonErr == nil {
			return nil
		}
		return domain.ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Helper functions to safely extract values from map

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func getInt64(m map[string]interface{}, key string) *int64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			i := int64(v)
			return &i
		case int:
			i := int64(v)
			return &i
		case int64:
			return &v
		}
	}
	return nil
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultVal
}
