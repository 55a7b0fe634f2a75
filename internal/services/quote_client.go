package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoQuote reports that the market data source had no price for a symbol.
var ErrNoQuote = errors.New("no quote available")

// PriceFetcher is the external quote collaborator: given a ticker-like
// symbol it returns the latest price or an absence signal.
type PriceFetcher interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// YahooQuoteClient fetches prices from the Yahoo Finance chart endpoint.
// Forex pairs use the concatenated-pair ticker convention ("GBPUSD=X").
type YahooQuoteClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewYahooQuoteClient() *YahooQuoteClient {
	return &YahooQuoteClient{
		baseURL:    "https://query1.finance.yahoo.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *YahooQuoteClient) SetBaseURL(base string) {
	if strings.TrimSpace(base) != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

func (c *YahooQuoteClient) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

func (c *YahooQuoteClient) Price(ctx context.Context, symbol string) (float64, error) {
	if strings.TrimSpace(symbol) == "" {
		return 0, errors.New("symbol is required")
	}

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("quote lookup failed: status=%d: %w", resp.StatusCode, ErrNoQuote)
	}

	var out struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice *float64 `json:"regularMarketPrice"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("quote response: invalid json: %w", err)
	}

	if len(out.Chart.Result) == 0 || out.Chart.Result[0].Meta.RegularMarketPrice == nil {
		return 0, ErrNoQuote
	}
	return *out.Chart.Result[0].Meta.RegularMarketPrice, nil
}
