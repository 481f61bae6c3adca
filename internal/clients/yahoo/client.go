// Package yahoo provides a Yahoo Finance client for quotes, analyst
// coverage, fundamentals, company news, and daily candles.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/smail-Lamrani/finassist/internal/domain"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// validPeriods maps accepted chart periods to themselves; anything else is
// rejected before hitting the API.
var validPeriods = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true, "5y": true,
}

// Client for the Yahoo Finance JSON API.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom base URL. Used by
// tests with httptest servers.
func NewClientWithBaseURL(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	c := NewClient(timeout, log)
	c.baseURL = baseURL
	return c
}

// GetStockData fetches the current quote for ticker.
func (c *Client) GetStockData(ctx context.Context, ticker string) (*domain.StockData, error) {
	result, err := c.quoteSummary(ctx, ticker, "price,summaryDetail")
	if err != nil {
		return nil, err
	}

	data := &domain.StockData{
		Ticker:    ticker,
		Currency:  "USD",
		Timestamp: time.Now(),
	}

	if p := result.Price; p != nil {
		if p.Currency != "" {
			data.Currency = p.Currency
		}
		data.CurrentPrice = p.RegularMarketPrice.Raw
		data.Open = p.RegularMarketOpen.Raw
		data.High = p.RegularMarketDayHigh.Raw
		data.Low = p.RegularMarketDayLow.Raw
		data.PreviousClose = p.RegularMarketPreviousClose.Raw
		data.MarketCap = p.MarketCap.Raw
		if v := p.RegularMarketVolume.Raw; v != nil {
			data.Volume = domain.Int(int64(*v))
		}
	}

	if d := result.SummaryDetail; d != nil {
		data.PERatio = d.TrailingPE.Raw
		data.DividendYield = d.DividendYield.Raw
		data.FiftyTwoWeekHigh = d.FiftyTwoWeekHigh.Raw
		data.FiftyTwoWeekLow = d.FiftyTwoWeekLow.Raw
	}

	if data.CurrentPrice == nil {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	return data, nil
}

// GetAnalystRecommendations fetches analyst coverage for ticker.
func (c *Client) GetAnalystRecommendations(ctx context.Context, ticker string) (*domain.AnalystData, error) {
	result, err := c.quoteSummary(ctx, ticker, "financialData")
	if err != nil {
		return nil, err
	}

	data := &domain.AnalystData{
		Ticker:         ticker,
		Recommendation: "N/A",
		Timestamp:      time.Now(),
	}

	if f := result.FinancialData; f != nil {
		if f.RecommendationKey != "" {
			data.Recommendation = f.RecommendationKey
		}
		data.MeanRecommendation = f.RecommendationMean.Raw
		if v := f.NumberOfAnalystOpinions.Raw; v != nil {
			data.NumAnalysts = domain.Int(int64(*v))
		}
		data.TargetMean = f.TargetMeanPrice.Raw
		data.TargetHigh = f.TargetHighPrice.Raw
		data.TargetLow = f.TargetLowPrice.Raw
	}

	return data, nil
}

// GetFundamentals fetches valuation and profitability metrics for ticker.
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	result, err := c.quoteSummary(ctx, ticker, "financialData,defaultKeyStatistics,price,summaryDetail")
	if err != nil {
		return nil, err
	}

	data := &domain.Fundamentals{
		Ticker:    ticker,
		Timestamp: time.Now(),
	}

	if p := result.Price; p != nil {
		data.MarketCap = p.MarketCap.Raw
	}
	if d := result.SummaryDetail; d != nil {
		data.PERatio = d.TrailingPE.Raw
	}
	if k := result.DefaultKeyStatistics; k != nil {
		data.ForwardPE = k.ForwardPE.Raw
		data.PEGRatio = k.PegRatio.Raw
		data.PriceToBook = k.PriceToBook.Raw
	}
	if f := result.FinancialData; f != nil {
		data.DebtToEquity = f.DebtToEquity.Raw
		data.ReturnOnEquity = f.ReturnOnEquity.Raw
		data.ProfitMargins = f.ProfitMargins.Raw
		data.OperatingMargins = f.OperatingMargins.Raw
		data.RevenueGrowth = f.RevenueGrowth.Raw
		data.EarningsGrowth = f.EarningsGrowth.Raw
	}

	return data, nil
}

// GetCompanyNews fetches up to limit recent headlines for ticker. Items with
// empty titles are dropped.
func (c *Client) GetCompanyNews(ctx context.Context, ticker string, limit int) ([]domain.NewsItem, error) {
	endpoint := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=%d&quotesCount=0",
		c.baseURL, url.QueryEscape(ticker), limit)

	var parsed newsSearchResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	var items []domain.NewsItem
	for _, n := range parsed.News {
		if n.Title == "" {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:     n.Title,
			Publisher: n.Publisher,
			Link:      n.Link,
			Published: time.Unix(n.ProviderPublishTime, 0),
		})
		if len(items) == limit {
			break
		}
	}

	return items, nil
}

// GetCandles fetches daily OHLCV bars for ticker over the given period
// (1mo, 3mo, 6mo, 1y, 2y, 5y). Bars with a zero close are skipped.
func (c *Client) GetCandles(ctx context.Context, ticker, period string) ([]domain.Candle, error) {
	if !validPeriods[period] {
		return nil, fmt.Errorf("invalid period: %s", period)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(ticker), period)

	var parsed chartResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s", parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var candles []domain.Candle
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}

		candle := domain.Candle{
			Date:  time.Unix(ts, 0),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			candle.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			candle.High = quote.High[i]
		}
		if i < len(quote.Low) {
			candle.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			candle.Volume = quote.Volume[i]
		}

		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return candles, nil
}

// quoteSummary fetches the requested quoteSummary modules for ticker.
func (c *Client) quoteSummary(ctx context.Context, ticker, modules string) (*quoteSummaryResult, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(modules))

	var parsed quoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if apiErr := parsed.QuoteSummary.Error; apiErr != nil {
		return nil, fmt.Errorf("quoteSummary API error: %s", apiErr.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no data found for %s", ticker)
	}

	return &parsed.QuoteSummary.Result[0], nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// Yahoo rejects requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	c.log.Debug().Str("url", endpoint).Msg("Fetching")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
