// Package domain holds provider-agnostic types shared across the application.
// These types abstract away provider-specific wire formats (Yahoo, DuckDuckGo,
// etc.) so services and formatters never depend on a concrete client.
package domain

import "time"

// StockData is a point-in-time quote for one symbol. Pointer fields are
// legitimately absent for some instruments and render as "N/A", not errors.
type StockData struct {
	Ticker           string    `json:"ticker"`
	Currency         string    `json:"currency"`
	CurrentPrice     *float64  `json:"current_price"`
	Open             *float64  `json:"open"`
	High             *float64  `json:"high"`
	Low              *float64  `json:"low"`
	PreviousClose    *float64  `json:"previous_close"`
	Volume           *int64    `json:"volume"`
	MarketCap        *float64  `json:"market_cap"`
	PERatio          *float64  `json:"pe_ratio"`
	DividendYield    *float64  `json:"dividend_yield"`
	FiftyTwoWeekHigh *float64  `json:"52_week_high"`
	FiftyTwoWeekLow  *float64  `json:"52_week_low"`
	Timestamp        time.Time `json:"timestamp"`
}

// AnalystData summarizes analyst coverage for one symbol.
type AnalystData struct {
	Ticker             string    `json:"ticker"`
	Recommendation     string    `json:"recommendation"`
	MeanRecommendation *float64  `json:"mean_recommendation"`
	NumAnalysts        *int64    `json:"num_analysts"`
	TargetMean         *float64  `json:"target_mean"`
	TargetHigh         *float64  `json:"target_high"`
	TargetLow          *float64  `json:"target_low"`
	Timestamp          time.Time `json:"timestamp"`
}

// Fundamentals holds valuation and profitability metrics for one symbol.
type Fundamentals struct {
	Ticker           string    `json:"ticker"`
	MarketCap        *float64  `json:"market_cap"`
	PERatio          *float64  `json:"pe_ratio"`
	ForwardPE        *float64  `json:"forward_pe"`
	PEGRatio         *float64  `json:"peg_ratio"`
	PriceToBook      *float64  `json:"price_to_book"`
	DebtToEquity     *float64  `json:"debt_to_equity"`
	ReturnOnEquity   *float64  `json:"return_on_equity"`
	ProfitMargins    *float64  `json:"profit_margins"`
	OperatingMargins *float64  `json:"operating_margins"`
	RevenueGrowth    *float64  `json:"revenue_growth"`
	EarningsGrowth   *float64  `json:"earnings_growth"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewsItem is a single company news headline.
type NewsItem struct {
	Title     string    `json:"title"`
	Publisher string    `json:"publisher"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}

// SearchResult is one web search hit. Source is the publishing domain.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

// Candle is one daily OHLCV bar used for chart data.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Float returns a pointer to v. Convenience for building test fixtures and
// provider responses.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }
