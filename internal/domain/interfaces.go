package domain

import "context"

// MarketDataProvider supplies per-symbol market data. Implementations fetch
// from an external provider; callers treat each category independently and
// tolerate per-category failures.
type MarketDataProvider interface {
	GetStockData(ctx context.Context, ticker string) (*StockData, error)
	GetAnalystRecommendations(ctx context.Context, ticker string) (*AnalystData, error)
	GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
	GetCompanyNews(ctx context.Context, ticker string, limit int) ([]NewsItem, error)
	GetCandles(ctx context.Context, ticker, period string) ([]Candle, error)
}

// SearchProvider supplies free-text web search. An empty result slice means
// "no usable results" and is not an error.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// TextTransformer is the LLM collaborator: prompt in, text out. It may fail
// or hang; callers own fallback behavior and perform no retries.
type TextTransformer interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}
