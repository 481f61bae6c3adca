// Package assistant implements the query pipeline: classify the question,
// fetch market data and/or web results, then render or synthesize an answer.
// Data fetching is tool-first: external APIs are called before any model is
// involved, so numbers in the response always come from a provider.
package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smail-Lamrani/finassist/internal/cache"
	"github.com/smail-Lamrani/finassist/internal/domain"
)

// Cache namespaces, one per data category. Each category expires on its own
// schedule: quotes and news move fast, analyst coverage and fundamentals do not.
const (
	NamespaceOrchestrator = "orchestrator"
	NamespaceStockData    = "stock_data"
	NamespaceAnalystRecs  = "analyst_recs"
	NamespaceFundamentals = "fundamentals"
	NamespaceCompanyNews  = "company_news"
	NamespaceWebSearch    = "web_search"
)

const (
	stockDataTTL    = 5 * time.Minute
	analystRecsTTL  = time.Hour
	fundamentalsTTL = time.Hour
	companyNewsTTL  = 5 * time.Minute
	webSearchTTL    = 5 * time.Minute
)

const newsFetchLimit = 10

// Bundle holds the per-category results for one symbol. Each category is
// either populated or carries its own error; a failed category never blocks
// the others.
type Bundle struct {
	Ticker string

	Stock    *domain.StockData
	StockErr error

	Analysts    *domain.AnalystData
	AnalystsErr error

	Fundamentals    *domain.Fundamentals
	FundamentalsErr error

	News    []domain.NewsItem
	NewsErr error
}

// Empty reports whether every category failed or returned nothing.
func (b *Bundle) Empty() bool {
	return b.Stock == nil && b.Analysts == nil && b.Fundamentals == nil && len(b.News) == 0
}

// Fetcher retrieves the four data categories for a symbol, cache-first.
// Categories have no ordering dependency, so they are fetched concurrently.
type Fetcher struct {
	market domain.MarketDataProvider
	search domain.SearchProvider
	cache  *cache.Store
	log    zerolog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(market domain.MarketDataProvider, search domain.SearchProvider, store *cache.Store, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		market: market,
		search: search,
		cache:  store,
		log:    log.With().Str("component", "fetcher").Logger(),
	}
}

// FetchAll fetches stock, analyst, fundamentals and news data for ticker.
// Each category checks its own cache namespace first and stores on success.
// Upstream failures are recorded on the bundle, never returned.
func (f *Fetcher) FetchAll(ctx context.Context, ticker string) *Bundle {
	bundle := &Bundle{Ticker: ticker}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		bundle.Stock, bundle.StockErr = f.stockData(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		bundle.Analysts, bundle.AnalystsErr = f.analystRecs(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		bundle.Fundamentals, bundle.FundamentalsErr = f.fundamentals(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		bundle.News, bundle.NewsErr = f.companyNews(ctx, ticker)
	}()

	wg.Wait()

	if bundle.StockErr != nil {
		f.log.Warn().Err(bundle.StockErr).Str("ticker", ticker).Msg("Stock data fetch failed")
	}
	if bundle.AnalystsErr != nil {
		f.log.Warn().Err(bundle.AnalystsErr).Str("ticker", ticker).Msg("Analyst data fetch failed")
	}
	if bundle.FundamentalsErr != nil {
		f.log.Warn().Err(bundle.FundamentalsErr).Str("ticker", ticker).Msg("Fundamentals fetch failed")
	}
	if bundle.NewsErr != nil {
		f.log.Warn().Err(bundle.NewsErr).Str("ticker", ticker).Msg("Company news fetch failed")
	}

	return bundle
}

func (f *Fetcher) stockData(ctx context.Context, ticker string) (*domain.StockData, error) {
	key := cache.DeriveKey(NamespaceStockData, ticker)

	var cached domain.StockData
	if f.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	data, err := f.market.GetStockData(ctx, ticker)
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, key, data, stockDataTTL)
	return data, nil
}

func (f *Fetcher) analystRecs(ctx context.Context, ticker string) (*domain.AnalystData, error) {
	key := cache.DeriveKey(NamespaceAnalystRecs, ticker)

	var cached domain.AnalystData
	if f.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	data, err := f.market.GetAnalystRecommendations(ctx, ticker)
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, key, data, analystRecsTTL)
	return data, nil
}

func (f *Fetcher) fundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	key := cache.DeriveKey(NamespaceFundamentals, ticker)

	var cached domain.Fundamentals
	if f.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	data, err := f.market.GetFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, key, data, fundamentalsTTL)
	return data, nil
}

func (f *Fetcher) companyNews(ctx context.Context, ticker string) ([]domain.NewsItem, error) {
	key := cache.DeriveKey(NamespaceCompanyNews, ticker)

	var cached []domain.NewsItem
	if f.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := f.market.GetCompanyNews(ctx, ticker, newsFetchLimit)
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, key, items, companyNewsTTL)
	return items, nil
}

// WebSearch runs a web search, cache-first under the web_search namespace.
func (f *Fetcher) WebSearch(ctx context.Context, query string) ([]domain.SearchResult, error) {
	key := cache.DeriveKey(NamespaceWebSearch, query)

	var cached []domain.SearchResult
	if f.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	results, err := f.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, key, results, webSearchTTL)
	return results, nil
}
