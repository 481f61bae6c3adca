// Package charts builds price-history series for rendering on the client.
// Single-symbol histories carry moving-average overlays; multi-symbol
// comparisons are normalized to percent change from the period start.
package charts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/smail-Lamrani/finassist/internal/cache"
	"github.com/smail-Lamrani/finassist/internal/domain"
)

const (
	// NamespaceChartData partitions cached chart series in the cache store.
	NamespaceChartData = "chart_data"

	chartDataTTL = time.Hour

	shortMAPeriod = 50
	longMAPeriod  = 200
)

// History is a close-price series with moving-average overlays. Overlay
// slices are nil when the period is shorter than the MA window.
type History struct {
	Ticker string      `json:"ticker"`
	Period string      `json:"period"`
	Dates  []time.Time `json:"dates"`
	Closes []float64   `json:"closes"`
	MA50   []float64   `json:"ma50,omitempty"`
	MA200  []float64   `json:"ma200,omitempty"`
}

// ComparisonSeries is one symbol's percent-change series within a comparison.
type ComparisonSeries struct {
	Ticker        string      `json:"ticker"`
	Dates         []time.Time `json:"dates"`
	PercentChange []float64   `json:"percent_change"`
	Error         string      `json:"error,omitempty"`
}

// Service fetches candles and derives chart series, cache-first.
type Service struct {
	market domain.MarketDataProvider
	cache  *cache.Store
	log    zerolog.Logger
}

// NewService creates a chart service.
func NewService(market domain.MarketDataProvider, store *cache.Store, log zerolog.Logger) *Service {
	return &Service{
		market: market,
		cache:  store,
		log:    log.With().Str("component", "charts").Logger(),
	}
}

// History returns the close series for ticker over period with MA50/MA200
// overlays when enough bars exist.
func (s *Service) History(ctx context.Context, ticker, period string) (*History, error) {
	ticker = strings.ToUpper(ticker)
	key := cache.DeriveKey(NamespaceChartData, ticker+":"+period)

	var cached History
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	candles, err := s.market.GetCandles(ctx, ticker, period)
	if err != nil {
		return nil, fmt.Errorf("fetching candles for %s: %w", ticker, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no price history for %s over %s", ticker, period)
	}

	hist := &History{
		Ticker: ticker,
		Period: period,
		Dates:  make([]time.Time, len(candles)),
		Closes: make([]float64, len(candles)),
	}
	for i, c := range candles {
		hist.Dates[i] = c.Date
		hist.Closes[i] = c.Close
	}

	if len(hist.Closes) >= shortMAPeriod {
		hist.MA50 = talib.Sma(hist.Closes, shortMAPeriod)
	}
	if len(hist.Closes) >= longMAPeriod {
		hist.MA200 = talib.Sma(hist.Closes, longMAPeriod)
	}

	s.cache.Set(ctx, key, hist, chartDataTTL)
	return hist, nil
}

// Comparison returns percent-change series for each symbol over period,
// normalized to the first close. A failed symbol carries an error marker
// instead of failing the whole comparison; Comparison errors only when no
// symbol could be fetched at all.
func (s *Service) Comparison(ctx context.Context, tickers []string, period string) ([]ComparisonSeries, error) {
	if len(tickers) < 2 {
		return nil, fmt.Errorf("comparison needs at least 2 symbols, got %d", len(tickers))
	}

	series := make([]ComparisonSeries, 0, len(tickers))
	succeeded := 0

	for _, ticker := range tickers {
		hist, err := s.History(ctx, ticker, period)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Chart history failed")
			series = append(series, ComparisonSeries{Ticker: strings.ToUpper(ticker), Error: err.Error()})
			continue
		}

		base := hist.Closes[0]
		changes := make([]float64, len(hist.Closes))
		if base != 0 {
			for i, c := range hist.Closes {
				changes[i] = (c - base) / base * 100
			}
		}

		series = append(series, ComparisonSeries{
			Ticker:        hist.Ticker,
			Dates:         hist.Dates,
			PercentChange: changes,
		})
		succeeded++
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("no chart data for any of %s", strings.Join(tickers, ", "))
	}

	return series, nil
}
