package charts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smail-Lamrani/finassist/internal/cache"
	"github.com/smail-Lamrani/finassist/internal/domain"
)

type candleProvider struct {
	candles map[string][]domain.Candle
	errs    map[string]error
	calls   int
}

func (p *candleProvider) GetCandles(ctx context.Context, ticker, period string) ([]domain.Candle, error) {
	p.calls++
	if err := p.errs[ticker]; err != nil {
		return nil, err
	}
	return p.candles[ticker], nil
}

func (p *candleProvider) GetStockData(ctx context.Context, ticker string) (*domain.StockData, error) {
	return nil, errors.New("not implemented")
}

func (p *candleProvider) GetAnalystRecommendations(ctx context.Context, ticker string) (*domain.AnalystData, error) {
	return nil, errors.New("not implemented")
}

func (p *candleProvider) GetFundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	return nil, errors.New("not implemented")
}

func (p *candleProvider) GetCompanyNews(ctx context.Context, ticker string, limit int) ([]domain.NewsItem, error) {
	return nil, errors.New("not implemented")
}

func makeCandles(n int, startClose float64) []domain.Candle {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, n)
	for i := range candles {
		close := startClose + float64(i)
		candles[i] = domain.Candle{
			Date:  start.AddDate(0, 0, i),
			Open:  close - 0.5,
			High:  close + 1,
			Low:   close - 1,
			Close: close,
		}
	}
	return candles
}

func newTestService(t *testing.T, provider *candleProvider) *Service {
	t.Helper()
	store := cache.NewWithBackend(cache.NewMemoryBackend(), zerolog.Nop())
	return NewService(provider, store, zerolog.Nop())
}

func TestHistory_WithOverlays(t *testing.T) {
	provider := &candleProvider{candles: map[string][]domain.Candle{
		"NVDA": makeCandles(250, 100),
	}}
	svc := newTestService(t, provider)

	hist, err := svc.History(context.Background(), "nvda", "1y")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", hist.Ticker)
	assert.Len(t, hist.Closes, 250)
	require.Len(t, hist.MA50, 250)
	require.Len(t, hist.MA200, 250)

	// SMA of a linear series equals the close at the window midpoint.
	last := len(hist.Closes) - 1
	assert.InDelta(t, hist.Closes[last]-24.5, hist.MA50[last], 1e-9)
	assert.InDelta(t, hist.Closes[last]-99.5, hist.MA200[last], 1e-9)
}

func TestHistory_ShortSeriesSkipsOverlays(t *testing.T) {
	provider := &candleProvider{candles: map[string][]domain.Candle{
		"NVDA": makeCandles(20, 100),
	}}
	svc := newTestService(t, provider)

	hist, err := svc.History(context.Background(), "NVDA", "1mo")
	require.NoError(t, err)
	assert.Nil(t, hist.MA50)
	assert.Nil(t, hist.MA200)
}

func TestHistory_CachesSeries(t *testing.T) {
	provider := &candleProvider{candles: map[string][]domain.Candle{
		"NVDA": makeCandles(30, 100),
	}}
	svc := newTestService(t, provider)

	_, err := svc.History(context.Background(), "NVDA", "1mo")
	require.NoError(t, err)
	_, err = svc.History(context.Background(), "NVDA", "1mo")
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
}

func TestHistory_EmptySeries(t *testing.T) {
	provider := &candleProvider{candles: map[string][]domain.Candle{}}
	svc := newTestService(t, provider)

	_, err := svc.History(context.Background(), "XXXX", "1mo")
	assert.Error(t, err)
}

func TestComparison_NormalizesToPercentChange(t *testing.T) {
	provider := &candleProvider{candles: map[string][]domain.Candle{
		"NVDA": makeCandles(10, 100),
		"AMD":  makeCandles(10, 50),
	}}
	svc := newTestService(t, provider)

	series, err := svc.Comparison(context.Background(), []string{"NVDA", "AMD"}, "1mo")
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, 0.0, series[0].PercentChange[0])
	// NVDA goes 100 -> 109, AMD 50 -> 59.
	assert.InDelta(t, 9.0, series[0].PercentChange[9], 1e-9)
	assert.InDelta(t, 18.0, series[1].PercentChange[9], 1e-9)
}

func TestComparison_PartialFailure(t *testing.T) {
	provider := &candleProvider{
		candles: map[string][]domain.Candle{"NVDA": makeCandles(10, 100)},
		errs:    map[string]error{"BAD": errors.New("no data")},
	}
	svc := newTestService(t, provider)

	series, err := svc.Comparison(context.Background(), []string{"NVDA", "BAD"}, "1mo")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Empty(t, series[0].Error)
	assert.NotEmpty(t, series[1].Error)
}

func TestComparison_AllFailed(t *testing.T) {
	provider := &candleProvider{errs: map[string]error{
		"AA": errors.New("down"),
		"BB": errors.New("down"),
	}}
	svc := newTestService(t, provider)

	_, err := svc.Comparison(context.Background(), []string{"AA", "BB"}, "1mo")
	assert.Error(t, err)
}

func TestComparison_TooFewSymbols(t *testing.T) {
	svc := newTestService(t, &candleProvider{})

	_, err := svc.Comparison(context.Background(), []string{"NVDA"}, "1mo")
	assert.Error(t, err)
}
