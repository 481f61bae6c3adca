package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smail-Lamrani/finassist/internal/cache"
	"github.com/smail-Lamrani/finassist/internal/config"
	"github.com/smail-Lamrani/finassist/internal/di"
	"github.com/smail-Lamrani/finassist/internal/domain"
	"github.com/smail-Lamrani/finassist/internal/memory"
	"github.com/smail-Lamrani/finassist/internal/modules/analysis"
	"github.com/smail-Lamrani/finassist/internal/modules/assistant"
	"github.com/smail-Lamrani/finassist/internal/modules/charts"
	"github.com/smail-Lamrani/finassist/internal/work"
)

type stubMarket struct {
	stock   *domain.StockData
	news    []domain.NewsItem
	candles []domain.Candle
	fail    bool
}

func (m *stubMarket) GetStockData(ctx context.Context, ticker string) (*domain.StockData, error) {
	if m.fail {
		return nil, errors.New("provider down")
	}
	return m.stock, nil
}

func (m *stubMarket) GetAnalystRecommendations(ctx context.Context, ticker string) (*domain.AnalystData, error) {
	if m.fail {
		return nil, errors.New("provider down")
	}
	return &domain.AnalystData{Ticker: ticker, Recommendation: "buy"}, nil
}

func (m *stubMarket) GetFundamentals(ctx context.Context, ticker string) (*domain.Fundamentals, error) {
	if m.fail {
		return nil, errors.New("provider down")
	}
	return &domain.Fundamentals{Ticker: ticker}, nil
}

func (m *stubMarket) GetCompanyNews(ctx context.Context, ticker string, limit int) ([]domain.NewsItem, error) {
	if m.fail {
		return nil, errors.New("provider down")
	}
	return m.news, nil
}

func (m *stubMarket) GetCandles(ctx context.Context, ticker, period string) ([]domain.Candle, error) {
	if m.fail || len(m.candles) == 0 {
		return nil, errors.New("no candles")
	}
	return m.candles, nil
}

type stubSearch struct{ results []domain.SearchResult }

func (s *stubSearch) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return s.results, nil
}

type stubLLM struct{}

func (stubLLM) Invoke(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestServer(t *testing.T, market *stubMarket) *Server {
	t.Helper()

	log := zerolog.Nop()
	store := cache.NewWithBackend(cache.NewMemoryBackend(), log)
	pool := work.NewPool(2, log)
	t.Cleanup(pool.Stop)

	search := &stubSearch{results: []domain.SearchResult{
		{Title: "A headline", Snippet: "snippet", Source: "example.com"},
	}}
	fetcher := assistant.NewFetcher(market, search, store, log)

	container := &di.Container{
		Cfg:       &config.Config{Port: 0},
		Log:       log,
		Cache:     store,
		Memory:    memory.NewRegistry(memory.DefaultMaxHistory, log),
		Pool:      pool,
		Fetcher:   fetcher,
		Comparer:  assistant.NewComparer(fetcher, log),
		Charts:    charts.NewService(market, store, log),
		StartTime: time.Now(),
	}
	container.Orchestrator = assistant.NewOrchestrator(
		analysis.NewAnalyzer(),
		analysis.NewResolver(log),
		fetcher,
		stubLLM{},
		pool,
		store,
		assistant.OrchestratorOptions{},
		log,
	)

	return New(Config{Log: log, Port: 0, DevMode: true, Container: container})
}

func nvdaMarket() *stubMarket {
	candles := make([]domain.Candle, 30)
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = domain.Candle{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)}
	}

	return &stubMarket{
		stock: &domain.StockData{
			Ticker:       "NVDA",
			Currency:     "USD",
			CurrentPrice: domain.Float(180.93),
			Volume:       domain.Int(1000),
		},
		news:    []domain.NewsItem{{Title: "NVDA headline", Publisher: "Reuters"}},
		candles: candles,
	}
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "financial_assistant", body["service"])
}

func TestHandleQuery(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodPost, "/api/query", QueryRequest{
		Query:  "What is the stock price of NVIDIA?",
		UserID: "u1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var body QueryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, body.Response, "180.93")
	assert.GreaterOrEqual(t, body.ResponseTime, 0.0)
}

func TestHandleQuery_TooShort(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodPost, "/api/query", QueryRequest{Query: "hi"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleQuery_InvalidBody(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleQuery_RecordsMemory(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	doJSON(t, srv, http.MethodPost, "/api/query", QueryRequest{
		Query:  "What is the stock price of NVIDIA?",
		UserID: "alice",
	})

	assert.Equal(t, 1, srv.handlers.container.Memory.For("alice").Len())
}

func TestHandleStockData(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodGet, "/api/stocks/nvda", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "NVDA", body["ticker"])
	assert.Contains(t, body["data"], "180.93")
}

func TestHandleStockData_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubMarket{fail: true})

	rr := doJSON(t, srv, http.MethodGet, "/api/stocks/XXXX", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleCompare(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodPost, "/api/compare", CompareRequest{
		Tickers: []string{"NVDA", "AMD"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["comparison"], "Stock Comparison")
	assert.Contains(t, body["comparison"], "NVDA")
}

func TestHandleCompare_BoundaryIsNotAnError(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodPost, "/api/compare", CompareRequest{
		Tickers: []string{"NVDA"},
	})
	// Symbol-count violations are user-readable results, not HTTP errors.
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["comparison"], "at least 2 tickers")
}

func TestHandleClearCache(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	doJSON(t, srv, http.MethodPost, "/api/query", QueryRequest{
		Query:  "What is the stock price of NVIDIA?",
		UserID: "alice",
	})

	rr := doJSON(t, srv, http.MethodPost, "/api/cache/clear", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 0, srv.handlers.container.Memory.For("alice").Len())
}

func TestHandleChart(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodGet, "/api/charts/NVDA?period=1mo", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var hist charts.History
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hist))
	assert.Equal(t, "NVDA", hist.Ticker)
	assert.Len(t, hist.Closes, 30)
}

func TestHandleChart_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubMarket{})

	rr := doJSON(t, srv, http.MethodGet, "/api/charts/XXXX", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleChartCompare(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodPost, "/api/charts/compare", CompareRequest{
		Tickers: []string{"NVDA", "AMD"},
		Period:  "1mo",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Period string                    `json:"period"`
		Series []charts.ComparisonSeries `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "1mo", body.Period)
	assert.Len(t, body.Series, 2)
}

func TestHandleChartCompare_BadCount(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodPost, "/api/charts/compare", CompareRequest{
		Tickers: []string{"NVDA"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, nvdaMarket())

	rr := doJSON(t, srv, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "memory", body["cache_backend"])
}
