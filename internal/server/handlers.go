package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/smail-Lamrani/finassist/internal/di"
	"github.com/smail-Lamrani/finassist/internal/modules/assistant"
)

const (
	serviceName    = "financial_assistant"
	serviceVersion = "2.0.0"

	minQueryLength = 3
)

// Handlers carries the services the HTTP layer calls into. It holds no logic
// of its own beyond validation and serialization.
type Handlers struct {
	container *di.Container
	log       zerolog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(container *di.Container, log zerolog.Logger) *Handlers {
	return &Handlers{
		container: container,
		log:       log.With().Str("component", "handlers").Logger(),
	}
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id,omitempty"`
}

// QueryResponse is the body returned by POST /api/query.
type QueryResponse struct {
	Response     string  `json:"response"`
	Success      bool    `json:"success"`
	ResponseTime float64 `json:"response_time"`
}

// HandleRoot serves basic API information.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Financial AI Assistant API",
		"version":      serviceVersion,
		"architecture": "tool-first",
		"health":       "/health",
	})
}

// HandleHealth reports service liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().Unix(),
	})
}

// HandleStatus reports detailed service status: active collaborators, the
// cache backend in use, and host resource usage.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := systemStats(h.log)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"service":      serviceName,
		"version":      serviceVersion,
		"architecture": "tool-first",
		"data_sources": map[string]string{
			"market_data": "active",
			"web_search":  "active",
		},
		"cache_backend": h.container.Cache.BackendName(),
		"conversations": h.container.Memory.Size(),
		"uptime_sec":    int(time.Since(h.container.StartTime).Seconds()),
		"cpu_percent":   cpuPct,
		"ram_percent":   ramPct,
		"timestamp":     time.Now().Unix(),
	})
}

// HandleQuery runs the full query pipeline and records the interaction in
// the caller's conversation memory.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < minQueryLength {
		h.writeError(w, http.StatusBadRequest, "query must be at least 3 characters")
		return
	}

	start := time.Now()
	response := h.container.Orchestrator.Query(r.Context(), query)
	elapsed := time.Since(start)

	h.container.Memory.For(req.UserID).Add(query, response, nil)

	h.log.Info().Dur("duration", elapsed).Msg("Query completed")
	h.writeJSON(w, http.StatusOK, QueryResponse{
		Response:     response,
		Success:      true,
		ResponseTime: elapsed.Seconds(),
	})
}

// HandleStockData returns the formatted data bundle for one ticker.
func (h *Handlers) HandleStockData(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	start := time.Now()
	bundle := h.container.Fetcher.FetchAll(r.Context(), ticker)
	if bundle.Empty() {
		h.writeError(w, http.StatusNotFound, "no data found for "+ticker)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"ticker":        ticker,
		"data":          assistant.FormatBundle(bundle),
		"success":       true,
		"response_time": time.Since(start).Seconds(),
		"timestamp":     time.Now().Unix(),
	})
}

// CompareRequest is the body of POST /api/compare and /api/charts/compare.
type CompareRequest struct {
	Tickers []string `json:"tickers"`
	Period  string   `json:"period,omitempty"`
}

// HandleCompare returns the side-by-side comparison report. Out-of-range
// ticker counts still return 200 with an explanatory message; that contract
// violation is user input, not a server fault.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	comparison := h.container.Comparer.Compare(r.Context(), req.Tickers)

	upper := make([]string, len(req.Tickers))
	for i, t := range req.Tickers {
		upper[i] = strings.ToUpper(t)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"tickers":       upper,
		"comparison":    comparison,
		"success":       true,
		"response_time": time.Since(start).Seconds(),
		"timestamp":     time.Now().Unix(),
	})
}

// HandleClearCache flushes the cache and all conversation memory.
func (h *Handlers) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.container.Cache.Clear(r.Context(), "")
	h.container.Memory.ClearAll()

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Cache cleared successfully",
	})
}

// HandleChart returns the price history series for one ticker.
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}

	hist, err := h.container.Charts.History(r.Context(), ticker, period)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, hist)
}

// HandleChartCompare returns normalized percent-change series for 2-5 tickers.
func (h *Handlers) HandleChartCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Tickers) < 2 || len(req.Tickers) > 5 {
		h.writeError(w, http.StatusBadRequest, "between 2 and 5 tickers required")
		return
	}

	period := req.Period
	if period == "" {
		period = "1y"
	}

	series, err := h.container.Charts.Comparison(r.Context(), req.Tickers, period)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"period": period,
		"series": series,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"detail":  detail,
	})
}

// systemStats returns CPU and RAM usage percentages. A short sampling
// interval keeps the status endpoint fast.
func systemStats(log zerolog.Logger) (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get memory statistics")
		return firstOrZero(cpuPercent), 0
	}

	return firstOrZero(cpuPercent), memStat.UsedPercent
}

func firstOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}
