package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	minCompareSymbols = 2
	maxCompareSymbols = 5
)

// Comparer builds side-by-side comparison tables across symbols. Out-of-range
// symbol counts come straight from external callers, so they are reported as
// normal explanatory strings rather than errors.
type Comparer struct {
	fetcher *Fetcher
	log     zerolog.Logger
}

// NewComparer creates a Comparer.
func NewComparer(fetcher *Fetcher, log zerolog.Logger) *Comparer {
	return &Comparer{
		fetcher: fetcher,
		log:     log.With().Str("component", "comparer").Logger(),
	}
}

// Compare fetches the four data categories for each symbol and renders a
// multi-section markdown table report. Partial data renders as "N/A" and a
// wholly failed category as "Error". Compare never fails on partial data.
func (c *Comparer) Compare(ctx context.Context, symbols []string) string {
	if len(symbols) < minCompareSymbols {
		return "Please provide at least 2 tickers to compare."
	}
	if len(symbols) > maxCompareSymbols {
		return "Maximum 5 tickers allowed for comparison."
	}

	c.log.Info().Strs("symbols", symbols).Msg("Comparing stocks")

	bundles := make([]*Bundle, len(symbols))
	for i, symbol := range symbols {
		bundles[i] = c.fetcher.FetchAll(ctx, strings.ToUpper(symbol))
	}

	return formatComparison(bundles)
}

func formatComparison(bundles []*Bundle) string {
	parts := []string{"# 📊 Stock Comparison\n"}

	parts = append(parts,
		"## 💰 Current Prices",
		"| Ticker | Price | Day Range | Volume |",
		"|--------|-------|-----------|--------|",
	)
	for _, b := range bundles {
		price, currency, dayRange, volume := "Error", "", "Error", "Error"
		if b.StockErr == nil && b.Stock != nil {
			price = "$" + formatFloat(b.Stock.CurrentPrice, 2)
			currency = currencyOrDefault(b.Stock.Currency)
			dayRange = rangeOrNA(b.Stock.Low, b.Stock.High)
			volume = formatVolume(b.Stock.Volume)
		}
		parts = append(parts, fmt.Sprintf("| %s | %s %s | %s | %s |", b.Ticker, price, currency, dayRange, volume))
	}

	parts = append(parts,
		"",
		"## 📈 Market Cap & Valuation",
		"| Ticker | Market Cap | P/E Ratio | 52-Week Range |",
		"|--------|------------|-----------|---------------|",
	)
	for _, b := range bundles {
		marketCap, pe, range52 := "Error", "Error", "Error"
		if b.StockErr == nil && b.Stock != nil {
			marketCap = formatMarketCap(b.Stock.MarketCap)
			pe = formatFloat(b.Stock.PERatio, 1)
			range52 = rangeOrNA(b.Stock.FiftyTwoWeekLow, b.Stock.FiftyTwoWeekHigh)
		}
		parts = append(parts, fmt.Sprintf("| %s | %s | %s | %s |", b.Ticker, marketCap, pe, range52))
	}

	parts = append(parts,
		"",
		"## 💼 Fundamentals",
		"| Ticker | Profit Margin | Revenue Growth | ROE | Debt/Equity |",
		"|--------|---------------|----------------|-----|-------------|",
	)
	for _, b := range bundles {
		profit, revenue, roe, debt := "Error", "Error", "Error", "Error"
		if b.FundamentalsErr == nil && b.Fundamentals != nil {
			profit = formatPercent(b.Fundamentals.ProfitMargins)
			revenue = formatPercent(b.Fundamentals.RevenueGrowth)
			roe = formatPercent(b.Fundamentals.ReturnOnEquity)
			debt = formatFloat(b.Fundamentals.DebtToEquity, 2)
		}
		parts = append(parts, fmt.Sprintf("| %s | %s | %s | %s | %s |", b.Ticker, profit, revenue, roe, debt))
	}

	parts = append(parts,
		"",
		"## 🎯 Analyst Recommendations",
		"| Ticker | Recommendation | Target Price | # Analysts |",
		"|--------|----------------|--------------|------------|",
	)
	for _, b := range bundles {
		rec, target, num := "Error", "Error", "Error"
		if b.AnalystsErr == nil && b.Analysts != nil {
			rec = stringOrNA(b.Analysts.Recommendation)
			target = dollarOrNA(b.Analysts.TargetMean)
			num = formatInt(b.Analysts.NumAnalysts)
		}
		parts = append(parts, fmt.Sprintf("| %s | %s | %s | %s |", b.Ticker, rec, target, num))
	}

	parts = append(parts,
		"",
		"## 📰 Latest Headlines",
		"| Ticker | Headline |",
		"|--------|----------|",
	)
	for _, b := range bundles {
		headline := "N/A"
		if b.NewsErr != nil {
			headline = "Error"
		} else if news := validNews(b.News); len(news) > 0 {
			headline = news[0].Title
		}
		parts = append(parts, fmt.Sprintf("| %s | %s |", b.Ticker, headline))
	}

	parts = append(parts, "\n---", "*Data source: market data API (real-time)*")
	return strings.Join(parts, "\n")
}

func rangeOrNA(low, high *float64) string {
	if low == nil || high == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f - $%.2f", *low, *high)
}

func dollarOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}
