package assistant

import (
	"fmt"
	"strings"

	"github.com/smail-Lamrani/finassist/internal/domain"
)

const maxNewsShown = 3

// FormatBundle renders a fetched data bundle as labeled markdown blocks.
// Absent numeric fields render as "N/A"; a failed category collapses to a
// one-line warning instead of dropping the whole response.
func FormatBundle(b *Bundle) string {
	var parts []string

	if b.StockErr != nil {
		parts = append(parts, fmt.Sprintf("⚠️ Could not fetch stock data: %v", b.StockErr))
	} else if b.Stock != nil {
		s := b.Stock
		parts = append(parts,
			fmt.Sprintf("## 📈 Stock Data for %s", b.Ticker),
			fmt.Sprintf("- **Current Price**: $%s %s", formatFloat(s.CurrentPrice, 2), currencyOrDefault(s.Currency)),
			fmt.Sprintf("- **Day Range**: $%s - $%s", formatFloat(s.Low, 2), formatFloat(s.High, 2)),
			fmt.Sprintf("- **Volume**: %s", formatVolume(s.Volume)),
		)
		if s.MarketCap != nil {
			parts = append(parts, fmt.Sprintf("- **Market Cap**: %s", formatMarketCap(s.MarketCap)))
		}
		parts = append(parts,
			fmt.Sprintf("- **P/E Ratio**: %s", formatFloat(s.PERatio, 2)),
			fmt.Sprintf("- **52-Week Range**: $%s - $%s", formatFloat(s.FiftyTwoWeekLow, 2), formatFloat(s.FiftyTwoWeekHigh, 2)),
		)
	}

	if b.AnalystsErr == nil && b.Analysts != nil {
		a := b.Analysts
		parts = append(parts,
			"",
			"## 📊 Analyst Recommendations",
			fmt.Sprintf("- **Recommendation**: %s", stringOrNA(a.Recommendation)),
			fmt.Sprintf("- **Number of Analysts**: %s", formatInt(a.NumAnalysts)),
		)
		if a.TargetMean != nil {
			parts = append(parts, fmt.Sprintf("- **Target Price (Mean)**: $%s", formatFloat(a.TargetMean, 2)))
		}
		if a.TargetLow != nil && a.TargetHigh != nil {
			parts = append(parts, fmt.Sprintf("- **Target Range**: $%s - $%s", formatFloat(a.TargetLow, 2), formatFloat(a.TargetHigh, 2)))
		}
	}

	if b.FundamentalsErr == nil && b.Fundamentals != nil {
		f := b.Fundamentals
		parts = append(parts, "", "## 💰 Fundamentals")
		if f.ProfitMargins != nil {
			parts = append(parts, fmt.Sprintf("- **Profit Margin**: %s", formatPercent(f.ProfitMargins)))
		}
		if f.RevenueGrowth != nil {
			parts = append(parts, fmt.Sprintf("- **Revenue Growth**: %s", formatPercent(f.RevenueGrowth)))
		}
		if f.ReturnOnEquity != nil {
			parts = append(parts, fmt.Sprintf("- **Return on Equity**: %s", formatPercent(f.ReturnOnEquity)))
		}
		parts = append(parts, fmt.Sprintf("- **Debt to Equity**: %s", formatFloat(f.DebtToEquity, 2)))
	}

	news := validNews(b.News)
	if len(news) > 0 {
		parts = append(parts, "", "## 📰 Recent News")
		for i, item := range news {
			if i >= maxNewsShown {
				break
			}
			parts = append(parts, fmt.Sprintf("%d. **%s**", i+1, item.Title))
			if item.Publisher != "" {
				parts = append(parts, fmt.Sprintf("   Publisher: %s", item.Publisher))
			}
		}
	}

	return strings.Join(parts, "\n")
}

// FormatSearchResults renders web search hits as a numbered list. Returns
// the empty string when there is nothing usable.
func FormatSearchResults(results []domain.SearchResult, limit int) string {
	if len(results) == 0 {
		return ""
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	var parts []string
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		source := r.Source
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts,
			fmt.Sprintf("%d. %s", i+1, title),
			fmt.Sprintf("   %s", r.Snippet),
			fmt.Sprintf("   Source: %s", source),
		)
	}

	return strings.Join(parts, "\n")
}

// FormatFallback is the deterministic rendering used when model synthesis
// fails: the two labeled blocks with a source attribution footer.
func FormatFallback(financialData, webData string) string {
	var parts []string

	if financialData != "" {
		parts = append(parts, "## 📊 Financial Data (market data API)", financialData)
	}
	if webData != "" {
		parts = append(parts, "\n## 📰 News (web search)", webData)
	}

	parts = append(parts, "\n---", "*Sources: market data API (real-time), web search (news)*")
	return strings.Join(parts, "\n")
}

// validNews drops items with empty or placeholder titles.
func validNews(items []domain.NewsItem) []domain.NewsItem {
	var out []domain.NewsItem
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" || title == "****" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func formatFloat(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

func formatInt(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

// formatVolume renders share counts with thousands separators.
func formatVolume(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return groupDigits(fmt.Sprintf("%d", *v))
}

// formatMarketCap scales large caps to trillions or billions.
func formatMarketCap(v *float64) string {
	if v == nil {
		return "N/A"
	}
	switch {
	case *v >= 1e12:
		return fmt.Sprintf("$%.2fT", *v/1e12)
	case *v >= 1e9:
		return fmt.Sprintf("$%.1fB", *v/1e9)
	default:
		return "$" + groupDigits(fmt.Sprintf("%.0f", *v))
	}
}

func formatPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func stringOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}

// groupDigits inserts commas into a plain integer string.
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
