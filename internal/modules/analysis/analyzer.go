package analysis

import "strings"

// Classification says which data sources a query needs.
type Classification struct {
	NeedsFinancial bool `json:"needs_financial"`
	NeedsNews      bool `json:"needs_news"`
}

// Keyword lists for classification. Matching is case-insensitive literal
// substring containment; multi-word entries match as phrases. French terms
// are included because the assistant serves bilingual users.
var (
	financialKeywords = []string{
		"stock", "price", "share", "market", "ticker", "symbol",
		"earnings", "revenue", "profit", "dividend", "pe ratio",
		"analyst", "recommendation", "target", "fundamental",
		"action", "bourse", "cours", "résultats", "analyse",
	}

	companyKeywords = []string{
		"nvidia", "nvda", "tesla", "tsla", "apple", "aapl",
		"microsoft", "msft", "amazon", "amzn", "google", "googl",
		"meta", "facebook", "netflix", "nflx", "amd", "intel", "intc",
	}

	newsKeywords = []string{
		"news", "latest", "recent", "today", "breaking", "update",
		"actualité", "dernières", "récentes", "contexte", "marché",
	}
)

// Analyzer classifies queries by keyword matching. It is stateless; the
// struct exists so the keyword lists are injectable in tests if ever needed.
type Analyzer struct{}

// NewAnalyzer creates a query analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Classify determines which data sources the query needs. Financial data is
// needed when any financial OR company keyword matches; news when any news
// keyword matches. Pure function of the query text.
func (a *Analyzer) Classify(query string) Classification {
	lowered := strings.ToLower(query)

	return Classification{
		NeedsFinancial: containsAny(lowered, financialKeywords) || containsAny(lowered, companyKeywords),
		NeedsNews:      containsAny(lowered, newsKeywords),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
