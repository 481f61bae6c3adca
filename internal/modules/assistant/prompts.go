package assistant

import (
	"fmt"
	"strings"
)

// frenchMarkers select the response language for model prompts. Data fetching
// is never affected by language.
var frenchMarkers = []string{
	"analyse", "action", "bourse", "cours", "résultats", "marché", "donnez", "donne",
}

// detectLanguage returns "French" when the query contains a French marker
// word, otherwise "English".
func detectLanguage(query string) string {
	lower := strings.ToLower(query)
	for _, w := range frenchMarkers {
		if strings.Contains(lower, w) {
			return "French"
		}
	}
	return "English"
}

// searchQueryRewrites maps company mentions to focused search phrases. The
// raw user question is usually a poor search query; a ticker-anchored phrase
// returns far better news hits.
var searchQueryRewrites = []struct {
	keyword string
	term    string
}{
	{"aapl", "AAPL Apple stock news"},
	{"apple", "AAPL Apple stock news"},
	{"nvda", "NVDA NVIDIA stock news"},
	{"nvidia", "NVDA NVIDIA stock news"},
	{"tsla", "TSLA Tesla stock news"},
	{"tesla", "TSLA Tesla stock news"},
	{"msft", "MSFT Microsoft stock news"},
	{"microsoft", "MSFT Microsoft stock news"},
	{"googl", "GOOGL Google stock news"},
	{"google", "GOOGL Google stock news"},
	{"amzn", "AMZN Amazon stock news"},
	{"amazon", "AMZN Amazon stock news"},
	{"meta", "META stock news"},
	{"amd", "AMD stock news"},
	{"intel", "INTC Intel stock news"},
}

// simplifySearchQuery rewrites the query into a search phrase when it
// mentions a known company; otherwise the query passes through unchanged.
func simplifySearchQuery(query string) string {
	lower := strings.ToLower(query)
	for _, rw := range searchQueryRewrites {
		if strings.Contains(lower, rw.keyword) {
			return rw.term
		}
	}
	return query
}

// synthesisPrompt builds the strict two-source synthesis instruction. The
// model is only allowed to reorganize the supplied data; every number must
// be copied verbatim and every data point must cite its source.
func synthesisPrompt(query, financialData, webData string) string {
	lang := detectLanguage(query)

	return fmt.Sprintf(`You are a financial data formatter. Your ONLY job is to reorganize the data below.

## ABSOLUTE RULES - VIOLATION = FAILURE

1. **COPY-PASTE ONLY**: Every number in your response MUST appear exactly in the SOURCE DATA below
2. **NO INVENTION**: Do NOT create any numbers, percentages, prices, or dates
3. **NO EXTERNAL KNOWLEDGE**: Ignore everything you know about stocks. Use ONLY the data below.
4. **CITE SOURCES**: Every data point must mention its source (market data API or web search)

## FORBIDDEN (examples of what NOT to do):
- "The stock is expected to reach $500" (if 500 is not in the data)
- "Revenue grew 45%% in Q3" (if 45%% and Q3 are not in the data)
- "According to Bloomberg..." (if Bloomberg is not mentioned in sources)
- Adding any analysis, predictions, or opinions

## REQUIRED OUTPUT FORMAT:

### Summary
- List 3-5 key facts using ONLY numbers from the data

### Financial Data
- Copy the key metrics from the market data below

### News
- Summarize headlines from the web search below (cite source)

### Sources
- Market data API (real-time data)
- Web search

---

## SOURCE DATA (use ONLY this):

### From market data API:
%s

### From web search:
%s

---

Now write the formatted response in %s. Remember: COPY numbers, don't invent them.`, financialData, webData, lang)
}

// reformatPrompt builds the single-source reformatting instruction.
// dataType is "financial" or "web" and only changes the source attribution.
func reformatPrompt(query, data, dataType string) string {
	lang := detectLanguage(query)

	source := "market data API"
	if dataType == "web" {
		source = "web search"
	}

	return fmt.Sprintf(`Reformat this %s data in %s.

RULES:
- COPY all numbers exactly as they appear
- Do NOT add any new data
- Do NOT make predictions

DATA:
%s

Write a clean, formatted version in %s. End with: "Source: %s"`, dataType, lang, data, lang, source)
}
