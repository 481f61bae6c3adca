// Package analysis provides query classification and ticker resolution: the
// rule engines that decide which data sources a query needs and which market
// symbol it refers to.
package analysis

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// AliasMapping pairs a lowercased alias with its canonical market symbol.
type AliasMapping struct {
	Alias  string
	Symbol string
}

// defaultAliases is the ordered alias table. Order matters: the first alias
// found as a substring of the query wins, so more specific aliases must come
// before shorter ones that could shadow them. Known ambiguity: short aliases
// like "meta" also match inside unrelated words ("metadata"); first-match-wins
// is kept for compatibility rather than silently changed.
var defaultAliases = []AliasMapping{
	{"nvidia", "NVDA"}, {"nvda", "NVDA"},
	{"tesla", "TSLA"}, {"tsla", "TSLA"},
	{"apple", "AAPL"}, {"aapl", "AAPL"},
	{"microsoft", "MSFT"}, {"msft", "MSFT"},
	{"amazon", "AMZN"}, {"amzn", "AMZN"},
	{"google", "GOOGL"}, {"googl", "GOOGL"}, {"goog", "GOOGL"}, {"alphabet", "GOOGL"},
	{"meta", "META"}, {"facebook", "META"},
	{"netflix", "NFLX"}, {"nflx", "NFLX"},
	{"amd", "AMD"},
	{"intel", "INTC"}, {"intc", "INTC"},
}

// explicitTickerPattern matches standalone all-uppercase 2-5 letter tokens in
// the original (non-lowercased) text.
var explicitTickerPattern = regexp.MustCompile(`\b([A-Z]{2,5})\b`)

// Resolver maps free-text company mentions to canonical market symbols.
type Resolver struct {
	aliases []AliasMapping
	// symbols is the set of canonical symbols, for validating explicit
	// ticker-like tokens.
	symbols map[string]bool
	log     zerolog.Logger
}

// NewResolver creates a resolver over the default alias table.
func NewResolver(log zerolog.Logger) *Resolver {
	return NewResolverWithAliases(defaultAliases, log)
}

// NewResolverWithAliases creates a resolver over a custom ordered table.
func NewResolverWithAliases(aliases []AliasMapping, log zerolog.Logger) *Resolver {
	symbols := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		symbols[a.Symbol] = true
	}
	return &Resolver{
		aliases: aliases,
		symbols: symbols,
		log:     log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve extracts a canonical symbol from free text. It first scans the
// ordered alias table against the lowercased text (first substring match
// wins); failing that, it looks for an explicit uppercase ticker-like token
// that matches a known symbol. Returns ("", false) when nothing matches.
func (r *Resolver) Resolve(text string) (string, bool) {
	lowered := strings.ToLower(text)

	for _, a := range r.aliases {
		if strings.Contains(lowered, a.Alias) {
			r.log.Debug().Str("alias", a.Alias).Str("symbol", a.Symbol).Msg("Resolved ticker from alias")
			return a.Symbol, true
		}
	}

	// Uppercase matters here: "amd" in prose is the alias path, "AMD" as a
	// token is an explicit ticker. Scan the original text.
	for _, match := range explicitTickerPattern.FindAllString(text, -1) {
		if r.symbols[match] {
			r.log.Debug().Str("symbol", match).Msg("Resolved explicit ticker")
			return match, true
		}
	}

	return "", false
}

// KnownSymbol reports whether symbol is a canonical symbol in the table.
func (r *Resolver) KnownSymbol(symbol string) bool {
	return r.symbols[symbol]
}
