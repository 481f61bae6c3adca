package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/smail-Lamrani/finassist/internal/cache"
	"github.com/smail-Lamrani/finassist/internal/domain"
	"github.com/smail-Lamrani/finassist/internal/modules/analysis"
	"github.com/smail-Lamrani/finassist/internal/work"
)

const couldNotFindMessage = "Could not find relevant information."

// Orchestrator runs the full query pipeline: cache check, classification,
// data fetching, then synthesis or deterministic rendering. One pass per
// query, no retries. Every failure degrades to a textual result.
type Orchestrator struct {
	analyzer *analysis.Analyzer
	resolver *analysis.Resolver
	fetcher  *Fetcher
	llm      domain.TextTransformer
	pool     *work.Pool
	cache    *cache.Store

	responseTTL time.Duration
	maxResults  int
	log         zerolog.Logger
}

// OrchestratorOptions configures response caching and search rendering.
type OrchestratorOptions struct {
	// ResponseTTL is how long final rendered responses stay cached.
	ResponseTTL time.Duration
	// MaxSearchResults caps web results rendered per response.
	MaxSearchResults int
}

// NewOrchestrator wires the pipeline. The pool bounds concurrent model calls
// so a slow endpoint cannot starve other requests.
func NewOrchestrator(
	analyzer *analysis.Analyzer,
	resolver *analysis.Resolver,
	fetcher *Fetcher,
	llm domain.TextTransformer,
	pool *work.Pool,
	store *cache.Store,
	opts OrchestratorOptions,
	log zerolog.Logger,
) *Orchestrator {
	if opts.ResponseTTL == 0 {
		opts.ResponseTTL = time.Hour
	}
	if opts.MaxSearchResults == 0 {
		opts.MaxSearchResults = 5
	}

	return &Orchestrator{
		analyzer:    analyzer,
		resolver:    resolver,
		fetcher:     fetcher,
		llm:         llm,
		pool:        pool,
		cache:       store,
		responseTTL: opts.ResponseTTL,
		maxResults:  opts.MaxSearchResults,
		log:         log.With().Str("component", "orchestrator").Logger(),
	}
}

// Query answers a natural-language question. The returned string is always
// usable text; upstream and synthesis failures degrade to raw data blocks
// or a fixed not-found message.
func (o *Orchestrator) Query(ctx context.Context, query string) string {
	key := cache.DeriveKey(NamespaceOrchestrator, query)

	var cached string
	if o.cache.Get(ctx, key, &cached) {
		o.log.Info().Msg("Using cached response")
		return cached
	}

	classification := o.analyzer.Classify(query)

	var financialData string
	if classification.NeedsFinancial {
		financialData = o.fetchFinancial(ctx, query)
	}

	// Web search doubles as the guaranteed fallback: when classification
	// matched nothing the user still gets an answer.
	var webData string
	if classification.NeedsNews || !classification.NeedsFinancial {
		webData = o.fetchWeb(ctx, query)
	}

	var response string
	switch {
	case financialData != "" && webData != "":
		response = o.synthesize(ctx, query, financialData, webData)
	case financialData != "":
		response = o.reformat(ctx, query, financialData, "financial")
	case webData != "":
		response = o.reformat(ctx, query, webData, "web")
	default:
		response = couldNotFindMessage
	}

	o.cache.Set(ctx, key, response, o.responseTTL)
	return response
}

// fetchFinancial resolves the ticker and renders the four data categories.
// An unresolved ticker yields the empty string.
func (o *Orchestrator) fetchFinancial(ctx context.Context, query string) string {
	ticker, ok := o.resolver.Resolve(query)
	if !ok {
		o.log.Info().Msg("No ticker resolved from query")
		return ""
	}

	o.log.Info().Str("ticker", ticker).Msg("Fetching financial data")
	bundle := o.fetcher.FetchAll(ctx, ticker)
	return FormatBundle(bundle)
}

// fetchWeb runs a simplified web search and renders the top results. Any
// failure yields the empty string.
func (o *Orchestrator) fetchWeb(ctx context.Context, query string) string {
	results, err := o.fetcher.WebSearch(ctx, simplifySearchQuery(query))
	if err != nil {
		o.log.Warn().Err(err).Msg("Web search failed")
		return ""
	}

	return FormatSearchResults(results, o.maxResults)
}

// synthesize asks the model to merge both blocks under the strict
// copy-verbatim instruction. On any failure the deterministic concatenation
// is returned instead.
func (o *Orchestrator) synthesize(ctx context.Context, query, financialData, webData string) string {
	prompt := synthesisPrompt(query, financialData, webData)

	out, err := o.pool.Run(ctx, func(ctx context.Context) (string, error) {
		return o.llm.Invoke(ctx, prompt)
	})
	if err != nil {
		o.log.Warn().Err(err).Msg("Synthesis failed, using fallback formatting")
		return FormatFallback(financialData, webData)
	}

	return out
}

// reformat asks the model to restyle a single block. On failure the raw
// block is returned unchanged.
func (o *Orchestrator) reformat(ctx context.Context, query, data, dataType string) string {
	prompt := reformatPrompt(query, data, dataType)

	out, err := o.pool.Run(ctx, func(ctx context.Context) (string, error) {
		return o.llm.Invoke(ctx, prompt)
	})
	if err != nil {
		o.log.Warn().Err(err).Str("type", dataType).Msg("Reformat failed, returning raw data")
		return data
	}

	return out
}
