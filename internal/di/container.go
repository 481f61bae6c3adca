// Package di wires the application together. All services are constructed
// once at startup and passed around explicitly; there are no package-level
// singletons.
package di

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/smail-Lamrani/finassist/internal/cache"
	"github.com/smail-Lamrani/finassist/internal/clients/duckduckgo"
	"github.com/smail-Lamrani/finassist/internal/clients/llm"
	"github.com/smail-Lamrani/finassist/internal/clients/yahoo"
	"github.com/smail-Lamrani/finassist/internal/config"
	"github.com/smail-Lamrani/finassist/internal/domain"
	"github.com/smail-Lamrani/finassist/internal/memory"
	"github.com/smail-Lamrani/finassist/internal/modules/analysis"
	"github.com/smail-Lamrani/finassist/internal/modules/assistant"
	"github.com/smail-Lamrani/finassist/internal/modules/charts"
	"github.com/smail-Lamrani/finassist/internal/work"
)

// Container holds all constructed services.
type Container struct {
	Cfg *config.Config
	Log zerolog.Logger

	Cache   *cache.Store
	Janitor *cache.Janitor
	Memory  *memory.Registry
	Pool    *work.Pool

	MarketClient domain.MarketDataProvider
	SearchClient domain.SearchProvider
	LLMClient    domain.TextTransformer

	Analyzer *analysis.Analyzer
	Resolver *analysis.Resolver
	Fetcher  *assistant.Fetcher

	Orchestrator *assistant.Orchestrator
	Comparer     *assistant.Comparer
	Charts       *charts.Service

	StartTime time.Time
}

// New builds the full service graph from configuration.
func New(cfg *config.Config, log zerolog.Logger) *Container {
	c := &Container{
		Cfg:       cfg,
		Log:       log,
		StartTime: time.Now(),
	}

	c.Cache = cache.New(cache.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, log)

	c.Janitor = cache.NewJanitor(c.Cache, log)

	c.Memory = memory.NewRegistry(memory.DefaultMaxHistory, log)
	c.Pool = work.NewPool(cfg.SynthesisWorkers, log)

	c.MarketClient = yahoo.NewClient(cfg.RequestTimeout, log)
	c.SearchClient = duckduckgo.NewClient(cfg.MaxSearchResults, cfg.RequestTimeout, log)
	c.LLMClient = llm.NewClient(llm.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
	}, log)

	c.Analyzer = analysis.NewAnalyzer()
	c.Resolver = analysis.NewResolver(log)
	c.Fetcher = assistant.NewFetcher(c.MarketClient, c.SearchClient, c.Cache, log)

	c.Orchestrator = assistant.NewOrchestrator(
		c.Analyzer,
		c.Resolver,
		c.Fetcher,
		c.LLMClient,
		c.Pool,
		c.Cache,
		assistant.OrchestratorOptions{
			ResponseTTL:      cfg.CacheTTL,
			MaxSearchResults: cfg.MaxSearchResults,
		},
		log,
	)
	c.Comparer = assistant.NewComparer(c.Fetcher, log)
	c.Charts = charts.NewService(c.MarketClient, c.Cache, log)

	return c
}

// Close stops background components in reverse construction order.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Stop()
	}
	if c.Janitor != nil {
		c.Janitor.Stop()
	}
}
