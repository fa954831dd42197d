// Package main runs the retailer search and pricing service: the parallel
// search aggregator, progressive wishlist pricing, and the analytics sink,
// behind one HTTP API plus a Prometheus metrics listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"needlist/internal/api"
	"needlist/internal/config"
	"needlist/internal/domain"
	"needlist/internal/observability"
	"needlist/internal/pricing"
	"needlist/internal/ratelimit"
	"needlist/internal/retailer"
	"needlist/internal/search"
	"needlist/internal/storage"
	chstore "needlist/internal/storage/clickhouse"
	"needlist/internal/storage/memory"
	"needlist/internal/storage/migrations"
	pgstore "needlist/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	wishlistStore storage.WishlistStore
	itemStore     storage.ItemStore
	eventStore    storage.SearchEventStore
}

func main() {
	// Load .env file if exists
	config.LoadEnvFile()

	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Optional YAML config file")
	httpAddr := flag.String("http-addr", "", "API HTTP address (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	serpKey := flag.String("serpapi-key", "", "SerpAPI key for Walmart and Target (overrides config)")
	rainforestKey := flag.String("rainforest-key", "", "Rainforest API key for Amazon (overrides config)")
	zipCode := flag.String("zip-code", "", "Default zip code hint for retailer searches (overrides config)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags win over config file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-addr":
			cfg.HTTPAddr = *httpAddr
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "postgres-dsn":
			cfg.PostgresDSN = *postgresDSN
		case "clickhouse-dsn":
			cfg.ClickhouseDSN = *clickhouseDSN
		case "use-memory":
			cfg.UseMemory = *useMemory
		case "serpapi-key":
			cfg.SerpAPIKey = *serpKey
		case "rainforest-key":
			cfg.RainforestAPIKey = *rainforestKey
		case "zip-code":
			cfg.DefaultZipCode = *zipCode
		}
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.SerpAPIKey == "" || cfg.RainforestAPIKey == "" {
		logger.Fatal("--serpapi-key and --rainforest-key are required (or SERPAPI_KEY / RAINFOREST_API_KEY)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("needlist")

	// Retailer adapters. Amazon is metered, so it goes behind the cached
	// rate-limited wrapper; everything downstream of here sees only the
	// SearchProvider interface.
	serp := retailer.NewSerpClient(cfg.SerpAPIKey)
	walmart := retailer.NewWalmartProvider(serp)
	target := retailer.NewTargetProvider(serp)

	rainforest := retailer.NewRainforestClient(cfg.RainforestAPIKey)
	amazon := ratelimit.NewCachedProvider(retailer.NewAmazonProvider(rainforest), ratelimit.Options{
		TTL:         cfg.CacheTTL,
		MinInterval: cfg.AmazonMinInterval,
		Logger:      log.New(os.Stdout, "[amazon] ", log.LstdFlags),
		Metrics:     metrics,
	})

	aggregator := search.New(search.Options{
		Providers: []search.ProviderConfig{
			{Provider: walmart, Timeout: cfg.FastTimeout},
			{Provider: target, Timeout: cfg.FastTimeout},
			{Provider: amazon, Timeout: cfg.SlowTimeout},
		},
		MaxResults: cfg.MaxResults,
		ZipCode:    cfg.DefaultZipCode,
		Logger:     log.New(os.Stdout, "[search] ", log.LstdFlags),
		Metrics:    metrics,
		Recorder:   &eventRecorder{store: stores.eventStore},
	})

	pricer := pricing.NewService(pricing.ServiceOptions{
		FastProviders: []retailer.SearchProvider{walmart, target},
		SlowProvider:  amazon,
		FastTimeout:   cfg.FastTimeout,
		SlowTimeout:   cfg.SlowTimeout,
		ZipCode:       cfg.DefaultZipCode,
		Logger:        log.New(os.Stdout, "[pricing] ", log.LstdFlags),
		Metrics:       metrics,
	})

	server := api.NewServer(api.Options{
		Search:    aggregator,
		Pricing:   pricer,
		Wishlists: stores.wishlistStore,
		Items:     stores.itemStore,
		Events:    stores.eventStore,
		Logger:    logger,
		Metrics:   metrics,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Routes(),
	}

	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown: %v", err)
		}

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(cfg.ShutdownTimeout):
			logger.Println("Graceful shutdown timed out, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Metrics listener, separate from the API so it can stay private.
	go func() {
		logger.Printf("Starting metrics server on %s", cfg.MetricsAddr)
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		close(done)
		logger.Fatalf("HTTP server error: %v", err)
	}
	close(done)

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, cfg config.Config) (*allStores, func(), error) {
	if cfg.UseMemory {
		stores := &allStores{
			wishlistStore: memory.NewWishlistStore(),
			itemStore:     memory.NewItemStore(),
			eventStore:    memory.NewSearchEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	stores := &allStores{
		wishlistStore: pgstore.NewWishlistStore(pool),
		itemStore:     pgstore.NewItemStore(pool),
		eventStore:    chstore.NewSearchEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// eventRecorder adapts the analytics store to the aggregator's recorder.
type eventRecorder struct {
	store storage.SearchEventStore
}

func (r *eventRecorder) RecordSearch(ctx context.Context, e *domain.SearchEvent) error {
	return r.store.Insert(ctx, e)
}
