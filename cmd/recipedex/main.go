package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/config"
	dbRedis "github.com/tastebud-labs/recipedex/internal/db/redis"
	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/logger"
	"github.com/tastebud-labs/recipedex/internal/metrics"
	indexrepo "github.com/tastebud-labs/recipedex/internal/repository/index"
	recipesrepo "github.com/tastebud-labs/recipedex/internal/repository/recipes"
	"github.com/tastebud-labs/recipedex/internal/scoring"
	chiTransport "github.com/tastebud-labs/recipedex/internal/transport/chi"
	openaiEmb "github.com/tastebud-labs/recipedex/internal/transport/openai"
	"github.com/tastebud-labs/recipedex/internal/usecase/catalog"
	"github.com/tastebud-labs/recipedex/internal/usecase/recommend"
	"github.com/tastebud-labs/recipedex/internal/usecase/suggest"
	"github.com/tastebud-labs/recipedex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting recipedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Index.Addrs),
		zap.String("database_path", cfg.Database.Path),
	)

	// Vector point store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Password: cfg.Index.Password,
	})
	if err != nil {
		log.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		log.Fatal("Vector store not ready", zap.Error(err))
	}
	log.Info("Connected to vector store")

	// Relational store
	recipes, err := recipesrepo.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open relational store", zap.Error(err))
	}
	defer func() { _ = recipes.Close() }()

	// Register metrics explicitly (no init())
	metrics.Register()

	// Embedding provider
	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Attempts:   cfg.Embedding.Attempts,
		Logger:     log,
	})
	log.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Vector index repo; both collection indexes must exist before serving.
	idx := indexrepo.New(store, cfg.Index.KeyPrefix)
	for _, coll := range []string{indexrepo.IngredientCollection, indexrepo.NameCollection} {
		if err := idx.EnsureIndex(ctx, coll,
			cfg.Embedding.Dimensions, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct); err != nil {
			log.Fatal("Failed to ensure index", zap.String("collection", coll), zap.Error(err))
		}
	}
	log.Info("Vector indexes ready")

	// Use case services
	recommendSvc := recommend.New(idx, recipes, embedder, log).
		WithWeights(scoring.Weights{
			BoostUnit:   cfg.Search.BoostUnit,
			PenaltyUnit: cfg.Search.PenaltyUnit,
		}).
		WithPools(recommend.Pools{
			CandidatePool:       cfg.Search.CandidatePool,
			WidePrefetch:        cfg.Search.WidePrefetch,
			FilteredPrefetch:    cfg.Search.FilteredPrefetch,
			IngredientThreshold: cfg.Search.IngredientThreshold,
			NameThreshold:       cfg.Search.NameThreshold,
		}).
		WithTimeout(time.Duration(cfg.Search.TimeoutSec) * time.Second)

	suggestSvc := suggest.New(recipes, log)
	if err := suggestSvc.Refresh(ctx); err != nil {
		log.Warn("Initial vocabulary load failed, autocomplete loads lazily", zap.Error(err))
	}

	catalogSvc := catalog.New(recipes, idx, embedder, suggestSvc, log)

	checks := []chiTransport.HealthCheck{
		{Name: "index", Probe: store.Ping},
		{Name: "database", Probe: recipes.Ping},
		{Name: "embedder", Probe: embedderProbe(embedder)},
	}

	server := chiTransport.NewServer(recommendSvc, suggestSvc, catalogSvc, checks, log)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}

	log.Info("Server stopped gracefully")
}

// embedderProbe adapts the optional HealthChecker side of an embedder.
func embedderProbe(e domain.Embedder) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if hc, ok := e.(domain.HealthChecker); ok {
			if err := hc.HealthCheck(ctx); err != nil {
				return fmt.Errorf("embedding health check: %w", err)
			}
		}
		return nil
	}
}
