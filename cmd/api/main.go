package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/insight-service/internal/api/handlers"
	"github.com/dvloznov/insight-service/internal/api/middleware"
	"github.com/dvloznov/insight-service/internal/archive"
	"github.com/dvloznov/insight-service/internal/config"
	"github.com/dvloznov/insight-service/internal/insight"
	"github.com/dvloznov/insight-service/internal/insight/cache"
	"github.com/dvloznov/insight-service/internal/llm"
	"github.com/dvloznov/insight-service/internal/logger"
	storeBQ "github.com/dvloznov/insight-service/internal/store/bigquery"
)

func main() {
	// Load .env if present; environment variables win.
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Fingerprint cache: Redis when configured, in-memory otherwise.
	var store insight.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisStore.Close()
		store = redisStore
		log.Info().Str("url", cfg.RedisURL).Msg("Using Redis insight cache")
	} else {
		store = cache.NewMemoryStore(cfg.CacheTTL)
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("Using in-memory insight cache")
	}

	// Generation backend.
	var generator insight.Generator
	switch cfg.Provider {
	case config.ProviderGemini:
		gemini, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			Model:           cfg.GeminiModel,
			GenerateTimeout: cfg.GenerateTimeout,
			RetryDelay:      cfg.RetryDelay,
			Logger:          log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		generator = gemini
	default:
		generator = llm.NewOllamaClient(llm.OllamaConfig{
			Endpoint:        cfg.OllamaEndpoint,
			Model:           cfg.OllamaModel,
			ProbeTimeout:    cfg.ProbeTimeout,
			GenerateTimeout: cfg.GenerateTimeout,
			RetryDelay:      cfg.RetryDelay,
			Logger:          log,
		})
	}

	if cfg.ForceLocal {
		log.Info().Msg("Deployment tier forces local insights - backend will not be called")
	}

	svc := insight.NewService(insight.ServiceConfig{
		Cache:      store,
		Generator:  generator,
		ForceLocal: cfg.ForceLocal,
		Logger:     log,
	})

	// Optional transaction store for per-user requests.
	var source handlers.TransactionSource
	if cfg.BQProject != "" {
		bqSource, err := storeBQ.NewTransactionSource(ctx, cfg.BQProject, cfg.BQDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create transaction source")
		}
		defer bqSource.Close()
		source = bqSource
	} else {
		log.Warn().Msg("No BigQuery project configured - per-user insights disabled")
	}

	// Optional envelope archival.
	var archiver handlers.Archiver
	if cfg.GCSBucket != "" {
		gcsArchiver, err := archive.NewGCSArchiver(ctx, cfg.GCSBucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archiver")
		}
		defer gcsArchiver.Close()
		archiver = gcsArchiver
	}

	insightsHandler := handlers.NewInsightsHandler(svc, source, archiver, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			insightsHandler.Generate(w, r)
		case http.MethodGet:
			insightsHandler.GenerateForUser(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerateTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("provider", cfg.Provider).Msg("Starting insight service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
