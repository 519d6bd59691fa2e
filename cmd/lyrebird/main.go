package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/lyrebird/internal/api"
	"github.com/MikeSquared-Agency/lyrebird/internal/archive"
	"github.com/MikeSquared-Agency/lyrebird/internal/classifier"
	"github.com/MikeSquared-Agency/lyrebird/internal/composer"
	"github.com/MikeSquared-Agency/lyrebird/internal/config"
	"github.com/MikeSquared-Agency/lyrebird/internal/engine"
	"github.com/MikeSquared-Agency/lyrebird/internal/groq"
	"github.com/MikeSquared-Agency/lyrebird/internal/hermes"
	"github.com/MikeSquared-Agency/lyrebird/internal/reporter"
	"github.com/MikeSquared-Agency/lyrebird/internal/store"
)

func main() {
	// Missing .env is fine; deployments use the process environment.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("lyrebird starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store
	var opts []store.Option
	if cfg.SessionStore == string(store.TypeRedis) {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		opts = append(opts,
			store.WithRedisClient(redis.NewClient(redisOpts)),
			store.WithTTL(time.Duration(cfg.SessionTTLHours)*time.Hour),
		)
	}
	st, err := store.New(store.Type(cfg.SessionStore), opts...)
	if err != nil {
		slog.Error("failed to build session store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("session store ready", "type", cfg.SessionStore)

	// Groq client (optional — without it classification and replies fall
	// back to deterministic paths)
	var llm *groq.Client
	if cfg.GroqAPIKey != "" {
		llm = groq.NewClient(cfg.GroqAPIKey, time.Duration(cfg.GroqTimeoutSeconds)*time.Second)
		llm.SetBaseURL(cfg.GroqBaseURL)
		slog.Info("groq client ready", "classify_model", cfg.ClassifyModel, "compose_model", cfg.ComposeModel)
	} else {
		slog.Warn("GROQ_API_KEY not set — using heuristic classification and canned replies")
	}

	classify := classifier.New(llm, cfg.ClassifyModel, slog.Default())
	compose := composer.New(llm, cfg.ComposeModel, cfg.HistoryWindow, slog.Default())

	// Final report delivery
	rep := reporter.New(cfg.ReportURL, cfg.ReportToken, time.Duration(cfg.ReportTimeoutSeconds)*time.Second, slog.Default())
	slog.Info("reporter ready", "url", cfg.ReportURL)

	// Report archive (optional)
	var arc *archive.Archive
	if cfg.DatabaseURL != "" {
		arc, err = archive.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer arc.Close()
		if err := arc.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure archive schema", "error", err)
			os.Exit(1)
		}
		slog.Info("report archive connected")
	} else {
		slog.Warn("DATABASE_URL not set — reports will not be archived")
	}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set — session events disabled")
	}

	// Engine — the per-message pipeline
	eng := engine.New(st, classify, compose, rep, arc, hermesClient, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIKey, eng, arc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("lyrebird ready", "port", cfg.Port, "store", cfg.SessionStore)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("lyrebird stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
