package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"veridoc/internal/audit"
	"veridoc/internal/cases"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/logger"
	httptransport "veridoc/internal/transport/http"
	"veridoc/internal/verdict"
	"veridoc/internal/verdict/handler"
	"veridoc/internal/verdict/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	policy, err := verdict.LoadConfig(cfg.PolicyPath)
	if err != nil {
		log.Error("load decision policy failed", "path", cfg.PolicyPath, "error", err)
		os.Exit(1)
	}

	store, closeStore, err := buildCaseStore(cfg, log)
	if err != nil {
		log.Error("case store init failed", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	auditor := audit.NewPublisher(audit.NewMemoryStore())
	service := verdict.NewService(policy, store, auditor, metrics.New(), log)

	h := handler.New(service, store, log)
	router := httptransport.NewRouter(h, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting veridoc", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildCaseStore selects the persistence backend from the environment:
// postgres when a DSN is configured, in-memory otherwise, with an optional
// redis read-through cache in front.
func buildCaseStore(cfg config.Server, log *slog.Logger) (cases.Store, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store cases.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := db.Ping(); err != nil {
			return nil, closeAll, err
		}
		pg := cases.NewPostgresStore(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return nil, closeAll, err
		}
		store = pg
		log.Info("case store: postgres")
	} else {
		store = cases.NewMemoryStore()
		log.Info("case store: memory")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() { _ = client.Close() })
		store = cases.NewCachedStore(store, client, config.CaseCacheTTL, log)
		log.Info("case cache: redis", "addr", cfg.RedisAddr)
	}

	return store, closeAll, nil
}
