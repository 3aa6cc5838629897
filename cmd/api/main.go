package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "hr-engine/docs" // Swagger docs
	"hr-engine/internal/api"
	"hr-engine/internal/config"
	"hr-engine/internal/logger"
	"hr-engine/internal/storage"

	"go.uber.org/zap"
)

// @title HR Engine API
// @version 1.0
// @description Policy chatbot and resume screening over a shared semantic retrieval engine

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	zl, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer zl.Sync()

	// Postgres is optional: without it screening runs are not persisted and
	// the policy index lives only in the JSON snapshot.
	var dbConn *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err = storage.NewDB(cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer dbConn.Close()
		if err := storage.EnsureSchema(dbConn, cfg.EmbeddingDimension); err != nil {
			zl.Fatal("failed to ensure schema", zap.Error(err))
		}
		zl.Info("database connected")
	} else {
		zl.Warn("DATABASE_URL not set, screening runs will not be persisted")
	}

	apiSrv, err := api.NewAPI(cfg, dbConn, zl)
	if err != nil {
		zl.Fatal("failed to initialize API", zap.Error(err))
	}
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // file uploads
		WriteTimeout: 15 * time.Minute, // LLM calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			zl.Error("server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	zl.Info("API server listening", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zl.Fatal("server failed", zap.Error(err))
	}

	<-idleConnsClosed
}
