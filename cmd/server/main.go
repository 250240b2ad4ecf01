package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"expense-share-go/internal/ai"
	"expense-share-go/internal/config"
	"expense-share-go/internal/database"
	httpserver "expense-share-go/internal/http"
	"expense-share-go/internal/log"
	"expense-share-go/internal/store"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.New(log.DefaultConfig()).Error("load config", log.FieldError, err)
		os.Exit(1)
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.JSON = cfg.LogJSON
	logger := log.New(logCfg)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var backend store.Backend
	if cfg.DBDriver == "memory" {
		backend = store.NewMemoryBackend()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			logger.Error("connect database", log.FieldError, err, "driver", cfg.DBDriver)
			os.Exit(1)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		backend = database.NewKVBackend(db)
	}
	logger.Info("storage ready", "driver", cfg.DBDriver)

	st, err := store.Open(ctx, backend, cfg.DefaultCurrency, logger)
	if err != nil {
		logger.Error("load state", log.FieldError, err)
		os.Exit(1)
	}

	reqTimeout := time.Duration(cfg.ReqTimeoutSec) * time.Second
	advisor := ai.NewAdvisor(ai.NewOpenAIClient(cfg), reqTimeout, logger)

	r, err := httpserver.NewServer(httpserver.Deps{
		Config:  cfg,
		Store:   st,
		Advisor: advisor,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("build server", log.FieldError, err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      reqTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", log.FieldError, err)
		}
	}()

	logger.Info("listening", "port", cfg.Port, log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	<-done
	logger.Info("server stopped")
}
