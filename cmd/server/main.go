package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fichaflow/backend/internal/config"
	"github.com/fichaflow/backend/internal/db"
	httpapi "github.com/fichaflow/backend/internal/http"
	"github.com/fichaflow/backend/internal/narrative"
	"github.com/fichaflow/backend/internal/report"
	"github.com/fichaflow/backend/internal/scheduler"
	"github.com/fichaflow/backend/internal/service"
	"github.com/fichaflow/backend/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "fichaflow-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	voc, err := vocab.Load(cfg.VocabPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.VocabPath).Msg("failed to load status vocabulary")
	}

	var adapter narrative.Adapter
	if cfg.NarrativeURL == "" {
		adapter = narrative.MockAdapter{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock narrative adapter")
	} else {
		adapter = narrative.HTTPAdapter{BaseURL: cfg.NarrativeURL}
	}

	processor := &service.ProcessingService{
		Store:     store,
		Narrative: adapter,
		Vocab:     voc,
		Renderer:  report.Renderer{Brand: cfg.ReportBrand, FooterText: cfg.ReportFooter},
		Logger:    logger,
		Workers:   cfg.Workers,
	}

	router := httpapi.Router(cfg, store, processor, logger)

	if cfg.WatchDir != "" {
		sched := &scheduler.Scheduler{
			Store:     store,
			Processor: processor,
			WatchDir:  cfg.WatchDir,
			Spec:      cfg.AnalysisCron,
			Logger:    logger,
		}
		if err := sched.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start scheduler")
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
