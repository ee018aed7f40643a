package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayushbridge/platform/pkg/common/config"
	"github.com/ayushbridge/platform/pkg/common/database"
	"github.com/ayushbridge/platform/pkg/common/kafka"
	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/pipeline"
	"github.com/ayushbridge/platform/pkg/stats"
	"github.com/ayushbridge/platform/pkg/submission"
	"github.com/ayushbridge/platform/pkg/terminology"
)

func main() {
	logger.Init("emr-bridge")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres()

	repo := pipeline.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate processing run tables")
	}

	catalog, err := terminology.LoadCatalog(cfg.TerminologyCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load terminology catalog")
	}
	translator := terminology.NewWithCatalog(catalog)

	cache := stats.NewBatchCache(database.GetRedis(), cfg.BatchCacheTTL)

	producer := kafka.NewProducer(cfg.PipelineTopic)
	defer producer.Close()

	var submitter pipeline.Submitter
	if cfg.ClinicalBaseURL != "" {
		submitter = submission.NewClient(submission.Config{
			BaseURL:      cfg.ClinicalBaseURL,
			TokenURL:     cfg.ClinicalTokenURL,
			ClientID:     cfg.ClinicalClientID,
			ClientSecret: cfg.ClinicalClientSecret,
			Timeout:      cfg.ClinicalTimeout,
			RetryCount:   cfg.ClinicalRetryCount,
		})
	}

	svc := pipeline.NewService(translator, stats.NewCumulative(), cache, submitter, repo, producer)
	handler := pipeline.NewHTTPHandler(svc, repo, cfg.MaxUploadBytes)

	router := mux.NewRouter()
	handler.Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("EMR Bridge Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := repo.CleanupExpired(context.Background(), cfg.HistoryTTL); err != nil {
					logger.Log.WithError(err).Warn("run history cleanup failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down EMR Bridge Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	database.CloseRedis()
	logger.Log.Info("EMR Bridge Service stopped")
}
