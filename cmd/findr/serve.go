package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/findr-ai/findr/internal/analyzer"
	"github.com/findr-ai/findr/internal/cache"
	"github.com/findr-ai/findr/internal/config"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/evaluation"
	"github.com/findr-ai/findr/internal/logger"
	"github.com/findr-ai/findr/internal/server"
	"github.com/findr-ai/findr/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start the HTTP server along with the background evaluation workers.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override the configured listen port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	deps := server.Deps{
		DB:     database,
		Logger: log,
	}

	if cfg.Redis.Address != "" {
		redisCache := cache.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(ctx); err != nil {
			// Share links fall back to the database when the cache is down.
			log.Warn("redis unreachable, share-link caching disabled", zap.Error(err))
		} else {
			deps.Cache = redisCache
			defer redisCache.Close() //nolint:errcheck
		}
	}

	if cfg.Storage.Bucket != "" {
		resumes, err := storage.NewResumeStore(ctx, cfg.Storage.Region, cfg.Storage.Bucket,
			cfg.Storage.PublicBaseURL, time.Duration(cfg.Storage.UploadTimeout)*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create resume store: %w", err)
		}
		deps.Resumes = resumes
	} else {
		log.Warn("RESUME_BUCKET not set, resume uploads disabled")
	}

	if cfg.Analyzer.BaseURL != "" {
		client := analyzer.NewClient(cfg.Analyzer.BaseURL,
			time.Duration(cfg.Analyzer.RequestTimeout)*time.Second)
		runner := evaluation.NewRunner(database, client, evaluation.Config{
			PollInterval:  time.Duration(cfg.Analyzer.PollInterval) * time.Second,
			MaxAttempts:   cfg.Analyzer.MaxPollAttempts,
			MaxConcurrent: cfg.Analyzer.MaxConcurrent,
		}, log)
		go func() {
			if err := runner.Run(ctx); err != nil {
				log.Error("evaluation runner stopped", zap.Error(err))
			}
		}()
		deps.Evaluator = runner
		deps.Analyzer = client
	} else {
		log.Warn("ANALYZER_BASE_URL not set, AI evaluation disabled")
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
