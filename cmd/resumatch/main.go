package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/ai"
	"github.com/xxxsen/resumatch/internal/config"
	"github.com/xxxsen/resumatch/internal/db"
	"github.com/xxxsen/resumatch/internal/extract"
	"github.com/xxxsen/resumatch/internal/filestore"
	"github.com/xxxsen/resumatch/internal/handler"
	"github.com/xxxsen/resumatch/internal/job"
	"github.com/xxxsen/resumatch/internal/middleware"
	"github.com/xxxsen/resumatch/internal/repo"
	"github.com/xxxsen/resumatch/internal/schedule"
	"github.com/xxxsen/resumatch/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "resumatch",
		Short: "resume to job description matching service",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run resumatch server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx := context.Background()
			conn, err := db.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()
			if err := db.ApplyMigrations(ctx, conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("dedup_scope", cfg.Cache.DedupScope),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(conn)
	analysisRepo := repo.NewAnalysisRepo(conn)

	archive, err := filestore.New(ctx, cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	matcher := ai.NewMatcher(provider, cfg.AI.Model, ai.RetryPolicy{
		MaxAttempts: cfg.AI.MaxAttempts,
		BaseDelay:   time.Duration(cfg.AI.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.AI.MaxDelayMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.AI.Timeout) * time.Second,
	})
	extractor := extract.WrapLRU(
		extract.New(),
		cfg.Cache.ExtractLRUSize,
		time.Duration(cfg.Cache.ExtractLRUTTLSeconds)*time.Second,
	)

	documentService := service.NewDocumentService(docRepo, cfg.Cache.DedupScope)
	analysisCache := service.NewAnalysisCache(analysisRepo)
	janitor := service.NewCacheJanitor(analysisCache, cfg.Cache.RetentionDays)
	matchingService := service.NewMatchingService(extractor, documentService, analysisCache, matcher, service.MatchingOptions{
		Archive:      archive,
		SingleFlight: cfg.Cache.SingleFlightEnabled(),
	})

	scheduler := schedule.NewCronScheduler()
	cleanup := job.NewAnalysisCleanupJob(janitor, cfg.Cache.RetentionDays)
	if cfg.Cache.CleanupCron != "" {
		if err := scheduler.AddJob(cleanup, cfg.Cache.CleanupCron); err != nil {
			return fmt.Errorf("schedule cache cleanup: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()
	if next, ok := scheduler.Next(cleanup.Name()); ok {
		logutil.GetLogger(ctx).Info("cache cleanup scheduled",
			zap.Time("next_run", next),
			zap.Int("retention_days", cfg.Cache.RetentionDays),
		)
	}

	deps := handler.RouterDeps{
		Analysis:     handler.NewAnalysisHandler(matchingService, janitor, cfg.Upload.MaxBytes),
		Documents:    handler.NewDocumentHandler(matchingService),
		JWTSecret:    []byte(cfg.JWTSecret),
		AdminUserIDs: cfg.AdminUserIDs,
		RateLimit:    time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
