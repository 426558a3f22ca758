package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/alloycap/token-lifecycle/internal/application/dispatcher"
	"github.com/alloycap/token-lifecycle/internal/application/service"
	"github.com/alloycap/token-lifecycle/internal/config"
	"github.com/alloycap/token-lifecycle/internal/domain/event"
	"github.com/alloycap/token-lifecycle/internal/domain/token"
	"github.com/alloycap/token-lifecycle/internal/infrastructure/persistence/repository"
	"github.com/alloycap/token-lifecycle/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/alloycap/token-lifecycle/internal/interfaces/http"
	"github.com/alloycap/token-lifecycle/pkg/database"
	"github.com/alloycap/token-lifecycle/pkg/utils"
)

func main() {
	// Local .env overrides are optional
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Token Lifecycle Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)
	tokenRepo := repository.NewTokenRepository(db.DB, logger)
	recordRepo := repository.NewTransitionRecordRepository(db.DB, logger)

	appLogger := utils.NewSugarAdapter(logger)

	eventDispatcher := dispatcher.New(dispatcher.WithLogger(appLogger))
	defer eventDispatcher.Close()

	eventDispatcher.Subscribe(event.TypeStatusChanged, "transition-log", func(ctx context.Context, evt *event.Event) error {
		logger.Info("Lifecycle event",
			zap.String("event_id", evt.ID),
			zap.String("token_id", evt.TokenID.String()),
			zap.Any("payload", evt.Payload))
		return nil
	})

	workflowOpts := []service.WorkflowOption{
		service.WithDispatcher(eventDispatcher),
	}
	if cfg.Workflow.RequireDeployAddress {
		workflowOpts = append(workflowOpts, service.WithPrecondition(token.StatusDeployed, func(tok *token.Token) error {
			if tok.DeploymentAddress == "" {
				return fmt.Errorf("deployment address is required before the contract can go live")
			}
			return nil
		}))
	}

	tokenService := service.NewTokenService(tokenRepo, appLogger,
		service.WithTokenDispatcher(eventDispatcher))
	workflowService := service.NewWorkflowService(tokenRepo, recordRepo, txManager, appLogger, workflowOpts...)
	exportService := service.NewExportService(tokenRepo, recordRepo, appLogger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, tokenService, workflowService, exportService, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
