package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campusworks/cmcs/internal/application/service"
	"github.com/campusworks/cmcs/internal/config"
	"github.com/campusworks/cmcs/internal/domain/claims"
	"github.com/campusworks/cmcs/internal/infrastructure/persistence/repository"
	"github.com/campusworks/cmcs/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/campusworks/cmcs/internal/interfaces/http"
	"github.com/campusworks/cmcs/pkg/database"
	"github.com/campusworks/cmcs/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("CMCS_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	ring := utils.NewRing(cfg.Logger.BufferSize, level)

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}, ring)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Contract Monthly Claim System",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

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
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	claimRepo := repository.NewClaimRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	txManager := sqlite.NewDB(db.DB, logger)

	rules := claims.Rules{
		MaxMonthlyHours:     decimal.NewFromFloat(cfg.Claims.MaxMonthlyHours),
		HighAmountThreshold: decimal.NewFromFloat(cfg.Claims.HighAmountThreshold),
		StaleAfterMonths:    cfg.Claims.StaleAfterMonths,
	}
	validator := claims.NewValidator(rules, time.Now)
	machine := claims.NewMachine(time.Now)

	svcLogger := &kvLogger{sugar: logger.Sugar()}
	claimService := service.NewClaimService(
		claimRepo, documentRepo, historyRepo, txManager,
		validator, machine, time.Now, svcLogger,
	)
	reportService := service.NewReportService(claimRepo, cfg.Claims.RecentClaims, svcLogger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, claimService, reportService, ring, svcLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}

// kvLogger adapts zap's sugared logger to the services' Logger interface
type kvLogger struct {
	sugar *zap.SugaredLogger
}

func (l *kvLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *kvLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *kvLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
