package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/delego-hq/delego/internal/application/service"
	"github.com/delego-hq/delego/internal/config"
	"github.com/delego-hq/delego/internal/infrastructure/persistence/repository"
	"github.com/delego-hq/delego/internal/infrastructure/persistence/sqlite"
	"github.com/delego-hq/delego/internal/infrastructure/storage"
	httpapi "github.com/delego-hq/delego/internal/interfaces/http"
	"github.com/delego-hq/delego/internal/report"
	"github.com/delego-hq/delego/pkg/database"
	"github.com/delego-hq/delego/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// Local .env for development; missing file is fine
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
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

	logger.Info("Starting delegation expense service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

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

	if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create export directory", zap.Error(err))
	}
	if err := os.MkdirAll(cfg.Uploads.Dir, 0755); err != nil {
		logger.Fatal("Failed to create uploads directory", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)
	delegationRepo := repository.NewDelegationRepository(db.DB, logger)
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	referenceRepo := repository.NewReferenceRepository(db.DB, logger)

	serviceLogger := utils.NewSugarAdapter(logger)
	guard := service.NewGuard(employeeRepo)
	exporter := report.NewSettlementExporter(cfg.Report.OutputDir, logger)
	fileStorage := storage.NewLocalFileStorage(cfg.Uploads.Dir, logger)

	authService := service.NewAuthService(employeeRepo, txManager, service.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	}, serviceLogger)
	delegationService := service.NewDelegationService(
		delegationRepo, expenseRepo, documentRepo, employeeRepo, guard, txManager, serviceLogger)
	expenseService := service.NewExpenseService(
		expenseRepo, delegationRepo, referenceRepo, guard, txManager, serviceLogger)
	employeeService := service.NewEmployeeService(
		employeeRepo, delegationRepo, expenseRepo, guard, txManager, serviceLogger)
	settlementService := service.NewSettlementService(
		delegationRepo, expenseRepo, documentRepo, employeeRepo, exporter, guard, txManager, serviceLogger)

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, httpapi.Services{
		Auth:       authService,
		Delegation: delegationService,
		Expense:    expenseService,
		Employee:   employeeService,
		Settlement: settlementService,
		Reference:  referenceRepo,
		Storage:    fileStorage,
	}, serviceLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
