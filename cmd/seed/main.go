// Command seed provisions reference data and a starter set of accounts
// for local development: an admin, a manager, an accountant and two
// employees reporting to the manager.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/delego-hq/delego/internal/config"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/infrastructure/persistence/repository"
	"github.com/delego-hq/delego/pkg/database"
	"github.com/delego-hq/delego/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	password := flag.String("password", "changeme123", "password for all seeded accounts")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      "info",
		OutputPath: "stdout",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

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

	ctx := context.Background()
	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)
	referenceRepo := repository.NewReferenceRepository(db.DB, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}

	seedReference(ctx, referenceRepo, logger)

	admin := seedEmployee(ctx, employeeRepo, logger, "admin", entity.RoleAdmin, string(hash), nil)
	manager := seedEmployee(ctx, employeeRepo, logger, "manager", entity.RoleManager, string(hash), nil)
	seedEmployee(ctx, employeeRepo, logger, "accountant", entity.RoleAccountant, string(hash), nil)
	seedEmployee(ctx, employeeRepo, logger, "anna", entity.RoleEmployee, string(hash), &manager.ID)
	seedEmployee(ctx, employeeRepo, logger, "piotr", entity.RoleEmployee, string(hash), &manager.ID)

	logger.Info("Seed complete", zap.Int64("admin_id", admin.ID), zap.Int64("manager_id", manager.ID))
}

func seedEmployee(
	ctx context.Context,
	repo interface {
		GetByEmail(ctx context.Context, email string) (*entity.Employee, error)
		Create(ctx context.Context, employee *entity.Employee) error
	},
	logger *zap.Logger,
	username string,
	role entity.Role,
	passwordHash string,
	managerID *int64,
) *entity.Employee {
	email := username + "@delego.local"

	existing, err := repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Fatal("Failed to look up employee", zap.String("email", email), zap.Error(err))
	}
	if existing != nil {
		logger.Info("Employee already present", zap.String("username", username))
		return existing
	}

	employee := &entity.Employee{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		ManagerID:    managerID,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, employee); err != nil {
		logger.Fatal("Failed to create employee", zap.String("username", username), zap.Error(err))
	}
	logger.Info("Employee created", zap.String("username", username), zap.String("role", role.String()))
	return employee
}

func seedReference(
	ctx context.Context,
	repo interface {
		ListCurrencies(ctx context.Context) ([]*entity.Currency, error)
		CreateCurrency(ctx context.Context, currency *entity.Currency) error
		CreateCategory(ctx context.Context, category *entity.ExpenseCategory) error
		SetRate(ctx context.Context, rate *entity.ExchangeRateEntry) error
	},
	logger *zap.Logger,
) {
	existing, err := repo.ListCurrencies(ctx)
	if err != nil {
		logger.Fatal("Failed to list currencies", zap.Error(err))
	}
	if len(existing) > 0 {
		logger.Info("Reference data already present")
		return
	}

	rates := map[string]string{
		"PLN": "1.00",
		"EUR": "4.30",
		"USD": "4.00",
		"GBP": "5.10",
	}
	for name, rate := range rates {
		currency := &entity.Currency{Name: name}
		if err := repo.CreateCurrency(ctx, currency); err != nil {
			logger.Fatal("Failed to create currency", zap.String("name", name), zap.Error(err))
		}
		if err := repo.SetRate(ctx, &entity.ExchangeRateEntry{
			CurrencyID: currency.ID,
			RateToPLN:  decimal.RequireFromString(rate),
			DateSet:    time.Now(),
		}); err != nil {
			logger.Fatal("Failed to set exchange rate", zap.String("name", name), zap.Error(err))
		}
	}

	for _, name := range []string{"Accommodation", "Transport", "Meals", "Conference fees", "Other"} {
		if err := repo.CreateCategory(ctx, &entity.ExpenseCategory{Name: name}); err != nil {
			logger.Fatal("Failed to create category", zap.String("name", name), zap.Error(err))
		}
	}

	logger.Info("Reference data seeded")
}
