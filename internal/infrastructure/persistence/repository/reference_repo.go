package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/entity"
)

// ReferenceRepository implements port.ReferenceRepository over the
// currency, category and exchange rate tables
type ReferenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *sql.DB, logger *zap.Logger) port.ReferenceRepository {
	return &ReferenceRepository{
		db:     db,
		logger: logger,
	}
}

// GetCurrency retrieves a currency by ID
func (r *ReferenceRepository) GetCurrency(ctx context.Context, id int64) (*entity.Currency, error) {
	query := `SELECT id, name FROM currencies WHERE id = ?`

	var currency entity.Currency
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&currency.ID, &currency.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get currency", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &currency, nil
}

// ListCurrencies retrieves all currencies
func (r *ReferenceRepository) ListCurrencies(ctx context.Context) ([]*entity.Currency, error) {
	query := `SELECT id, name FROM currencies ORDER BY id`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list currencies", zap.Error(err))
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*entity.Currency
	for rows.Next() {
		var currency entity.Currency
		if err := rows.Scan(&currency.ID, &currency.Name); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, &currency)
	}
	return currencies, rows.Err()
}

// CreateCurrency inserts a currency; used for seeding
func (r *ReferenceRepository) CreateCurrency(ctx context.Context, currency *entity.Currency) error {
	query := `INSERT INTO currencies (name) VALUES (?)`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, currency.Name)
	if err != nil {
		r.logger.Error("Failed to create currency", zap.Error(err))
		return fmt.Errorf("failed to create currency: %w", err)
	}
	currency.ID, err = result.LastInsertId()
	return err
}

// GetCategory retrieves an expense category by ID
func (r *ReferenceRepository) GetCategory(ctx context.Context, id int64) (*entity.ExpenseCategory, error) {
	query := `SELECT id, name FROM expense_categories WHERE id = ?`

	var category entity.ExpenseCategory
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get category", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// ListCategories retrieves all expense categories
func (r *ReferenceRepository) ListCategories(ctx context.Context) ([]*entity.ExpenseCategory, error) {
	query := `SELECT id, name FROM expense_categories ORDER BY id`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*entity.ExpenseCategory
	for rows.Next() {
		var category entity.ExpenseCategory
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

// CreateCategory inserts an expense category; used for seeding
func (r *ReferenceRepository) CreateCategory(ctx context.Context, category *entity.ExpenseCategory) error {
	query := `INSERT INTO expense_categories (name) VALUES (?)`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, category.Name)
	if err != nil {
		r.logger.Error("Failed to create category", zap.Error(err))
		return fmt.Errorf("failed to create category: %w", err)
	}
	category.ID, err = result.LastInsertId()
	return err
}

// GetLatestRate retrieves the most recent exchange rate for a currency,
// nil when none has been set
func (r *ReferenceRepository) GetLatestRate(ctx context.Context, currencyID int64) (*entity.ExchangeRateEntry, error) {
	query := `
		SELECT id, currency_id, rate_to_pln, date_set
		FROM exchange_rates
		WHERE currency_id = ?
		ORDER BY date_set DESC, id DESC
		LIMIT 1
	`

	var entry entity.ExchangeRateEntry
	var rate string
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, currencyID).Scan(
		&entry.ID,
		&entry.CurrencyID,
		&rate,
		&entry.DateSet,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get exchange rate", zap.Int64("currency_id", currencyID), zap.Error(err))
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	if entry.RateToPLN, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("bad rate_to_pln %q: %w", rate, err)
	}
	return &entry, nil
}

// SetRate inserts a dated exchange rate; older entries stay for audit
func (r *ReferenceRepository) SetRate(ctx context.Context, entry *entity.ExchangeRateEntry) error {
	query := `INSERT INTO exchange_rates (currency_id, rate_to_pln, date_set) VALUES (?, ?, ?)`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.CurrencyID,
		entry.RateToPLN.String(),
		entry.DateSet,
	)
	if err != nil {
		r.logger.Error("Failed to set exchange rate", zap.Int64("currency_id", entry.CurrencyID), zap.Error(err))
		return fmt.Errorf("failed to set exchange rate: %w", err)
	}
	entry.ID, err = result.LastInsertId()
	return err
}

// Verify interface compliance
var _ port.ReferenceRepository = (*ReferenceRepository)(nil)
