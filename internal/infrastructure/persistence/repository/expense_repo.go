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

// ExpenseRepository implements port.ExpenseRepository. Monetary values
// are stored as decimal strings so no precision is lost across the
// round trip.
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `id, delegation_id, explanation, amount, pln_amount, exchange_rate, currency_id, category_id, status, payed_at, created_at, closed_at`

// Create inserts a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	query := `
		INSERT INTO expenses (
			delegation_id, explanation, amount, pln_amount, exchange_rate,
			currency_id, category_id, status, payed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		expense.DelegationID,
		expense.Explanation,
		expense.Amount.String(),
		expense.PLNAmount.String(),
		expense.ExchangeRate.String(),
		expense.CurrencyID,
		expense.CategoryID,
		expense.Status,
		expense.PayedAt,
		expense.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	expense.ID = id
	return nil
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	row := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListByDelegationID retrieves all expenses of a delegation
func (r *ExpenseRepository) ListByDelegationID(ctx context.Context, delegationID int64) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE delegation_id = ? ORDER BY id`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, delegationID)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Int64("delegation_id", delegationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entity.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Update persists the expense fields; the delegation reference stays put
func (r *ExpenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	query := `
		UPDATE expenses
		SET explanation = ?, amount = ?, pln_amount = ?, exchange_rate = ?,
			currency_id = ?, category_id = ?, payed_at = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		expense.Explanation,
		expense.Amount.String(),
		expense.PLNAmount.String(),
		expense.ExchangeRate.String(),
		expense.CurrencyID,
		expense.CategoryID,
		expense.PayedAt,
		expense.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.Int64("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// UpdateStatus updates the approval status of an expense
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE expenses SET status = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update expense status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	return nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM expenses WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var expense entity.Expense
	var amount, plnAmount, rate string
	var payedAt, closedAt sql.NullTime

	err := row.Scan(
		&expense.ID,
		&expense.DelegationID,
		&expense.Explanation,
		&amount,
		&plnAmount,
		&rate,
		&expense.CurrencyID,
		&expense.CategoryID,
		&expense.Status,
		&payedAt,
		&expense.CreatedAt,
		&closedAt,
	)
	if err != nil {
		return nil, err
	}

	if expense.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	if expense.PLNAmount, err = decimal.NewFromString(plnAmount); err != nil {
		return nil, fmt.Errorf("bad pln_amount %q: %w", plnAmount, err)
	}
	if expense.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("bad exchange_rate %q: %w", rate, err)
	}

	if payedAt.Valid {
		expense.PayedAt = &payedAt.Time
	}
	if closedAt.Valid {
		expense.ClosedAt = &closedAt.Time
	}
	return &expense, nil
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
