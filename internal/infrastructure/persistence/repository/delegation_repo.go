package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/entity"
)

// DelegationRepository implements port.DelegationRepository
type DelegationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDelegationRepository creates a new delegation repository
func NewDelegationRepository(db *sql.DB, logger *zap.Logger) port.DelegationRepository {
	return &DelegationRepository{
		db:     db,
		logger: logger,
	}
}

const delegationColumns = `id, employee_id, start_date, end_date, status, country, city, name, purpose, created_at, closed_at, export_date`

// Create inserts a new delegation
func (r *DelegationRepository) Create(ctx context.Context, delegation *entity.Delegation) error {
	query := `
		INSERT INTO delegations (
			employee_id, start_date, end_date, status, country, city, name, purpose, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		delegation.EmployeeID,
		delegation.StartDate,
		delegation.EndDate,
		delegation.Status,
		delegation.Country,
		delegation.City,
		delegation.Name,
		delegation.Purpose,
		delegation.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create delegation", zap.Error(err))
		return fmt.Errorf("failed to create delegation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	delegation.ID = id
	return nil
}

// GetByID retrieves a delegation by ID
func (r *DelegationRepository) GetByID(ctx context.Context, id int64) (*entity.Delegation, error) {
	query := `SELECT ` + delegationColumns + ` FROM delegations WHERE id = ?`

	row := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id)
	delegation, err := scanDelegation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get delegation by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get delegation: %w", err)
	}
	return delegation, nil
}

// ListByEmployeeID retrieves all delegations owned by one employee
func (r *DelegationRepository) ListByEmployeeID(ctx context.Context, employeeID int64) ([]*entity.Delegation, error) {
	query := `SELECT ` + delegationColumns + ` FROM delegations WHERE employee_id = ? ORDER BY created_at DESC, id DESC`
	return r.queryDelegations(ctx, query, employeeID)
}

// ListByEmployeeIDs retrieves the delegations of a set of employees
func (r *DelegationRepository) ListByEmployeeIDs(ctx context.Context, employeeIDs []int64) ([]*entity.Delegation, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(employeeIDs)), ",")
	query := `SELECT ` + delegationColumns + ` FROM delegations WHERE employee_id IN (` + placeholders + `) ORDER BY created_at DESC, id DESC`

	args := make([]interface{}, len(employeeIDs))
	for i, id := range employeeIDs {
		args[i] = id
	}
	return r.queryDelegations(ctx, query, args...)
}

// Update persists the mutable draft fields
func (r *DelegationRepository) Update(ctx context.Context, delegation *entity.Delegation) error {
	query := `
		UPDATE delegations
		SET start_date = ?, end_date = ?, country = ?, city = ?, name = ?, purpose = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		delegation.StartDate,
		delegation.EndDate,
		delegation.Country,
		delegation.City,
		delegation.Name,
		delegation.Purpose,
		delegation.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update delegation", zap.Int64("id", delegation.ID), zap.Error(err))
		return fmt.Errorf("failed to update delegation: %w", err)
	}
	return nil
}

// UpdateStatus updates the workflow status of a delegation
func (r *DelegationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE delegations SET status = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// SetClosedAt stamps the decision time
func (r *DelegationRepository) SetClosedAt(ctx context.Context, id int64) error {
	query := `UPDATE delegations SET closed_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to set closed_at", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set closed_at: %w", err)
	}
	return nil
}

// SetExportDate stamps the settlement export time
func (r *DelegationRepository) SetExportDate(ctx context.Context, id int64) error {
	query := `UPDATE delegations SET export_date = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to set export_date", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set export_date: %w", err)
	}
	return nil
}

// Delete removes the delegation; expenses and documents go with it via
// ON DELETE CASCADE
func (r *DelegationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM delegations WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete delegation", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete delegation: %w", err)
	}
	return nil
}

func (r *DelegationRepository) queryDelegations(ctx context.Context, query string, args ...interface{}) ([]*entity.Delegation, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list delegations", zap.Error(err))
		return nil, fmt.Errorf("failed to list delegations: %w", err)
	}
	defer rows.Close()

	var delegations []*entity.Delegation
	for rows.Next() {
		delegation, err := scanDelegation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delegation: %w", err)
		}
		delegations = append(delegations, delegation)
	}
	return delegations, rows.Err()
}

func scanDelegation(row rowScanner) (*entity.Delegation, error) {
	var delegation entity.Delegation
	var closedAt, exportDate sql.NullTime

	err := row.Scan(
		&delegation.ID,
		&delegation.EmployeeID,
		&delegation.StartDate,
		&delegation.EndDate,
		&delegation.Status,
		&delegation.Country,
		&delegation.City,
		&delegation.Name,
		&delegation.Purpose,
		&delegation.CreatedAt,
		&closedAt,
		&exportDate,
	)
	if err != nil {
		return nil, err
	}

	if closedAt.Valid {
		delegation.ClosedAt = &closedAt.Time
	}
	if exportDate.Valid {
		delegation.ExportDate = &exportDate.Time
	}
	return &delegation, nil
}

// Verify interface compliance
var _ port.DelegationRepository = (*DelegationRepository)(nil)
