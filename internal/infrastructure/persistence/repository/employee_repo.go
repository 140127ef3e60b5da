package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/entity"
)

// EmployeeRepository implements port.EmployeeRepository
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) port.EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

const employeeColumns = `id, username, email, password_hash, role, is_active, manager_id, created_at`

// Create inserts a new employee account
func (r *EmployeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	query := `
		INSERT INTO employees (
			username, email, password_hash, role, is_active, manager_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		employee.Username,
		employee.Email,
		employee.PasswordHash,
		employee.Role.String(),
		employee.IsActive,
		employee.ManagerID,
		employee.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create employee", zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	employee.ID = id
	return nil
}

// GetByID retrieves an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`

	row := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id)
	employee, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// GetByEmail retrieves an employee by email
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = ?`

	row := getExecutor(ctx, r.db).QueryRowContext(ctx, query, email)
	employee, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// FindByUsernameOrEmail retrieves an employee matching either field,
// skipping excludeID (0 excludes nobody)
func (r *EmployeeRepository) FindByUsernameOrEmail(ctx context.Context, username, email string, excludeID int64) (*entity.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE (username = ? OR email = ?) AND id != ?
		LIMIT 1
	`

	row := getExecutor(ctx, r.db).QueryRowContext(ctx, query, username, email, excludeID)
	employee, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find employee", zap.Error(err))
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return employee, nil
}

// Update persists the account fields
func (r *EmployeeRepository) Update(ctx context.Context, employee *entity.Employee) error {
	query := `
		UPDATE employees
		SET username = ?, email = ?, password_hash = ?, role = ?, is_active = ?, manager_id = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		employee.Username,
		employee.Email,
		employee.PasswordHash,
		employee.Role.String(),
		employee.IsActive,
		employee.ManagerID,
		employee.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update employee", zap.Int64("id", employee.ID), zap.Error(err))
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

// SetActive flips the account's active flag
func (r *EmployeeRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE employees SET is_active = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, active, id)
	if err != nil {
		r.logger.Error("Failed to set active flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return nil
}

// SetManager assigns or clears the employee's manager
func (r *EmployeeRepository) SetManager(ctx context.Context, id int64, managerID *int64) error {
	query := `UPDATE employees SET manager_id = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, managerID, id)
	if err != nil {
		r.logger.Error("Failed to set manager", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set manager: %w", err)
	}
	return nil
}

// List retrieves all employees
func (r *EmployeeRepository) List(ctx context.Context) ([]*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`
	return r.queryEmployees(ctx, query)
}

// ListByRole retrieves all employees holding a role
func (r *EmployeeRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE role = ? ORDER BY id`
	return r.queryEmployees(ctx, query, role.String())
}

// ListByManagerID retrieves a manager's direct reports
func (r *EmployeeRepository) ListByManagerID(ctx context.Context, managerID int64) ([]*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE manager_id = ? ORDER BY id`
	return r.queryEmployees(ctx, query, managerID)
}

func (r *EmployeeRepository) queryEmployees(ctx context.Context, query string, args ...interface{}) ([]*entity.Employee, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*entity.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*entity.Employee, error) {
	var employee entity.Employee
	var role string
	var managerID sql.NullInt64

	err := row.Scan(
		&employee.ID,
		&employee.Username,
		&employee.Email,
		&employee.PasswordHash,
		&role,
		&employee.IsActive,
		&managerID,
		&employee.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	employee.Role = entity.Role(role)
	if managerID.Valid {
		employee.ManagerID = &managerID.Int64
	}
	return &employee, nil
}

// Verify interface compliance
var _ port.EmployeeRepository = (*EmployeeRepository)(nil)
