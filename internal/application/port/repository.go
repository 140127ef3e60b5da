package port

import (
	"context"

	"github.com/delego-hq/delego/internal/domain/entity"
)

// EmployeeRepository defines persistence operations for Employee
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)
	GetByEmail(ctx context.Context, email string) (*entity.Employee, error)
	// FindByUsernameOrEmail is used for uniqueness checks; excludeID skips
	// one employee (0 excludes nobody)
	FindByUsernameOrEmail(ctx context.Context, username, email string, excludeID int64) (*entity.Employee, error)
	Update(ctx context.Context, employee *entity.Employee) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetManager(ctx context.Context, id int64, managerID *int64) error
	List(ctx context.Context) ([]*entity.Employee, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.Employee, error)
	ListByManagerID(ctx context.Context, managerID int64) ([]*entity.Employee, error)
}

// DelegationRepository defines persistence operations for Delegation
type DelegationRepository interface {
	Create(ctx context.Context, delegation *entity.Delegation) error
	GetByID(ctx context.Context, id int64) (*entity.Delegation, error)
	ListByEmployeeID(ctx context.Context, employeeID int64) ([]*entity.Delegation, error)
	ListByEmployeeIDs(ctx context.Context, employeeIDs []int64) ([]*entity.Delegation, error)
	// Update persists the mutable draft fields: dates, destination, label, purpose
	Update(ctx context.Context, delegation *entity.Delegation) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetClosedAt(ctx context.Context, id int64) error
	SetExportDate(ctx context.Context, id int64) error
	// Delete removes the delegation together with its expenses and documents
	Delete(ctx context.Context, id int64) error
}

// ExpenseRepository defines persistence operations for Expense
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id int64) (*entity.Expense, error)
	ListByDelegationID(ctx context.Context, delegationID int64) ([]*entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// DocumentRepository defines persistence operations for Document metadata
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id int64) (*entity.Document, error)
	ListByDelegationID(ctx context.Context, delegationID int64) ([]*entity.Document, error)
	Delete(ctx context.Context, id int64) error
}

// ReferenceRepository provides read-mostly currency and category lookups.
// Create methods exist for seeding only.
type ReferenceRepository interface {
	GetCurrency(ctx context.Context, id int64) (*entity.Currency, error)
	ListCurrencies(ctx context.Context) ([]*entity.Currency, error)
	CreateCurrency(ctx context.Context, currency *entity.Currency) error
	GetCategory(ctx context.Context, id int64) (*entity.ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]*entity.ExpenseCategory, error)
	CreateCategory(ctx context.Context, category *entity.ExpenseCategory) error
	// GetLatestRate returns the most recent exchange rate for a currency,
	// nil when none has been set
	GetLatestRate(ctx context.Context, currencyID int64) (*entity.ExchangeRateEntry, error)
	SetRate(ctx context.Context, rate *entity.ExchangeRateEntry) error
}

// TransactionManager defines transaction management operations. Every
// mutating workflow action runs inside exactly one transaction so a
// reader never observes an item updated without its delegation's derived
// status updated to match.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
