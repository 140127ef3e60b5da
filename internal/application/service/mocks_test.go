package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/delego-hq/delego/internal/domain/entity"
)

// In-memory fakes shared by the service tests. They keep state across
// calls so multi-step scenarios (submit, then decide items, then read)
// behave like the real repositories.

type fakeEmployeeRepo struct {
	employees map[int64]*entity.Employee
	nextID    int64
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[int64]*entity.Employee), nextID: 1}
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	e.ID = f.nextID
	f.nextID++
	f.employees[e.ID] = e
	return nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	return f.employees[id], nil
}

func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	for _, e := range f.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) FindByUsernameOrEmail(ctx context.Context, username, email string, excludeID int64) (*entity.Employee, error) {
	for _, e := range f.employees {
		if e.ID == excludeID {
			continue
		}
		if e.Username == username || e.Email == email {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	f.employees[e.ID] = e
	return nil
}

func (f *fakeEmployeeRepo) SetActive(ctx context.Context, id int64, active bool) error {
	if e, ok := f.employees[id]; ok {
		e.IsActive = active
	}
	return nil
}

func (f *fakeEmployeeRepo) SetManager(ctx context.Context, id int64, managerID *int64) error {
	if e, ok := f.employees[id]; ok {
		e.ManagerID = managerID
	}
	return nil
}

func (f *fakeEmployeeRepo) List(ctx context.Context) ([]*entity.Employee, error) {
	out := make([]*entity.Employee, 0, len(f.employees))
	for _, e := range f.employees {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListByRole(ctx context.Context, role entity.Role) ([]*entity.Employee, error) {
	var out []*entity.Employee
	for _, e := range f.employees {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListByManagerID(ctx context.Context, managerID int64) ([]*entity.Employee, error) {
	var out []*entity.Employee
	for _, e := range f.employees {
		if e.ReportsTo(managerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDelegationRepo struct {
	delegations map[int64]*entity.Delegation
	nextID      int64
}

func newFakeDelegationRepo() *fakeDelegationRepo {
	return &fakeDelegationRepo{delegations: make(map[int64]*entity.Delegation), nextID: 1}
}

func (f *fakeDelegationRepo) Create(ctx context.Context, d *entity.Delegation) error {
	d.ID = f.nextID
	f.nextID++
	f.delegations[d.ID] = d
	return nil
}

func (f *fakeDelegationRepo) GetByID(ctx context.Context, id int64) (*entity.Delegation, error) {
	d, ok := f.delegations[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDelegationRepo) ListByEmployeeID(ctx context.Context, employeeID int64) ([]*entity.Delegation, error) {
	var out []*entity.Delegation
	for _, d := range f.delegations {
		if d.EmployeeID == employeeID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeDelegationRepo) ListByEmployeeIDs(ctx context.Context, employeeIDs []int64) ([]*entity.Delegation, error) {
	var out []*entity.Delegation
	for _, id := range employeeIDs {
		ds, _ := f.ListByEmployeeID(ctx, id)
		out = append(out, ds...)
	}
	return out, nil
}

func (f *fakeDelegationRepo) Update(ctx context.Context, d *entity.Delegation) error {
	stored, ok := f.delegations[d.ID]
	if !ok {
		return nil
	}
	*stored = *d
	return nil
}

func (f *fakeDelegationRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if d, ok := f.delegations[id]; ok {
		d.Status = status
	}
	return nil
}

func (f *fakeDelegationRepo) SetClosedAt(ctx context.Context, id int64) error {
	if d, ok := f.delegations[id]; ok {
		now := time.Now()
		d.ClosedAt = &now
	}
	return nil
}

func (f *fakeDelegationRepo) SetExportDate(ctx context.Context, id int64) error {
	if d, ok := f.delegations[id]; ok {
		now := time.Now()
		d.ExportDate = &now
	}
	return nil
}

func (f *fakeDelegationRepo) Delete(ctx context.Context, id int64) error {
	delete(f.delegations, id)
	return nil
}

type fakeExpenseRepo struct {
	expenses map[int64]*entity.Expense
	nextID   int64
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[int64]*entity.Expense), nextID: 1}
}

func (f *fakeExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	e.ID = f.nextID
	f.nextID++
	f.expenses[e.ID] = e
	return nil
}

func (f *fakeExpenseRepo) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (f *fakeExpenseRepo) ListByDelegationID(ctx context.Context, delegationID int64) ([]*entity.Expense, error) {
	var out []*entity.Expense
	for id := int64(1); id < f.nextID; id++ {
		e, ok := f.expenses[id]
		if ok && e.DelegationID == delegationID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) Update(ctx context.Context, e *entity.Expense) error {
	stored, ok := f.expenses[e.ID]
	if !ok {
		return nil
	}
	*stored = *e
	return nil
}

func (f *fakeExpenseRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if e, ok := f.expenses[id]; ok {
		e.Status = status
	}
	return nil
}

func (f *fakeExpenseRepo) Delete(ctx context.Context, id int64) error {
	delete(f.expenses, id)
	return nil
}

type fakeDocumentRepo struct {
	documents map[int64]*entity.Document
	nextID    int64
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[int64]*entity.Document), nextID: 1}
}

func (f *fakeDocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	d.ID = f.nextID
	f.nextID++
	f.documents[d.ID] = d
	return nil
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	return f.documents[id], nil
}

func (f *fakeDocumentRepo) ListByDelegationID(ctx context.Context, delegationID int64) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range f.documents {
		if d.DelegationID == delegationID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) Delete(ctx context.Context, id int64) error {
	delete(f.documents, id)
	return nil
}

type fakeReferenceRepo struct {
	currencies map[int64]*entity.Currency
	categories map[int64]*entity.ExpenseCategory
	rates      map[int64]*entity.ExchangeRateEntry
}

func newFakeReferenceRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		currencies: map[int64]*entity.Currency{
			1: {ID: 1, Name: "EUR"},
			2: {ID: 2, Name: "USD"},
		},
		categories: map[int64]*entity.ExpenseCategory{
			1: {ID: 1, Name: "Accommodation"},
			2: {ID: 2, Name: "Transport"},
		},
		rates: map[int64]*entity.ExchangeRateEntry{
			1: {ID: 1, CurrencyID: 1, RateToPLN: decimal.RequireFromString("4.30"), DateSet: time.Now()},
			2: {ID: 2, CurrencyID: 2, RateToPLN: decimal.RequireFromString("4.00"), DateSet: time.Now()},
		},
	}
}

func (f *fakeReferenceRepo) GetCurrency(ctx context.Context, id int64) (*entity.Currency, error) {
	return f.currencies[id], nil
}

func (f *fakeReferenceRepo) ListCurrencies(ctx context.Context) ([]*entity.Currency, error) {
	var out []*entity.Currency
	for _, c := range f.currencies {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeReferenceRepo) CreateCurrency(ctx context.Context, c *entity.Currency) error {
	f.currencies[c.ID] = c
	return nil
}

func (f *fakeReferenceRepo) GetCategory(ctx context.Context, id int64) (*entity.ExpenseCategory, error) {
	return f.categories[id], nil
}

func (f *fakeReferenceRepo) ListCategories(ctx context.Context) ([]*entity.ExpenseCategory, error) {
	var out []*entity.ExpenseCategory
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeReferenceRepo) CreateCategory(ctx context.Context, c *entity.ExpenseCategory) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeReferenceRepo) GetLatestRate(ctx context.Context, currencyID int64) (*entity.ExchangeRateEntry, error) {
	return f.rates[currencyID], nil
}

func (f *fakeReferenceRepo) SetRate(ctx context.Context, rate *entity.ExchangeRateEntry) error {
	f.rates[rate.CurrencyID] = rate
	return nil
}

type fakeSettlementWriter struct {
	written []int64
}

func (f *fakeSettlementWriter) Write(detail *DelegationDetail, owner *entity.Employee) (string, error) {
	f.written = append(f.written, detail.Delegation.ID)
	return fmt.Sprintf("exports/delegation_%d_settlement.xlsx", detail.Delegation.ID), nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// fixture wires every service over shared fakes
type fixture struct {
	employees   *fakeEmployeeRepo
	delegations *fakeDelegationRepo
	expenses    *fakeExpenseRepo
	documents   *fakeDocumentRepo
	reference   *fakeReferenceRepo
	writer      *fakeSettlementWriter
	guard       *Guard

	delegationSvc DelegationService
	expenseSvc    ExpenseService
	employeeSvc   EmployeeService
	authSvc       AuthService
	settlementSvc SettlementService
}

func newFixture() *fixture {
	f := &fixture{
		employees:   newFakeEmployeeRepo(),
		delegations: newFakeDelegationRepo(),
		expenses:    newFakeExpenseRepo(),
		documents:   newFakeDocumentRepo(),
		reference:   newFakeReferenceRepo(),
		writer:      &fakeSettlementWriter{},
	}
	f.guard = NewGuard(f.employees)
	tx := &fakeTxManager{}
	logger := nopLogger{}

	f.delegationSvc = NewDelegationService(f.delegations, f.expenses, f.documents, f.employees, f.guard, tx, logger)
	f.expenseSvc = NewExpenseService(f.expenses, f.delegations, f.reference, f.guard, tx, logger)
	f.employeeSvc = NewEmployeeService(f.employees, f.delegations, f.expenses, f.guard, tx, logger)
	f.authSvc = NewAuthService(f.employees, tx, AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, logger)
	f.settlementSvc = NewSettlementService(f.delegations, f.expenses, f.documents, f.employees, f.writer, f.guard, tx, logger)
	return f
}

func (f *fixture) addEmployee(username string, role entity.Role, managerID *int64) *entity.Employee {
	e := &entity.Employee{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$stub",
		Role:         role,
		IsActive:     true,
		ManagerID:    managerID,
		CreatedAt:    time.Now(),
	}
	_ = f.employees.Create(context.Background(), e)
	return e
}

func (f *fixture) addDelegation(employeeID int64, status string) *entity.Delegation {
	d := &entity.Delegation{
		EmployeeID: employeeID,
		StartDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Status:     status,
		Country:    "Germany",
		City:       "Berlin",
		Name:       "Berlin trade fair",
		CreatedAt:  time.Now(),
	}
	_ = f.delegations.Create(context.Background(), d)
	return d
}

func (f *fixture) addExpense(delegationID int64, status string, plnAmount string) *entity.Expense {
	e := &entity.Expense{
		DelegationID: delegationID,
		Amount:       decimal.RequireFromString(plnAmount),
		PLNAmount:    decimal.RequireFromString(plnAmount),
		ExchangeRate: decimal.NewFromInt(1),
		CurrencyID:   1,
		CategoryID:   1,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	_ = f.expenses.Create(context.Background(), e)
	return e
}
