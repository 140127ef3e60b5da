package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/pkg/utils"
)

// CreateEmployeeInput carries the fields for an admin-created account
type CreateEmployeeInput struct {
	Username  string
	Email     string
	Password  string
	Role      entity.Role
	IsActive  *bool
	ManagerID *int64
}

// UpdateEmployeeInput carries optional account updates; nil means leave
// the field unchanged. ManagerID is a pointer-to-pointer so that an
// explicit null clears the assignment.
type UpdateEmployeeInput struct {
	Username  *string
	Email     *string
	Role      *entity.Role
	IsActive  *bool
	ManagerID **int64
}

// ManagerDetail is a manager together with their direct reports
type ManagerDetail struct {
	Manager   *entity.Employee   `json:"manager"`
	Employees []*entity.Employee `json:"employees"`
}

// EmployeeDetail is an employee together with their delegations,
// statuses derived
type EmployeeDetail struct {
	Employee    *entity.Employee     `json:"employee"`
	Delegations []*entity.Delegation `json:"delegations"`
}

// EmployeeService covers the admin-only account operations
type EmployeeService interface {
	Create(ctx context.Context, actorID int64, in CreateEmployeeInput) (*entity.Employee, error)
	Update(ctx context.Context, actorID, employeeID int64, in UpdateEmployeeInput) (*entity.Employee, error)
	Activate(ctx context.Context, actorID, employeeID int64) error
	Block(ctx context.Context, actorID, employeeID int64) error
	AssignManager(ctx context.Context, actorID, employeeID int64, managerID *int64) (*entity.Employee, error)
	List(ctx context.Context, actorID int64) ([]*entity.Employee, error)
	ListManagers(ctx context.Context, actorID int64) ([]*entity.Employee, error)
	GetManagerDetail(ctx context.Context, actorID, managerID int64) (*ManagerDetail, error)
	GetEmployeeDetail(ctx context.Context, actorID, employeeID int64) (*EmployeeDetail, error)
}

type employeeServiceImpl struct {
	employeeRepo   port.EmployeeRepository
	delegationRepo port.DelegationRepository
	expenseRepo    port.ExpenseRepository
	guard          *Guard
	txManager      port.TransactionManager
	logger         Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(
	employeeRepo port.EmployeeRepository,
	delegationRepo port.DelegationRepository,
	expenseRepo port.ExpenseRepository,
	guard *Guard,
	txManager port.TransactionManager,
	logger Logger,
) EmployeeService {
	return &employeeServiceImpl{
		employeeRepo:   employeeRepo,
		delegationRepo: delegationRepo,
		expenseRepo:    expenseRepo,
		guard:          guard,
		txManager:      txManager,
		logger:         logger,
	}
}

func (s *employeeServiceImpl) requireAdmin(ctx context.Context, actorID int64) (*entity.Employee, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	return actor, nil
}

// Create creates an employee account. Duplicate username or email is a
// Conflict; an assigned manager must hold the manager role.
func (s *employeeServiceImpl) Create(ctx context.Context, actorID int64, in CreateEmployeeInput) (*entity.Employee, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validationf("username, email and password are required")
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, apperr.Validationf("invalid email: %s", in.Email)
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, apperr.Validationf("%s", err.Error())
	}
	role := in.Role
	if role == "" {
		role = entity.RoleEmployee
	}
	if !role.IsValid() {
		return nil, apperr.Validationf("invalid role %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	var created *entity.Employee
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.employeeRepo.FindByUsernameOrEmail(txCtx, in.Username, in.Email, 0)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflictf("employee with this username or email already exists")
		}

		if in.ManagerID != nil {
			if err := s.checkManager(txCtx, *in.ManagerID, 0); err != nil {
				return err
			}
		}

		employee := &entity.Employee{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         role,
			IsActive:     active,
			ManagerID:    in.ManagerID,
			CreatedAt:    time.Now(),
		}
		if err := s.employeeRepo.Create(txCtx, employee); err != nil {
			return err
		}
		created = employee
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Employee created", "id", created.ID, "role", created.Role.String())
	return created, nil
}

// Update applies partial account updates
func (s *employeeServiceImpl) Update(ctx context.Context, actorID, employeeID int64, in UpdateEmployeeInput) (*entity.Employee, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	var updated *entity.Employee
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		employee, err := s.getEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}

		if in.Role != nil {
			if !in.Role.IsValid() {
				return apperr.Validationf("invalid role %q", *in.Role)
			}
			employee.Role = *in.Role
		}
		if in.IsActive != nil {
			employee.IsActive = *in.IsActive
		}
		if in.ManagerID != nil {
			if *in.ManagerID != nil {
				if err := s.checkManager(txCtx, **in.ManagerID, employeeID); err != nil {
					return err
				}
			}
			employee.ManagerID = *in.ManagerID
		}
		if in.Username != nil || in.Email != nil {
			username := employee.Username
			email := employee.Email
			if in.Username != nil {
				username = *in.Username
			}
			if in.Email != nil {
				email = *in.Email
			}
			taken, err := s.employeeRepo.FindByUsernameOrEmail(txCtx, username, email, employeeID)
			if err != nil {
				return err
			}
			if taken != nil {
				return apperr.Conflictf("username or email already taken")
			}
			if in.Email != nil {
				if err := utils.ValidateEmail(email); err != nil {
					return apperr.Validationf("invalid email: %s", email)
				}
			}
			employee.Username = username
			employee.Email = email
		}

		if err := s.employeeRepo.Update(txCtx, employee); err != nil {
			return err
		}
		updated = employee
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Employee updated", "id", employeeID)
	return updated, nil
}

// Activate re-enables an account
func (s *employeeServiceImpl) Activate(ctx context.Context, actorID, employeeID int64) error {
	return s.setActive(ctx, actorID, employeeID, true)
}

// Block disables an account; the guard rejects all actions of a blocked
// account before any role check
func (s *employeeServiceImpl) Block(ctx context.Context, actorID, employeeID int64) error {
	return s.setActive(ctx, actorID, employeeID, false)
}

func (s *employeeServiceImpl) setActive(ctx context.Context, actorID, employeeID int64, active bool) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.getEmployee(ctx, employeeID); err != nil {
		return err
	}
	if err := s.employeeRepo.SetActive(ctx, employeeID, active); err != nil {
		return err
	}
	s.logger.Info("Employee active flag changed", "id", employeeID, "active", active)
	return nil
}

// AssignManager assigns or clears an employee's manager. The target must
// hold the manager role and may not be the employee themselves.
func (s *employeeServiceImpl) AssignManager(ctx context.Context, actorID, employeeID int64, managerID *int64) (*entity.Employee, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	var assigned *entity.Employee
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		employee, err := s.getEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		if managerID != nil {
			if err := s.checkManager(txCtx, *managerID, employeeID); err != nil {
				return err
			}
		}
		if err := s.employeeRepo.SetManager(txCtx, employeeID, managerID); err != nil {
			return err
		}
		employee.ManagerID = managerID
		assigned = employee
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Manager assigned", "employee_id", employeeID, "manager_id", managerID)
	return assigned, nil
}

// List returns all employees
func (s *employeeServiceImpl) List(ctx context.Context, actorID int64) ([]*entity.Employee, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.employeeRepo.List(ctx)
}

// ListManagers returns all manager accounts
func (s *employeeServiceImpl) ListManagers(ctx context.Context, actorID int64) ([]*entity.Employee, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.employeeRepo.ListByRole(ctx, entity.RoleManager)
}

// GetManagerDetail returns a manager with their direct reports
func (s *employeeServiceImpl) GetManagerDetail(ctx context.Context, actorID, managerID int64) (*ManagerDetail, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	manager, err := s.getEmployee(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if manager.Role != entity.RoleManager {
		return nil, apperr.Validationf("employee %d is not a manager", managerID)
	}

	reports, err := s.employeeRepo.ListByManagerID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return &ManagerDetail{Manager: manager, Employees: reports}, nil
}

// GetEmployeeDetail returns an employee with their delegations, statuses
// derived from the expense items
func (s *employeeServiceImpl) GetEmployeeDetail(ctx context.Context, actorID, employeeID int64) (*EmployeeDetail, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	employee, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	delegations, err := s.delegationRepo.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for _, d := range delegations {
		if !statusIsDerived(d.Status) {
			continue
		}
		expenses, err := s.expenseRepo.ListByDelegationID(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		applyDerivedStatus(d, expenses)
	}

	return &EmployeeDetail{Employee: employee, Delegations: delegations}, nil
}

func (s *employeeServiceImpl) getEmployee(ctx context.Context, id int64) (*entity.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, apperr.NotFoundf("employee %d not found", id)
	}
	return employee, nil
}

// checkManager validates a manager assignment target: it must exist,
// hold the manager role, and differ from the employee being assigned
func (s *employeeServiceImpl) checkManager(ctx context.Context, managerID, employeeID int64) error {
	if managerID == employeeID && employeeID != 0 {
		return apperr.Validationf("employee cannot be their own manager")
	}
	manager, err := s.employeeRepo.GetByID(ctx, managerID)
	if err != nil {
		return err
	}
	if manager == nil {
		return apperr.NotFoundf("manager %d not found", managerID)
	}
	if manager.Role != entity.RoleManager {
		return apperr.Validationf("assigned manager must have the manager role")
	}
	return nil
}
