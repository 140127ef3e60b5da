package service

import (
	"context"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/domain/workflow"
)

// SettlementWriter renders a settlement file for an approved delegation
// and returns its path
type SettlementWriter interface {
	Write(detail *DelegationDetail, owner *entity.Employee) (string, error)
}

// SettlementService exports approved delegations for accounting
type SettlementService interface {
	Export(ctx context.Context, actorID, delegationID int64) (string, error)
}

type settlementServiceImpl struct {
	delegationRepo port.DelegationRepository
	expenseRepo    port.ExpenseRepository
	documentRepo   port.DocumentRepository
	employeeRepo   port.EmployeeRepository
	writer         SettlementWriter
	guard          *Guard
	txManager      port.TransactionManager
	logger         Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	delegationRepo port.DelegationRepository,
	expenseRepo port.ExpenseRepository,
	documentRepo port.DocumentRepository,
	employeeRepo port.EmployeeRepository,
	writer SettlementWriter,
	guard *Guard,
	txManager port.TransactionManager,
	logger Logger,
) SettlementService {
	return &settlementServiceImpl{
		delegationRepo: delegationRepo,
		expenseRepo:    expenseRepo,
		documentRepo:   documentRepo,
		employeeRepo:   employeeRepo,
		writer:         writer,
		guard:          guard,
		txManager:      txManager,
		logger:         logger,
	}
}

// Export writes the settlement file for an approved delegation and
// stamps its export date. Accountants and admins only; the delegation
// must derive to APPROVED.
func (s *settlementServiceImpl) Export(ctx context.Context, actorID, delegationID int64) (string, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return "", err
	}
	if err := s.guard.RequireRole(actor, entity.RoleAccountant, entity.RoleAdmin); err != nil {
		return "", err
	}

	var path string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.delegationRepo.GetByID(txCtx, delegationID)
		if err != nil {
			return err
		}
		if delegation == nil {
			return apperr.NotFoundf("delegation %d not found", delegationID)
		}

		expenses, err := s.expenseRepo.ListByDelegationID(txCtx, delegationID)
		if err != nil {
			return err
		}
		applyDerivedStatus(delegation, expenses)
		if workflow.DelegationStatus(delegation.Status) != workflow.DelegationApproved {
			return apperr.InvalidStatef("delegation %d is not approved", delegationID)
		}

		documents, err := s.documentRepo.ListByDelegationID(txCtx, delegationID)
		if err != nil {
			return err
		}
		owner, err := s.employeeRepo.GetByID(txCtx, delegation.EmployeeID)
		if err != nil {
			return err
		}
		if owner == nil {
			return apperr.NotFoundf("employee %d not found", delegation.EmployeeID)
		}

		detail := &DelegationDetail{
			Delegation: delegation,
			Expenses:   expenses,
			Documents:  documents,
			Summary:    summarizeExpenses(expenses),
		}
		path, err = s.writer.Write(detail, owner)
		if err != nil {
			return err
		}

		return s.delegationRepo.SetExportDate(txCtx, delegationID)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Settlement exported", "delegation_id", delegationID, "path", path)
	return path, nil
}
