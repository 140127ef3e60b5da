package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/domain/workflow"
)

// ExpenseInput carries the fields of an expense entry. The converted
// amount and the exchange rate are computed from reference data at
// create/edit time, never supplied by the caller.
type ExpenseInput struct {
	Explanation string
	Amount      decimal.Decimal
	CurrencyID  int64
	CategoryID  int64
	PayedAt     *time.Time
}

// AmountSummary totals the base-currency amounts per normalized status
type AmountSummary struct {
	Total    decimal.Decimal `json:"total"`
	Pending  decimal.Decimal `json:"pending"`
	Approved decimal.Decimal `json:"approved"`
	Rejected decimal.Decimal `json:"rejected"`
}

// BulkResult is the outcome of an approve-all or reject-all action
type BulkResult struct {
	Count   int                       `json:"count"`
	Status  workflow.DelegationStatus `json:"status"`
	Summary AmountSummary             `json:"summary"`
}

// ExpenseService manages expense items and their status transitions.
// Every status mutation recomputes and persists the owning delegation's
// derived status within the same transaction.
type ExpenseService interface {
	Add(ctx context.Context, actorID, delegationID int64, in ExpenseInput) (*entity.Expense, error)
	Update(ctx context.Context, actorID, delegationID, expenseID int64, in ExpenseInput) (*entity.Expense, error)
	Delete(ctx context.Context, actorID, delegationID, expenseID int64) error
	ApproveItem(ctx context.Context, actorID, delegationID, expenseID int64) (*entity.Expense, workflow.DelegationStatus, error)
	RejectItem(ctx context.Context, actorID, delegationID, expenseID int64) (*entity.Expense, workflow.DelegationStatus, error)
	ApproveAllPending(ctx context.Context, actorID, delegationID int64) (*BulkResult, error)
	RejectAllPending(ctx context.Context, actorID, delegationID int64) (*BulkResult, error)
}

type expenseServiceImpl struct {
	expenseRepo    port.ExpenseRepository
	delegationRepo port.DelegationRepository
	referenceRepo  port.ReferenceRepository
	guard          *Guard
	txManager      port.TransactionManager
	logger         Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	delegationRepo port.DelegationRepository,
	referenceRepo port.ReferenceRepository,
	guard *Guard,
	txManager port.TransactionManager,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo:    expenseRepo,
		delegationRepo: delegationRepo,
		referenceRepo:  referenceRepo,
		guard:          guard,
		txManager:      txManager,
		logger:         logger,
	}
}

// Add attaches a new expense to a draft delegation. The exchange rate is
// snapshotted from reference data and the base-currency amount computed
// from it; both stay frozen afterwards.
func (s *expenseServiceImpl) Add(ctx context.Context, actorID, delegationID int64, in ExpenseInput) (*entity.Expense, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var created *entity.Expense
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireOwner(actor, delegation); err != nil {
			return err
		}
		if workflow.DelegationStatus(delegation.Status) != workflow.DelegationDraft {
			return apperr.InvalidStatef("cannot add expenses to delegation with status %s", delegation.Status)
		}

		rate, plnAmount, err := s.snapshotRate(txCtx, in)
		if err != nil {
			return err
		}

		expense := &entity.Expense{
			DelegationID: delegationID,
			Explanation:  in.Explanation,
			Amount:       in.Amount,
			PLNAmount:    plnAmount,
			ExchangeRate: rate,
			CurrencyID:   in.CurrencyID,
			CategoryID:   in.CategoryID,
			Status:       workflow.ExpensePending.String(),
			PayedAt:      in.PayedAt,
			CreatedAt:    time.Now(),
		}
		if err := s.expenseRepo.Create(txCtx, expense); err != nil {
			return err
		}
		created = expense
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense added", "id", created.ID, "delegation_id", delegationID)
	return created, nil
}

// Update edits an expense of a draft delegation, re-snapshotting the
// exchange rate. The delegation reference is immutable.
func (s *expenseServiceImpl) Update(ctx context.Context, actorID, delegationID, expenseID int64, in ExpenseInput) (*entity.Expense, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var updated *entity.Expense
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireOwner(actor, delegation); err != nil {
			return err
		}
		if workflow.DelegationStatus(delegation.Status) != workflow.DelegationDraft {
			return apperr.InvalidStatef("cannot edit expenses of delegation with status %s", delegation.Status)
		}

		expense, err := s.getExpenseOf(txCtx, delegationID, expenseID)
		if err != nil {
			return err
		}

		rate, plnAmount, err := s.snapshotRate(txCtx, in)
		if err != nil {
			return err
		}

		expense.Explanation = in.Explanation
		expense.Amount = in.Amount
		expense.PLNAmount = plnAmount
		expense.ExchangeRate = rate
		expense.CurrencyID = in.CurrencyID
		expense.CategoryID = in.CategoryID
		expense.PayedAt = in.PayedAt

		if err := s.expenseRepo.Update(txCtx, expense); err != nil {
			return err
		}
		updated = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an expense from a draft delegation
func (s *expenseServiceImpl) Delete(ctx context.Context, actorID, delegationID, expenseID int64) error {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return err
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireOwner(actor, delegation); err != nil {
			return err
		}
		if workflow.DelegationStatus(delegation.Status) != workflow.DelegationDraft {
			return apperr.InvalidStatef("cannot delete expenses of delegation with status %s", delegation.Status)
		}
		if _, err := s.getExpenseOf(txCtx, delegationID, expenseID); err != nil {
			return err
		}
		return s.expenseRepo.Delete(txCtx, expenseID)
	})
}

// ApproveItem sets a single expense to APPROVED and recomputes the owning
// delegation's status. The write is unconditional: re-approving an
// approved item is a no-op, a rejected item is overwritten.
func (s *expenseServiceImpl) ApproveItem(ctx context.Context, actorID, delegationID, expenseID int64) (*entity.Expense, workflow.DelegationStatus, error) {
	return s.decideItem(ctx, actorID, delegationID, expenseID, workflow.ExpenseApproved)
}

// RejectItem sets a single expense to REJECTED and recomputes the owning
// delegation's status
func (s *expenseServiceImpl) RejectItem(ctx context.Context, actorID, delegationID, expenseID int64) (*entity.Expense, workflow.DelegationStatus, error) {
	return s.decideItem(ctx, actorID, delegationID, expenseID, workflow.ExpenseRejected)
}

func (s *expenseServiceImpl) decideItem(ctx context.Context, actorID, delegationID, expenseID int64, to workflow.ExpenseStatus) (*entity.Expense, workflow.DelegationStatus, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, "", err
	}

	var decided *entity.Expense
	var derived workflow.DelegationStatus
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireManagerOf(txCtx, actor, delegation); err != nil {
			return err
		}
		if err := requireDecidable(delegation); err != nil {
			return err
		}

		expense, err := s.getExpenseOf(txCtx, delegationID, expenseID)
		if err != nil {
			return err
		}

		if err := s.expenseRepo.UpdateStatus(txCtx, expenseID, to.String()); err != nil {
			return err
		}
		expense.Status = to.String()

		derived, err = s.recomputeStatus(txCtx, delegation)
		if err != nil {
			return err
		}
		decided = expense
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Expense decided", "id", expenseID, "delegation_id", delegationID,
		"status", to.String(), "delegation_status", derived.String())
	return decided, derived, nil
}

// ApproveAllPending approves every expense currently normalized to
// PENDING. Selection, mutation and the status recompute run in one
// transaction so an item added concurrently is neither skipped silently
// nor double-counted.
func (s *expenseServiceImpl) ApproveAllPending(ctx context.Context, actorID, delegationID int64) (*BulkResult, error) {
	return s.decideAllPending(ctx, actorID, delegationID, workflow.ExpenseApproved)
}

// RejectAllPending rejects every expense currently normalized to PENDING
func (s *expenseServiceImpl) RejectAllPending(ctx context.Context, actorID, delegationID int64) (*BulkResult, error) {
	return s.decideAllPending(ctx, actorID, delegationID, workflow.ExpenseRejected)
}

func (s *expenseServiceImpl) decideAllPending(ctx context.Context, actorID, delegationID int64, to workflow.ExpenseStatus) (*BulkResult, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var result *BulkResult
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireManagerOf(txCtx, actor, delegation); err != nil {
			return err
		}
		if err := requireDecidable(delegation); err != nil {
			return err
		}

		expenses, err := s.expenseRepo.ListByDelegationID(txCtx, delegationID)
		if err != nil {
			return err
		}

		count := 0
		for _, expense := range expenses {
			if workflow.NormalizeExpenseStatus(expense.Status) != workflow.ExpensePending {
				continue
			}
			if err := s.expenseRepo.UpdateStatus(txCtx, expense.ID, to.String()); err != nil {
				return err
			}
			expense.Status = to.String()
			count++
		}

		derived, err := s.recomputeStatusFrom(txCtx, delegation, expenses)
		if err != nil {
			return err
		}

		result = &BulkResult{
			Count:   count,
			Status:  derived,
			Summary: summarizeExpenses(expenses),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Pending expenses decided in bulk", "delegation_id", delegationID,
		"status", to.String(), "count", result.Count, "delegation_status", result.Status.String())
	return result, nil
}

// snapshotRate resolves the currency's latest rate and converts the
// amount. Validation errors cover amount, currency and category.
func (s *expenseServiceImpl) snapshotRate(ctx context.Context, in ExpenseInput) (decimal.Decimal, decimal.Decimal, error) {
	zero := decimal.Zero
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return zero, zero, apperr.Validationf("amount must be positive")
	}

	currency, err := s.referenceRepo.GetCurrency(ctx, in.CurrencyID)
	if err != nil {
		return zero, zero, err
	}
	if currency == nil {
		return zero, zero, apperr.Validationf("unknown currency %d", in.CurrencyID)
	}

	category, err := s.referenceRepo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return zero, zero, err
	}
	if category == nil {
		return zero, zero, apperr.Validationf("unknown expense category %d", in.CategoryID)
	}

	entry, err := s.referenceRepo.GetLatestRate(ctx, in.CurrencyID)
	if err != nil {
		return zero, zero, err
	}
	if entry == nil {
		return zero, zero, apperr.Validationf("no exchange rate set for currency %d", in.CurrencyID)
	}

	rate := entry.RateToPLN
	plnAmount := in.Amount.Mul(rate).Round(2)
	return rate, plnAmount, nil
}

func (s *expenseServiceImpl) getDelegation(ctx context.Context, id int64) (*entity.Delegation, error) {
	delegation, err := s.delegationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, apperr.NotFoundf("delegation %d not found", id)
	}
	return delegation, nil
}

// getExpenseOf treats a missing expense and an expense belonging to a
// different delegation identically: both are not found
func (s *expenseServiceImpl) getExpenseOf(ctx context.Context, delegationID, expenseID int64) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil || expense.DelegationID != delegationID {
		return nil, apperr.NotFoundf("expense %d not found in delegation %d", expenseID, delegationID)
	}
	return expense, nil
}

// requireDecidable blocks item decisions on delegations that were never
// submitted or were cancelled; the cancel override is final
func requireDecidable(delegation *entity.Delegation) error {
	switch workflow.DelegationStatus(delegation.Status) {
	case workflow.DelegationDraft:
		return apperr.InvalidStatef("delegation %d has not been submitted", delegation.ID)
	case workflow.DelegationCancelled:
		return apperr.InvalidStatef("delegation %d is cancelled", delegation.ID)
	}
	return nil
}

func (s *expenseServiceImpl) recomputeStatus(ctx context.Context, delegation *entity.Delegation) (workflow.DelegationStatus, error) {
	expenses, err := s.expenseRepo.ListByDelegationID(ctx, delegation.ID)
	if err != nil {
		return "", err
	}
	return s.recomputeStatusFrom(ctx, delegation, expenses)
}

// recomputeStatusFrom persists the aggregator's output as the
// delegation's status, inside the caller's transaction
func (s *expenseServiceImpl) recomputeStatusFrom(ctx context.Context, delegation *entity.Delegation, expenses []*entity.Expense) (workflow.DelegationStatus, error) {
	derived := workflow.AggregateStatus(expenseStatuses(expenses))
	if delegation.Status != derived.String() {
		if err := s.delegationRepo.UpdateStatus(ctx, delegation.ID, derived.String()); err != nil {
			return "", err
		}
		delegation.Status = derived.String()
	}
	return derived, nil
}

func summarizeExpenses(expenses []*entity.Expense) AmountSummary {
	summary := AmountSummary{
		Total:    decimal.Zero,
		Pending:  decimal.Zero,
		Approved: decimal.Zero,
		Rejected: decimal.Zero,
	}
	for _, expense := range expenses {
		summary.Total = summary.Total.Add(expense.PLNAmount)
		switch workflow.NormalizeExpenseStatus(expense.Status) {
		case workflow.ExpensePending:
			summary.Pending = summary.Pending.Add(expense.PLNAmount)
		case workflow.ExpenseApproved:
			summary.Approved = summary.Approved.Add(expense.PLNAmount)
		case workflow.ExpenseRejected:
			summary.Rejected = summary.Rejected.Add(expense.PLNAmount)
		}
	}
	return summary
}
