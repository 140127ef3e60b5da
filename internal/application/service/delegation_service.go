package service

import (
	"context"
	"fmt"
	"time"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/domain/workflow"
)

// DelegationInput carries the mutable draft fields of a delegation
type DelegationInput struct {
	StartDate time.Time
	EndDate   time.Time
	Name      string
	Country   string
	City      string
	Purpose   string
}

// DocumentInput carries document metadata to attach to a delegation
type DocumentInput struct {
	ExpenseID   *int64
	Filename    string
	FilePath    string
	FileType    string
	Description string
}

// DelegationDetail is a delegation with its expenses, documents and the
// amount summary, status already derived
type DelegationDetail struct {
	Delegation *entity.Delegation `json:"delegation"`
	Expenses   []*entity.Expense  `json:"expenses"`
	Documents  []*entity.Document `json:"documents"`
	Summary    AmountSummary      `json:"summary"`
}

// DelegationService manages the delegation lifecycle
type DelegationService interface {
	Create(ctx context.Context, actorID int64, in DelegationInput) (*entity.Delegation, error)
	ListOwn(ctx context.Context, actorID int64) ([]*entity.Delegation, error)
	ListSubordinate(ctx context.Context, actorID int64) ([]*entity.Delegation, error)
	Get(ctx context.Context, actorID, delegationID int64) (*DelegationDetail, error)
	Update(ctx context.Context, actorID, delegationID int64, in DelegationInput) (*entity.Delegation, error)
	Delete(ctx context.Context, actorID, delegationID int64) error
	Submit(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error)
	Approve(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error)
	Reject(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error)
	Cancel(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error)
	AddDocument(ctx context.Context, actorID, delegationID int64, in DocumentInput) (*entity.Document, error)
	DeleteDocument(ctx context.Context, actorID, delegationID, documentID int64) error
}

type delegationServiceImpl struct {
	delegationRepo port.DelegationRepository
	expenseRepo    port.ExpenseRepository
	documentRepo   port.DocumentRepository
	employeeRepo   port.EmployeeRepository
	guard          *Guard
	txManager      port.TransactionManager
	logger         Logger
}

// NewDelegationService creates a new DelegationService
func NewDelegationService(
	delegationRepo port.DelegationRepository,
	expenseRepo port.ExpenseRepository,
	documentRepo port.DocumentRepository,
	employeeRepo port.EmployeeRepository,
	guard *Guard,
	txManager port.TransactionManager,
	logger Logger,
) DelegationService {
	return &delegationServiceImpl{
		delegationRepo: delegationRepo,
		expenseRepo:    expenseRepo,
		documentRepo:   documentRepo,
		employeeRepo:   employeeRepo,
		guard:          guard,
		txManager:      txManager,
		logger:         logger,
	}
}

func validateDateRange(in DelegationInput) error {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return apperr.Validationf("start_date and end_date are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return apperr.Validationf("start_date must not be after end_date")
	}
	return nil
}

// Create creates a new delegation in DRAFT for the acting employee
func (s *delegationServiceImpl) Create(ctx context.Context, actorID int64, in DelegationInput) (*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(in); err != nil {
		return nil, err
	}

	delegation := &entity.Delegation{
		EmployeeID: actor.ID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     workflow.DelegationDraft.String(),
		Name:       in.Name,
		Country:    in.Country,
		City:       in.City,
		Purpose:    in.Purpose,
		CreatedAt:  time.Now(),
	}

	if err := s.delegationRepo.Create(ctx, delegation); err != nil {
		s.logger.Error("Failed to create delegation", "error", err, "employee_id", actor.ID)
		return nil, err
	}

	s.logger.Info("Delegation created", "id", delegation.ID, "employee_id", actor.ID)
	return delegation, nil
}

// ListOwn lists the acting employee's delegations with derived statuses
func (s *delegationServiceImpl) ListOwn(ctx context.Context, actorID int64) ([]*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	delegations, err := s.delegationRepo.ListByEmployeeID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, d := range delegations {
		if err := s.surfaceStatus(ctx, d); err != nil {
			return nil, err
		}
	}
	return delegations, nil
}

// ListSubordinate lists the delegations of the acting manager's direct
// reports, derived statuses included
func (s *delegationServiceImpl) ListSubordinate(ctx context.Context, actorID int64) ([]*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireRole(actor, entity.RoleManager); err != nil {
		return nil, err
	}

	subordinates, err := s.employeeRepo.ListByManagerID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(subordinates))
	for _, sub := range subordinates {
		ids = append(ids, sub.ID)
	}

	delegations, err := s.delegationRepo.ListByEmployeeIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range delegations {
		if err := s.surfaceStatus(ctx, d); err != nil {
			return nil, err
		}
	}
	return delegations, nil
}

// Get returns a delegation with expenses, documents and summary. Allowed
// for the owner, the owner's direct manager, admins and accountants.
func (s *delegationServiceImpl) Get(ctx context.Context, actorID, delegationID int64) (*DelegationDetail, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	delegation, err := s.getDelegation(ctx, delegationID)
	if err != nil {
		return nil, err
	}

	if s.guard.RequireOwner(actor, delegation) != nil &&
		s.guard.RequireManagerOf(ctx, actor, delegation) != nil &&
		s.guard.RequireRole(actor, entity.RoleAdmin, entity.RoleAccountant) != nil {
		return nil, apperr.Forbiddenf("delegation %d is not visible to you", delegationID)
	}

	expenses, err := s.expenseRepo.ListByDelegationID(ctx, delegationID)
	if err != nil {
		return nil, err
	}
	documents, err := s.documentRepo.ListByDelegationID(ctx, delegationID)
	if err != nil {
		return nil, err
	}

	applyDerivedStatus(delegation, expenses)

	return &DelegationDetail{
		Delegation: delegation,
		Expenses:   expenses,
		Documents:  documents,
		Summary:    summarizeExpenses(expenses),
	}, nil
}

// Update edits the draft fields. Only the owner, only while DRAFT; the
// date range is re-validated after the edit.
func (s *delegationServiceImpl) Update(ctx context.Context, actorID, delegationID int64, in DelegationInput) (*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var updated *entity.Delegation
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireOwner(actor, delegation); err != nil {
			return err
		}
		if !workflow.CanFire(workflow.DelegationStatus(delegation.Status), workflow.TriggerEdit) {
			return apperr.InvalidStatef("cannot edit delegation with status %s", delegation.Status)
		}
		if err := validateDateRange(in); err != nil {
			return err
		}

		delegation.StartDate = in.StartDate
		delegation.EndDate = in.EndDate
		delegation.Name = in.Name
		delegation.Country = in.Country
		delegation.City = in.City
		delegation.Purpose = in.Purpose

		if err := s.delegationRepo.Update(txCtx, delegation); err != nil {
			return err
		}
		updated = delegation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delegation updated", "id", delegationID)
	return updated, nil
}

// Delete removes a draft delegation together with its expenses and
// documents
func (s *delegationServiceImpl) Delete(ctx context.Context, actorID, delegationID int64) error {
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
			return apperr.InvalidStatef("cannot delete delegation with status %s", delegation.Status)
		}
		return s.delegationRepo.Delete(txCtx, delegationID)
	})
}

// Submit moves a draft to PENDING. Requires the actor to own the
// delegation and to have an assigned manager; the aggregator is not
// consulted, so submitting without expenses is legal and yields PENDING.
func (s *delegationServiceImpl) Submit(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var submitted *entity.Delegation
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireOwner(actor, delegation); err != nil {
			return err
		}
		if actor.ManagerID == nil {
			return apperr.Validationf("cannot submit without an assigned manager")
		}

		next, err := workflow.Fire(workflow.DelegationStatus(delegation.Status), workflow.TriggerSubmit)
		if err != nil {
			return apperr.InvalidStatef("cannot submit delegation with status %s", delegation.Status)
		}

		if err := s.delegationRepo.UpdateStatus(txCtx, delegationID, next.String()); err != nil {
			return err
		}
		delegation.Status = next.String()
		submitted = delegation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delegation submitted", "id", delegationID, "employee_id", actor.ID)
	return submitted, nil
}

// Approve approves a pending delegation as a whole. Manager-only, direct
// reports only.
func (s *delegationServiceImpl) Approve(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error) {
	return s.decide(ctx, actorID, delegationID, workflow.TriggerApprove)
}

// Reject rejects a pending delegation as a whole. Manager-only, direct
// reports only.
func (s *delegationServiceImpl) Reject(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error) {
	return s.decide(ctx, actorID, delegationID, workflow.TriggerReject)
}

func (s *delegationServiceImpl) decide(ctx context.Context, actorID, delegationID int64, trigger workflow.Trigger) (*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var decided *entity.Delegation
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireManagerOf(txCtx, actor, delegation); err != nil {
			return err
		}

		next, err := workflow.Fire(workflow.DelegationStatus(delegation.Status), trigger)
		if err != nil {
			return apperr.InvalidStatef("cannot %s delegation with status %s", trigger, delegation.Status)
		}

		if err := s.delegationRepo.UpdateStatus(txCtx, delegationID, next.String()); err != nil {
			return err
		}
		if err := s.delegationRepo.SetClosedAt(txCtx, delegationID); err != nil {
			return err
		}
		delegation.Status = next.String()
		decided = delegation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delegation decided", "id", delegationID, "trigger", trigger.String(), "manager_id", actorID)
	return decided, nil
}

// Cancel marks a delegation CANCELLED regardless of its prior status.
// Manager-only override that bypasses aggregation; invoking it again is
// a no-op in effect.
func (s *delegationServiceImpl) Cancel(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var cancelled *entity.Delegation
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		delegation, err := s.getDelegation(txCtx, delegationID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireManagerOf(txCtx, actor, delegation); err != nil {
			return err
		}

		next, err := workflow.Fire(workflow.DelegationStatus(delegation.Status), workflow.TriggerCancel)
		if err != nil {
			return apperr.InvalidStatef("cannot cancel delegation with status %s", delegation.Status)
		}

		if err := s.delegationRepo.UpdateStatus(txCtx, delegationID, next.String()); err != nil {
			return err
		}
		if err := s.delegationRepo.SetClosedAt(txCtx, delegationID); err != nil {
			return err
		}
		delegation.Status = next.String()
		cancelled = delegation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delegation cancelled", "id", delegationID, "manager_id", actorID)
	return cancelled, nil
}

// AddDocument attaches document metadata. Owner only. A referenced
// expense must belong to the same delegation.
func (s *delegationServiceImpl) AddDocument(ctx context.Context, actorID, delegationID int64, in DocumentInput) (*entity.Document, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if in.Filename == "" || in.FilePath == "" {
		return nil, apperr.Validationf("filename and file_path are required")
	}

	delegation, err := s.getDelegation(ctx, delegationID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireOwner(actor, delegation); err != nil {
		return nil, err
	}

	if in.ExpenseID != nil {
		expense, err := s.expenseRepo.GetByID(ctx, *in.ExpenseID)
		if err != nil {
			return nil, err
		}
		if expense == nil || expense.DelegationID != delegationID {
			return nil, apperr.NotFoundf("expense %d not found in delegation %d", *in.ExpenseID, delegationID)
		}
	}

	doc := &entity.Document{
		DelegationID: delegationID,
		ExpenseID:    in.ExpenseID,
		Filename:     in.Filename,
		FilePath:     in.FilePath,
		FileType:     in.FileType,
		Description:  in.Description,
		UploadedAt:   time.Now(),
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes document metadata. Owner only; a document
// belonging to a different delegation surfaces as not found.
func (s *delegationServiceImpl) DeleteDocument(ctx context.Context, actorID, delegationID, documentID int64) error {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return err
	}
	delegation, err := s.getDelegation(ctx, delegationID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireOwner(actor, delegation); err != nil {
		return err
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil || doc.DelegationID != delegationID {
		return apperr.NotFoundf("document %d not found in delegation %d", documentID, delegationID)
	}
	return s.documentRepo.Delete(ctx, documentID)
}

func (s *delegationServiceImpl) getDelegation(ctx context.Context, id int64) (*entity.Delegation, error) {
	delegation, err := s.delegationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get delegation: %w", err)
	}
	if delegation == nil {
		return nil, apperr.NotFoundf("delegation %d not found", id)
	}
	return delegation, nil
}

// surfaceStatus replaces a submitted delegation's stored status with the
// aggregator's output for reads. Nothing is persisted here; DRAFT and
// CANCELLED are not derived and pass through untouched.
func (s *delegationServiceImpl) surfaceStatus(ctx context.Context, delegation *entity.Delegation) error {
	if !statusIsDerived(delegation.Status) {
		return nil
	}
	expenses, err := s.expenseRepo.ListByDelegationID(ctx, delegation.ID)
	if err != nil {
		return err
	}
	applyDerivedStatus(delegation, expenses)
	return nil
}

func statusIsDerived(status string) bool {
	switch workflow.DelegationStatus(status) {
	case workflow.DelegationPending, workflow.DelegationApproved, workflow.DelegationRejected:
		return true
	}
	return false
}

func applyDerivedStatus(delegation *entity.Delegation, expenses []*entity.Expense) {
	if !statusIsDerived(delegation.Status) {
		return
	}
	delegation.Status = workflow.AggregateStatus(expenseStatuses(expenses)).String()
}

func expenseStatuses(expenses []*entity.Expense) []string {
	statuses := make([]string, 0, len(expenses))
	for _, e := range expenses {
		statuses = append(statuses, e.Status)
	}
	return statuses
}
