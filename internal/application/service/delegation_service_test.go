package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/domain/workflow"
)

func TestDelegationService_Create(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)

	d, err := f.delegationSvc.Create(context.Background(), employee.ID, DelegationInput{
		StartDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		Name:      "Vienna conference",
		Country:   "Austria",
		City:      "Vienna",
	})

	require.NoError(t, err)
	assert.Equal(t, workflow.DelegationDraft.String(), d.Status)
	assert.Equal(t, employee.ID, d.EmployeeID)
}

func TestDelegationService_Create_BadDateRange(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)

	_, err := f.delegationSvc.Create(context.Background(), employee.ID, DelegationInput{
		StartDate: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
	})

	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDelegationService_Submit(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	submitted, err := f.delegationSvc.Submit(context.Background(), employee.ID, d.ID)

	require.NoError(t, err)
	assert.Equal(t, workflow.DelegationPending.String(), submitted.Status)
}

func TestDelegationService_Submit_Twice(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Submit(context.Background(), employee.ID, d.ID)
	require.NoError(t, err)

	_, err = f.delegationSvc.Submit(context.Background(), employee.ID, d.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestDelegationService_Submit_WithoutManager(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Submit(context.Background(), employee.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDelegationService_Submit_NotOwner(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	other := f.addEmployee("piotr", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Submit(context.Background(), other.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDelegationService_Submit_EmptyDelegationYieldsPending(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	submitted, err := f.delegationSvc.Submit(context.Background(), employee.ID, d.ID)

	require.NoError(t, err)
	assert.Equal(t, workflow.DelegationPending.String(), submitted.Status)
}

func TestDelegationService_Approve_RequiresPending(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Approve(context.Background(), manager.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestDelegationService_Approve(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())

	approved, err := f.delegationSvc.Approve(context.Background(), manager.ID, d.ID)

	require.NoError(t, err)
	assert.Equal(t, workflow.DelegationApproved.String(), approved.Status)
}

func TestDelegationService_Approve_NotDirectReport(t *testing.T) {
	f := newFixture()
	senior := f.addEmployee("boss", entity.RoleManager, nil)
	middle := f.addEmployee("marek", entity.RoleManager, &senior.ID)
	employee := f.addEmployee("anna", entity.RoleEmployee, &middle.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())

	// anna reports to marek who reports to boss; the hierarchy is not
	// traversed, so boss cannot act on anna's delegation
	_, err := f.delegationSvc.Approve(context.Background(), senior.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDelegationService_Cancel_FromAnyStatus(t *testing.T) {
	statuses := []workflow.DelegationStatus{
		workflow.DelegationDraft,
		workflow.DelegationPending,
		workflow.DelegationApproved,
		workflow.DelegationRejected,
		workflow.DelegationCancelled,
	}

	for _, status := range statuses {
		t.Run(status.String(), func(t *testing.T) {
			f := newFixture()
			manager := f.addEmployee("marek", entity.RoleManager, nil)
			employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
			d := f.addDelegation(employee.ID, status.String())

			cancelled, err := f.delegationSvc.Cancel(context.Background(), manager.ID, d.ID)

			require.NoError(t, err)
			assert.Equal(t, workflow.DelegationCancelled.String(), cancelled.Status)
		})
	}
}

func TestDelegationService_Cancel_EmployeeForbidden(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())

	_, err := f.delegationSvc.Cancel(context.Background(), employee.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDelegationService_Update_DraftOnly(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())

	_, err := f.delegationSvc.Update(context.Background(), employee.ID, d.ID, DelegationInput{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})

	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestDelegationService_Update_RevalidatesDates(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Update(context.Background(), employee.ID, d.ID, DelegationInput{
		StartDate: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})

	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDelegationService_Get_DerivedStatusSurfaced(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	// stored status PENDING while every item is already approved; the
	// read must surface APPROVED without waiting for a write
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())
	f.addExpense(d.ID, "APPROVED", "120.00")
	f.addExpense(d.ID, "APPROVED", "80.00")

	detail, err := f.delegationSvc.Get(context.Background(), employee.ID, d.ID)

	require.NoError(t, err)
	assert.Equal(t, workflow.DelegationApproved.String(), detail.Delegation.Status)
	assert.Equal(t, "200", detail.Summary.Total.String())
	assert.Equal(t, "200", detail.Summary.Approved.String())
	// stored row untouched
	stored, _ := f.delegations.GetByID(context.Background(), d.ID)
	assert.Equal(t, workflow.DelegationPending.String(), stored.Status)
}

func TestDelegationService_Get_Forbidden(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	stranger := f.addEmployee("obcy", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Get(context.Background(), stranger.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDelegationService_Get_NotFound(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)

	_, err := f.delegationSvc.Get(context.Background(), employee.ID, 999)

	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelegationService_InactiveActor(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	employee.IsActive = false
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())

	_, err := f.delegationSvc.Get(context.Background(), employee.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDelegationService_UnknownActor(t *testing.T) {
	f := newFixture()

	_, err := f.delegationSvc.ListOwn(context.Background(), 404)

	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestDelegationService_ListSubordinate(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	anna := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	piotr := f.addEmployee("piotr", entity.RoleEmployee, &manager.ID)
	f.addEmployee("outsider", entity.RoleEmployee, nil)
	f.addDelegation(anna.ID, workflow.DelegationPending.String())
	f.addDelegation(piotr.ID, workflow.DelegationDraft.String())

	delegations, err := f.delegationSvc.ListSubordinate(context.Background(), manager.ID)

	require.NoError(t, err)
	assert.Len(t, delegations, 2)
}

func TestDelegationService_AddDocument_ExpenseMismatch(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationDraft.String())
	other := f.addDelegation(employee.ID, workflow.DelegationDraft.String())
	foreign := f.addExpense(other.ID, "PENDING", "10.00")

	_, err := f.delegationSvc.AddDocument(context.Background(), employee.ID, d.ID, DocumentInput{
		ExpenseID: &foreign.ID,
		Filename:  "receipt.pdf",
		FilePath:  "/uploads/receipt.pdf",
	})

	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelegationService_Delete_DraftOnly(t *testing.T) {
	f := newFixture()
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationApproved.String())

	err := f.delegationSvc.Delete(context.Background(), employee.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrInvalidState)
}
