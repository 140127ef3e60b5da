package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/domain/workflow"
)

func TestSettlementService_Export(t *testing.T) {
	f := newFixture()
	accountant := f.addEmployee("kasia", entity.RoleAccountant, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationApproved.String())
	f.addExpense(d.ID, "APPROVED", "120.00")

	path, err := f.settlementSvc.Export(context.Background(), accountant.ID, d.ID)

	require.NoError(t, err)
	assert.Contains(t, path, "settlement")
	assert.Equal(t, []int64{d.ID}, f.writer.written)

	stored, _ := f.delegations.GetByID(context.Background(), d.ID)
	assert.NotNil(t, stored.ExportDate)
}

func TestSettlementService_Export_DerivedApprovalSuffices(t *testing.T) {
	f := newFixture()
	admin := f.addEmployee("root", entity.RoleAdmin, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	// stored PENDING but every item approved derives to APPROVED
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())
	f.addExpense(d.ID, "APPROVED", "50.00")

	_, err := f.settlementSvc.Export(context.Background(), admin.ID, d.ID)

	require.NoError(t, err)
}

func TestSettlementService_Export_NotApproved(t *testing.T) {
	f := newFixture()
	accountant := f.addEmployee("kasia", entity.RoleAccountant, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, nil)
	d := f.addDelegation(employee.ID, workflow.DelegationPending.String())
	f.addExpense(d.ID, "PENDING", "50.00")

	_, err := f.settlementSvc.Export(context.Background(), accountant.ID, d.ID)

	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestSettlementService_Export_RoleGuard(t *testing.T) {
	f := newFixture()
	manager := f.addEmployee("marek", entity.RoleManager, nil)
	employee := f.addEmployee("anna", entity.RoleEmployee, &manager.ID)
	d := f.addDelegation(employee.ID, workflow.DelegationApproved.String())
	f.addExpense(d.ID, "APPROVED", "50.00")

	_, err := f.settlementSvc.Export(context.Background(), manager.ID, d.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.settlementSvc.Export(context.Background(), employee.ID, d.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}
