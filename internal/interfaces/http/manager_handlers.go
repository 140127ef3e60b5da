package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/delego-hq/delego/internal/application/service"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/internal/domain/workflow"
)

// ExpenseDecisionResponse carries a decided expense together with the
// delegation status it produced
type ExpenseDecisionResponse struct {
	Expense          *entity.Expense           `json:"expense"`
	DelegationStatus workflow.DelegationStatus `json:"delegation_status"`
}

// ListSubordinateDelegations handles GET /api/manager/delegations
func (h *Handlers) ListSubordinateDelegations(c *gin.Context) {
	delegations, err := h.services.Delegation.ListSubordinate(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, delegations)
}

// ApproveDelegation handles POST /api/manager/delegations/:id/approve
func (h *Handlers) ApproveDelegation(c *gin.Context) {
	h.decideDelegation(c, h.services.Delegation.Approve)
}

// RejectDelegation handles POST /api/manager/delegations/:id/reject
func (h *Handlers) RejectDelegation(c *gin.Context) {
	h.decideDelegation(c, h.services.Delegation.Reject)
}

// CancelDelegation handles POST /api/manager/delegations/:id/cancel
func (h *Handlers) CancelDelegation(c *gin.Context) {
	h.decideDelegation(c, h.services.Delegation.Cancel)
}

func (h *Handlers) decideDelegation(
	c *gin.Context,
	decide func(ctx context.Context, actorID, delegationID int64) (*entity.Delegation, error),
) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	delegation, err := decide(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, delegation)
}

// ApproveExpense handles POST /api/manager/delegations/:id/expenses/:expenseID/approve
func (h *Handlers) ApproveExpense(c *gin.Context) {
	h.decideExpense(c, h.services.Expense.ApproveItem)
}

// RejectExpense handles POST /api/manager/delegations/:id/expenses/:expenseID/reject
func (h *Handlers) RejectExpense(c *gin.Context) {
	h.decideExpense(c, h.services.Expense.RejectItem)
}

func (h *Handlers) decideExpense(
	c *gin.Context,
	decide func(ctx context.Context, actorID, delegationID, expenseID int64) (*entity.Expense, workflow.DelegationStatus, error),
) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}
	expenseID, ok := pathID(c, "expenseID")
	if !ok {
		h.badRequest(c, "invalid expense ID")
		return
	}

	expense, status, err := decide(c.Request.Context(), actorID(c), id, expenseID)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, ExpenseDecisionResponse{
		Expense:          expense,
		DelegationStatus: status,
	})
}

// ApproveAllExpenses handles POST /api/manager/delegations/:id/expenses/approve-all
func (h *Handlers) ApproveAllExpenses(c *gin.Context) {
	h.decideAllExpenses(c, h.services.Expense.ApproveAllPending)
}

// RejectAllExpenses handles POST /api/manager/delegations/:id/expenses/reject-all
func (h *Handlers) RejectAllExpenses(c *gin.Context) {
	h.decideAllExpenses(c, h.services.Expense.RejectAllPending)
}

func (h *Handlers) decideAllExpenses(
	c *gin.Context,
	decide func(ctx context.Context, actorID, delegationID int64) (*service.BulkResult, error),
) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	result, err := decide(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, result)
}
