package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/delego-hq/delego/internal/application/service"
	"github.com/delego-hq/delego/internal/domain/entity"
)

// CreateEmployeeRequest carries an admin-created account payload
type CreateEmployeeRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active"`
	ManagerID *int64 `json:"manager_id"`
}

// UpdateEmployeeRequest carries partial account updates; absent fields
// stay untouched. manager_id distinguishes absent from explicit null
// through the set flag in AssignManagerRequest instead.
type UpdateEmployeeRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// AssignManagerRequest carries a manager assignment; a null manager_id
// clears the assignment
type AssignManagerRequest struct {
	ManagerID *int64 `json:"manager_id"`
}

// ListEmployees handles GET /api/admin/employees
func (h *Handlers) ListEmployees(c *gin.Context) {
	employees, err := h.services.Employee.List(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, employees)
}

// CreateEmployee handles POST /api/admin/employees
func (h *Handlers) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "username, email and password are required")
		return
	}

	employee, err := h.services.Employee.Create(c.Request.Context(), actorID(c), service.CreateEmployeeInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      entity.Role(req.Role),
		IsActive:  req.IsActive,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusCreated, employee)
}

// GetEmployeeDetail handles GET /api/admin/employees/:id
func (h *Handlers) GetEmployeeDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid employee ID")
		return
	}

	detail, err := h.services.Employee.GetEmployeeDetail(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, detail)
}

// UpdateEmployee handles PUT /api/admin/employees/:id
func (h *Handlers) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid employee ID")
		return
	}
	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	in := service.UpdateEmployeeInput{
		Username: req.Username,
		Email:    req.Email,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}

	employee, err := h.services.Employee.Update(c.Request.Context(), actorID(c), id, in)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, employee)
}

// ActivateEmployee handles POST /api/admin/employees/:id/activate
func (h *Handlers) ActivateEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid employee ID")
		return
	}

	if err := h.services.Employee.Activate(c.Request.Context(), actorID(c), id); err != nil {
		h.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BlockEmployee handles POST /api/admin/employees/:id/block
func (h *Handlers) BlockEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid employee ID")
		return
	}

	if err := h.services.Employee.Block(c.Request.Context(), actorID(c), id); err != nil {
		h.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignManager handles PUT /api/admin/employees/:id/manager
func (h *Handlers) AssignManager(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid employee ID")
		return
	}
	var req AssignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	employee, err := h.services.Employee.AssignManager(c.Request.Context(), actorID(c), id, req.ManagerID)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, employee)
}

// ListManagers handles GET /api/admin/managers
func (h *Handlers) ListManagers(c *gin.Context) {
	managers, err := h.services.Employee.ListManagers(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, managers)
}

// GetManagerDetail handles GET /api/admin/managers/:id
func (h *Handlers) GetManagerDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid manager ID")
		return
	}

	detail, err := h.services.Employee.GetManagerDetail(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, detail)
}
