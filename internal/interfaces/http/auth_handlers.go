package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRequest carries a self-registration payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "username, email and password are required")
		return
	}

	employee, err := h.services.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusCreated, employee)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and password are required")
		return
	}

	result, err := h.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, result)
}

// VerifyResponse confirms a token is valid and who it belongs to
type VerifyResponse struct {
	Valid      bool  `json:"valid"`
	EmployeeID int64 `json:"employee_id"`
}

// Verify handles GET /api/auth/verify. The middleware has already
// rejected invalid tokens, so reaching the handler means valid.
func (h *Handlers) Verify(c *gin.Context) {
	h.respond(c, http.StatusOK, VerifyResponse{Valid: true, EmployeeID: actorID(c)})
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	employee, err := h.services.Auth.Me(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, employee)
}
