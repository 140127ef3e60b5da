package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/delego-hq/delego/internal/application/service"
	"github.com/delego-hq/delego/internal/infrastructure/storage"
)

// DelegationRequest carries the draft fields of a delegation; dates use
// the 2006-01-02 layout
type DelegationRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Purpose   string `json:"purpose"`
}

func (r DelegationRequest) toInput() (service.DelegationInput, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return service.DelegationInput{}, err
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return service.DelegationInput{}, err
	}
	return service.DelegationInput{
		StartDate: start,
		EndDate:   end,
		Name:      r.Name,
		Country:   r.Country,
		City:      r.City,
		Purpose:   r.Purpose,
	}, nil
}

// ExpenseRequest carries an expense payload; the amount is a decimal
// string
type ExpenseRequest struct {
	Explanation string `json:"explanation"`
	Amount      string `json:"amount" binding:"required"`
	CurrencyID  int64  `json:"currency_id" binding:"required"`
	CategoryID  int64  `json:"category_id" binding:"required"`
	PayedAt     string `json:"payed_at"`
}

func (r ExpenseRequest) toInput() (service.ExpenseInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.ExpenseInput{}, err
	}
	in := service.ExpenseInput{
		Explanation: r.Explanation,
		Amount:      amount,
		CurrencyID:  r.CurrencyID,
		CategoryID:  r.CategoryID,
	}
	if r.PayedAt != "" {
		payedAt, err := parseDate(r.PayedAt)
		if err != nil {
			return service.ExpenseInput{}, err
		}
		in.PayedAt = &payedAt
	}
	return in, nil
}

// DocumentRequest carries document metadata
type DocumentRequest struct {
	ExpenseID   *int64 `json:"expense_id"`
	Filename    string `json:"filename" binding:"required"`
	FilePath    string `json:"file_path" binding:"required"`
	FileType    string `json:"file_type"`
	Description string `json:"description"`
}

// ListOwnDelegations handles GET /api/delegations
func (h *Handlers) ListOwnDelegations(c *gin.Context) {
	delegations, err := h.services.Delegation.ListOwn(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, delegations)
}

// CreateDelegation handles POST /api/delegations
func (h *Handlers) CreateDelegation(c *gin.Context) {
	var req DelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "start_date and end_date are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.badRequest(c, "dates must use the "+dateLayout+" format")
		return
	}

	delegation, err := h.services.Delegation.Create(c.Request.Context(), actorID(c), in)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusCreated, delegation)
}

// GetDelegation handles GET /api/delegations/:id
func (h *Handlers) GetDelegation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	detail, err := h.services.Delegation.Get(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, detail)
}

// UpdateDelegation handles PUT /api/delegations/:id
func (h *Handlers) UpdateDelegation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}
	var req DelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "start_date and end_date are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.badRequest(c, "dates must use the "+dateLayout+" format")
		return
	}

	delegation, err := h.services.Delegation.Update(c.Request.Context(), actorID(c), id, in)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, delegation)
}

// DeleteDelegation handles DELETE /api/delegations/:id
func (h *Handlers) DeleteDelegation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	if err := h.services.Delegation.Delete(c.Request.Context(), actorID(c), id); err != nil {
		h.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitDelegation handles POST /api/delegations/:id/submit
func (h *Handlers) SubmitDelegation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	delegation, err := h.services.Delegation.Submit(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, delegation)
}

// AddExpense handles POST /api/delegations/:id/expenses
func (h *Handlers) AddExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "amount, currency_id and category_id are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.badRequest(c, "invalid amount or date")
		return
	}

	expense, err := h.services.Expense.Add(c.Request.Context(), actorID(c), id, in)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusCreated, expense)
}

// UpdateExpense handles PUT /api/delegations/:id/expenses/:expenseID
func (h *Handlers) UpdateExpense(c *gin.Context) {
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
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "amount, currency_id and category_id are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.badRequest(c, "invalid amount or date")
		return
	}

	expense, err := h.services.Expense.Update(c.Request.Context(), actorID(c), id, expenseID, in)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/delegations/:id/expenses/:expenseID
func (h *Handlers) DeleteExpense(c *gin.Context) {
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

	if err := h.services.Expense.Delete(c.Request.Context(), actorID(c), id, expenseID); err != nil {
		h.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddDocument handles POST /api/delegations/:id/documents
func (h *Handlers) AddDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "filename and file_path are required")
		return
	}

	doc, err := h.services.Delegation.AddDocument(c.Request.Context(), actorID(c), id, service.DocumentInput{
		ExpenseID:   req.ExpenseID,
		Filename:    req.Filename,
		FilePath:    req.FilePath,
		FileType:    req.FileType,
		Description: req.Description,
	})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusCreated, doc)
}

// DeleteDocument handles DELETE /api/delegations/:id/documents/:documentID
func (h *Handlers) DeleteDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}
	documentID, ok := pathID(c, "documentID")
	if !ok {
		h.badRequest(c, "invalid document ID")
		return
	}

	if err := h.services.Delegation.DeleteDocument(c.Request.Context(), actorID(c), id, documentID); err != nil {
		h.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SettlementResponse carries the exported settlement file location
type SettlementResponse struct {
	DelegationID int64  `json:"delegation_id"`
	Path         string `json:"path"`
	ExportedAt   string `json:"exported_at"`
}

// ExportSettlement handles POST /api/delegations/:id/settlement
func (h *Handlers) ExportSettlement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	path, err := h.services.Settlement.Export(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, SettlementResponse{
		DelegationID: id,
		Path:         path,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCurrencies handles GET /api/currencies
func (h *Handlers) ListCurrencies(c *gin.Context) {
	currencies, err := h.services.Reference.ListCurrencies(c.Request.Context())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, currencies)
}

// ListCategories handles GET /api/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.services.Reference.ListCategories(c.Request.Context())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusOK, categories)
}

// maxUploadSize caps uploaded document files at 10 MiB
const maxUploadSize = 10 << 20

// UploadDocument handles POST /api/delegations/:id/documents/upload.
// Expects a multipart form with a "file" part and optional "expense_id"
// and "description" fields.
func (h *Handlers) UploadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid delegation ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		h.badRequest(c, "file exceeds the 10 MB limit")
		return
	}

	var expenseID *int64
	if raw := c.PostForm("expense_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			h.badRequest(c, "invalid expense_id")
			return
		}
		expenseID = &parsed
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.respondErr(c, err)
		return
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	filename := storage.SanitizeFilename(fileHeader.Filename)
	relPath := fmt.Sprintf("delegation_%d/%s", id, filename)
	if err := h.services.Storage.Save(c.Request.Context(), relPath, content); err != nil {
		h.respondErr(c, err)
		return
	}

	doc, err := h.services.Delegation.AddDocument(c.Request.Context(), actorID(c), id, service.DocumentInput{
		ExpenseID:   expenseID,
		Filename:    filename,
		FilePath:    relPath,
		FileType:    strings.TrimPrefix(filepath.Ext(filename), "."),
		Description: c.PostForm("description"),
	})
	if err != nil {
		// the metadata was rejected, remove the orphaned file
		if rmErr := h.services.Storage.Delete(c.Request.Context(), relPath); rmErr != nil {
			h.logger.Error("failed to remove orphaned upload", "path", relPath, "error", rmErr)
		}
		h.respondErr(c, err)
		return
	}
	h.respond(c, http.StatusCreated, doc)
}
