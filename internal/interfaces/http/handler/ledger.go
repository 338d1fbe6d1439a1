package handler

import (
	"context"
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// IdempotencyKeyHeader lets a caller make a settle request safe to retry
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength bounds the header value
	MaxIdempotencyKeyLength = 128

	dateLayout = "2006-01-02"
)

// ObligationService is the application service behind the ledger endpoints
type ObligationService interface {
	CreateObligation(ctx context.Context, req ledgerapp.CreateObligationRequest) (*ledgerapp.ObligationResponse, error)
	SettleInstallment(ctx context.Context, req ledgerapp.SettleInstallmentRequest) (*ledgerapp.ObligationResponse, error)
	GetObligation(ctx context.Context, id uuid.UUID) (*ledgerapp.ObligationResponse, error)
	ListObligations(ctx context.Context, filter ledgerapp.ObligationListFilter) (*shared.Paginated[ledgerapp.ObligationResponse], error)
	ListInstallments(ctx context.Context, filter ledgerapp.InstallmentListFilter) (*shared.Paginated[ledgerapp.InstallmentResponse], error)
	Summarize(ctx context.Context, filter ledgerapp.ObligationListFilter) (*ledgerapp.SummaryResponse, error)
}

// LedgerHandler handles obligation and installment endpoints
type LedgerHandler struct {
	BaseHandler
	service ObligationService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service ObligationService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// CreateObligationRequest represents a request to open an obligation
// @Description Request body for creating an obligation and its installments
type CreateObligationRequest struct {
	Direction        string          `json:"direction" binding:"required" example:"PAYABLE" enums:"PAYABLE,RECEIVABLE"`
	Description      string          `json:"description" binding:"required,max=500" example:"Office rent Q1"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id" binding:"required" swaggertype:"string" format:"uuid"`
	DocumentNumber   string          `json:"document_number" binding:"omitempty,max=50" example:"INV-2024-001"`
	TotalAmount      decimal.Decimal `json:"total_amount" binding:"dgt0" swaggertype:"string" example:"1000.00"`
	IssueDate        string          `json:"issue_date" binding:"required,datetime=2006-01-02" example:"2024-01-01"`
	DueDate          string          `json:"due_date" binding:"required,datetime=2006-01-02" example:"2024-01-31"`
	InstallmentCount int             `json:"installment_count" binding:"omitempty,min=1,max=360" example:"3"`
	IntervalDays     int             `json:"interval_days" binding:"omitempty,min=1" example:"30"`
	AccountID        uuid.UUID       `json:"account_id" binding:"required" swaggertype:"string" format:"uuid"`
	CostCenterID     *uuid.UUID      `json:"cost_center_id" swaggertype:"string" format:"uuid"`
	CreatedBy        uuid.UUID       `json:"created_by" binding:"required" swaggertype:"string" format:"uuid"`
}

// SettleInstallmentRequest represents a settlement (baixa) of one installment
// @Description Request body for settling an installment
type SettleInstallmentRequest struct {
	SettlementDate string          `json:"settlement_date" binding:"required,datetime=2006-01-02" example:"2024-01-31"`
	PaidAmount     decimal.Decimal `json:"paid_amount" binding:"dgte0" swaggertype:"string" example:"333.33"`
	Interest       decimal.Decimal `json:"interest" binding:"dgte0" swaggertype:"string" example:"0"`
	Discount       decimal.Decimal `json:"discount" binding:"dgte0" swaggertype:"string" example:"0"`
	Note           string          `json:"note" binding:"max=500" example:"Paid by wire transfer"`
}

// ObligationQuery holds the query string of obligation list and summary endpoints
type ObligationQuery struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Direction      string `form:"direction"`
	Status         string `form:"status"`
	CounterpartyID string `form:"counterparty_id" binding:"omitempty,uuid"`
	AccountID      string `form:"account_id" binding:"omitempty,uuid"`
	CostCenterID   string `form:"cost_center_id" binding:"omitempty,uuid"`
	DocumentNumber string `form:"document_number"`
	IssueDateFrom  string `form:"issue_date_from" binding:"omitempty,datetime=2006-01-02"`
	IssueDateTo    string `form:"issue_date_to" binding:"omitempty,datetime=2006-01-02"`
	DueDateFrom    string `form:"due_date_from" binding:"omitempty,datetime=2006-01-02"`
	DueDateTo      string `form:"due_date_to" binding:"omitempty,datetime=2006-01-02"`
}

// InstallmentQuery holds the query string of the installment list endpoint
type InstallmentQuery struct {
	Page               int    `form:"page" binding:"omitempty,min=1"`
	PageSize           int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy            string `form:"order_by"`
	OrderDir           string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	ObligationID       string `form:"obligation_id" binding:"omitempty,uuid"`
	Status             string `form:"status"`
	Direction          string `form:"direction"`
	CounterpartyID     string `form:"counterparty_id" binding:"omitempty,uuid"`
	AccountID          string `form:"account_id" binding:"omitempty,uuid"`
	CostCenterID       string `form:"cost_center_id" binding:"omitempty,uuid"`
	DueDateFrom        string `form:"due_date_from" binding:"omitempty,datetime=2006-01-02"`
	DueDateTo          string `form:"due_date_to" binding:"omitempty,datetime=2006-01-02"`
	SettlementDateFrom string `form:"settlement_date_from" binding:"omitempty,datetime=2006-01-02"`
	SettlementDateTo   string `form:"settlement_date_to" binding:"omitempty,datetime=2006-01-02"`
}

// CreateObligation godoc
// @ID           createLedgerObligation
// @Summary      Create an obligation
// @Description  Open a payable or receivable, split into installments with the remainder on the last one
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body CreateObligationRequest true "Obligation"
// @Success      201 {object} APIResponse[ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /ledger/obligations [post]
func (h *LedgerHandler) CreateObligation(c *gin.Context) {
	var req CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	// formats were checked by the binding tags
	issueDate, _ := time.Parse(dateLayout, req.IssueDate)
	dueDate, _ := time.Parse(dateLayout, req.DueDate)

	obligation, err := h.service.CreateObligation(c.Request.Context(), ledgerapp.CreateObligationRequest{
		Direction:        req.Direction,
		Description:      req.Description,
		CounterpartyID:   req.CounterpartyID,
		DocumentNumber:   req.DocumentNumber,
		TotalAmount:      req.TotalAmount,
		IssueDate:        issueDate,
		DueDate:          dueDate,
		InstallmentCount: req.InstallmentCount,
		IntervalDays:     req.IntervalDays,
		AccountID:        req.AccountID,
		CostCenterID:     req.CostCenterID,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, obligation)
}

// SettleInstallment godoc
// @ID           settleLedgerInstallment
// @Summary      Settle an installment
// @Description  Record the payment of one installment and recompute the obligation header
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Param        installment_id path string true "Installment ID" format(uuid)
// @Param        Idempotency-Key header string false "Key that makes the request safe to retry (max 128 chars)"
// @Param        request body SettleInstallmentRequest true "Settlement"
// @Success      200 {object} APIResponse[ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /ledger/obligations/{id}/installments/{installment_id}/settle [post]
func (h *LedgerHandler) SettleInstallment(c *gin.Context) {
	obligationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID")
		return
	}
	installmentID, err := uuid.Parse(c.Param("installment_id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}
	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
	if len(idempotencyKey) > MaxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key header is too long")
		return
	}

	var req SettleInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	settlementDate, _ := time.Parse(dateLayout, req.SettlementDate)

	obligation, err := h.service.SettleInstallment(c.Request.Context(), ledgerapp.SettleInstallmentRequest{
		ObligationID:   obligationID,
		InstallmentID:  installmentID,
		SettlementDate: settlementDate,
		PaidAmount:     req.PaidAmount,
		Interest:       req.Interest,
		Discount:       req.Discount,
		Note:           req.Note,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligation)
}

// GetObligation godoc
// @ID           getLedgerObligation
// @Summary      Get an obligation
// @Description  Retrieve an obligation header with its installments
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /ledger/obligations/{id} [get]
func (h *LedgerHandler) GetObligation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID")
		return
	}

	obligation, err := h.service.GetObligation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligation)
}

// ListObligations godoc
// @ID           listLedgerObligations
// @Summary      List obligations
// @Description  Retrieve a paginated list of obligations with filtering
// @Tags         ledger
// @Produce      json
// @Param        direction query string false "Direction" Enums(PAYABLE, RECEIVABLE)
// @Param        status query string false "Status" Enums(OPEN, SETTLED)
// @Param        counterparty_id query string false "Counterparty ID" format(uuid)
// @Param        account_id query string false "Account ID" format(uuid)
// @Param        cost_center_id query string false "Cost center ID" format(uuid)
// @Param        document_number query string false "Document number"
// @Param        issue_date_from query string false "Issue date from" format(date)
// @Param        issue_date_to query string false "Issue date to" format(date)
// @Param        due_date_from query string false "Due date from" format(date)
// @Param        due_date_to query string false "Due date to" format(date)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /ledger/obligations [get]
func (h *LedgerHandler) ListObligations(c *gin.Context) {
	filter, ok := h.bindObligationQuery(c)
	if !ok {
		return
	}

	page, err := h.service.ListObligations(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// SummarizeObligations godoc
// @ID           summarizeLedgerObligations
// @Summary      Summarize obligations
// @Description  Totals grouped by direction and status for the same filters as the list endpoint
// @Tags         ledger
// @Produce      json
// @Param        direction query string false "Direction" Enums(PAYABLE, RECEIVABLE)
// @Param        status query string false "Status" Enums(OPEN, SETTLED)
// @Param        counterparty_id query string false "Counterparty ID" format(uuid)
// @Param        account_id query string false "Account ID" format(uuid)
// @Param        cost_center_id query string false "Cost center ID" format(uuid)
// @Param        issue_date_from query string false "Issue date from" format(date)
// @Param        issue_date_to query string false "Issue date to" format(date)
// @Param        due_date_from query string false "Due date from" format(date)
// @Param        due_date_to query string false "Due date to" format(date)
// @Success      200 {object} APIResponse[ledgerapp.SummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /ledger/obligations/summary [get]
func (h *LedgerHandler) SummarizeObligations(c *gin.Context) {
	filter, ok := h.bindObligationQuery(c)
	if !ok {
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListInstallments godoc
// @ID           listLedgerInstallments
// @Summary      List installments
// @Description  Retrieve a paginated list of installments; header filters join the obligation
// @Tags         ledger
// @Produce      json
// @Param        obligation_id query string false "Obligation ID" format(uuid)
// @Param        status query string false "Status" Enums(OPEN, SETTLED)
// @Param        direction query string false "Direction" Enums(PAYABLE, RECEIVABLE)
// @Param        counterparty_id query string false "Counterparty ID" format(uuid)
// @Param        account_id query string false "Account ID" format(uuid)
// @Param        cost_center_id query string false "Cost center ID" format(uuid)
// @Param        due_date_from query string false "Due date from" format(date)
// @Param        due_date_to query string false "Due date to" format(date)
// @Param        settlement_date_from query string false "Settlement date from" format(date)
// @Param        settlement_date_to query string false "Settlement date to" format(date)
// @Param        order_by query string false "Sort field" default(due_date)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]ledgerapp.InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /ledger/installments [get]
func (h *LedgerHandler) ListInstallments(c *gin.Context) {
	var q InstallmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.service.ListInstallments(c.Request.Context(), ledgerapp.InstallmentListFilter{
		Filter:             shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: q.OrderBy, OrderDir: q.OrderDir},
		ObligationID:       parseOptionalUUID(q.ObligationID),
		Status:             q.Status,
		Direction:          q.Direction,
		CounterpartyID:     parseOptionalUUID(q.CounterpartyID),
		AccountID:          parseOptionalUUID(q.AccountID),
		CostCenterID:       parseOptionalUUID(q.CostCenterID),
		DueDateFrom:        parseOptionalDate(q.DueDateFrom),
		DueDateTo:          parseOptionalDate(q.DueDateTo),
		SettlementDateFrom: parseOptionalDate(q.SettlementDateFrom),
		SettlementDateTo:   parseOptionalDate(q.SettlementDateTo),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// RegisterRoutes mounts the ledger endpoints on a router group
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	obligations := rg.Group("/ledger/obligations")
	obligations.POST("", h.CreateObligation)
	obligations.GET("", h.ListObligations)
	obligations.GET("/summary", h.SummarizeObligations)
	obligations.GET("/:id", h.GetObligation)
	obligations.POST("/:id/installments/:installment_id/settle", h.SettleInstallment)

	rg.GET("/ledger/installments", h.ListInstallments)
}

func (h *LedgerHandler) bindObligationQuery(c *gin.Context) (ledgerapp.ObligationListFilter, bool) {
	var q ObligationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return ledgerapp.ObligationListFilter{}, false
	}

	return ledgerapp.ObligationListFilter{
		Filter:         shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: q.OrderBy, OrderDir: q.OrderDir},
		Direction:      q.Direction,
		Status:         q.Status,
		CounterpartyID: parseOptionalUUID(q.CounterpartyID),
		AccountID:      parseOptionalUUID(q.AccountID),
		CostCenterID:   parseOptionalUUID(q.CostCenterID),
		DocumentNumber: q.DocumentNumber,
		IssueDateFrom:  parseOptionalDate(q.IssueDateFrom),
		IssueDateTo:    parseOptionalDate(q.IssueDateTo),
		DueDateFrom:    parseOptionalDate(q.DueDateFrom),
		DueDateTo:      parseOptionalDate(q.DueDateTo),
	}, true
}

// parseOptionalUUID returns nil for an empty value; formats are validated by binding
func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
