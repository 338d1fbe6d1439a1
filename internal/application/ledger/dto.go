package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateObligationRequest carries the input of CreateObligation.
// An empty DocumentNumber is generated from the direction and issue date.
type CreateObligationRequest struct {
	Direction        string          `json:"direction"`
	Description      string          `json:"description"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	DocumentNumber   string          `json:"document_number"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	IssueDate        time.Time       `json:"issue_date"`
	DueDate          time.Time       `json:"due_date"`
	InstallmentCount int             `json:"installment_count"`
	IntervalDays     int             `json:"interval_days"`
	AccountID        uuid.UUID       `json:"account_id"`
	CostCenterID     *uuid.UUID      `json:"cost_center_id,omitempty"`
	CreatedBy        uuid.UUID       `json:"created_by"`
}

// SettleInstallmentRequest carries the input of SettleInstallment
type SettleInstallmentRequest struct {
	ObligationID   uuid.UUID       `json:"obligation_id"`
	InstallmentID  uuid.UUID       `json:"installment_id"`
	SettlementDate time.Time       `json:"settlement_date"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Interest       decimal.Decimal `json:"interest"`
	Discount       decimal.Decimal `json:"discount"`
	Note           string          `json:"note"`
	IdempotencyKey string          `json:"-"`
}

func (r SettleInstallmentRequest) settlement() ledger.Settlement {
	return ledger.Settlement{
		SettlementDate: r.SettlementDate,
		PaidAmount:     r.PaidAmount,
		Interest:       r.Interest,
		Discount:       r.Discount,
		Note:           r.Note,
	}
}

// ObligationResponse is the API view of an obligation header
type ObligationResponse struct {
	ID                uuid.UUID             `json:"id"`
	Direction         string                `json:"direction"`
	Description       string                `json:"description"`
	CounterpartyID    uuid.UUID             `json:"counterparty_id"`
	DocumentNumber    string                `json:"document_number"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	PaidAmount        decimal.Decimal       `json:"paid_amount"`
	OutstandingAmount decimal.Decimal       `json:"outstanding_amount"`
	IssueDate         string                `json:"issue_date"`
	DueDate           string                `json:"due_date"`
	SettlementDate    *string               `json:"settlement_date"`
	Status            string                `json:"status"`
	AccountID         uuid.UUID             `json:"account_id"`
	CostCenterID      *uuid.UUID            `json:"cost_center_id"`
	CreatedBy         uuid.UUID             `json:"created_by"`
	Installments      []InstallmentResponse `json:"installments,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int                   `json:"version"`
}

// InstallmentResponse is the API view of an installment
type InstallmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	ObligationID   uuid.UUID       `json:"obligation_id"`
	SequenceNumber int             `json:"sequence_number"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        string          `json:"due_date"`
	SettlementDate *string         `json:"settlement_date"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Interest       decimal.Decimal `json:"interest"`
	Discount       decimal.Decimal `json:"discount"`
	Status         string          `json:"status"`
	Overdue        bool            `json:"overdue"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SummaryResponse groups obligation totals by direction and status
type SummaryResponse struct {
	Buckets          []SummaryBucket `json:"buckets"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	OutstandingTotal decimal.Decimal `json:"outstanding_amount"`
}

// SummaryBucket is one direction/status group
type SummaryBucket struct {
	Direction         string          `json:"direction"`
	Status            string          `json:"status"`
	Count             int64           `json:"count"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// ObligationListFilter is the query input of ListObligations and Summarize
type ObligationListFilter struct {
	shared.Filter
	Direction      string
	Status         string
	CounterpartyID *uuid.UUID
	AccountID      *uuid.UUID
	CostCenterID   *uuid.UUID
	DocumentNumber string
	IssueDateFrom  *time.Time
	IssueDateTo    *time.Time
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
}

// InstallmentListFilter is the query input of ListInstallments
type InstallmentListFilter struct {
	shared.Filter
	ObligationID       *uuid.UUID
	Status             string
	Direction          string
	CounterpartyID     *uuid.UUID
	AccountID          *uuid.UUID
	CostCenterID       *uuid.UUID
	DueDateFrom        *time.Time
	DueDateTo          *time.Time
	SettlementDateFrom *time.Time
	SettlementDateTo   *time.Time
}

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ToObligationResponse maps a domain obligation, installments included
func ToObligationResponse(o *ledger.Obligation, asOf time.Time) ObligationResponse {
	resp := ObligationResponse{
		ID:                o.ID,
		Direction:         string(o.Direction),
		Description:       o.Description,
		CounterpartyID:    o.CounterpartyID,
		DocumentNumber:    o.DocumentNumber,
		TotalAmount:       o.TotalAmount,
		PaidAmount:        o.PaidAmount,
		OutstandingAmount: o.OutstandingAmount(),
		IssueDate:         o.IssueDate.Format(dateLayout),
		DueDate:           o.DueDate.Format(dateLayout),
		SettlementDate:    formatDate(o.SettlementDate),
		Status:            string(o.Status),
		AccountID:         o.AccountID,
		CostCenterID:      o.CostCenterID,
		CreatedBy:         o.CreatedBy,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
	if len(o.Installments) > 0 {
		resp.Installments = ToInstallmentResponses(o.Installments, asOf)
	}
	return resp
}

// ToInstallmentResponse maps a domain installment.
// Overdue is evaluated against asOf.
func ToInstallmentResponse(i *ledger.Installment, asOf time.Time) InstallmentResponse {
	return InstallmentResponse{
		ID:             i.ID,
		ObligationID:   i.ObligationID,
		SequenceNumber: i.SequenceNumber,
		Amount:         i.Amount,
		DueDate:        i.DueDate.Format(dateLayout),
		SettlementDate: formatDate(i.SettlementDate),
		PaidAmount:     i.PaidAmount,
		Interest:       i.Interest,
		Discount:       i.Discount,
		Status:         string(i.Status),
		Overdue:        i.IsOverdue(asOf),
		Note:           i.Note,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// ToInstallmentResponses maps a slice of installments
func ToInstallmentResponses(installments []ledger.Installment, asOf time.Time) []InstallmentResponse {
	out := make([]InstallmentResponse, len(installments))
	for i := range installments {
		out[i] = ToInstallmentResponse(&installments[i], asOf)
	}
	return out
}

func toSummaryResponse(rows []ledger.ObligationSummary) SummaryResponse {
	resp := SummaryResponse{
		Buckets:          make([]SummaryBucket, len(rows)),
		TotalAmount:      decimal.Zero,
		PaidAmount:       decimal.Zero,
		OutstandingTotal: decimal.Zero,
	}
	for i, row := range rows {
		outstanding := row.TotalAmount.Sub(row.PaidAmount)
		if outstanding.IsNegative() {
			outstanding = decimal.Zero
		}
		resp.Buckets[i] = SummaryBucket{
			Direction:         string(row.Direction),
			Status:            string(row.Status),
			Count:             row.Count,
			TotalAmount:       row.TotalAmount,
			PaidAmount:        row.PaidAmount,
			OutstandingAmount: outstanding,
		}
		resp.TotalAmount = resp.TotalAmount.Add(row.TotalAmount)
		resp.PaidAmount = resp.PaidAmount.Add(row.PaidAmount)
		resp.OutstandingTotal = resp.OutstandingTotal.Add(outstanding)
	}
	return resp
}
