package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeObligation is the aggregate type carried by ledger events
const AggregateTypeObligation = "Obligation"

// Obligation is a payable or receivable header split into installments.
// PaidAmount, Status and SettlementDate are derived from the installment rows
// by Recompute and are never adjusted in place.
type Obligation struct {
	shared.BaseAggregateRoot
	Direction      Direction       `json:"direction"`
	Description    string          `json:"description"`
	CounterpartyID uuid.UUID       `json:"counterparty_id"`
	DocumentNumber string          `json:"document_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	SettlementDate *time.Time      `json:"settlement_date"`
	Status         Status          `json:"status"`
	AccountID      uuid.UUID       `json:"account_id"`
	CostCenterID   *uuid.UUID      `json:"cost_center_id"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	Installments   []Installment   `json:"installments"`
}

// NewObligationInput carries everything needed to open an obligation
type NewObligationInput struct {
	Direction        Direction
	Description      string
	CounterpartyID   uuid.UUID
	DocumentNumber   string
	TotalAmount      decimal.Decimal
	IssueDate        time.Time
	DueDate          time.Time
	InstallmentCount int
	IntervalDays     int
	AccountID        uuid.UUID
	CostCenterID     *uuid.UUID
	CreatedBy        uuid.UUID
}

func (in *NewObligationInput) applyDefaults() {
	if in.InstallmentCount == 0 {
		in.InstallmentCount = DefaultInstallmentCount
	}
	if in.IntervalDays == 0 {
		in.IntervalDays = DefaultIntervalDays
	}
	in.Description = strings.TrimSpace(in.Description)
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
}

func (in NewObligationInput) validate() error {
	if !in.Direction.IsValid() {
		return shared.NewDomainError(CodeInvalidDirection, fmt.Sprintf("Invalid direction: %s", in.Direction))
	}
	if in.Description == "" {
		return shared.NewDomainError(CodeInvalidDescription, "Description cannot be empty")
	}
	if len(in.Description) > 500 {
		return shared.NewDomainError(CodeInvalidDescription, "Description cannot exceed 500 characters")
	}
	if in.DocumentNumber == "" {
		return shared.NewDomainError(CodeInvalidDocumentNumber, "Document number cannot be empty")
	}
	if len(in.DocumentNumber) > 50 {
		return shared.NewDomainError(CodeInvalidDocumentNumber, "Document number cannot exceed 50 characters")
	}
	if in.CounterpartyID == uuid.Nil {
		return shared.NewDomainError(CodeInvalidCounterparty, "Counterparty ID cannot be empty")
	}
	if in.AccountID == uuid.Nil {
		return shared.NewDomainError(CodeInvalidAccount, "Account ID cannot be empty")
	}
	if in.CreatedBy == uuid.Nil {
		return shared.NewDomainError(CodeInvalidCreator, "Creator ID cannot be empty")
	}
	if in.IssueDate.IsZero() {
		return shared.NewDomainError(CodeInvalidDate, "Issue date is required")
	}
	if in.DueDate.IsZero() {
		return shared.NewDomainError(CodeInvalidDate, "Due date is required")
	}
	if NormalizeDate(in.DueDate).Before(NormalizeDate(in.IssueDate)) {
		return shared.NewDomainError(CodeInvalidDate, "Due date cannot be before issue date")
	}
	if in.InstallmentCount < 1 || in.InstallmentCount > MaxInstallmentCount {
		return shared.NewDomainError(CodeInvalidInstallmentCount,
			fmt.Sprintf("Installment count must be between 1 and %d", MaxInstallmentCount))
	}
	if in.InstallmentCount > 1 && in.IntervalDays < 1 {
		return shared.NewDomainError(CodeInvalidIntervalDays, "Interval days must be at least 1")
	}
	return nil
}

// NewObligation validates the input, computes the installment schedule and
// amount split, and returns the header with its installments.
// Nothing is persisted here.
func NewObligation(in NewObligationInput) (*Obligation, error) {
	in.applyDefaults()
	if err := in.validate(); err != nil {
		return nil, err
	}

	amounts, err := AllocateAmounts(in.TotalAmount, in.InstallmentCount)
	if err != nil {
		return nil, err
	}
	dueDates := ScheduleDueDates(in.DueDate, in.InstallmentCount, in.IntervalDays)

	o := &Obligation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Direction:         in.Direction,
		Description:       in.Description,
		CounterpartyID:    in.CounterpartyID,
		DocumentNumber:    in.DocumentNumber,
		TotalAmount:       in.TotalAmount,
		IssueDate:         NormalizeDate(in.IssueDate),
		DueDate:           NormalizeDate(in.DueDate),
		AccountID:         in.AccountID,
		CostCenterID:      in.CostCenterID,
		CreatedBy:         in.CreatedBy,
	}

	installments := make([]Installment, in.InstallmentCount)
	for i := range installments {
		installments[i] = newInstallment(o.ID, i+1, amounts[i], dueDates[i])
	}
	o.Recompute(installments, time.Time{})

	o.AddDomainEvent(NewObligationCreatedEvent(o))

	return o, nil
}

// Recompute rebuilds the header aggregate from the authoritative installment
// set. settledOn becomes the settlement date when the result is SETTLED.
func (o *Obligation) Recompute(installments []Installment, settledOn time.Time) {
	paid := decimal.Zero
	statuses := make([]Status, len(installments))
	for i, inst := range installments {
		paid = paid.Add(inst.PaidAmount)
		statuses[i] = inst.Status
	}

	o.Installments = installments
	o.PaidAmount = paid
	o.Status = DeriveStatus(statuses)

	if o.Status == StatusSettled && !settledOn.IsZero() {
		date := NormalizeDate(settledOn)
		o.SettlementDate = &date
	} else if o.Status != StatusSettled {
		o.SettlementDate = nil
	}
}

// ApplySettlement folds a freshly settled installment into the header.
// current must be the full installment set re-read after the settlement was
// written.
func (o *Obligation) ApplySettlement(settled *Installment, current []Installment) error {
	if settled.ObligationID != o.ID {
		return shared.NewDomainError(CodeInstallmentMismatch, "Installment does not belong to this obligation")
	}
	if !settled.IsSettled() || settled.SettlementDate == nil {
		return shared.NewDomainError(CodeInvalidSettlementRequest, "Installment has not been settled")
	}

	wasSettled := o.Status == StatusSettled
	o.Recompute(current, *settled.SettlementDate)
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewInstallmentSettledEvent(o, settled))
	if !wasSettled && o.Status == StatusSettled {
		o.AddDomainEvent(NewObligationSettledEvent(o))
	}

	return nil
}

// FindInstallment returns the installment with the given ID, if loaded
func (o *Obligation) FindInstallment(id uuid.UUID) *Installment {
	for i := range o.Installments {
		if o.Installments[i].ID == id {
			return &o.Installments[i]
		}
	}
	return nil
}

// OutstandingAmount returns what is still to be paid, never below zero
func (o *Obligation) OutstandingAmount() decimal.Decimal {
	out := o.TotalAmount.Sub(o.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// CheckInvariants verifies that the header agrees with its installments
func (o *Obligation) CheckInvariants() error {
	if len(o.Installments) == 0 {
		return fmt.Errorf("obligation %s has no installments", o.ID)
	}

	total := decimal.Zero
	paid := decimal.Zero
	statuses := make([]Status, len(o.Installments))
	for i, inst := range o.Installments {
		if inst.SequenceNumber != i+1 {
			return fmt.Errorf("installment sequence %d at position %d", inst.SequenceNumber, i+1)
		}
		total = total.Add(inst.Amount)
		paid = paid.Add(inst.PaidAmount)
		statuses[i] = inst.Status
	}

	if !total.Equal(o.TotalAmount) {
		return fmt.Errorf("installment amounts sum to %s, header total is %s", total, o.TotalAmount)
	}
	if !paid.Equal(o.PaidAmount) {
		return fmt.Errorf("installment payments sum to %s, header paid is %s", paid, o.PaidAmount)
	}
	if derived := DeriveStatus(statuses); derived != o.Status {
		return fmt.Errorf("derived status %s, header status is %s", derived, o.Status)
	}
	if (o.Status == StatusSettled) != (o.SettlementDate != nil) {
		return fmt.Errorf("settlement date does not match status %s", o.Status)
	}
	return nil
}
