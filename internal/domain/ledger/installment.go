package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one scheduled fractional payment of an obligation.
// Amount is fixed at creation; settlement fills the payment columns once.
type Installment struct {
	shared.BaseEntity
	ObligationID   uuid.UUID       `json:"obligation_id"`
	SequenceNumber int             `json:"sequence_number"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
	SettlementDate *time.Time      `json:"settlement_date"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Interest       decimal.Decimal `json:"interest"`
	Discount       decimal.Decimal `json:"discount"`
	Status         Status          `json:"status"`
	Note           string          `json:"note"`
}

// Settlement is a payment event recorded against one installment
type Settlement struct {
	SettlementDate time.Time
	PaidAmount     decimal.Decimal
	Interest       decimal.Decimal
	Discount       decimal.Decimal
	Note           string
}

// Validate checks the monetary and date fields of the settlement
func (s Settlement) Validate() error {
	if s.SettlementDate.IsZero() {
		return shared.NewDomainError(CodeInvalidDate, "Settlement date is required")
	}
	if s.PaidAmount.IsNegative() {
		return shared.NewDomainError(CodeInvalidAmount, "Paid amount cannot be negative")
	}
	if s.Interest.IsNegative() {
		return shared.NewDomainError(CodeInvalidAmount, "Interest cannot be negative")
	}
	if s.Discount.IsNegative() {
		return shared.NewDomainError(CodeInvalidAmount, "Discount cannot be negative")
	}
	for _, v := range []decimal.Decimal{s.PaidAmount, s.Interest, s.Discount} {
		if !hasCurrencyPrecision(v) {
			return shared.NewDomainError(CodeInvalidAmount, "Amounts cannot have more than 2 decimal places")
		}
	}
	if len(s.Note) > 500 {
		return shared.NewDomainError(CodeInvalidSettlementRequest, "Note cannot exceed 500 characters")
	}
	return nil
}

func newInstallment(obligationID uuid.UUID, seq int, amount decimal.Decimal, dueDate time.Time) Installment {
	return Installment{
		BaseEntity:     shared.NewBaseEntity(),
		ObligationID:   obligationID,
		SequenceNumber: seq,
		Amount:         amount,
		DueDate:        dueDate,
		PaidAmount:     decimal.Zero,
		Interest:       decimal.Zero,
		Discount:       decimal.Zero,
		Status:         StatusOpen,
	}
}

// Settle marks the installment SETTLED with the payment details.
// A settled installment cannot be settled again.
func (i *Installment) Settle(s Settlement) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if i.Status.IsTerminal() {
		return ErrInstallmentAlreadySettled
	}

	date := NormalizeDate(s.SettlementDate)
	i.Status = StatusSettled
	i.SettlementDate = &date
	i.PaidAmount = s.PaidAmount
	i.Interest = s.Interest
	i.Discount = s.Discount
	i.Note = s.Note
	i.Touch()

	return nil
}

// IsSettled returns true if the installment has been settled
func (i *Installment) IsSettled() bool {
	return i.Status == StatusSettled
}

// IsOverdue reports whether an open installment is past its due date on asOf
func (i *Installment) IsOverdue(asOf time.Time) bool {
	return i.Status == StatusOpen && i.DueDate.Before(NormalizeDate(asOf))
}
