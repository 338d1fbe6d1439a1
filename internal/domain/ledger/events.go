package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types raised by the Obligation aggregate
const (
	EventTypeObligationCreated  = "ObligationCreated"
	EventTypeInstallmentSettled = "InstallmentSettled"
	EventTypeObligationSettled  = "ObligationSettled"
)

// ObligationCreatedEvent is raised when an obligation and its installments are opened
type ObligationCreatedEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID       `json:"obligation_id"`
	Direction        Direction       `json:"direction"`
	DocumentNumber   string          `json:"document_number"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	DueDate          time.Time       `json:"due_date"`
}

// NewObligationCreatedEvent creates a new ObligationCreatedEvent
func NewObligationCreatedEvent(o *Obligation) *ObligationCreatedEvent {
	return &ObligationCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeObligationCreated, AggregateTypeObligation, o.ID),
		ObligationID:     o.ID,
		Direction:        o.Direction,
		DocumentNumber:   o.DocumentNumber,
		CounterpartyID:   o.CounterpartyID,
		TotalAmount:      o.TotalAmount,
		InstallmentCount: len(o.Installments),
		DueDate:          o.DueDate,
	}
}

// InstallmentSettledEvent is raised for every settlement ("baixa")
type InstallmentSettledEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID       `json:"obligation_id"`
	InstallmentID    uuid.UUID       `json:"installment_id"`
	Direction        Direction       `json:"direction"`
	SequenceNumber   int             `json:"sequence_number"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	Interest         decimal.Decimal `json:"interest"`
	Discount         decimal.Decimal `json:"discount"`
	SettlementDate   time.Time       `json:"settlement_date"`
	ObligationPaid   decimal.Decimal `json:"obligation_paid_amount"`
	ObligationStatus Status          `json:"obligation_status"`
}

// NewInstallmentSettledEvent creates a new InstallmentSettledEvent
func NewInstallmentSettledEvent(o *Obligation, inst *Installment) *InstallmentSettledEvent {
	var settledOn time.Time
	if inst.SettlementDate != nil {
		settledOn = *inst.SettlementDate
	}
	return &InstallmentSettledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeInstallmentSettled, AggregateTypeObligation, o.ID),
		ObligationID:     o.ID,
		InstallmentID:    inst.ID,
		Direction:        o.Direction,
		SequenceNumber:   inst.SequenceNumber,
		PaidAmount:       inst.PaidAmount,
		Interest:         inst.Interest,
		Discount:         inst.Discount,
		SettlementDate:   settledOn,
		ObligationPaid:   o.PaidAmount,
		ObligationStatus: o.Status,
	}
}

// ObligationSettledEvent is raised when the last open installment settles
type ObligationSettledEvent struct {
	shared.BaseDomainEvent
	ObligationID   uuid.UUID       `json:"obligation_id"`
	Direction      Direction       `json:"direction"`
	DocumentNumber string          `json:"document_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	SettlementDate time.Time       `json:"settlement_date"`
}

// NewObligationSettledEvent creates a new ObligationSettledEvent
func NewObligationSettledEvent(o *Obligation) *ObligationSettledEvent {
	var settledOn time.Time
	if o.SettlementDate != nil {
		settledOn = *o.SettlementDate
	}
	return &ObligationSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeObligationSettled, AggregateTypeObligation, o.ID),
		ObligationID:    o.ID,
		Direction:       o.Direction,
		DocumentNumber:  o.DocumentNumber,
		TotalAmount:     o.TotalAmount,
		PaidAmount:      o.PaidAmount,
		SettlementDate:  settledOn,
	}
}
