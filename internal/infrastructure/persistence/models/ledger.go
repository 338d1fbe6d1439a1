package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationModel is the persistence model for the obligation header
type ObligationModel struct {
	AggregateModel
	Direction      ledger.Direction   `gorm:"type:varchar(20);not null;index:idx_obligation_direction_status,priority:1"`
	Description    string             `gorm:"type:varchar(500);not null"`
	CounterpartyID uuid.UUID          `gorm:"type:uuid;not null;index"`
	DocumentNumber string             `gorm:"type:varchar(50);not null;index"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PaidAmount     decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	IssueDate      time.Time          `gorm:"type:date;not null;index"`
	DueDate        time.Time          `gorm:"type:date;not null;index"`
	SettlementDate *time.Time         `gorm:"type:date"`
	Status         ledger.Status      `gorm:"type:varchar(20);not null;default:'OPEN';index:idx_obligation_direction_status,priority:2"`
	AccountID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	CostCenterID   *uuid.UUID         `gorm:"type:uuid;index"`
	CreatedBy      uuid.UUID          `gorm:"type:uuid;not null"`
	Installments   []InstallmentModel `gorm:"foreignKey:ObligationID;references:ID"`
}

// TableName returns the table name for GORM
func (ObligationModel) TableName() string {
	return "obligations"
}

// ToDomain converts the persistence model to a domain Obligation.
// Installments are mapped only if they were preloaded.
func (m *ObligationModel) ToDomain() *ledger.Obligation {
	o := &ledger.Obligation{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregateRoot(),
		Direction:         m.Direction,
		Description:       m.Description,
		CounterpartyID:    m.CounterpartyID,
		DocumentNumber:    m.DocumentNumber,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		SettlementDate:    m.SettlementDate,
		Status:            m.Status,
		AccountID:         m.AccountID,
		CostCenterID:      m.CostCenterID,
		CreatedBy:         m.CreatedBy,
	}
	if len(m.Installments) > 0 {
		o.Installments = make([]ledger.Installment, len(m.Installments))
		for i := range m.Installments {
			o.Installments[i] = *m.Installments[i].ToDomain()
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain Obligation,
// installments included.
func (m *ObligationModel) FromDomain(o *ledger.Obligation) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Direction = o.Direction
	m.Description = o.Description
	m.CounterpartyID = o.CounterpartyID
	m.DocumentNumber = o.DocumentNumber
	m.TotalAmount = o.TotalAmount
	m.PaidAmount = o.PaidAmount
	m.IssueDate = o.IssueDate
	m.DueDate = o.DueDate
	m.SettlementDate = o.SettlementDate
	m.Status = o.Status
	m.AccountID = o.AccountID
	m.CostCenterID = o.CostCenterID
	m.CreatedBy = o.CreatedBy

	m.Installments = make([]InstallmentModel, len(o.Installments))
	for i := range o.Installments {
		m.Installments[i].FromDomain(&o.Installments[i])
	}
}

// ObligationModelFromDomain creates a new persistence model from a domain Obligation
func ObligationModelFromDomain(o *ledger.Obligation) *ObligationModel {
	m := &ObligationModel{}
	m.FromDomain(o)
	return m
}

// InstallmentModel is the persistence model for one installment
type InstallmentModel struct {
	BaseModel
	ObligationID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_installment_obligation_seq,priority:1"`
	SequenceNumber int             `gorm:"not null;uniqueIndex:idx_installment_obligation_seq,priority:2"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DueDate        time.Time       `gorm:"type:date;not null;index"`
	SettlementDate *time.Time      `gorm:"type:date;index"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Interest       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status         ledger.Status   `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Note           string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "obligation_installments"
}

// ToDomain converts the persistence model to a domain Installment
func (m *InstallmentModel) ToDomain() *ledger.Installment {
	return &ledger.Installment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ObligationID:   m.ObligationID,
		SequenceNumber: m.SequenceNumber,
		Amount:         m.Amount,
		DueDate:        m.DueDate,
		SettlementDate: m.SettlementDate,
		PaidAmount:     m.PaidAmount,
		Interest:       m.Interest,
		Discount:       m.Discount,
		Status:         m.Status,
		Note:           m.Note,
	}
}

// FromDomain populates the persistence model from a domain Installment
func (m *InstallmentModel) FromDomain(i *ledger.Installment) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.ObligationID = i.ObligationID
	m.SequenceNumber = i.SequenceNumber
	m.Amount = i.Amount
	m.DueDate = i.DueDate
	m.SettlementDate = i.SettlementDate
	m.PaidAmount = i.PaidAmount
	m.Interest = i.Interest
	m.Discount = i.Discount
	m.Status = i.Status
	m.Note = i.Note
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment
func InstallmentModelFromDomain(i *ledger.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}
