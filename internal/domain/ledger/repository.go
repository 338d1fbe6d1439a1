package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationFilter defines filtering options for obligation queries
type ObligationFilter struct {
	shared.Filter
	Direction      *Direction
	Status         *Status
	CounterpartyID *uuid.UUID
	AccountID      *uuid.UUID
	CostCenterID   *uuid.UUID
	DocumentNumber string
	IssueDateFrom  *time.Time
	IssueDateTo    *time.Time
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
}

// InstallmentFilter defines filtering options for installment queries.
// Header attributes are matched through the owning obligation.
type InstallmentFilter struct {
	shared.Filter
	ObligationID       *uuid.UUID
	Status             *Status
	Direction          *Direction
	CounterpartyID     *uuid.UUID
	AccountID          *uuid.UUID
	CostCenterID       *uuid.UUID
	DueDateFrom        *time.Time
	DueDateTo          *time.Time
	SettlementDateFrom *time.Time
	SettlementDateTo   *time.Time
}

// ObligationSummary is one direction/status bucket of obligation totals
type ObligationSummary struct {
	Direction   Direction       `json:"direction"`
	Status      Status          `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// ObligationRepository persists obligation headers
type ObligationRepository interface {
	// FindByID returns the obligation with its installments ordered by sequence
	FindByID(ctx context.Context, id uuid.UUID) (*Obligation, error)

	// FindByIDForUpdate returns the header only, holding a row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Obligation, error)

	FindAll(ctx context.Context, filter ObligationFilter) ([]Obligation, error)
	Count(ctx context.Context, filter ObligationFilter) (int64, error)
	Summarize(ctx context.Context, filter ObligationFilter) ([]ObligationSummary, error)

	// Create inserts the header and all of its installments
	Create(ctx context.Context, obligation *Obligation) error

	// SaveWithLock updates the header's derived columns if the stored version
	// is the one the aggregate was loaded with
	SaveWithLock(ctx context.Context, obligation *Obligation) error

	// GenerateDocumentNumber returns the next AP-/AR-YYYYMMDD-NNNNN number
	GenerateDocumentNumber(ctx context.Context, direction Direction, issueDate time.Time) (string, error)
}

// InstallmentRepository persists installments
type InstallmentRepository interface {
	// FindByID returns an installment scoped to its obligation
	FindByID(ctx context.Context, obligationID, id uuid.UUID) (*Installment, error)

	// FindByObligationID returns the full set ordered by sequence number
	FindByObligationID(ctx context.Context, obligationID uuid.UUID) ([]Installment, error)

	FindAll(ctx context.Context, filter InstallmentFilter) ([]Installment, error)
	Count(ctx context.Context, filter InstallmentFilter) (int64, error)

	// SaveSettlement writes the settlement columns of an installment that is
	// still OPEN in storage
	SaveSettlement(ctx context.Context, installment *Installment) error
}
