package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormObligationRepository implements ledger.ObligationRepository using GORM
type GormObligationRepository struct {
	db *gorm.DB
}

// NewGormObligationRepository creates a new GormObligationRepository
func NewGormObligationRepository(db *gorm.DB) *GormObligationRepository {
	return &GormObligationRepository{db: db}
}

func orderedInstallments(db *gorm.DB) *gorm.DB {
	return db.Order("sequence_number ASC")
}

// FindByID finds an obligation by its ID, installments included
func (r *GormObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.db.WithContext(ctx).
		Preload("Installments", orderedInstallments).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrObligationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the header with SELECT ... FOR UPDATE.
// The row stays locked until the surrounding transaction commits or rolls back.
func (r *GormObligationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrObligationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds obligations matching the filter, installments included
func (r *GormObligationRepository) FindAll(ctx context.Context, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	var obligationModels []models.ObligationModel
	query := r.db.WithContext(ctx).Model(&models.ObligationModel{}).
		Preload("Installments", orderedInstallments)
	query = applyObligationFilter(query, filter)
	query = applyPagination(query, filter.Filter, ObligationSortFields, "created_at")

	if err := query.Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	obligations := make([]ledger.Obligation, len(obligationModels))
	for i := range obligationModels {
		obligations[i] = *obligationModels[i].ToDomain()
	}
	return obligations, nil
}

// Count counts obligations matching the filter
func (r *GormObligationRepository) Count(ctx context.Context, filter ledger.ObligationFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ObligationModel{})
	query = applyObligationFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize totals obligations matching the filter by direction and status
func (r *GormObligationRepository) Summarize(ctx context.Context, filter ledger.ObligationFilter) ([]ledger.ObligationSummary, error) {
	var rows []struct {
		Direction   ledger.Direction
		Status      ledger.Status
		Count       int64
		TotalAmount decimal.Decimal
		PaidAmount  decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.ObligationModel{}).
		Select("direction, status, COUNT(*) AS count, " +
			"COALESCE(SUM(total_amount), 0) AS total_amount, " +
			"COALESCE(SUM(paid_amount), 0) AS paid_amount")
	query = applyObligationFilter(query, filter)

	if err := query.Group("direction, status").Order("direction, status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]ledger.ObligationSummary, len(rows))
	for i, row := range rows {
		summaries[i] = ledger.ObligationSummary{
			Direction:   row.Direction,
			Status:      row.Status,
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
			PaidAmount:  row.PaidAmount,
		}
	}
	return summaries, nil
}

// Create inserts the header and then its installments.
// Callers run it inside a transaction so both writes commit together.
func (r *GormObligationRepository) Create(ctx context.Context, obligation *ledger.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	db := r.db.WithContext(ctx)

	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert obligation: %w", err)
	}
	if len(model.Installments) == 0 {
		return nil
	}
	if err := db.Create(&model.Installments).Error; err != nil {
		return fmt.Errorf("failed to insert installments: %w", err)
	}
	return nil
}

// SaveWithLock writes the derived header columns with optimistic locking.
// The aggregate version must already be incremented.
func (r *GormObligationRepository) SaveWithLock(ctx context.Context, obligation *ledger.Obligation) error {
	result := r.db.WithContext(ctx).
		Model(&models.ObligationModel{}).
		Where("id = ? AND version = ?", obligation.ID, obligation.Version-1).
		Updates(map[string]interface{}{
			"paid_amount":     obligation.PaidAmount,
			"status":          obligation.Status,
			"settlement_date": obligation.SettlementDate,
			"version":         obligation.Version,
			"updated_at":      obligation.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateDocumentNumber generates the next document number for the issue date.
// Format: AP-YYYYMMDD-XXXXX for payables, AR-YYYYMMDD-XXXXX for receivables
func (r *GormObligationRepository) GenerateDocumentNumber(ctx context.Context, direction ledger.Direction, issueDate time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", direction.DocumentPrefix(), issueDate.Format("20060102"))

	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&models.ObligationModel{}).
		Where("direction = ? AND document_number LIKE ?", direction, prefix+"%").
		Order("document_number DESC").
		Limit(1).
		Pluck("document_number", &numbers).Error; err != nil {
		return "", err
	}

	var nextNum int
	if len(numbers) > 0 {
		parts := strings.Split(numbers[0], "-")
		if len(parts) == 3 {
			_, _ = fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// Ensure GormObligationRepository implements ObligationRepository
var _ ledger.ObligationRepository = (*GormObligationRepository)(nil)
