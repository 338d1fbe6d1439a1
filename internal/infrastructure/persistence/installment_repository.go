package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInstallmentRepository implements ledger.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment that belongs to the given obligation
func (r *GormInstallmentRepository) FindByID(ctx context.Context, obligationID, id uuid.UUID) (*ledger.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND obligation_id = ?", id, obligationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrInstallmentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByObligationID returns every installment of an obligation by sequence
func (r *GormInstallmentRepository) FindByObligationID(ctx context.Context, obligationID uuid.UUID) ([]ledger.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("sequence_number ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(installmentModels), nil
}

// FindAll finds installments matching the filter
func (r *GormInstallmentRepository) FindAll(ctx context.Context, filter ledger.InstallmentFilter) ([]ledger.Installment, error) {
	var installmentModels []models.InstallmentModel
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{})
	query = applyInstallmentFilter(query, filter)
	query = applyPagination(query, filter.Filter, InstallmentSortFields, "due_date", installmentTable)

	if err := query.Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(installmentModels), nil
}

// Count counts installments matching the filter
func (r *GormInstallmentRepository) Count(ctx context.Context, filter ledger.InstallmentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{})
	query = applyInstallmentFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveSettlement writes the settlement columns of an installment.
// The update only matches rows still OPEN, so a settled installment is
// never overwritten.
func (r *GormInstallmentRepository) SaveSettlement(ctx context.Context, installment *ledger.Installment) error {
	result := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("id = ? AND obligation_id = ? AND status = ?", installment.ID, installment.ObligationID, ledger.StatusOpen).
		Updates(map[string]interface{}{
			"status":          installment.Status,
			"settlement_date": installment.SettlementDate,
			"paid_amount":     installment.PaidAmount,
			"interest":        installment.Interest,
			"discount":        installment.Discount,
			"note":            installment.Note,
			"updated_at":      installment.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrInstallmentAlreadySettled
	}
	return nil
}

func installmentsToDomain(rows []models.InstallmentModel) []ledger.Installment {
	installments := make([]ledger.Installment, len(rows))
	for i := range rows {
		installments[i] = *rows[i].ToDomain()
	}
	return installments
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ ledger.InstallmentRepository = (*GormInstallmentRepository)(nil)
