package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledInstallment() *ledger.Installment {
	on := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	inst := &ledger.Installment{
		ObligationID:   uuid.New(),
		SequenceNumber: 2,
		Amount:         decimal.RequireFromString("333.33"),
		SettlementDate: &on,
		PaidAmount:     decimal.RequireFromString("340.00"),
		Interest:       decimal.RequireFromString("6.67"),
		Discount:       decimal.Zero,
		Status:         ledger.StatusSettled,
		Note:           "pix",
	}
	inst.ID = uuid.New()
	inst.UpdatedAt = on
	return inst
}

func TestGormInstallmentRepository_SaveSettlement(t *testing.T) {
	t.Run("only updates an open installment of the same obligation", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(gormDB)
		inst := settledInstallment()

		mock.ExpectExec(`UPDATE "obligation_installments" SET "discount"=\$1,"interest"=\$2,"note"=\$3,"paid_amount"=\$4,"settlement_date"=\$5,"status"=\$6,"updated_at"=\$7 WHERE id = \$8 AND obligation_id = \$9 AND status = \$10`).
			WithArgs(inst.Discount, inst.Interest, "pix", inst.PaidAmount, *inst.SettlementDate,
				ledger.StatusSettled, sqlmock.AnyArg(), inst.ID, inst.ObligationID, ledger.StatusOpen).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveSettlement(context.Background(), inst))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching open row means already settled", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(gormDB)

		mock.ExpectExec(`UPDATE "obligation_installments" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveSettlement(context.Background(), settledInstallment())
		assert.ErrorIs(t, err, ledger.ErrInstallmentAlreadySettled)
	})
}

func TestGormInstallmentRepository_FindByID_ScopedToObligation(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormInstallmentRepository(gormDB)
	obligationID, id := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "obligation_installments" WHERE id = \$1 AND obligation_id = \$2 ORDER BY .* LIMIT .*`).
		WithArgs(id, obligationID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), obligationID, id)
	assert.ErrorIs(t, err, ledger.ErrInstallmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInstallmentRepository_FindAll_JoinsHeaderOnlyWhenNeeded(t *testing.T) {
	t.Run("installment-only filter", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(gormDB)
		status := ledger.StatusOpen

		mock.ExpectQuery(`SELECT \* FROM "obligation_installments" WHERE obligation_installments\.status = \$1 ORDER BY obligation_installments\.due_date ASC LIMIT \$2`).
			WithArgs(status, 20).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		filter := ledger.InstallmentFilter{Status: &status}
		filter.Page, filter.PageSize, filter.OrderDir = 1, 20, "asc"
		_, err := repo.FindAll(context.Background(), filter)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("header filter joins obligations", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInstallmentRepository(gormDB)
		direction := ledger.DirectionPayable

		mock.ExpectQuery(`SELECT count\(\*\) FROM "obligation_installments" JOIN obligations ON obligations\.id = obligation_installments\.obligation_id WHERE obligations\.direction = \$1`).
			WithArgs(direction).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.Count(context.Background(), ledger.InstallmentFilter{Direction: &direction})
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
