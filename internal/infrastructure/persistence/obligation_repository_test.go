package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var obligationColumns = []string{
	"id", "created_at", "updated_at", "version", "direction", "description", "counterparty_id",
	"document_number", "total_amount", "paid_amount", "issue_date", "due_date", "settlement_date",
	"status", "account_id", "cost_center_id", "created_by",
}

func obligationRow(id uuid.UUID, version int) *sqlmock.Rows {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(obligationColumns).AddRow(
		id, now, now, version, "PAYABLE", "Office rent", uuid.New(),
		"AP-20260301-00001", "1000.00", "0.00", now, now.AddDate(0, 0, 30), nil,
		"OPEN", uuid.New(), nil, uuid.New(),
	)
}

func TestGormObligationRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the header row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "obligations" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(obligationRow(id, 3))

		o, err := repo.FindByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, o.ID)
		assert.Equal(t, 3, o.Version)
		assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(1000)))
		assert.Nil(t, o.SettlementDate)
		assert.Empty(t, o.Installments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to OBLIGATION_NOT_FOUND", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "obligations"`).
			WillReturnRows(sqlmock.NewRows(obligationColumns))

		_, err := repo.FindByIDForUpdate(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ledger.ErrObligationNotFound)
	})

	t.Run("propagates driver errors", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "obligations"`).WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByIDForUpdate(context.Background(), uuid.New())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ledger.ErrObligationNotFound)
	})
}

func TestGormObligationRepository_SaveWithLock(t *testing.T) {
	settledOn := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	newHeader := func() *ledger.Obligation {
		o := &ledger.Obligation{
			Status:         ledger.StatusSettled,
			PaidAmount:     decimal.RequireFromString("1000.00"),
			SettlementDate: &settledOn,
		}
		o.ID = uuid.New()
		o.Version = 4
		o.UpdatedAt = settledOn
		return o
	}

	t.Run("updates derived columns guarded by the previous version", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)
		o := newHeader()

		// map keys are written in sorted order
		mock.ExpectExec(`UPDATE "obligations" SET "paid_amount"=\$1,"settlement_date"=\$2,"status"=\$3,"updated_at"=\$4,"version"=\$5 WHERE id = \$6 AND version = \$7`).
			WithArgs(o.PaidAmount, settledOn, ledger.StatusSettled, sqlmock.AnyArg(), 4, o.ID, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns CONCURRENCY_CONFLICT when the version moved", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)

		mock.ExpectExec(`UPDATE "obligations" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), newHeader())
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("writes NULL settlement date when the header is open", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)
		o := newHeader()
		o.Status = ledger.StatusOpen
		o.SettlementDate = nil

		mock.ExpectExec(`UPDATE "obligations" SET`).
			WithArgs(o.PaidAmount, nil, ledger.StatusOpen, sqlmock.AnyArg(), 4, o.ID, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormObligationRepository_Count_FiltersAreParameterized(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormObligationRepository(gormDB)

	direction := ledger.DirectionReceivable
	status := ledger.StatusOpen
	counterparty := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "obligations" WHERE direction = \$1 AND status = \$2 AND counterparty_id = \$3 AND document_number = \$4`).
		WithArgs(direction, status, counterparty, "AR-1' OR '1'='1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.Count(context.Background(), ledger.ObligationFilter{
		Direction:      &direction,
		Status:         &status,
		CounterpartyID: &counterparty,
		DocumentNumber: "AR-1' OR '1'='1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormObligationRepository_GenerateDocumentNumber(t *testing.T) {
	issue := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("first number of the day", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)

		mock.ExpectQuery(`SELECT "document_number" FROM "obligations" WHERE direction = \$1 AND document_number LIKE \$2`).
			WithArgs(ledger.DirectionPayable, "AP-20260315-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"document_number"}))

		number, err := repo.GenerateDocumentNumber(context.Background(), ledger.DirectionPayable, issue)
		require.NoError(t, err)
		assert.Equal(t, "AP-20260315-00001", number)
	})

	t.Run("increments the highest existing number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormObligationRepository(gormDB)

		mock.ExpectQuery(`SELECT "document_number" FROM "obligations"`).
			WithArgs(ledger.DirectionReceivable, "AR-20260315-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"document_number"}).AddRow("AR-20260315-00041"))

		number, err := repo.GenerateDocumentNumber(context.Background(), ledger.DirectionReceivable, issue)
		require.NoError(t, err)
		assert.Equal(t, "AR-20260315-00042", number)
	})
}
