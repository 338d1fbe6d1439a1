package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appledger "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errInjected = errors.New("injected write failure")

type sqliteFixture struct {
	db      *gorm.DB
	service *appledger.ObligationService
	store   *cache.InMemoryIdempotencyStore
	bus     *event.InMemoryEventBus
}

func newSQLiteFixture(t *testing.T) *sqliteFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: databases are per connection, so the pool is pinned to one
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.ObligationModel{}, &models.InstallmentModel{}))

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	bus := event.NewInMemoryEventBus(zap.NewNop())

	service := appledger.NewObligationService(
		persistence.NewGormObligationRepository(db),
		persistence.NewGormInstallmentRepository(db),
		persistence.NewGormTransactionScope(db),
		appledger.WithEventPublisher(bus),
		appledger.WithIdempotencyStore(store, shared.DefaultIdempotencyConfig()),
	)
	return &sqliteFixture{db: db, service: service, store: store, bus: bus}
}

// failUpdatesOn makes every UPDATE against table fail until the test ends
func failUpdatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_update_" + table
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Update().Remove(name) })
}

// failCreatesOn makes every INSERT against table fail until the test ends
func failCreatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_create_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

type recordingHandler struct {
	mu    sync.Mutex
	types []string
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.types = append(h.types, e.EventType())
	return nil
}

func (h *recordingHandler) EventTypes() []string { return nil }

func (h *recordingHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.types...)
}

func createRequest(total string, count int) appledger.CreateObligationRequest {
	return appledger.CreateObligationRequest{
		Direction:        "PAYABLE",
		Description:      "Equipment lease",
		CounterpartyID:   uuid.New(),
		TotalAmount:      decimal.RequireFromString(total),
		IssueDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:          time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		InstallmentCount: count,
		AccountID:        uuid.New(),
		CreatedBy:        uuid.New(),
	}
}

func settle(o *appledger.ObligationResponse, seq int, date time.Time) appledger.SettleInstallmentRequest {
	inst := o.Installments[seq-1]
	return appledger.SettleInstallmentRequest{
		ObligationID:   o.ID,
		InstallmentID:  inst.ID,
		SettlementDate: date,
		PaidAmount:     inst.Amount,
	}
}

func TestSQLiteService_CreateAndSettleAll(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()
	recorder := &recordingHandler{}
	f.bus.Subscribe(recorder)

	created, err := f.service.CreateObligation(ctx, createRequest("1000.00", 3))
	require.NoError(t, err)
	assert.Equal(t, "AP-20260301-00001", created.DocumentNumber)

	second, err := f.service.CreateObligation(ctx, createRequest("10.00", 1))
	require.NoError(t, err)
	assert.Equal(t, "AP-20260301-00002", second.DocumentNumber)

	first, err := f.service.SettleInstallment(ctx, settle(created, 1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, "OPEN", first.Status)
	assert.True(t, first.PaidAmount.Equal(decimal.RequireFromString("333.33")))

	_, err = f.service.SettleInstallment(ctx, settle(created, 2, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	last, err := f.service.SettleInstallment(ctx, settle(created, 3, time.Date(2026, 5, 29, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Equal(t, "SETTLED", last.Status)
	assert.True(t, last.PaidAmount.Equal(decimal.RequireFromString("1000.00")))
	require.NotNil(t, last.SettlementDate)
	assert.Equal(t, "2026-05-29", *last.SettlementDate)
	assert.Equal(t, 4, last.Version)

	stored, err := persistence.NewGormObligationRepository(f.db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, stored.CheckInvariants())

	assert.Equal(t, []string{
		ledger.EventTypeObligationCreated,
		ledger.EventTypeObligationCreated,
		ledger.EventTypeInstallmentSettled,
		ledger.EventTypeInstallmentSettled,
		ledger.EventTypeInstallmentSettled,
		ledger.EventTypeObligationSettled,
	}, recorder.seen())

	_, err = f.service.SettleInstallment(ctx, settle(created, 3, time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, ledger.ErrInstallmentAlreadySettled)
}

func TestSQLiteService_FailedCreateLeavesNothing(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()
	failCreatesOn(t, f.db, "obligation_installments")

	_, err := f.service.CreateObligation(ctx, createRequest("900.00", 3))
	require.ErrorIs(t, err, errInjected)

	var headers, rows int64
	require.NoError(t, f.db.Model(&models.ObligationModel{}).Count(&headers).Error)
	require.NoError(t, f.db.Model(&models.InstallmentModel{}).Count(&rows).Error)
	assert.Zero(t, headers)
	assert.Zero(t, rows)
}

func TestSQLiteService_FailedSettlementLeavesStateUnchanged(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateObligation(ctx, createRequest("1000.00", 3))
	require.NoError(t, err)

	failUpdatesOn(t, f.db, "obligations")

	req := settle(created, 1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	req.IdempotencyKey = "retry-me"
	_, err = f.service.SettleInstallment(ctx, req)
	require.ErrorIs(t, err, errInjected)

	stored, err := persistence.NewGormObligationRepository(f.db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusOpen, stored.Installments[0].Status)
	assert.True(t, stored.Installments[0].PaidAmount.IsZero())
	assert.Nil(t, stored.Installments[0].SettlementDate)
	assert.True(t, stored.PaidAmount.IsZero())
	assert.Equal(t, 1, stored.Version)
	require.NoError(t, stored.CheckInvariants())

	claimed, err := f.store.IsProcessed(ctx, appledger.SettlementKey(req.InstallmentID, "retry-me"))
	require.NoError(t, err)
	assert.False(t, claimed, "key must be released after rollback")
}

func TestSQLiteService_IdempotencyKeyReplay(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateObligation(ctx, createRequest("500.00", 2))
	require.NoError(t, err)

	req := settle(created, 1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	req.IdempotencyKey = "bank-ref-42"

	_, err = f.service.SettleInstallment(ctx, req)
	require.NoError(t, err)

	_, err = f.service.SettleInstallment(ctx, req)
	assert.ErrorIs(t, err, ledger.ErrDuplicateSettlement)
}

// The single pooled connection serializes these transactions, so this only
// checks that every settlement is applied on top of the previous one. Header
// locking and the version check under real contention are exercised by
// TestPostgresService_ConcurrentSettle* (integration build tag).
func TestSQLiteService_SerializedSettlementsLoseNoUpdate(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateObligation(ctx, createRequest("1000.00", 5))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, len(created.Installments))
	for i := range created.Installments {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			_, errs[seq-1] = f.service.SettleInstallment(ctx, settle(created, seq, time.Date(2026, 4, seq, 0, 0, 0, 0, time.UTC)))
		}(i + 1)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := persistence.NewGormObligationRepository(f.db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSettled, stored.Status)
	assert.True(t, stored.PaidAmount.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, 6, stored.Version)
	require.NoError(t, stored.CheckInvariants())
}
