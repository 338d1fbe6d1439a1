package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testIssueDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	testDueDate   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	testNow       = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)
)

type serviceFixture struct {
	obligations  *MockObligationRepository
	installments *MockInstallmentRepository
	store        *MockIdempotencyStore
	publisher    *MockEventPublisher
	service      *ObligationService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		obligations:  new(MockObligationRepository),
		installments: new(MockInstallmentRepository),
		store:        new(MockIdempotencyStore),
		publisher:    &MockEventPublisher{},
	}
	f.service = NewObligationService(f.obligations, f.installments,
		NewNoOpTransactionScope(f.obligations, f.installments),
		WithEventPublisher(f.publisher),
		WithIdempotencyStore(f.store, shared.DefaultIdempotencyConfig()),
		WithClock(func() time.Time { return testNow }),
	)
	return f
}

func validCreateRequest() CreateObligationRequest {
	return CreateObligationRequest{
		Direction:        "PAYABLE",
		Description:      "Office rent Q2",
		CounterpartyID:   uuid.New(),
		DocumentNumber:   "NF-2026-001",
		TotalAmount:      decimal.RequireFromString("1000.00"),
		IssueDate:        testIssueDate,
		DueDate:          testDueDate,
		InstallmentCount: 3,
		IntervalDays:     30,
		AccountID:        uuid.New(),
		CreatedBy:        uuid.New(),
	}
}

func newStoredObligation(t *testing.T, total string, count int) *ledger.Obligation {
	t.Helper()
	o, err := ledger.NewObligation(ledger.NewObligationInput{
		Direction:        ledger.DirectionReceivable,
		Description:      "Consulting services",
		CounterpartyID:   uuid.New(),
		DocumentNumber:   "INV-77",
		TotalAmount:      decimal.RequireFromString(total),
		IssueDate:        testIssueDate,
		DueDate:          testDueDate,
		InstallmentCount: count,
		AccountID:        uuid.New(),
		CreatedBy:        uuid.New(),
	})
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

// lockedHeader mimics FindByIDForUpdate, which loads the header only
func lockedHeader(o *ledger.Obligation) *ledger.Obligation {
	h := *o
	h.Installments = nil
	h.ClearDomainEvents()
	return &h
}

func settleRequest(o *ledger.Obligation, seq int, paid string, date time.Time) SettleInstallmentRequest {
	return SettleInstallmentRequest{
		ObligationID:   o.ID,
		InstallmentID:  o.Installments[seq-1].ID,
		SettlementDate: date,
		PaidAmount:     decimal.RequireFromString(paid),
		Interest:       decimal.Zero,
		Discount:       decimal.Zero,
	}
}

// settledCopy returns the installment set as it reads after the given
// sequence numbers have been settled
func settledCopy(t *testing.T, o *ledger.Obligation, date time.Time, seqs ...int) []ledger.Installment {
	t.Helper()
	current := append([]ledger.Installment(nil), o.Installments...)
	for _, seq := range seqs {
		inst := &current[seq-1]
		require.NoError(t, inst.Settle(ledger.Settlement{SettlementDate: date, PaidAmount: inst.Amount}))
	}
	return current
}

func TestObligationService_CreateObligation(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	req := validCreateRequest()

	f.obligations.On("Create", mock.Anything, mock.MatchedBy(func(o *ledger.Obligation) bool {
		return o.DocumentNumber == "NF-2026-001" && len(o.Installments) == 3
	})).Return(nil)

	resp, err := f.service.CreateObligation(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "PAYABLE", resp.Direction)
	assert.Equal(t, "OPEN", resp.Status)
	assert.True(t, resp.PaidAmount.IsZero())
	assert.True(t, resp.OutstandingAmount.Equal(decimal.RequireFromString("1000.00")))
	assert.Nil(t, resp.SettlementDate)
	require.Len(t, resp.Installments, 3)

	wantAmounts := []string{"333.33", "333.33", "333.34"}
	wantDue := []string{"2026-03-31", "2026-04-30", "2026-05-30"}
	for i, inst := range resp.Installments {
		assert.Equal(t, i+1, inst.SequenceNumber)
		assert.True(t, inst.Amount.Equal(decimal.RequireFromString(wantAmounts[i])))
		assert.Equal(t, wantDue[i], inst.DueDate)
	}
	// only the first installment is past due on 2026-04-15
	assert.True(t, resp.Installments[0].Overdue)
	assert.False(t, resp.Installments[1].Overdue)

	assert.Equal(t, []string{ledger.EventTypeObligationCreated}, f.publisher.EventTypes())
	f.obligations.AssertNotCalled(t, "GenerateDocumentNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestObligationService_CreateObligation_GeneratesDocumentNumber(t *testing.T) {
	f := newServiceFixture()
	req := validCreateRequest()
	req.DocumentNumber = "  "
	req.Direction = "receivable"

	f.obligations.On("GenerateDocumentNumber", mock.Anything, ledger.DirectionReceivable, testIssueDate).
		Return("AR-20260301-00004", nil)
	f.obligations.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.CreateObligation(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "AR-20260301-00004", resp.DocumentNumber)
	assert.Equal(t, "RECEIVABLE", resp.Direction)
}

func TestObligationService_CreateObligation_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CreateObligationRequest)
		code   string
	}{
		{"zero total", func(r *CreateObligationRequest) { r.TotalAmount = decimal.Zero }, ledger.CodeInvalidAmount},
		{"sub-cent total", func(r *CreateObligationRequest) { r.TotalAmount = decimal.RequireFromString("10.005") }, ledger.CodeInvalidAmount},
		{"too many installments", func(r *CreateObligationRequest) { r.InstallmentCount = 361 }, ledger.CodeInvalidInstallmentCount},
		{"due before issue", func(r *CreateObligationRequest) { r.DueDate = testIssueDate.AddDate(0, 0, -1) }, ledger.CodeInvalidDate},
		{"unknown direction", func(r *CreateObligationRequest) { r.Direction = "LOAN" }, ledger.CodeInvalidDirection},
		{"missing counterparty", func(r *CreateObligationRequest) { r.CounterpartyID = uuid.Nil }, ledger.CodeInvalidCounterparty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			req := validCreateRequest()
			tt.modify(&req)

			resp, err := f.service.CreateObligation(context.Background(), req)

			assert.Nil(t, resp)
			de, ok := shared.AsDomainError(err)
			require.True(t, ok, "expected domain error, got %v", err)
			assert.Equal(t, tt.code, de.Code)
			f.obligations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, f.publisher.GetEvents())
		})
	}
}

func TestObligationService_CreateObligation_PersistenceFailure(t *testing.T) {
	f := newServiceFixture()
	f.obligations.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.service.CreateObligation(context.Background(), validCreateRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist obligation")
	_, isDomain := shared.AsDomainError(err)
	assert.False(t, isDomain)
	assert.Empty(t, f.publisher.GetEvents())
}

func TestObligationService_SettleInstallment_Partial(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "1000.00", 3)
	settledOn := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	req := settleRequest(o, 1, "333.33", settledOn)
	req.Note = "wire transfer"

	target := o.Installments[0]
	f.obligations.On("FindByIDForUpdate", mock.Anything, o.ID).Return(lockedHeader(o), nil)
	f.installments.On("FindByID", mock.Anything, o.ID, target.ID).Return(&target, nil)
	f.installments.On("SaveSettlement", mock.Anything, mock.MatchedBy(func(i *ledger.Installment) bool {
		return i.IsSettled() && i.Note == "wire transfer"
	})).Return(nil)
	f.installments.On("FindByObligationID", mock.Anything, o.ID).Return(settledCopy(t, o, settledOn, 1), nil)
	f.obligations.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(h *ledger.Obligation) bool {
		return h.Version == 2 && h.PaidAmount.Equal(decimal.RequireFromString("333.33")) && h.Status == ledger.StatusOpen
	})).Return(nil)

	resp, err := f.service.SettleInstallment(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "OPEN", resp.Status)
	assert.True(t, resp.PaidAmount.Equal(decimal.RequireFromString("333.33")))
	assert.True(t, resp.OutstandingAmount.Equal(decimal.RequireFromString("666.67")))
	assert.Nil(t, resp.SettlementDate)
	assert.Equal(t, "SETTLED", resp.Installments[0].Status)
	assert.False(t, resp.Installments[0].Overdue)
	assert.Equal(t, []string{ledger.EventTypeInstallmentSettled}, f.publisher.EventTypes())

	f.obligations.AssertExpectations(t)
	f.installments.AssertExpectations(t)
}

func TestObligationService_SettleInstallment_LastInstallmentSettlesHeader(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "1000.00", 3)
	earlier := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)

	o.Installments = settledCopy(t, o, earlier, 1, 2)
	o.Recompute(o.Installments, earlier)
	o.Version = 3

	target := o.Installments[2]
	f.obligations.On("FindByIDForUpdate", mock.Anything, o.ID).Return(lockedHeader(o), nil)
	f.installments.On("FindByID", mock.Anything, o.ID, target.ID).Return(&target, nil)
	f.installments.On("SaveSettlement", mock.Anything, mock.Anything).Return(nil)
	f.installments.On("FindByObligationID", mock.Anything, o.ID).Return(settledCopy(t, o, last, 3), nil)
	f.obligations.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(h *ledger.Obligation) bool {
		return h.Version == 4
	})).Return(nil)

	resp, err := f.service.SettleInstallment(context.Background(), settleRequest(o, 3, "333.34", last))
	require.NoError(t, err)

	assert.Equal(t, "SETTLED", resp.Status)
	assert.True(t, resp.PaidAmount.Equal(decimal.RequireFromString("1000.00")))
	require.NotNil(t, resp.SettlementDate)
	assert.Equal(t, "2026-06-03", *resp.SettlementDate)
	assert.True(t, resp.OutstandingAmount.IsZero())
	assert.Equal(t, []string{ledger.EventTypeInstallmentSettled, ledger.EventTypeObligationSettled}, f.publisher.EventTypes())
}

func TestObligationService_SettleInstallment_AlreadySettled(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "100.00", 1)
	settledOn := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	done := settledCopy(t, o, settledOn, 1)[0]

	f.obligations.On("FindByIDForUpdate", mock.Anything, o.ID).Return(lockedHeader(o), nil)
	f.installments.On("FindByID", mock.Anything, o.ID, done.ID).Return(&done, nil)

	_, err := f.service.SettleInstallment(context.Background(), settleRequest(o, 1, "100.00", settledOn))

	assert.ErrorIs(t, err, ledger.ErrInstallmentAlreadySettled)
	f.installments.AssertNotCalled(t, "SaveSettlement", mock.Anything, mock.Anything)
	f.obligations.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.GetEvents())
}

func TestObligationService_SettleInstallment_NotFound(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "100.00", 1)

	t.Run("obligation", func(t *testing.T) {
		f.obligations.On("FindByIDForUpdate", mock.Anything, uuid.Nil).Return(nil, ledger.ErrObligationNotFound).Once()
		req := settleRequest(o, 1, "100.00", testNow)
		req.ObligationID = uuid.Nil

		_, err := f.service.SettleInstallment(context.Background(), req)
		assert.ErrorIs(t, err, ledger.ErrObligationNotFound)
	})

	t.Run("installment of another obligation", func(t *testing.T) {
		other := uuid.New()
		f.obligations.On("FindByIDForUpdate", mock.Anything, o.ID).Return(lockedHeader(o), nil).Once()
		f.installments.On("FindByID", mock.Anything, o.ID, other).Return(nil, ledger.ErrInstallmentNotFound).Once()
		req := settleRequest(o, 1, "100.00", testNow)
		req.InstallmentID = other

		_, err := f.service.SettleInstallment(context.Background(), req)
		assert.ErrorIs(t, err, ledger.ErrInstallmentNotFound)
	})
}

func TestObligationService_SettleInstallment_InvalidInputRejectedBeforeAnyWrite(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "100.00", 1)

	cases := map[string]SettleInstallmentRequest{
		"negative paid": func() SettleInstallmentRequest {
			r := settleRequest(o, 1, "-1.00", testNow)
			return r
		}(),
		"negative interest": func() SettleInstallmentRequest {
			r := settleRequest(o, 1, "100.00", testNow)
			r.Interest = decimal.RequireFromString("-0.01")
			return r
		}(),
		"missing date": func() SettleInstallmentRequest {
			r := settleRequest(o, 1, "100.00", time.Time{})
			r.IdempotencyKey = "abc"
			return r
		}(),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.SettleInstallment(context.Background(), req)
			_, ok := shared.AsDomainError(err)
			assert.True(t, ok)
		})
	}

	f.store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	f.obligations.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestObligationService_SettleInstallment_DuplicateIdempotencyKey(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "100.00", 1)
	req := settleRequest(o, 1, "100.00", testNow)
	req.IdempotencyKey = "pay-7781"

	f.store.On("MarkProcessed", mock.Anything, SettlementKey(req.InstallmentID, "pay-7781"), 24*time.Hour).
		Return(false, nil)

	_, err := f.service.SettleInstallment(context.Background(), req)

	assert.ErrorIs(t, err, ledger.ErrDuplicateSettlement)
	f.obligations.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestObligationService_SettleInstallment_ReleasesKeyOnFailure(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "1000.00", 2)
	req := settleRequest(o, 1, "500.00", testNow)
	req.IdempotencyKey = "pay-1"
	key := SettlementKey(req.InstallmentID, "pay-1")

	target := o.Installments[0]
	f.store.On("MarkProcessed", mock.Anything, key, 24*time.Hour).Return(true, nil)
	f.store.On("Release", mock.Anything, key).Return(nil)
	f.obligations.On("FindByIDForUpdate", mock.Anything, o.ID).Return(lockedHeader(o), nil)
	f.installments.On("FindByID", mock.Anything, o.ID, target.ID).Return(&target, nil)
	f.installments.On("SaveSettlement", mock.Anything, mock.Anything).Return(nil)
	f.installments.On("FindByObligationID", mock.Anything, o.ID).Return(settledCopy(t, o, testNow, 1), nil)
	f.obligations.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.SettleInstallment(context.Background(), req)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.store.AssertCalled(t, "Release", mock.Anything, key)
	assert.Empty(t, f.publisher.GetEvents())
}

func TestObligationService_SettleInstallment_KeyKeptOnSuccess(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "100.00", 1)
	req := settleRequest(o, 1, "100.00", testNow)
	req.IdempotencyKey = "pay-2"

	target := o.Installments[0]
	f.store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.obligations.On("FindByIDForUpdate", mock.Anything, o.ID).Return(lockedHeader(o), nil)
	f.installments.On("FindByID", mock.Anything, o.ID, target.ID).Return(&target, nil)
	f.installments.On("SaveSettlement", mock.Anything, mock.Anything).Return(nil)
	f.installments.On("FindByObligationID", mock.Anything, o.ID).Return(settledCopy(t, o, testNow, 1), nil)
	f.obligations.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.SettleInstallment(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "SETTLED", resp.Status)
	f.store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestObligationService_SettleInstallment_StoreFailure(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "100.00", 1)
	req := settleRequest(o, 1, "100.00", testNow)
	req.IdempotencyKey = "pay-3"

	f.store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis: connection refused"))

	_, err := f.service.SettleInstallment(context.Background(), req)

	require.Error(t, err)
	_, isDomain := shared.AsDomainError(err)
	assert.False(t, isDomain)
	f.obligations.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestObligationService_GetObligation(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "250.00", 2)
	f.obligations.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	resp, err := f.service.GetObligation(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)
	assert.Len(t, resp.Installments, 2)

	missing := uuid.New()
	f.obligations.On("FindByID", mock.Anything, missing).Return(nil, ledger.ErrObligationNotFound)
	_, err = f.service.GetObligation(context.Background(), missing)
	assert.ErrorIs(t, err, ledger.ErrObligationNotFound)
}

func TestObligationService_ListObligations(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "250.00", 2)

	matchFilter := mock.MatchedBy(func(filter ledger.ObligationFilter) bool {
		return filter.Direction != nil && *filter.Direction == ledger.DirectionReceivable &&
			filter.Status != nil && *filter.Status == ledger.StatusOpen &&
			filter.Page == 2 && filter.PageSize == 100
	})
	f.obligations.On("FindAll", mock.Anything, matchFilter).Return([]ledger.Obligation{*o}, nil)
	f.obligations.On("Count", mock.Anything, matchFilter).Return(int64(101), nil)

	page, err := f.service.ListObligations(context.Background(), ObligationListFilter{
		Filter:    shared.Filter{Page: 2, PageSize: 500},
		Direction: "receivable",
		Status:    "open",
	})
	require.NoError(t, err)

	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(101), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestObligationService_ListObligations_InvalidFilter(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.ListObligations(context.Background(), ObligationListFilter{Direction: "sideways"})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, ledger.CodeInvalidDirection, de.Code)

	_, err = f.service.ListObligations(context.Background(), ObligationListFilter{Status: "CANCELLED"})
	de, ok = shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATUS", de.Code)
}

func TestObligationService_ListInstallments(t *testing.T) {
	f := newServiceFixture()
	o := newStoredObligation(t, "300.00", 3)
	payable := ledger.DirectionPayable

	f.installments.On("FindAll", mock.Anything, mock.MatchedBy(func(filter ledger.InstallmentFilter) bool {
		return filter.Direction != nil && *filter.Direction == payable && filter.Page == 1 && filter.PageSize == 20
	})).Return(o.Installments, nil)
	f.installments.On("Count", mock.Anything, mock.Anything).Return(int64(3), nil)

	page, err := f.service.ListInstallments(context.Background(), InstallmentListFilter{Direction: "PAYABLE"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPages)
}

func TestObligationService_Summarize(t *testing.T) {
	f := newServiceFixture()
	f.obligations.On("Summarize", mock.Anything, mock.Anything).Return([]ledger.ObligationSummary{
		{Direction: ledger.DirectionPayable, Status: ledger.StatusOpen, Count: 2,
			TotalAmount: decimal.RequireFromString("1500.00"), PaidAmount: decimal.RequireFromString("333.33")},
		{Direction: ledger.DirectionReceivable, Status: ledger.StatusSettled, Count: 1,
			TotalAmount: decimal.RequireFromString("80.00"), PaidAmount: decimal.RequireFromString("85.00")},
	}, nil)

	resp, err := f.service.Summarize(context.Background(), ObligationListFilter{})
	require.NoError(t, err)

	require.Len(t, resp.Buckets, 2)
	assert.True(t, resp.Buckets[0].OutstandingAmount.Equal(decimal.RequireFromString("1166.67")))
	assert.True(t, resp.Buckets[1].OutstandingAmount.IsZero())
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("1580.00")))
	assert.True(t, resp.OutstandingTotal.Equal(decimal.RequireFromString("1166.67")))
}
