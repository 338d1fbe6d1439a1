package ledger

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validInput() NewObligationInput {
	return NewObligationInput{
		Direction:        DirectionPayable,
		Description:      "Office rent Q1",
		CounterpartyID:   uuid.New(),
		DocumentNumber:   "NF-1001",
		TotalAmount:      decimal.RequireFromString("1000.00"),
		IssueDate:        day(2024, 1, 10),
		DueDate:          day(2024, 2, 10),
		InstallmentCount: 3,
		IntervalDays:     30,
		AccountID:        uuid.New(),
		CreatedBy:        uuid.New(),
	}
}

func settle(t *testing.T, o *Obligation, seq int, paid string, on time.Time) {
	t.Helper()
	inst := &o.Installments[seq-1]
	require.NoError(t, inst.Settle(Settlement{
		SettlementDate: on,
		PaidAmount:     decimal.RequireFromString(paid),
	}))
	current := make([]Installment, len(o.Installments))
	copy(current, o.Installments)
	require.NoError(t, o.ApplySettlement(inst, current))
}

func TestNewObligation(t *testing.T) {
	t.Run("splits into installments with schedule", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)

		assert.Equal(t, StatusOpen, o.Status)
		assert.True(t, o.PaidAmount.IsZero())
		assert.Nil(t, o.SettlementDate)
		assert.Equal(t, 1, o.Version)
		require.Len(t, o.Installments, 3)

		expected := []string{"333.33", "333.33", "333.34"}
		for i, inst := range o.Installments {
			assert.Equal(t, i+1, inst.SequenceNumber)
			assert.Equal(t, o.ID, inst.ObligationID)
			assert.Equal(t, StatusOpen, inst.Status)
			assert.True(t, decimal.RequireFromString(expected[i]).Equal(inst.Amount))
			assert.Equal(t, day(2024, 2, 10).AddDate(0, 0, 30*i), inst.DueDate)
		}
		require.NoError(t, o.CheckInvariants())
	})

	t.Run("defaults to a single installment due on the due date", func(t *testing.T) {
		in := validInput()
		in.TotalAmount = decimal.RequireFromString("100.00")
		in.InstallmentCount = 0
		in.IntervalDays = 0

		o, err := NewObligation(in)
		require.NoError(t, err)
		require.Len(t, o.Installments, 1)
		assert.True(t, decimal.RequireFromString("100.00").Equal(o.Installments[0].Amount))
		assert.Equal(t, day(2024, 2, 10), o.Installments[0].DueDate)
	})

	t.Run("raises created event", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*ObligationCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeObligationCreated, created.EventType())
		assert.Equal(t, o.ID, created.AggregateID())
		assert.Equal(t, 3, created.InstallmentCount)
	})

	t.Run("trims text fields", func(t *testing.T) {
		in := validInput()
		in.Description = "  Rent  "
		in.DocumentNumber = " NF-1 "
		o, err := NewObligation(in)
		require.NoError(t, err)
		assert.Equal(t, "Rent", o.Description)
		assert.Equal(t, "NF-1", o.DocumentNumber)
	})
}

func TestNewObligation_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *NewObligationInput)
		code   string
	}{
		{"invalid direction", func(in *NewObligationInput) { in.Direction = "SIDEWAYS" }, CodeInvalidDirection},
		{"empty description", func(in *NewObligationInput) { in.Description = "   " }, CodeInvalidDescription},
		{"empty document number", func(in *NewObligationInput) { in.DocumentNumber = "" }, CodeInvalidDocumentNumber},
		{"missing counterparty", func(in *NewObligationInput) { in.CounterpartyID = uuid.Nil }, CodeInvalidCounterparty},
		{"missing account", func(in *NewObligationInput) { in.AccountID = uuid.Nil }, CodeInvalidAccount},
		{"missing creator", func(in *NewObligationInput) { in.CreatedBy = uuid.Nil }, CodeInvalidCreator},
		{"missing issue date", func(in *NewObligationInput) { in.IssueDate = time.Time{} }, CodeInvalidDate},
		{"due before issue", func(in *NewObligationInput) { in.DueDate = day(2023, 12, 31) }, CodeInvalidDate},
		{"zero total", func(in *NewObligationInput) { in.TotalAmount = decimal.Zero }, CodeInvalidAmount},
		{"negative total", func(in *NewObligationInput) { in.TotalAmount = decimal.NewFromInt(-5) }, CodeInvalidAmount},
		{"negative count", func(in *NewObligationInput) { in.InstallmentCount = -1 }, CodeInvalidInstallmentCount},
		{"total too small for count", func(in *NewObligationInput) {
			in.TotalAmount = decimal.RequireFromString("0.15")
			in.InstallmentCount = 10
		}, CodeInvalidInstallmentCount},
		{"count too large", func(in *NewObligationInput) { in.InstallmentCount = MaxInstallmentCount + 1 }, CodeInvalidInstallmentCount},
		{"negative interval", func(in *NewObligationInput) { in.IntervalDays = -7 }, CodeInvalidIntervalDays},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			o, err := NewObligation(in)
			require.Error(t, err)
			assert.Nil(t, o)
			assertDomainCode(t, err, tc.code)
		})
	}
}

func TestObligation_ApplySettlement(t *testing.T) {
	t.Run("partial settlement keeps obligation open", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)
		o.ClearDomainEvents()

		settle(t, o, 1, "333.33", day(2024, 2, 9))

		assert.True(t, decimal.RequireFromString("333.33").Equal(o.PaidAmount))
		assert.Equal(t, StatusOpen, o.Status)
		assert.Nil(t, o.SettlementDate)
		assert.Equal(t, 2, o.Version)
		require.NoError(t, o.CheckInvariants())

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInstallmentSettled, events[0].EventType())
	})

	t.Run("last settlement closes obligation", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)
		o.ClearDomainEvents()

		settle(t, o, 2, "333.33", day(2024, 3, 1))
		settle(t, o, 1, "333.33", day(2024, 3, 5))
		settle(t, o, 3, "333.34", day(2024, 4, 2))

		assert.True(t, decimal.RequireFromString("1000.00").Equal(o.PaidAmount))
		assert.Equal(t, StatusSettled, o.Status)
		require.NotNil(t, o.SettlementDate)
		assert.Equal(t, day(2024, 4, 2), *o.SettlementDate)
		assert.True(t, o.OutstandingAmount().IsZero())
		require.NoError(t, o.CheckInvariants())

		events := o.GetDomainEvents()
		require.Len(t, events, 4)
		assert.Equal(t, EventTypeObligationSettled, events[3].EventType())
	})

	t.Run("paid amount follows installment payments", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)

		settle(t, o, 1, "300.00", day(2024, 2, 10))

		assert.True(t, decimal.RequireFromString("300.00").Equal(o.PaidAmount))
		assert.True(t, decimal.RequireFromString("700.00").Equal(o.OutstandingAmount()))
	})

	t.Run("rejects installment of another obligation", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)
		other, err := NewObligation(validInput())
		require.NoError(t, err)

		inst := &other.Installments[0]
		require.NoError(t, inst.Settle(Settlement{SettlementDate: day(2024, 2, 1), PaidAmount: inst.Amount}))

		err = o.ApplySettlement(inst, o.Installments)
		assertDomainCode(t, err, CodeInstallmentMismatch)
		assert.Equal(t, 1, o.Version)
	})

	t.Run("rejects unsettled installment", func(t *testing.T) {
		o, err := NewObligation(validInput())
		require.NoError(t, err)

		err = o.ApplySettlement(&o.Installments[0], o.Installments)
		assertDomainCode(t, err, CodeInvalidSettlementRequest)
	})
}

func TestObligation_Recompute(t *testing.T) {
	o, err := NewObligation(validInput())
	require.NoError(t, err)

	settle(t, o, 1, "333.33", day(2024, 2, 9))
	settle(t, o, 2, "333.33", day(2024, 3, 9))
	settle(t, o, 3, "333.34", day(2024, 4, 9))
	require.Equal(t, StatusSettled, o.Status)

	t.Run("clears settlement date when an installment is open", func(t *testing.T) {
		rows := make([]Installment, len(o.Installments))
		copy(rows, o.Installments)
		rows[2].Status = StatusOpen
		rows[2].PaidAmount = decimal.Zero
		rows[2].SettlementDate = nil

		o.Recompute(rows, day(2024, 5, 1))
		assert.Equal(t, StatusOpen, o.Status)
		assert.Nil(t, o.SettlementDate)
		assert.True(t, decimal.RequireFromString("666.66").Equal(o.PaidAmount))
	})

	t.Run("is a pure function of installment state", func(t *testing.T) {
		rows := make([]Installment, len(o.Installments))
		copy(rows, o.Installments)

		o.Recompute(rows, day(2024, 5, 1))
		first := *o
		o.Recompute(rows, day(2024, 5, 1))

		assert.True(t, first.PaidAmount.Equal(o.PaidAmount))
		assert.Equal(t, first.Status, o.Status)
	})
}

func TestObligation_CheckInvariants(t *testing.T) {
	o, err := NewObligation(validInput())
	require.NoError(t, err)
	require.NoError(t, o.CheckInvariants())

	t.Run("detects sum drift", func(t *testing.T) {
		broken := *o
		broken.TotalAmount = decimal.RequireFromString("1000.01")
		assert.Error(t, broken.CheckInvariants())
	})

	t.Run("detects sequence gap", func(t *testing.T) {
		broken := *o
		broken.Installments = []Installment{o.Installments[0], o.Installments[2]}
		assert.Error(t, broken.CheckInvariants())
	})

	t.Run("detects stale status", func(t *testing.T) {
		broken := *o
		broken.Status = StatusSettled
		assert.Error(t, broken.CheckInvariants())
	})
}

func TestObligation_FindInstallment(t *testing.T) {
	o, err := NewObligation(validInput())
	require.NoError(t, err)

	found := o.FindInstallment(o.Installments[1].ID)
	require.NotNil(t, found)
	assert.Equal(t, 2, found.SequenceNumber)
	assert.Nil(t, o.FindInstallment(uuid.New()))
}
