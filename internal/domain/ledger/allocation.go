package ledger

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places of the smallest currency unit
const CurrencyPrecision int32 = 2

const (
	// DefaultInstallmentCount is used when the caller does not ask for a split
	DefaultInstallmentCount = 1
	// DefaultIntervalDays separates consecutive installment due dates
	DefaultIntervalDays = 30
	// MaxInstallmentCount bounds a single obligation's schedule
	MaxInstallmentCount = 360
)

// AllocateAmounts splits total into n installment amounts.
// Installments 1..n-1 get round(total/n) and the last one absorbs the
// rounding remainder, so the amounts always sum to total exactly.
// A split that would leave any installment at zero or below is rejected.
func AllocateAmounts(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if !total.IsPositive() {
		return nil, shared.NewDomainError(CodeInvalidAmount, "Total amount must be positive")
	}
	if !hasCurrencyPrecision(total) {
		return nil, shared.NewDomainError(CodeInvalidAmount,
			fmt.Sprintf("Total amount cannot have more than %d decimal places", CurrencyPrecision))
	}
	if n <= 0 {
		return nil, shared.NewDomainError(CodeInvalidInstallmentCount, "Installment count must be at least 1")
	}

	amounts := make([]decimal.Decimal, n)
	if n == 1 {
		amounts[0] = total
		return amounts, nil
	}

	base := total.Div(decimal.NewFromInt(int64(n))).Round(CurrencyPrecision)
	for i := 0; i < n-1; i++ {
		amounts[i] = base
	}
	amounts[n-1] = total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))

	if !base.IsPositive() || !amounts[n-1].IsPositive() {
		return nil, shared.NewDomainError(CodeInvalidInstallmentCount,
			fmt.Sprintf("Total amount %s is too small for %d installments", total.StringFixed(CurrencyPrecision), n))
	}

	return amounts, nil
}

// ScheduleDueDates returns the due date of each installment:
// installment i is due firstDue + (i-1)*intervalDays.
func ScheduleDueDates(firstDue time.Time, n, intervalDays int) []time.Time {
	dates := make([]time.Time, n)
	first := NormalizeDate(firstDue)
	for i := 0; i < n; i++ {
		dates[i] = first.AddDate(0, 0, i*intervalDays)
	}
	return dates
}

// NormalizeDate truncates t to a calendar date at UTC midnight
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hasCurrencyPrecision(v decimal.Decimal) bool {
	return v.Equal(v.Round(CurrencyPrecision))
}
