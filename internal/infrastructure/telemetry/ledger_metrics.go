package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MetricsError reports a failure while building instruments
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when LedgerMetrics is built without a meter
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// Settlement outcomes
const (
	OutcomeSettled   = "settled"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeConflict  = "conflict"
)

// LedgerMetrics holds the business instruments of the obligation ledger
type LedgerMetrics struct {
	obligationsCreated  *Counter
	installmentsSettled *Counter
	obligationsSettled  *Counter
	settledAmountCents  *Counter
	settlementAttempts  *Counter
	settlementDuration  *Histogram
	logger              *zap.Logger
}

// LedgerMetricsConfig configures NewLedgerMetrics
type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewLedgerMetrics registers the ledger instruments on the given meter
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &LedgerMetrics{logger: logger}
	var err error

	if m.obligationsCreated, err = NewCounter(cfg.Meter,
		"ledger_obligation_created_total", "Obligations opened", "{obligation}"); err != nil {
		return nil, err
	}
	if m.installmentsSettled, err = NewCounter(cfg.Meter,
		"ledger_installment_settled_total", "Installments settled", "{installment}"); err != nil {
		return nil, err
	}
	if m.obligationsSettled, err = NewCounter(cfg.Meter,
		"ledger_obligation_settled_total", "Obligations fully settled", "{obligation}"); err != nil {
		return nil, err
	}
	if m.settledAmountCents, err = NewCounter(cfg.Meter,
		"ledger_settled_amount_total", "Amount paid on settled installments in cents", "{cent}"); err != nil {
		return nil, err
	}
	if m.settlementAttempts, err = NewCounter(cfg.Meter,
		"ledger_settlement_attempts_total", "Settlement requests by outcome", "{request}"); err != nil {
		return nil, err
	}
	if m.settlementDuration, err = NewHistogram(cfg.Meter,
		"ledger_settlement_duration_seconds", "Settlement processing time", "s", LatencyBuckets); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordObligationCreated counts a new obligation
func (m *LedgerMetrics) RecordObligationCreated(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	m.obligationsCreated.Inc(ctx, AttrDirection.String(direction))
}

// RecordInstallmentSettled counts a settled installment and its paid amount
func (m *LedgerMetrics) RecordInstallmentSettled(ctx context.Context, direction string, paid decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrDirection.String(direction)}
	m.installmentsSettled.Inc(ctx, attrs...)
	m.settledAmountCents.Add(ctx, paid.Shift(2).Round(0).IntPart(), attrs...)
}

// RecordObligationSettled counts an obligation reaching SETTLED
func (m *LedgerMetrics) RecordObligationSettled(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	m.obligationsSettled.Inc(ctx, AttrDirection.String(direction))
}

// RecordSettlementAttempt records the outcome and latency of a settlement request
func (m *LedgerMetrics) RecordSettlementAttempt(ctx context.Context, outcome, errorCode string, start time.Time) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrOutcome.String(outcome)}
	if errorCode != "" {
		attrs = append(attrs, AttrErrorCode.String(errorCode))
	}
	m.settlementAttempts.Inc(ctx, attrs...)
	m.settlementDuration.RecordDuration(ctx, start, AttrOutcome.String(outcome))
}
