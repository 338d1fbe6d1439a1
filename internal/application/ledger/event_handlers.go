package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LedgerMetricsHandler turns committed ledger events into business counters
type LedgerMetricsHandler struct {
	metrics *telemetry.LedgerMetrics
}

// NewLedgerMetricsHandler creates a new LedgerMetricsHandler
func NewLedgerMetricsHandler(metrics *telemetry.LedgerMetrics) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeObligationCreated,
		ledger.EventTypeInstallmentSettled,
		ledger.EventTypeObligationSettled,
	}
}

// Handle records the counter matching the event
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.ObligationCreatedEvent:
		h.metrics.RecordObligationCreated(ctx, string(e.Direction))
	case *ledger.InstallmentSettledEvent:
		h.metrics.RecordInstallmentSettled(ctx, string(e.Direction), e.PaidAmount)
	case *ledger.ObligationSettledEvent:
		h.metrics.RecordObligationSettled(ctx, string(e.Direction))
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}
	return nil
}

// SettlementAuditHandler writes a structured audit record for every
// settlement and every obligation that becomes SETTLED
type SettlementAuditHandler struct {
	logger *zap.Logger
}

// NewSettlementAuditHandler creates a new SettlementAuditHandler.
// Audit records are written on the "audit" child logger.
func NewSettlementAuditHandler(logger *zap.Logger) *SettlementAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementAuditHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *SettlementAuditHandler) EventTypes() []string {
	return []string{ledger.EventTypeInstallmentSettled, ledger.EventTypeObligationSettled}
}

// Handle logs the audit record for the event
func (h *SettlementAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	base := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		base = append(base, zap.String("trace_id", traceID))
	}

	switch e := event.(type) {
	case *ledger.InstallmentSettledEvent:
		h.logger.Info("installment settlement recorded", append(base,
			zap.String("obligation_id", e.ObligationID.String()),
			zap.String("installment_id", e.InstallmentID.String()),
			zap.String("direction", string(e.Direction)),
			zap.Int("sequence_number", e.SequenceNumber),
			zap.String("paid_amount", e.PaidAmount.StringFixed(ledger.CurrencyPrecision)),
			zap.String("interest", e.Interest.StringFixed(ledger.CurrencyPrecision)),
			zap.String("discount", e.Discount.StringFixed(ledger.CurrencyPrecision)),
			zap.String("settlement_date", e.SettlementDate.Format(dateLayout)),
			zap.String("obligation_paid_amount", e.ObligationPaid.StringFixed(ledger.CurrencyPrecision)),
			zap.String("obligation_status", string(e.ObligationStatus)),
		)...)
	case *ledger.ObligationSettledEvent:
		h.logger.Info("obligation fully settled", append(base,
			zap.String("obligation_id", e.ObligationID.String()),
			zap.String("direction", string(e.Direction)),
			zap.String("document_number", e.DocumentNumber),
			zap.String("total_amount", e.TotalAmount.StringFixed(ledger.CurrencyPrecision)),
			zap.String("paid_amount", e.PaidAmount.StringFixed(ledger.CurrencyPrecision)),
			zap.String("settlement_date", e.SettlementDate.Format(dateLayout)),
		)...)
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}
	return nil
}

var (
	_ shared.EventHandler = (*LedgerMetricsHandler)(nil)
	_ shared.EventHandler = (*SettlementAuditHandler)(nil)
)
