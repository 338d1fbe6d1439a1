package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Profiling operation names
const (
	OperationCreateObligation  = "create_obligation"
	OperationSettleInstallment = "settle_installment"
)

// ObligationService orchestrates obligation creation, settlement and the
// read model. Writes go through the TransactionScope; events are published
// only after the transaction commits.
type ObligationService struct {
	obligationRepo   ledger.ObligationRepository
	installmentRepo  ledger.InstallmentRepository
	txScope          TransactionScope
	eventPublisher   shared.EventPublisher
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	metrics          *telemetry.LedgerMetrics
	logger           *zap.Logger
	now              func() time.Time
}

// ObligationServiceOption is a functional option for configuring ObligationService
type ObligationServiceOption func(*ObligationService)

// WithEventPublisher sets the publisher that receives committed domain events
func WithEventPublisher(publisher shared.EventPublisher) ObligationServiceOption {
	return func(s *ObligationService) {
		s.eventPublisher = publisher
	}
}

// WithIdempotencyStore enables Idempotency-Key handling on settlement
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) ObligationServiceOption {
	return func(s *ObligationService) {
		s.idempotencyStore = store
		s.idempotencyCfg = cfg
	}
}

// WithLedgerMetrics sets the settlement attempt instruments
func WithLedgerMetrics(metrics *telemetry.LedgerMetrics) ObligationServiceOption {
	return func(s *ObligationService) {
		s.metrics = metrics
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ObligationServiceOption {
	return func(s *ObligationService) {
		s.logger = l
	}
}

// WithClock overrides the time source used for overdue flags
func WithClock(now func() time.Time) ObligationServiceOption {
	return func(s *ObligationService) {
		s.now = now
	}
}

// NewObligationService creates a new ObligationService.
// obligationRepo and installmentRepo serve reads outside transactions.
func NewObligationService(
	obligationRepo ledger.ObligationRepository,
	installmentRepo ledger.InstallmentRepository,
	txScope TransactionScope,
	opts ...ObligationServiceOption,
) *ObligationService {
	s := &ObligationService{
		obligationRepo:  obligationRepo,
		installmentRepo: installmentRepo,
		txScope:         txScope,
		idempotencyCfg:  shared.DefaultIdempotencyConfig(),
		logger:          zap.NewNop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateObligation validates the request, splits the total into installments
// and persists the header with every installment in one transaction.
func (s *ObligationService) CreateObligation(ctx context.Context, req CreateObligationRequest) (*ObligationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ObligationService", "CreateObligation",
		telemetry.WithAttribute(telemetry.SpanAttrDirection, req.Direction),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentCount, req.InstallmentCount),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.TotalAmount.String()),
	)
	defer span.End()

	var obligation *ledger.Obligation
	var opErr error
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: OperationCreateObligation,
		telemetry.ProfilingLabelDirection: req.Direction,
	}, func(c context.Context) {
		obligation, opErr = s.createObligation(c, req)
	})

	log := logger.WithLogger(ctx, s.logger)
	if opErr != nil {
		telemetry.RecordError(span, opErr)
		logRejection(log, "obligation creation rejected", opErr,
			zap.String("direction", req.Direction),
			zap.String("document_number", req.DocumentNumber),
		)
		return nil, opErr
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrObligationID, obligation.ID.String(),
		telemetry.SpanAttrDocumentNumber, obligation.DocumentNumber,
	)
	telemetry.SetOK(span)
	log.Info("obligation created",
		zap.String("obligation_id", obligation.ID.String()),
		zap.String("direction", string(obligation.Direction)),
		zap.String("document_number", obligation.DocumentNumber),
		zap.String("total_amount", obligation.TotalAmount.StringFixed(ledger.CurrencyPrecision)),
		zap.Int("installments", len(obligation.Installments)),
	)

	s.publishEvents(ctx, obligation)

	resp := ToObligationResponse(obligation, s.now())
	return &resp, nil
}

func (s *ObligationService) createObligation(ctx context.Context, req CreateObligationRequest) (*ledger.Obligation, error) {
	input := ledger.NewObligationInput{
		Direction:        ledger.Direction(strings.ToUpper(strings.TrimSpace(req.Direction))),
		Description:      req.Description,
		CounterpartyID:   req.CounterpartyID,
		DocumentNumber:   strings.TrimSpace(req.DocumentNumber),
		TotalAmount:      req.TotalAmount,
		IssueDate:        req.IssueDate,
		DueDate:          req.DueDate,
		InstallmentCount: req.InstallmentCount,
		IntervalDays:     req.IntervalDays,
		AccountID:        req.AccountID,
		CostCenterID:     req.CostCenterID,
		CreatedBy:        req.CreatedBy,
	}

	var obligation *ledger.Obligation
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if input.DocumentNumber == "" && input.Direction.IsValid() && !input.IssueDate.IsZero() {
			number, err := repos.ObligationRepo().GenerateDocumentNumber(ctx, input.Direction, input.IssueDate)
			if err != nil {
				return fmt.Errorf("failed to generate document number: %w", err)
			}
			input.DocumentNumber = number
		}

		o, err := ledger.NewObligation(input)
		if err != nil {
			return err
		}
		if err := repos.ObligationRepo().Create(ctx, o); err != nil {
			return fmt.Errorf("failed to persist obligation: %w", err)
		}
		obligation = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obligation, nil
}

// SettleInstallment records a settlement against one installment and
// recomputes the header from the full installment set, all under the header
// row lock. A repeated Idempotency-Key is rejected before any write.
func (s *ObligationService) SettleInstallment(ctx context.Context, req SettleInstallmentRequest) (*ObligationResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "ObligationService", "SettleInstallment",
		telemetry.WithAttribute(telemetry.SpanAttrObligationID, req.ObligationID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentID, req.InstallmentID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.PaidAmount.String()),
		telemetry.WithAttribute(telemetry.SpanAttrIdempotencyKey, req.IdempotencyKey != ""),
	)
	defer span.End()

	var obligation *ledger.Obligation
	var opErr error
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: OperationSettleInstallment,
	}, func(c context.Context) {
		obligation, opErr = s.settleInstallment(c, req)
	})

	outcome, code := settlementOutcome(opErr)
	s.metrics.RecordSettlementAttempt(ctx, outcome, code, start)

	log := logger.WithLogger(ctx, s.logger).With(
		zap.String("obligation_id", req.ObligationID.String()),
		zap.String("installment_id", req.InstallmentID.String()),
	)
	if opErr != nil {
		telemetry.RecordError(span, opErr)
		logRejection(log, "settlement rejected", opErr, zap.String("outcome", outcome))
		return nil, opErr
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrObligationStatus, string(obligation.Status))
	telemetry.SetOK(span)
	log.Info("installment settled",
		zap.String("paid_amount", req.PaidAmount.StringFixed(ledger.CurrencyPrecision)),
		zap.String("obligation_paid_amount", obligation.PaidAmount.StringFixed(ledger.CurrencyPrecision)),
		zap.String("obligation_status", string(obligation.Status)),
		zap.Int("version", obligation.Version),
	)

	s.publishEvents(ctx, obligation)

	resp := ToObligationResponse(obligation, s.now())
	return &resp, nil
}

func (s *ObligationService) settleInstallment(ctx context.Context, req SettleInstallmentRequest) (*ledger.Obligation, error) {
	settlement := req.settlement()
	if err := settlement.Validate(); err != nil {
		return nil, err
	}

	claimed, err := s.claimIdempotencyKey(ctx, req)
	if err != nil {
		return nil, err
	}

	var obligation *ledger.Obligation
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.ObligationRepo().FindByIDForUpdate(ctx, req.ObligationID)
		if err != nil {
			return persistenceError("failed to lock obligation", err)
		}

		installment, err := repos.InstallmentRepo().FindByID(ctx, req.ObligationID, req.InstallmentID)
		if err != nil {
			return persistenceError("failed to load installment", err)
		}
		if err := installment.Settle(settlement); err != nil {
			return err
		}
		if err := repos.InstallmentRepo().SaveSettlement(ctx, installment); err != nil {
			return persistenceError("failed to save settlement", err)
		}

		current, err := repos.InstallmentRepo().FindByObligationID(ctx, req.ObligationID)
		if err != nil {
			return persistenceError("failed to reload installments", err)
		}
		if err := o.ApplySettlement(installment, current); err != nil {
			return err
		}
		if err := repos.ObligationRepo().SaveWithLock(ctx, o); err != nil {
			return persistenceError("failed to save obligation", err)
		}

		obligation = o
		return nil
	})
	if err != nil {
		s.releaseIdempotencyKey(ctx, claimed)
		return nil, err
	}
	return obligation, nil
}

// SettlementKey is the idempotency store key of a settle request
func SettlementKey(installmentID uuid.UUID, idempotencyKey string) string {
	return "ledger:settle:" + installmentID.String() + ":" + idempotencyKey
}

func (s *ObligationService) claimIdempotencyKey(ctx context.Context, req SettleInstallmentRequest) (string, error) {
	if req.IdempotencyKey == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return "", nil
	}

	key := SettlementKey(req.InstallmentID, req.IdempotencyKey)
	isNew, err := s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
	if err != nil {
		return "", fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !isNew {
		return "", ledger.ErrDuplicateSettlement
	}
	return key, nil
}

// releaseIdempotencyKey frees a claim whose settlement did not commit, so the
// caller can retry with the same key
func (s *ObligationService) releaseIdempotencyKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotencyStore.Release(context.WithoutCancel(ctx), key); err != nil {
		logger.WithLogger(ctx, s.logger).Error("failed to release idempotency key",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// GetObligation returns an obligation with its installments
func (s *ObligationService) GetObligation(ctx context.Context, id uuid.UUID) (*ObligationResponse, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("failed to load obligation", err)
	}
	resp := ToObligationResponse(obligation, s.now())
	return &resp, nil
}

// ListObligations returns a page of obligations matching the filter
func (s *ObligationService) ListObligations(ctx context.Context, filter ObligationListFilter) (*shared.Paginated[ObligationResponse], error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}

	obligations, err := s.obligationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, persistenceError("failed to list obligations", err)
	}
	total, err := s.obligationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, persistenceError("failed to count obligations", err)
	}

	asOf := s.now()
	items := make([]ObligationResponse, len(obligations))
	for i := range obligations {
		items[i] = ToObligationResponse(&obligations[i], asOf)
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// ListInstallments returns a page of installments matching the filter
func (s *ObligationService) ListInstallments(ctx context.Context, filter InstallmentListFilter) (*shared.Paginated[InstallmentResponse], error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}

	installments, err := s.installmentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, persistenceError("failed to list installments", err)
	}
	total, err := s.installmentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, persistenceError("failed to count installments", err)
	}

	page := shared.NewPaginated(ToInstallmentResponses(installments, s.now()), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Summarize totals obligations matching the filter by direction and status
func (s *ObligationService) Summarize(ctx context.Context, filter ObligationListFilter) (*SummaryResponse, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}

	rows, err := s.obligationRepo.Summarize(ctx, domainFilter)
	if err != nil {
		return nil, persistenceError("failed to summarize obligations", err)
	}
	resp := toSummaryResponse(rows)
	return &resp, nil
}

// publishEvents hands committed events to the publisher. Delivery failures
// are logged; the ledger write has already committed.
func (s *ObligationService) publishEvents(ctx context.Context, obligation *ledger.Obligation) {
	events := obligation.GetDomainEvents()
	obligation.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish ledger events",
			zap.String("obligation_id", obligation.ID.String()),
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}

// persistenceError keeps domain errors as they are and wraps everything else
func persistenceError(op string, err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func settlementOutcome(err error) (outcome, code string) {
	if err == nil {
		return telemetry.OutcomeSettled, ""
	}
	de, ok := shared.AsDomainError(err)
	if !ok {
		return telemetry.OutcomeRejected, "INTERNAL_ERROR"
	}
	switch de.Code {
	case ledger.CodeDuplicateSettlement:
		return telemetry.OutcomeDuplicate, de.Code
	case shared.ErrConcurrencyConflict.Code:
		return telemetry.OutcomeConflict, de.Code
	}
	return telemetry.OutcomeRejected, de.Code
}

// logRejection logs domain rejections at Warn and infrastructure failures at Error
func logRejection(log *logger.ContextLogger, msg string, err error, fields ...zap.Field) {
	if de, ok := shared.AsDomainError(err); ok {
		log.Warn(msg, append(fields, zap.String("error_code", de.Code), zap.String("error", de.Message))...)
		return
	}
	log.Error(msg, append(fields, zap.Error(err))...)
}

func (f ObligationListFilter) toDomain() (ledger.ObligationFilter, error) {
	out := ledger.ObligationFilter{
		Filter:         normalizePage(f.Filter),
		CounterpartyID: f.CounterpartyID,
		AccountID:      f.AccountID,
		CostCenterID:   f.CostCenterID,
		DocumentNumber: strings.TrimSpace(f.DocumentNumber),
		IssueDateFrom:  f.IssueDateFrom,
		IssueDateTo:    f.IssueDateTo,
		DueDateFrom:    f.DueDateFrom,
		DueDateTo:      f.DueDateTo,
	}
	direction, err := parseDirection(f.Direction)
	if err != nil {
		return out, err
	}
	status, err := parseStatus(f.Status)
	if err != nil {
		return out, err
	}
	out.Direction = direction
	out.Status = status
	return out, nil
}

func (f InstallmentListFilter) toDomain() (ledger.InstallmentFilter, error) {
	out := ledger.InstallmentFilter{
		Filter:             normalizePage(f.Filter),
		ObligationID:       f.ObligationID,
		CounterpartyID:     f.CounterpartyID,
		AccountID:          f.AccountID,
		CostCenterID:       f.CostCenterID,
		DueDateFrom:        f.DueDateFrom,
		DueDateTo:          f.DueDateTo,
		SettlementDateFrom: f.SettlementDateFrom,
		SettlementDateTo:   f.SettlementDateTo,
	}
	direction, err := parseDirection(f.Direction)
	if err != nil {
		return out, err
	}
	status, err := parseStatus(f.Status)
	if err != nil {
		return out, err
	}
	out.Direction = direction
	out.Status = status
	return out, nil
}

const maxPageSize = 100

func normalizePage(f shared.Filter) shared.Filter {
	def := shared.DefaultFilter()
	if f.Page < 1 {
		f.Page = def.Page
	}
	if f.PageSize < 1 {
		f.PageSize = def.PageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	return f
}

func parseDirection(value string) (*ledger.Direction, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d := ledger.Direction(strings.ToUpper(value))
	if !d.IsValid() {
		return nil, shared.NewDomainError(ledger.CodeInvalidDirection, fmt.Sprintf("Invalid direction: %s", value))
	}
	return &d, nil
}

func parseStatus(value string) (*ledger.Status, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	st := ledger.Status(strings.ToUpper(value))
	if !st.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid status: %s", value))
	}
	return &st, nil
}
