package ledger

import "github.com/erp/ledger/internal/domain/shared"

// Error codes raised by the ledger
const (
	CodeInvalidAmount            = "INVALID_AMOUNT"
	CodeInvalidInstallmentCount  = "INVALID_INSTALLMENT_COUNT"
	CodeInvalidIntervalDays      = "INVALID_INTERVAL_DAYS"
	CodeInvalidDirection         = "INVALID_DIRECTION"
	CodeInvalidDate              = "INVALID_DATE"
	CodeInvalidDescription       = "INVALID_DESCRIPTION"
	CodeInvalidDocumentNumber    = "INVALID_DOCUMENT_NUMBER"
	CodeInvalidCounterparty      = "INVALID_COUNTERPARTY"
	CodeInvalidAccount           = "INVALID_ACCOUNT"
	CodeInvalidCreator           = "INVALID_CREATOR"
	CodeObligationNotFound       = "OBLIGATION_NOT_FOUND"
	CodeInstallmentNotFound      = "INSTALLMENT_NOT_FOUND"
	CodeInstallmentSettled       = "INSTALLMENT_ALREADY_SETTLED"
	CodeInstallmentMismatch      = "INSTALLMENT_MISMATCH"
	CodeDuplicateSettlement      = "DUPLICATE_SETTLEMENT"
	CodeInvalidSettlementRequest = "INVALID_SETTLEMENT"
)

var (
	ErrObligationNotFound        = shared.NewDomainError(CodeObligationNotFound, "Obligation not found")
	ErrInstallmentNotFound       = shared.NewDomainError(CodeInstallmentNotFound, "Installment not found")
	ErrInstallmentAlreadySettled = shared.NewDomainError(CodeInstallmentSettled, "Installment is already settled")
	ErrDuplicateSettlement       = shared.NewDomainError(CodeDuplicateSettlement, "Settlement with this idempotency key was already submitted")
)
