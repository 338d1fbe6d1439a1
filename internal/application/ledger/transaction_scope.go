package ledger

import (
	"context"

	"github.com/erp/ledger/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every repository call made inside fn joins the same database transaction,
// which commits when fn returns nil and rolls back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to one transaction.
//
// Obligation is the aggregate root. Installments get their own repository
// because settlement writes a single row and re-reads the full set before the
// header is recomputed.
type TransactionalRepositories interface {
	ObligationRepo() ledger.ObligationRepository
	InstallmentRepo() ledger.InstallmentRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Used by unit tests.
type NoOpTransactionScope struct {
	obligationRepo  ledger.ObligationRepository
	installmentRepo ledger.InstallmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(obligationRepo ledger.ObligationRepository, installmentRepo ledger.InstallmentRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{obligationRepo: obligationRepo, installmentRepo: installmentRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ObligationRepo returns the obligation repository
func (s *NoOpTransactionScope) ObligationRepo() ledger.ObligationRepository {
	return s.obligationRepo
}

// InstallmentRepo returns the installment repository
func (s *NoOpTransactionScope) InstallmentRepo() ledger.InstallmentRepository {
	return s.installmentRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
