package settlement

import (
	"context"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
)

// TransactionScope runs settlement work inside one database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the stores bound to the current transaction.
// Ledger rows, the invoice header and outbox rows written through them commit
// or roll back together.
type TransactionalRepositories interface {
	Invoices() settlement.InvoiceStore
	Ledger() settlement.LedgerStore
	Accounts() settlement.AccountResolver
	Outbox() shared.EventOutbox
}

// NoOpTransactionScope runs fn directly against the given stores without a
// transaction. Useful for tests.
type NoOpTransactionScope struct {
	invoices settlement.InvoiceStore
	ledger   settlement.LedgerStore
	accounts settlement.AccountResolver
	outbox   shared.EventOutbox
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given stores
func NewNoOpTransactionScope(
	invoices settlement.InvoiceStore,
	ledger settlement.LedgerStore,
	accounts settlement.AccountResolver,
	outbox shared.EventOutbox,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoices: invoices,
		ledger:   ledger,
		accounts: accounts,
		outbox:   outbox,
	}
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Invoices returns the invoice store
func (s *NoOpTransactionScope) Invoices() settlement.InvoiceStore { return s.invoices }

// Ledger returns the ledger store
func (s *NoOpTransactionScope) Ledger() settlement.LedgerStore { return s.ledger }

// Accounts returns the account resolver
func (s *NoOpTransactionScope) Accounts() settlement.AccountResolver { return s.accounts }

// Outbox returns the event outbox
func (s *NoOpTransactionScope) Outbox() shared.EventOutbox { return s.outbox }
