package persistence

import (
	"context"

	appsettlement "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Invoice, ledger and outbox writes made through the repositories it hands
// out commit or roll back together.
type GormTransactionScope struct {
	db        *gorm.DB
	invoices  *GormInvoiceRepository
	ledger    *GormLedgerRepository
	accounts  *GormAccountRepository
	publisher *event.OutboxPublisher
}

// NewGormTransactionScope creates a new GormTransactionScope.
// noWait makes row-lock reads fail immediately when another transaction holds the lock.
func NewGormTransactionScope(db *gorm.DB, publisher *event.OutboxPublisher, noWait bool) *GormTransactionScope {
	return &GormTransactionScope{
		db:        db,
		invoices:  NewGormInvoiceRepository(db).WithNoWait(noWait),
		ledger:    NewGormLedgerRepository(db),
		accounts:  NewGormAccountRepository(db),
		publisher: publisher,
	}
}

// Execute runs fn within a database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
// Commit failures are translated like any other storage error.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{scope: s, tx: tx})
	})
	return translateError(err, "settlement transaction failed")
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	scope *GormTransactionScope
	tx    *gorm.DB
}

// Invoices returns the invoice store scoped to the current transaction
func (r *gormTransactionalRepositories) Invoices() settlement.InvoiceStore {
	return r.scope.invoices.WithTx(r.tx)
}

// Ledger returns the ledger store scoped to the current transaction
func (r *gormTransactionalRepositories) Ledger() settlement.LedgerStore {
	return r.scope.ledger.WithTx(r.tx)
}

// Accounts returns the account resolver scoped to the current transaction
func (r *gormTransactionalRepositories) Accounts() settlement.AccountResolver {
	return r.scope.accounts.WithTx(r.tx)
}

// Outbox returns the event outbox scoped to the current transaction
func (r *gormTransactionalRepositories) Outbox() shared.EventOutbox {
	return r.scope.publisher.WithTx(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appsettlement.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appsettlement.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
