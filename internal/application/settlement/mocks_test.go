package settlement

import (
	"context"
	"sync"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Stores
// =============================================================================

type MockInvoiceStore struct {
	mock.Mock
}

func (m *MockInvoiceStore) Create(ctx context.Context, inv *settlement.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceStore) Get(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) Update(ctx context.Context, inv *settlement.Invoice, expectedVersion int) (int, error) {
	args := m.Called(ctx, inv, expectedVersion)
	return args.Int(0), args.Error(1)
}

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) AppendBatch(ctx context.Context, entries []settlement.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerStore) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]settlement.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.LedgerEntry), args.Error(1)
}

type MockAccountResolver struct {
	mock.Mock
}

func (m *MockAccountResolver) ResolveAccounts(ctx context.Context, tenantID uuid.UUID, refs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockAccountDirectory struct {
	mock.Mock
}

func (m *MockAccountDirectory) Lookup(ctx context.Context, tenantID uuid.UUID) (settlement.AccountMapping, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(settlement.AccountMapping), args.Error(1)
}

type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) Append(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// In-memory stores for scenario tests
// =============================================================================

// memoryStores is a single-process stand-in for the database. Its scope
// serializes Execute calls and discards writes made by a failed fn, which is
// enough to exercise all-or-nothing behaviour without a real database.
type memoryStores struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]settlement.Invoice
	entries  []settlement.LedgerEntry
	events   []shared.DomainEvent
	accounts map[uuid.UUID]bool
}

func newMemoryStores(mapping settlement.AccountMapping) *memoryStores {
	return &memoryStores{
		invoices: make(map[uuid.UUID]settlement.Invoice),
		accounts: map[uuid.UUID]bool{
			mapping.AccountsReceivable: true,
			mapping.SalesRevenue:       true,
			mapping.Cash:               true,
		},
	}
}

func (s *memoryStores) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		parent:   s,
		invoices: make(map[uuid.UUID]settlement.Invoice),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for id, inv := range tx.invoices {
		s.invoices[id] = inv
	}
	s.entries = append(s.entries, tx.entries...)
	s.events = append(s.events, tx.events...)
	return nil
}

func (s *memoryStores) invoice(id uuid.UUID) settlement.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoices[id]
}

func (s *memoryStores) entriesFor(invoiceID uuid.UUID) []settlement.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []settlement.LedgerEntry
	for _, e := range s.entries {
		if e.InvoiceRef == invoiceID {
			out = append(out, e)
		}
	}
	return out
}

type memoryTx struct {
	parent   *memoryStores
	invoices map[uuid.UUID]settlement.Invoice
	entries  []settlement.LedgerEntry
	events   []shared.DomainEvent
}

func (tx *memoryTx) Invoices() settlement.InvoiceStore { return tx }
func (tx *memoryTx) Ledger() settlement.LedgerStore { return &memoryLedger{tx: tx} }
func (tx *memoryTx) Accounts() settlement.AccountResolver { return &memoryAccounts{tx: tx} }
func (tx *memoryTx) Outbox() shared.EventOutbox { return &memoryOutbox{tx: tx} }

func (tx *memoryTx) current(id uuid.UUID) (settlement.Invoice, bool) {
	if inv, ok := tx.invoices[id]; ok {
		return inv, true
	}
	inv, ok := tx.parent.invoices[id]
	return inv, ok
}

func (tx *memoryTx) Create(_ context.Context, inv *settlement.Invoice) error {
	tx.invoices[inv.ID] = *inv
	return nil
}

func (tx *memoryTx) Get(_ context.Context, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	inv, ok := tx.current(id)
	if !ok || inv.TenantID != tenantID {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
	}
	inv.ClearDomainEvents()
	return &inv, nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	return tx.Get(ctx, tenantID, id)
}

func (tx *memoryTx) Update(_ context.Context, inv *settlement.Invoice, expectedVersion int) (int, error) {
	stored, ok := tx.current(inv.ID)
	if !ok || stored.Version != expectedVersion {
		return 0, shared.ErrConcurrencyConflict
	}
	tx.invoices[inv.ID] = *inv
	return inv.Version, nil
}

type memoryLedger struct{ tx *memoryTx }

func (l *memoryLedger) AppendBatch(_ context.Context, entries []settlement.LedgerEntry) error {
	l.tx.entries = append(l.tx.entries, entries...)
	return nil
}

func (l *memoryLedger) FindByInvoice(_ context.Context, _, invoiceID uuid.UUID) ([]settlement.LedgerEntry, error) {
	var out []settlement.LedgerEntry
	for _, e := range append(append([]settlement.LedgerEntry{}, l.tx.parent.entries...), l.tx.entries...) {
		if e.InvoiceRef == invoiceID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memoryAccounts struct{ tx *memoryTx }

func (a *memoryAccounts) ResolveAccounts(_ context.Context, _ uuid.UUID, refs []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, ref := range refs {
		if !a.tx.parent.accounts[ref] {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}

type memoryOutbox struct{ tx *memoryTx }

func (o *memoryOutbox) Append(_ context.Context, events ...shared.DomainEvent) error {
	o.tx.events = append(o.tx.events, events...)
	return nil
}

type staticDirectory struct {
	mapping settlement.AccountMapping
}

func (d staticDirectory) Lookup(_ context.Context, tenantID uuid.UUID) (settlement.AccountMapping, error) {
	if tenantID != d.mapping.TenantID {
		return settlement.AccountMapping{}, shared.NewDomainError(shared.CodeNotFound, "Account mapping not found")
	}
	return d.mapping, nil
}
