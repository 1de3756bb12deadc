package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func balancedEntries(invoiceID, ar, cash uuid.UUID, amount int64) []settlement.LedgerEntry {
	lines := []settlement.LedgerEntry{
		settlement.Credit(ar, decimal.NewFromInt(amount)),
		settlement.Debit(cash, decimal.NewFromInt(amount)),
	}
	for i := range lines {
		lines[i].InvoiceRef = invoiceID
	}
	return lines
}

func TestLedgerEngine_PostBatch(t *testing.T) {
	ctx := context.Background()
	tenantID, invoiceID := uuid.New(), uuid.New()
	ar, cash := uuid.New(), uuid.New()

	t.Run("assigns batch id and row numbers", func(t *testing.T) {
		ledger := new(MockLedgerStore)
		accounts := new(MockAccountResolver)
		accounts.On("ResolveAccounts", mock.Anything, tenantID, []uuid.UUID{ar, cash}).Return([]uuid.UUID{}, nil)
		ledger.On("AppendBatch", mock.Anything, mock.MatchedBy(func(rows []settlement.LedgerEntry) bool {
			return len(rows) == 2 && rows[0].RowNum == 1 && rows[1].RowNum == 2 &&
				rows[0].BatchID != uuid.Nil && rows[0].BatchID == rows[1].BatchID
		})).Return(nil)

		posted, err := NewLedgerEngine(ledger, accounts).PostBatch(ctx, tenantID, balancedEntries(invoiceID, ar, cash, 400))

		require.NoError(t, err)
		require.Len(t, posted.Entries, 2)
		for i, row := range posted.Entries {
			assert.Equal(t, i+1, row.RowNum)
			assert.Equal(t, posted.BatchID, row.BatchID)
			assert.Equal(t, tenantID, row.TenantID)
			assert.NotEqual(t, uuid.Nil, row.ID)
			assert.False(t, row.TransactionDate.IsZero())
		}
		assert.Len(t, posted.EntryIDs(), 2)
		assert.Equal(t, uuid.Version(7), posted.BatchID.Version())
		ledger.AssertExpectations(t)
		accounts.AssertExpectations(t)
	})

	t.Run("batch ids follow posting order", func(t *testing.T) {
		ledger := new(MockLedgerStore)
		accounts := new(MockAccountResolver)
		accounts.On("ResolveAccounts", mock.Anything, tenantID, mock.Anything).Return([]uuid.UUID{}, nil)
		ledger.On("AppendBatch", mock.Anything, mock.Anything).Return(nil)
		engine := NewLedgerEngine(ledger, accounts)

		var last string
		for i := 0; i < 20; i++ {
			posted, err := engine.PostBatch(ctx, tenantID, balancedEntries(invoiceID, ar, cash, 10))
			require.NoError(t, err)
			assert.Greater(t, posted.BatchID.String(), last)
			last = posted.BatchID.String()
		}
	})

	t.Run("rejects unbalanced batch before touching storage", func(t *testing.T) {
		ledger := new(MockLedgerStore)
		accounts := new(MockAccountResolver)
		entries := balancedEntries(invoiceID, ar, cash, 400)
		entries[1].Amount = decimal.RequireFromString("399.99")

		_, err := NewLedgerEngine(ledger, accounts).PostBatch(ctx, tenantID, entries)

		assert.ErrorIs(t, err, shared.ErrUnbalancedBatch)
		ledger.AssertNotCalled(t, "AppendBatch", mock.Anything, mock.Anything)
		accounts.AssertNotCalled(t, "ResolveAccounts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		_, err := NewLedgerEngine(new(MockLedgerStore), new(MockAccountResolver)).PostBatch(ctx, tenantID, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects rows for different invoices", func(t *testing.T) {
		entries := balancedEntries(invoiceID, ar, cash, 10)
		entries[1].InvoiceRef = uuid.New()

		_, err := NewLedgerEngine(new(MockLedgerStore), new(MockAccountResolver)).PostBatch(ctx, tenantID, entries)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects rows for another tenant", func(t *testing.T) {
		entries := balancedEntries(invoiceID, ar, cash, 10)
		entries[0].TenantID = uuid.New()

		_, err := NewLedgerEngine(new(MockLedgerStore), new(MockAccountResolver)).PostBatch(ctx, tenantID, entries)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown account", func(t *testing.T) {
		ledger := new(MockLedgerStore)
		accounts := new(MockAccountResolver)
		accounts.On("ResolveAccounts", mock.Anything, tenantID, mock.Anything).Return([]uuid.UUID{cash}, nil)

		_, err := NewLedgerEngine(ledger, accounts).PostBatch(ctx, tenantID, balancedEntries(invoiceID, ar, cash, 10))

		assert.ErrorIs(t, err, shared.ErrUnknownAccount)
		assert.Contains(t, err.Error(), cash.String())
		ledger.AssertNotCalled(t, "AppendBatch", mock.Anything, mock.Anything)
	})

	t.Run("storage failure becomes posting error", func(t *testing.T) {
		ledger := new(MockLedgerStore)
		accounts := new(MockAccountResolver)
		accounts.On("ResolveAccounts", mock.Anything, tenantID, mock.Anything).Return([]uuid.UUID{}, nil)
		cause := errors.New("disk full")
		ledger.On("AppendBatch", mock.Anything, mock.Anything).Return(cause)

		_, err := NewLedgerEngine(ledger, accounts).PostBatch(ctx, tenantID, balancedEntries(invoiceID, ar, cash, 10))

		assert.ErrorIs(t, err, shared.ErrPosting)
		assert.ErrorIs(t, err, cause)
		assert.True(t, shared.IsRetryable(err))
	})

	t.Run("conflict from storage passes through", func(t *testing.T) {
		ledger := new(MockLedgerStore)
		accounts := new(MockAccountResolver)
		accounts.On("ResolveAccounts", mock.Anything, tenantID, mock.Anything).Return([]uuid.UUID{}, nil)
		ledger.On("AppendBatch", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := NewLedgerEngine(ledger, accounts).PostBatch(ctx, tenantID, balancedEntries(invoiceID, ar, cash, 10))

		assert.Equal(t, shared.CodeConcurrencyConflict, shared.CodeOf(err))
	})
}
