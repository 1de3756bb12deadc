package settlement

import (
	"testing"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEntry_SideAmounts(t *testing.T) {
	account := uuid.New()

	debit := Debit(account, decimal.NewFromInt(250))
	assert.True(t, debit.DebitAmount().Equal(decimal.NewFromInt(250)))
	assert.True(t, debit.CreditAmount().IsZero())

	credit := Credit(account, decimal.NewFromInt(250))
	assert.True(t, credit.CreditAmount().Equal(decimal.NewFromInt(250)))
	assert.True(t, credit.DebitAmount().IsZero())
}

func TestLedgerEntry_Validate(t *testing.T) {
	account := uuid.New()

	tests := []struct {
		name  string
		entry LedgerEntry
		valid bool
	}{
		{"debit", Debit(account, decimal.NewFromInt(1)), true},
		{"credit", Credit(account, decimal.NewFromInt(1)), true},
		{"zero amount", Debit(account, decimal.Zero), false},
		{"negative amount", Credit(account, decimal.NewFromInt(-1)), false},
		{"missing account", Debit(uuid.Nil, decimal.NewFromInt(1)), false},
		{"untagged side", LedgerEntry{AccountRef: account, Amount: decimal.NewFromInt(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrValidation)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	ar, cash := uuid.New(), uuid.New()

	t.Run("balanced batch", func(t *testing.T) {
		err := ValidateBatch([]LedgerEntry{
			Credit(ar, decimal.RequireFromString("400.00")),
			Debit(cash, decimal.RequireFromString("400")),
		})
		assert.NoError(t, err)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.ErrorIs(t, ValidateBatch(nil), shared.ErrValidation)
	})

	t.Run("unbalanced by one cent", func(t *testing.T) {
		err := ValidateBatch([]LedgerEntry{
			Credit(ar, decimal.RequireFromString("400.00")),
			Debit(cash, decimal.RequireFromString("399.99")),
		})
		assert.ErrorIs(t, err, shared.ErrUnbalancedBatch)
	})

	t.Run("one sided", func(t *testing.T) {
		err := ValidateBatch([]LedgerEntry{Debit(cash, decimal.NewFromInt(10))})
		assert.ErrorIs(t, err, shared.ErrUnbalancedBatch)
	})

	t.Run("invalid row reported with position", func(t *testing.T) {
		err := ValidateBatch([]LedgerEntry{
			Debit(cash, decimal.NewFromInt(10)),
			Credit(ar, decimal.Zero),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "entry 2")
	})
}

func TestDistinctAccounts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	refs := DistinctAccounts([]LedgerEntry{
		Debit(a, decimal.NewFromInt(1)),
		Credit(b, decimal.NewFromInt(1)),
		Debit(a, decimal.NewFromInt(2)),
		Credit(b, decimal.NewFromInt(2)),
	})
	assert.Equal(t, []uuid.UUID{a, b}, refs)
}

func TestAccountMapping_Validate(t *testing.T) {
	ar, rev, cash := uuid.New(), uuid.New(), uuid.New()

	assert.NoError(t, AccountMapping{AccountsReceivable: ar, SalesRevenue: rev, Cash: cash}.Validate())
	assert.ErrorIs(t, AccountMapping{AccountsReceivable: ar, SalesRevenue: rev}.Validate(), shared.ErrValidation)
	assert.ErrorIs(t, AccountMapping{AccountsReceivable: ar, SalesRevenue: rev, Cash: ar}.Validate(), shared.ErrValidation)
}
