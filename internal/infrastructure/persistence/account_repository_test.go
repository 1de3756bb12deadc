package persistence

import (
	"context"
	"testing"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAccountRepository_SeedAccounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	mapping, err := repo.SeedAccounts(ctx, tenantID)
	require.NoError(t, err)
	require.NoError(t, mapping.Validate())
	assert.Equal(t, tenantID, mapping.TenantID)

	accounts, err := repo.ListAccounts(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "1000", accounts[0].Code)
	assert.Equal(t, mapping.Cash, accounts[0].ID)
	assert.Equal(t, "1100", accounts[1].Code)
	assert.Equal(t, mapping.AccountsReceivable, accounts[1].ID)
	assert.Equal(t, "4000", accounts[2].Code)
	assert.Equal(t, mapping.SalesRevenue, accounts[2].ID)
	assert.Equal(t, settlement.AccountTypeRevenue, accounts[2].Type)

	t.Run("seeding again is a no-op", func(t *testing.T) {
		again, err := repo.SeedAccounts(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, mapping, again)

		accounts, err := repo.ListAccounts(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, accounts, 3)
	})

	t.Run("nil tenant is rejected", func(t *testing.T) {
		_, err := repo.SeedAccounts(ctx, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestGormAccountRepository_Lookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := repo.Lookup(ctx, tenantID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	seeded, err := repo.SeedAccounts(ctx, tenantID)
	require.NoError(t, err)

	mapping, err := repo.Lookup(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, seeded, mapping)
}

func TestGormAccountRepository_ResolveAccounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	mappingA, err := repo.SeedAccounts(ctx, tenantA)
	require.NoError(t, err)
	mappingB, err := repo.SeedAccounts(ctx, tenantB)
	require.NoError(t, err)
	unknown := uuid.New()

	tests := []struct {
		name        string
		refs        []uuid.UUID
		wantMissing []uuid.UUID
	}{
		{"all resolve", []uuid.UUID{mappingA.AccountsReceivable, mappingA.Cash}, nil},
		{"unknown account", []uuid.UUID{mappingA.Cash, unknown}, []uuid.UUID{unknown}},
		{"other tenant's account", []uuid.UUID{mappingB.SalesRevenue}, []uuid.UUID{mappingB.SalesRevenue}},
		{"no refs", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing, err := repo.ResolveAccounts(ctx, tenantA, tt.refs)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}
