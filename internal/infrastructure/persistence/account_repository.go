package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Standard chart used when seeding a tenant
var defaultAccounts = []struct {
	Code string
	Name string
	Type settlement.AccountType
}{
	{"1100", "Accounts Receivable", settlement.AccountTypeAsset},
	{"4000", "Sales Revenue", settlement.AccountTypeRevenue},
	{"1000", "Cash", settlement.AccountTypeAsset},
}

// GormAccountRepository serves the account directory and resolver from
// the ledger_accounts and account_mappings tables
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// WithTx returns a new repository bound to the given transaction
func (r *GormAccountRepository) WithTx(tx *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: tx}
}

// Lookup returns the tenant's settlement account mapping
func (r *GormAccountRepository) Lookup(ctx context.Context, tenantID uuid.UUID) (settlement.AccountMapping, error) {
	var model models.AccountMappingModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settlement.AccountMapping{}, shared.NewDomainError(shared.CodeNotFound,
				"Account mapping not found for tenant "+tenantID.String())
		}
		return settlement.AccountMapping{}, translateError(err, "failed to load account mapping")
	}
	return model.ToDomain(), nil
}

// ResolveAccounts returns the refs that are not ledger accounts of the tenant
func (r *GormAccountRepository) ResolveAccounts(ctx context.Context, tenantID uuid.UUID, refs []uuid.UUID) ([]uuid.UUID, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.LedgerAccountModel{}).
		Where("tenant_id = ? AND id IN ?", tenantID, refs).
		Pluck("id", &found).Error
	if err != nil {
		return nil, translateError(err, "failed to resolve ledger accounts")
	}

	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, ref := range refs {
		if _, ok := known[ref]; !ok {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}

// ListAccounts returns the tenant's ledger accounts ordered by code
func (r *GormAccountRepository) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]settlement.LedgerAccount, error) {
	var rows []models.LedgerAccountModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("code ASC").Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "failed to list ledger accounts")
	}
	accounts := make([]settlement.LedgerAccount, len(rows))
	for i := range rows {
		accounts[i] = rows[i].ToDomain()
	}
	return accounts, nil
}

// SeedAccounts creates the receivable, revenue and cash accounts and the
// tenant's mapping. Running it again leaves existing rows untouched and
// returns the stored mapping.
func (r *GormAccountRepository) SeedAccounts(ctx context.Context, tenantID uuid.UUID) (settlement.AccountMapping, error) {
	if tenantID == uuid.Nil {
		return settlement.AccountMapping{}, shared.NewDomainError(shared.CodeValidation, "Tenant ID cannot be empty")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		ids := make([]uuid.UUID, len(defaultAccounts))
		for i, def := range defaultAccounts {
			account := models.LedgerAccountModel{
				BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				TenantID:  tenantID,
				Code:      def.Code,
				Name:      def.Name,
				Type:      def.Type,
			}
			if err := tx.Where("tenant_id = ? AND code = ?", tenantID, def.Code).
				FirstOrCreate(&account).Error; err != nil {
				return err
			}
			ids[i] = account.ID
		}

		mapping := models.AccountMappingModel{
			TenantID:           tenantID,
			AccountsReceivable: ids[0],
			SalesRevenue:       ids[1],
			Cash:               ids[2],
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mapping).Error
	})
	if err != nil {
		return settlement.AccountMapping{}, translateError(err, "failed to seed ledger accounts")
	}

	return r.Lookup(ctx, tenantID)
}

// Ensure GormAccountRepository implements the directory and resolver interfaces
var (
	_ settlement.AccountDirectory = (*GormAccountRepository)(nil)
	_ settlement.AccountResolver  = (*GormAccountRepository)(nil)
)
