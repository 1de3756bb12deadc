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

// GormInvoiceRepository implements settlement.InvoiceStore using GORM
type GormInvoiceRepository struct {
	db     *gorm.DB
	noWait bool
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// WithNoWait returns a copy whose GetForUpdate fails fast with a concurrency
// conflict instead of waiting for a row lock held by another transaction
func (r *GormInvoiceRepository) WithNoWait(noWait bool) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: r.db, noWait: noWait}
}

// WithTx returns a new repository bound to the given transaction
func (r *GormInvoiceRepository) WithTx(tx *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: tx, noWait: r.noWait}
}

// Create inserts a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *settlement.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "failed to create invoice")
	}
	return nil
}

// Get loads an invoice for a tenant
func (r *GormInvoiceRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// GetForUpdate loads an invoice with SELECT ... FOR UPDATE.
// The row lock is held until the surrounding transaction ends.
func (r *GormInvoiceRepository) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	locking := clause.Locking{Strength: "UPDATE"}
	if r.noWait {
		locking.Options = "NOWAIT"
	}
	return r.find(r.db.WithContext(ctx).Clauses(locking), tenantID, id)
}

func (r *GormInvoiceRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	var model models.InvoiceModel
	err := db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice "+id.String()+" not found")
		}
		return nil, translateError(err, "failed to load invoice")
	}
	return model.ToDomain(), nil
}

// Update writes the settled status and outstanding amount when the stored
// version still equals expectedVersion, and returns the incremented version.
// Zero affected rows means another writer got there first.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *settlement.Invoice, expectedVersion int) (int, error) {
	newVersion := expectedVersion + 1
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", inv.ID, inv.TenantID, expectedVersion).
		Updates(map[string]any{
			"status":             inv.Status,
			"outstanding_amount": inv.OutstandingAmount,
			"version":            newVersion,
			"updated_at":         inv.UpdatedAt,
		})
	if result.Error != nil {
		return 0, translateError(result.Error, "failed to update invoice")
	}
	if result.RowsAffected == 0 {
		return 0, shared.NewDomainError(shared.CodeConcurrencyConflict,
			"Invoice "+inv.ID.String()+" was modified by another process, reload and retry")
	}

	inv.Version = newVersion
	return newVersion, nil
}

// Ensure GormInvoiceRepository implements settlement.InvoiceStore
var _ settlement.InvoiceStore = (*GormInvoiceRepository)(nil)
