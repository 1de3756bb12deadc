package persistence

import (
	"context"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements settlement.LedgerStore using GORM.
// Rows are only ever inserted.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx returns a new repository bound to the given transaction
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: tx}
}

// AppendBatch inserts all entries with a single multi-row INSERT
func (r *GormLedgerRepository) AppendBatch(ctx context.Context, entries []settlement.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.LedgerEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.LedgerEntryModelFromDomain(e)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return translateError(err, "failed to append ledger batch")
	}
	return nil
}

// FindByInvoice returns the invoice's rows in posting order.
// Batch IDs are UUIDv7, so batch_id order is the order batches were posted.
func (r *GormLedgerRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]settlement.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("batch_id ASC, row_num ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "failed to load ledger entries")
	}

	entries := make([]settlement.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormLedgerRepository implements settlement.LedgerStore
var _ settlement.LedgerStore = (*GormLedgerRepository)(nil)
