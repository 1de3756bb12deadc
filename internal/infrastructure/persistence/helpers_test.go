package persistence

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the settlement schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: opens a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.LedgerAccountModel{},
		&models.AccountMappingModel{},
		&models.InvoiceModel{},
		&models.LedgerEntryModel{},
		&models.OutboxEntryModel{},
	))
	return db
}

// newMockDB creates a GORM postgres connection over sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newPendingInvoice(t *testing.T, tenantID uuid.UUID, amount string) *settlement.Invoice {
	t.Helper()
	inv, err := settlement.NewInvoice(tenantID, "CUST-001", decimal.RequireFromString(amount),
		"Consulting services", settlement.InvoiceStatusPending, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return inv
}

var invoiceColumns = []string{
	"id", "tenant_id", "version", "created_at", "updated_at",
	"customer_ref", "issue_date", "invoice_amount", "outstanding_amount", "status", "description",
}

func invoiceRow(inv *settlement.Invoice) []driver.Value {
	return []driver.Value{
		inv.ID.String(), inv.TenantID.String(), inv.Version, inv.CreatedAt, inv.UpdatedAt,
		inv.CustomerRef, inv.IssueDate, inv.InvoiceAmount.String(), inv.OutstandingAmount.String(),
		string(inv.Status), inv.Description,
	}
}
