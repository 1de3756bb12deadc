package models

import (
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root
type InvoiceModel struct {
	TenantAggregateModel
	CustomerRef       string                   `gorm:"type:varchar(100);not null;index"`
	IssueDate         time.Time                `gorm:"type:date;not null"`
	InvoiceAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status            settlement.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	Description       string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *settlement.Invoice {
	return &settlement.Invoice{
		TenantAggregateRoot: m.TenantAggregateModel.toDomain(),
		CustomerRef:         m.CustomerRef,
		IssueDate:           m.IssueDate,
		InvoiceAmount:       m.InvoiceAmount,
		OutstandingAmount:   m.OutstandingAmount,
		Status:              m.Status,
		Description:         m.Description,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *settlement.Invoice) {
	m.TenantAggregateModel = tenantAggregateModel(inv.TenantAggregateRoot)
	m.CustomerRef = inv.CustomerRef
	m.IssueDate = inv.IssueDate
	m.InvoiceAmount = inv.InvoiceAmount
	m.OutstandingAmount = inv.OutstandingAmount
	m.Status = inv.Status
	m.Description = inv.Description
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *settlement.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// LedgerEntryModel is one append-only ledger row.
// Exactly one of DebitAmount and CreditAmount is non-zero.
type LedgerEntryModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primaryKey"`
	BatchID         uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_batch_row,priority:1"`
	TenantID        uuid.UUID                `gorm:"type:uuid;not null;index:idx_ledger_tenant_invoice,priority:1"`
	TransactionDate time.Time                `gorm:"not null"`
	AccountID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	DebitAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null;check:chk_ledger_entries_one_side,(debit_amount > 0 AND credit_amount = 0) OR (debit_amount = 0 AND credit_amount > 0)"`
	CreditAmount    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	InvoiceID       uuid.UUID                `gorm:"type:uuid;not null;index:idx_ledger_tenant_invoice,priority:2"`
	BillID          *uuid.UUID               `gorm:"type:uuid"`
	RowNum          int                      `gorm:"not null;uniqueIndex:idx_ledger_batch_row,priority:2"`
	StatusSnapshot  settlement.InvoiceStatus `gorm:"type:varchar(20);not null"`
	Description     string                   `gorm:"type:varchar(500)"`
	CreatedAt       time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the row back to a tagged LedgerEntry.
// The side is taken from whichever amount column is non-zero.
func (m *LedgerEntryModel) ToDomain() settlement.LedgerEntry {
	side, amount := settlement.EntrySideDebit, m.DebitAmount
	if m.CreditAmount.IsPositive() {
		side, amount = settlement.EntrySideCredit, m.CreditAmount
	}
	return settlement.LedgerEntry{
		ID:              m.ID,
		BatchID:         m.BatchID,
		TenantID:        m.TenantID,
		TransactionDate: m.TransactionDate,
		AccountRef:      m.AccountID,
		Side:            side,
		Amount:          amount,
		InvoiceRef:      m.InvoiceID,
		BillRef:         m.BillID,
		RowNum:          m.RowNum,
		StatusSnapshot:  m.StatusSnapshot,
		Description:     m.Description,
		CreatedAt:       m.CreatedAt,
	}
}

// FromDomain populates the row from a domain LedgerEntry
func (m *LedgerEntryModel) FromDomain(e settlement.LedgerEntry) {
	m.ID = e.ID
	m.BatchID = e.BatchID
	m.TenantID = e.TenantID
	m.TransactionDate = e.TransactionDate
	m.AccountID = e.AccountRef
	m.DebitAmount = e.DebitAmount()
	m.CreditAmount = e.CreditAmount()
	m.InvoiceID = e.InvoiceRef
	m.BillID = e.BillRef
	m.RowNum = e.RowNum
	m.StatusSnapshot = e.StatusSnapshot
	m.Description = e.Description
	m.CreatedAt = e.CreatedAt
}

// LedgerEntryModelFromDomain creates a new row from a domain LedgerEntry
func LedgerEntryModelFromDomain(e settlement.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// LedgerAccountModel is the persistence model for a ledger account
type LedgerAccountModel struct {
	BaseModel
	TenantID uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_account_tenant_code,priority:1"`
	Code     string                 `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_account_tenant_code,priority:2"`
	Name     string                 `gorm:"type:varchar(100);not null"`
	Type     settlement.AccountType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (LedgerAccountModel) TableName() string {
	return "ledger_accounts"
}

// ToDomain converts the persistence model to a domain LedgerAccount
func (m *LedgerAccountModel) ToDomain() settlement.LedgerAccount {
	return settlement.LedgerAccount{
		ID:       m.ID,
		TenantID: m.TenantID,
		Code:     m.Code,
		Name:     m.Name,
		Type:     m.Type,
	}
}

// FromDomain populates the persistence model from a domain LedgerAccount
func (m *LedgerAccountModel) FromDomain(a settlement.LedgerAccount) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
}

// AccountMappingModel stores a tenant's settlement accounts, one row per tenant
type AccountMappingModel struct {
	TenantID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountsReceivable uuid.UUID `gorm:"column:accounts_receivable_id;type:uuid;not null"`
	SalesRevenue       uuid.UUID `gorm:"column:sales_revenue_id;type:uuid;not null"`
	Cash               uuid.UUID `gorm:"column:cash_id;type:uuid;not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountMappingModel) TableName() string {
	return "account_mappings"
}

// ToDomain converts the persistence model to a domain AccountMapping
func (m *AccountMappingModel) ToDomain() settlement.AccountMapping {
	return settlement.AccountMapping{
		TenantID:           m.TenantID,
		AccountsReceivable: m.AccountsReceivable,
		SalesRevenue:       m.SalesRevenue,
		Cash:               m.Cash,
	}
}

// FromDomain populates the persistence model from a domain AccountMapping
func (m *AccountMappingModel) FromDomain(mapping settlement.AccountMapping) {
	m.TenantID = mapping.TenantID
	m.AccountsReceivable = mapping.AccountsReceivable
	m.SalesRevenue = mapping.SalesRevenue
	m.Cash = mapping.Cash
}
