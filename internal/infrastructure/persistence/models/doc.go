// Package models contains the GORM persistence models behind the settlement stores.
// Domain types stay free of ORM tags; each model converts with ToDomain / FromDomain.
//
// Tables:
//   - invoices: InvoiceModel, versioned for optimistic locking
//   - ledger_entries: LedgerEntryModel, append-only, one non-zero side per row
//   - ledger_accounts, account_mappings: the per-tenant chart used by postings
//   - outbox_events: OutboxEntryModel for domain events written with a settlement
package models
