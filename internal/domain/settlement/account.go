package settlement

import (
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType classifies a ledger account
type AccountType string

const (
	AccountTypeAsset   AccountType = "ASSET"
	AccountTypeRevenue AccountType = "REVENUE"
)

// LedgerAccount is an account that ledger entries may reference
type LedgerAccount struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Code     string
	Name     string
	Type     AccountType
}

// AccountMapping holds the tenant's accounts used by settlement postings.
// It is passed explicitly to every posting rule.
type AccountMapping struct {
	TenantID           uuid.UUID
	AccountsReceivable uuid.UUID
	SalesRevenue       uuid.UUID
	Cash               uuid.UUID
}

// Validate checks that all three accounts are set and AR is distinct from the others
func (m AccountMapping) Validate() error {
	if m.AccountsReceivable == uuid.Nil || m.SalesRevenue == uuid.Nil || m.Cash == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Account mapping is incomplete")
	}
	if m.AccountsReceivable == m.SalesRevenue || m.AccountsReceivable == m.Cash {
		return shared.NewDomainError(shared.CodeValidation, "Accounts receivable must differ from revenue and cash accounts")
	}
	return nil
}
