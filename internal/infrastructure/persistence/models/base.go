package models

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the identity and audit columns shared by the settlement tables
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TenantAggregateModel adds the tenant and the optimistic-locking version.
// Updates go through a WHERE version = ? guard, never through GORM's Save.
type TenantAggregateModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Version  int       `gorm:"not null;default:1"`
}

func tenantAggregateModel(root shared.TenantAggregateRoot) TenantAggregateModel {
	return TenantAggregateModel{
		BaseModel: BaseModel{ID: root.ID, CreatedAt: root.CreatedAt, UpdatedAt: root.UpdatedAt},
		TenantID:  root.TenantID,
		Version:   root.Version,
	}
}

func (m TenantAggregateModel) toDomain() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		TenantID:   m.TenantID,
		Version:    m.Version,
	}
}
