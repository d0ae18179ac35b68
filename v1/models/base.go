package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains the common fields every protected resource carries:
// UUID primary key, timestamps, the soft-delete flag, and the acting-user
// references stamped by the repository on writes.
type BaseModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updatedAt"`
	IsDeleted   bool       `gorm:"column:is_deleted;not null;default:false;index" json:"isDeleted"`
	CreatedByID *uuid.UUID `gorm:"column:created_by_id;type:uuid" json:"createdById,omitempty"`
	UpdatedByID *uuid.UUID `gorm:"column:updated_by_id;type:uuid" json:"updatedById,omitempty"`
}

// BeforeCreate GORM hook for BaseModel
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM hook for BaseModel
func (b *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Base exposes the embedded BaseModel so generic code can stamp the
// created-by/updated-by columns without reflection.
func (b *BaseModel) Base() *BaseModel {
	return b
}

// ProtectedResource is implemented by every model the policy evaluator and
// soft-delete repository operate on.
type ProtectedResource interface {
	// ResourceType is the tag recorded in audit entries, e.g. "Patient".
	ResourceType() string
	// ResourceID is the row's primary key.
	ResourceID() uuid.UUID
	// OwnerUserID is the user account that owns the record, if any.
	// Used for own-scope authorization checks.
	OwnerUserID() *uuid.UUID
}
