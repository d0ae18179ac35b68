package models

import (
	"github.com/google/uuid"
)

// DocumentStatus represents the review state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Document is stored file metadata. The bytes live in object storage;
// only the reference and access-control fields live here.
type Document struct {
	BaseModel
	// OwnerID is the user account the document belongs to.
	OwnerID *uuid.UUID `gorm:"column:owner_id;type:uuid;index" json:"ownerId,omitempty"`
	// Optional links to the client or caregiver the document concerns.
	ClientID    *uuid.UUID `gorm:"column:client_id;type:uuid;index" json:"clientId,omitempty"`
	CaregiverID *uuid.UUID `gorm:"column:caregiver_id;type:uuid;index" json:"caregiverId,omitempty"`

	DocumentType string         `gorm:"column:document_type;type:varchar(50);not null" json:"documentType"`
	FileName     string         `gorm:"column:file_name;not null" json:"fileName"`
	ContentType  string         `gorm:"column:content_type;type:varchar(100)" json:"contentType,omitempty"`
	SizeBytes    int64          `gorm:"column:size_bytes" json:"sizeBytes,omitempty"`
	StorageKey   string         `gorm:"column:storage_key;not null" json:"-"`
	Status       DocumentStatus `gorm:"column:status;type:varchar(20);not null;default:draft" json:"status"`
}

// TableName sets the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// ResourceType implements ProtectedResource
func (Document) ResourceType() string { return ResourceTypeDocument }

// ResourceID implements ProtectedResource
func (d *Document) ResourceID() uuid.UUID { return d.ID }

// OwnerUserID implements ProtectedResource
func (d *Document) OwnerUserID() *uuid.UUID { return d.OwnerID }
