package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction is the closed set of auditable action kinds.
type AuditAction string

const (
	// Authentication actions
	AuditActionLogin           AuditAction = "login"
	AuditActionLogout          AuditAction = "logout"
	AuditActionLoginFailed     AuditAction = "login_failed"
	AuditActionPasswordChanged AuditAction = "password_changed"
	AuditActionPasswordReset   AuditAction = "password_reset"

	// Access actions
	AuditActionAccess       AuditAction = "access"
	AuditActionAccessDenied AuditAction = "access_denied"
	AuditActionExport       AuditAction = "export"
	AuditActionPrint        AuditAction = "print"

	// Data modification actions
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionRestore AuditAction = "restore"

	// EVV actions
	AuditActionClockIn     AuditAction = "clock_in"
	AuditActionClockOut    AuditAction = "clock_out"
	AuditActionEVVOverride AuditAction = "evv_override"

	// Administrative actions
	AuditActionConfiguration AuditAction = "configuration"
	AuditActionSystem        AuditAction = "system"
)

var validAuditActions = map[AuditAction]struct{}{
	AuditActionLogin: {}, AuditActionLogout: {}, AuditActionLoginFailed: {},
	AuditActionPasswordChanged: {}, AuditActionPasswordReset: {},
	AuditActionAccess: {}, AuditActionAccessDenied: {}, AuditActionExport: {},
	AuditActionPrint: {}, AuditActionCreate: {}, AuditActionUpdate: {},
	AuditActionDelete: {}, AuditActionRestore: {}, AuditActionClockIn: {},
	AuditActionClockOut: {}, AuditActionEVVOverride: {},
	AuditActionConfiguration: {}, AuditActionSystem: {},
}

// IsValid checks if the action is part of the closed set
func (a AuditAction) IsValid() bool {
	_, exists := validAuditActions[a]
	return exists
}

// AuditLog is one immutable row of the audit ledger. There is no UpdatedAt
// and no soft-delete flag: entries are created once and never touched
// again. The Before hooks below make mutation fail at the ORM layer.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`

	// Who performed the action. Null for system actions and failed or
	// anonymous logins.
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;index" json:"userId,omitempty"`

	// What happened and to what.
	Action       AuditAction `gorm:"column:action;type:varchar(32);not null;index" json:"action"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(100);index" json:"resourceType,omitempty"`
	ResourceID   *uuid.UUID  `gorm:"column:resource_id;type:uuid;index" json:"resourceId,omitempty"`
	Description  string      `gorm:"column:description;type:text;not null" json:"description"`

	// Request context, attached verbatim from the transport layer.
	IPAddress string `gorm:"column:ip_address;type:varchar(50)" json:"ipAddress,omitempty"`
	UserAgent string `gorm:"column:user_agent;type:varchar(255)" json:"userAgent,omitempty"`
	RequestID string `gorm:"column:request_id;type:varchar(50);index" json:"requestId,omitempty"`

	// Additional structured context. Field names only for update diffs,
	// never PHI values.
	Metadata json.RawMessage `gorm:"column:metadata;type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index" json:"createdAt"`
}

// TableName sets the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook to set the ID and creation timestamp
func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate rejects any attempt to modify an existing entry
func (l *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return fmt.Errorf("audit log entries are immutable")
}

// BeforeDelete rejects any attempt to remove an existing entry
func (l *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return fmt.Errorf("audit log entries are immutable")
}

// Validate performs the mandatory-field checks before a write
func (l *AuditLog) Validate() error {
	if !l.Action.IsValid() {
		return fmt.Errorf("invalid audit action: %q", l.Action)
	}
	if l.Description == "" {
		return fmt.Errorf("audit description is required")
	}
	return nil
}
