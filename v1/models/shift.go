package models

import (
	"time"

	"github.com/google/uuid"
)

// ShiftStatus represents the lifecycle state of a scheduled shift
type ShiftStatus string

const (
	ShiftStatusScheduled  ShiftStatus = "scheduled"
	ShiftStatusInProgress ShiftStatus = "in_progress"
	ShiftStatusCompleted  ShiftStatus = "completed"
	ShiftStatusMissed     ShiftStatus = "missed"
	ShiftStatusCancelled  ShiftStatus = "cancelled"
)

// Shift is a scheduled visit linking one caregiver to one client. It is
// also the relationship row the policy evaluator uses to decide whether
// a caregiver is assigned to a client.
type Shift struct {
	BaseModel
	CaregiverID uuid.UUID `gorm:"column:caregiver_id;type:uuid;not null;index" json:"caregiverId"`
	ClientID    uuid.UUID `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`

	ScheduledStart time.Time   `gorm:"column:scheduled_start;not null;index" json:"scheduledStart"`
	ScheduledEnd   time.Time   `gorm:"column:scheduled_end;not null" json:"scheduledEnd"`
	Status         ShiftStatus `gorm:"column:status;type:varchar(20);not null;default:scheduled" json:"status"`
	ServiceType    string      `gorm:"column:service_type;type:varchar(50)" json:"serviceType,omitempty"`
	Notes          string      `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Caregiver *Caregiver `gorm:"foreignKey:CaregiverID" json:"-"`
	Client    *Client    `gorm:"foreignKey:ClientID" json:"-"`
}

// TableName sets the table name for GORM
func (Shift) TableName() string {
	return "shifts"
}

// ResourceType implements ProtectedResource
func (Shift) ResourceType() string { return ResourceTypeShift }

// ResourceID implements ProtectedResource
func (s *Shift) ResourceID() uuid.UUID { return s.ID }

// OwnerUserID implements ProtectedResource; shifts have no direct user
// owner, access goes through the caregiver/client assignment scopes
func (s *Shift) OwnerUserID() *uuid.UUID { return nil }

// CareAssignment is a direct caregiver-to-client assignment, independent
// of any scheduled shift. Either path satisfies the evaluator's
// assigned-scope predicate.
type CareAssignment struct {
	BaseModel
	CaregiverID uuid.UUID  `gorm:"column:caregiver_id;type:uuid;not null;index:idx_care_assignments_pair" json:"caregiverId"`
	ClientID    uuid.UUID  `gorm:"column:client_id;type:uuid;not null;index:idx_care_assignments_pair" json:"clientId"`
	PatientID   *uuid.UUID `gorm:"column:patient_id;type:uuid;index" json:"patientId,omitempty"`
}

// TableName sets the table name for GORM
func (CareAssignment) TableName() string {
	return "care_assignments"
}

// FamilyMember links a family-role user account to the client whose
// record they may read.
type FamilyMember struct {
	BaseModel
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	ClientID     uuid.UUID `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	Relationship string    `gorm:"column:relationship;type:varchar(50)" json:"relationship,omitempty"`
}

// TableName sets the table name for GORM
func (FamilyMember) TableName() string {
	return "family_members"
}
