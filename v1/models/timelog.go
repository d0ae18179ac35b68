package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeLogStatus represents the verification state of an EVV time log
type TimeLogStatus string

const (
	TimeLogStatusPending    TimeLogStatus = "pending"
	TimeLogStatusVerified   TimeLogStatus = "verified"
	TimeLogStatusFlagged    TimeLogStatus = "flagged"
	TimeLogStatusOverridden TimeLogStatus = "overridden"
)

// TimeLog is the EVV record of a caregiver's clock-in/clock-out for a
// shift. GPS coordinates are input data; no geofence math happens here.
type TimeLog struct {
	BaseModel
	CaregiverID uuid.UUID  `gorm:"column:caregiver_id;type:uuid;not null;index" json:"caregiverId"`
	ClientID    uuid.UUID  `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	ShiftID     *uuid.UUID `gorm:"column:shift_id;type:uuid;index" json:"shiftId,omitempty"`

	ClockInAt   *time.Time `gorm:"column:clock_in_at" json:"clockInAt,omitempty"`
	ClockOutAt  *time.Time `gorm:"column:clock_out_at" json:"clockOutAt,omitempty"`
	ClockInLat  *float64   `gorm:"column:clock_in_lat" json:"clockInLat,omitempty"`
	ClockInLng  *float64   `gorm:"column:clock_in_lng" json:"clockInLng,omitempty"`
	ClockOutLat *float64   `gorm:"column:clock_out_lat" json:"clockOutLat,omitempty"`
	ClockOutLng *float64   `gorm:"column:clock_out_lng" json:"clockOutLng,omitempty"`

	Status       TimeLogStatus `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	Notes        string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	AdjustedByID *uuid.UUID    `gorm:"column:adjusted_by_id;type:uuid" json:"adjustedById,omitempty"`

	Caregiver *Caregiver `gorm:"foreignKey:CaregiverID" json:"-"`
	Shift     *Shift     `gorm:"foreignKey:ShiftID" json:"-"`
}

// TableName sets the table name for GORM
func (TimeLog) TableName() string {
	return "time_logs"
}

// ResourceType implements ProtectedResource
func (TimeLog) ResourceType() string { return ResourceTypeTimeLog }

// ResourceID implements ProtectedResource
func (t *TimeLog) ResourceID() uuid.UUID { return t.ID }

// OwnerUserID implements ProtectedResource; the owning user is resolved
// through the caregiver profile, handled by the evaluator's scopes
func (t *TimeLog) OwnerUserID() *uuid.UUID { return nil }
