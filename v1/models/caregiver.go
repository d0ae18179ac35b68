package models

import (
	"time"

	"github.com/google/uuid"
)

// CaregiverStatus represents the employment status of a caregiver
type CaregiverStatus string

const (
	CaregiverStatusApplicant  CaregiverStatus = "applicant"
	CaregiverStatusActive     CaregiverStatus = "active"
	CaregiverStatusOnLeave    CaregiverStatus = "on_leave"
	CaregiverStatusTerminated CaregiverStatus = "terminated"
)

// Caregiver is the employment profile of a field caregiver, linked to
// the user account they log in with.
type Caregiver struct {
	BaseModel
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"userId"`

	EmployeeID     string          `gorm:"column:employee_id;type:varchar(50);uniqueIndex" json:"employeeId"`
	Status         CaregiverStatus `gorm:"column:status;type:varchar(20);not null;default:applicant" json:"status"`
	HireDate       *time.Time      `gorm:"column:hire_date" json:"hireDate,omitempty"`
	EmploymentType string          `gorm:"column:employment_type;type:varchar(20)" json:"employmentType,omitempty"`
	PhoneNumber    string          `gorm:"column:phone_number;type:varchar(20)" json:"phoneNumber,omitempty"`
	HourlyRate     *float64        `gorm:"column:hourly_rate" json:"hourlyRate,omitempty"`
	MaxHoursPerWeek *float64       `gorm:"column:max_hours_per_week" json:"maxHoursPerWeek,omitempty"`
}

// TableName sets the table name for GORM
func (Caregiver) TableName() string {
	return "caregivers"
}

// ResourceType implements ProtectedResource
func (Caregiver) ResourceType() string { return ResourceTypeCaregiver }

// ResourceID implements ProtectedResource
func (c *Caregiver) ResourceID() uuid.UUID { return c.ID }

// OwnerUserID implements ProtectedResource
func (c *Caregiver) OwnerUserID() *uuid.UUID { return &c.UserID }

// Credential is a license or certification owned by one caregiver.
type Credential struct {
	BaseModel
	CaregiverID    uuid.UUID  `gorm:"column:caregiver_id;type:uuid;not null;index" json:"caregiverId"`
	CredentialType string     `gorm:"column:credential_type;type:varchar(50);not null" json:"credentialType"`
	Number         string     `gorm:"column:number;type:varchar(100)" json:"number,omitempty"`
	ExpiresAt      *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	VerifiedByID   *uuid.UUID `gorm:"column:verified_by_id;type:uuid" json:"verifiedById,omitempty"`

	Caregiver *Caregiver `gorm:"foreignKey:CaregiverID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name for GORM
func (Credential) TableName() string {
	return "credentials"
}
