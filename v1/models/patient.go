package models

import (
	"time"

	"github.com/google/uuid"
)

// PatientStatus represents the clinical status of a patient record
type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusDeceased PatientStatus = "deceased"
)

// Patient is the demographic/medical record for a person under care.
type Patient struct {
	BaseModel
	// Login account for the patient themselves, when one exists.
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;index" json:"userId,omitempty"`

	MedicalRecordNumber string        `gorm:"column:medical_record_number;type:varchar(50);uniqueIndex" json:"medicalRecordNumber"`
	FirstName           string        `gorm:"column:first_name;not null" json:"firstName"`
	LastName            string        `gorm:"column:last_name;not null" json:"lastName"`
	DateOfBirth         *time.Time    `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	Gender              string        `gorm:"column:gender;type:varchar(20)" json:"gender,omitempty"`
	Status              PatientStatus `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`

	PrimaryDiagnosis string `gorm:"column:primary_diagnosis;type:text" json:"primaryDiagnosis,omitempty"`
	Allergies        string `gorm:"column:allergies;type:text" json:"allergies,omitempty"`
	Medications      string `gorm:"column:medications;type:text" json:"medications,omitempty"`

	PrimaryInsurance string `gorm:"column:primary_insurance;type:varchar(100)" json:"primaryInsurance,omitempty"`
	InsuranceID      string `gorm:"column:insurance_id;type:varchar(50)" json:"insuranceId,omitempty"`
}

// TableName sets the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// ResourceType implements ProtectedResource
func (Patient) ResourceType() string { return ResourceTypePatient }

// ResourceID implements ProtectedResource
func (p *Patient) ResourceID() uuid.UUID { return p.ID }

// OwnerUserID implements ProtectedResource
func (p *Patient) OwnerUserID() *uuid.UUID { return p.UserID }

// PatientContact is owned by exactly one patient. It is destroyed only
// via cascade when the owning patient is hard-removed; soft delete
// follows the normal audited path.
type PatientContact struct {
	BaseModel
	PatientID    uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patientId"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Relationship string    `gorm:"column:relationship;type:varchar(50)" json:"relationship,omitempty"`
	PhoneNumber  string    `gorm:"column:phone_number;type:varchar(20)" json:"phoneNumber,omitempty"`
	IsEmergency  bool      `gorm:"column:is_emergency;not null;default:false" json:"isEmergency"`

	Patient *Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name for GORM
func (PatientContact) TableName() string {
	return "patient_contacts"
}

// ResourceType implements ProtectedResource
func (PatientContact) ResourceType() string { return ResourceTypeContact }

// ResourceID implements ProtectedResource
func (c *PatientContact) ResourceID() uuid.UUID { return c.ID }

// OwnerUserID implements ProtectedResource; ownership follows the patient
func (c *PatientContact) OwnerUserID() *uuid.UUID { return nil }
