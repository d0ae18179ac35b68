package models

import (
	"time"

	"github.com/google/uuid"
)

// Update requests use pointer fields so handlers can distinguish
// "not provided" from a zero value. The services record which fields
// changed in the audit trail, never the values themselves.

// UpdatePatientRequest carries the mutable fields of a patient record.
type UpdatePatientRequest struct {
	FirstName        *string        `json:"firstName,omitempty"`
	LastName         *string        `json:"lastName,omitempty"`
	DateOfBirth      *time.Time     `json:"dateOfBirth,omitempty"`
	Gender           *string        `json:"gender,omitempty"`
	Status           *PatientStatus `json:"status,omitempty"`
	PrimaryDiagnosis *string        `json:"primaryDiagnosis,omitempty"`
	Allergies        *string        `json:"allergies,omitempty"`
	Medications      *string        `json:"medications,omitempty"`
	PrimaryInsurance *string        `json:"primaryInsurance,omitempty"`
	InsuranceID      *string        `json:"insuranceId,omitempty"`
}

// UpdateClientRequest carries the mutable fields of a client record.
type UpdateClientRequest struct {
	FirstName            *string       `json:"firstName,omitempty"`
	LastName             *string       `json:"lastName,omitempty"`
	DateOfBirth          *time.Time    `json:"dateOfBirth,omitempty"`
	PhoneNumber          *string       `json:"phoneNumber,omitempty"`
	Email                *string       `json:"email,omitempty"`
	AddressLine1         *string       `json:"addressLine1,omitempty"`
	City                 *string       `json:"city,omitempty"`
	State                *string       `json:"state,omitempty"`
	ZipCode              *string       `json:"zipCode,omitempty"`
	Latitude             *float64      `json:"latitude,omitempty"`
	Longitude            *float64      `json:"longitude,omitempty"`
	GeofenceRadiusMeters *float64      `json:"geofenceRadiusMeters,omitempty"`
	Status               *ClientStatus `json:"status,omitempty"`
	StartOfCare          *time.Time    `json:"startOfCare,omitempty"`
	ServiceHoursPerWeek  *float64      `json:"serviceHoursPerWeek,omitempty"`
	EVVRequired          *bool         `json:"evvRequired,omitempty"`
	MedicaidID           *string       `json:"medicaidId,omitempty"`
	Notes                *string       `json:"notes,omitempty"`
}

// UpdateCaregiverRequest carries the mutable fields of a caregiver profile.
type UpdateCaregiverRequest struct {
	Status          *CaregiverStatus `json:"status,omitempty"`
	HireDate        *time.Time       `json:"hireDate,omitempty"`
	EmploymentType  *string          `json:"employmentType,omitempty"`
	PhoneNumber     *string          `json:"phoneNumber,omitempty"`
	HourlyRate      *float64         `json:"hourlyRate,omitempty"`
	MaxHoursPerWeek *float64         `json:"maxHoursPerWeek,omitempty"`
}

// UpdateShiftRequest carries the mutable fields of a scheduled shift.
type UpdateShiftRequest struct {
	ScheduledStart *time.Time   `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time   `json:"scheduledEnd,omitempty"`
	Status         *ShiftStatus `json:"status,omitempty"`
	ServiceType    *string      `json:"serviceType,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
}

// UpdateDocumentRequest carries the mutable metadata of a document.
type UpdateDocumentRequest struct {
	DocumentType *string         `json:"documentType,omitempty"`
	FileName     *string         `json:"fileName,omitempty"`
	ContentType  *string         `json:"contentType,omitempty"`
	Status       *DocumentStatus `json:"status,omitempty"`
}

// ClockInRequest starts an EVV time log against a shift.
type ClockInRequest struct {
	ShiftID   uuid.UUID `json:"shiftId"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

// ClockOutRequest closes an open EVV time log.
type ClockOutRequest struct {
	TimeLogID uuid.UUID `json:"timeLogId"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

// OverrideTimeLogRequest adjusts a flagged time log. Office staff and
// administrators only; the adjustment is always audited as evv_override.
type OverrideTimeLogRequest struct {
	TimeLogID  uuid.UUID  `json:"timeLogId"`
	ClockInAt  *time.Time `json:"clockInAt,omitempty"`
	ClockOutAt *time.Time `json:"clockOutAt,omitempty"`
	Reason     string     `json:"reason"`
}
