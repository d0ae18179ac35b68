package models

// Resource type tags recorded into audit entries and consumed by the
// policy evaluator's scope builders.
const (
	ResourceTypeUser      = "User"
	ResourceTypePatient   = "Patient"
	ResourceTypeCaregiver = "Caregiver"
	ResourceTypeClient    = "Client"
	ResourceTypeShift     = "Shift"
	ResourceTypeTimeLog   = "TimeLog"
	ResourceTypeDocument  = "Document"
	ResourceTypeCarePlan  = "CarePlan"
	ResourceTypeContact   = "PatientContact"
	ResourceTypeAuditLog  = "AuditLog"
)
