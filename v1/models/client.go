package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientStatus represents the service status of a care recipient
type ClientStatus string

const (
	ClientStatusProspect   ClientStatus = "prospect"
	ClientStatusActive     ClientStatus = "active"
	ClientStatusOnHold     ClientStatus = "on_hold"
	ClientStatusDischarged ClientStatus = "discharged"
)

// Client is a care recipient receiving in-home services.
type Client struct {
	BaseModel
	// Login account for the client themselves, when one exists.
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;index" json:"userId,omitempty"`

	FirstName   string     `gorm:"column:first_name;not null" json:"firstName"`
	LastName    string     `gorm:"column:last_name;not null" json:"lastName"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	PhoneNumber string     `gorm:"column:phone_number;type:varchar(20)" json:"phoneNumber,omitempty"`
	Email       string     `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`

	AddressLine1 string `gorm:"column:address_line1" json:"addressLine1,omitempty"`
	City         string `gorm:"column:city;type:varchar(100)" json:"city,omitempty"`
	State        string `gorm:"column:state;type:varchar(2)" json:"state,omitempty"`
	ZipCode      string `gorm:"column:zip_code;type:varchar(10)" json:"zipCode,omitempty"`

	// Geofence inputs for EVV. Computed elsewhere; stored verbatim.
	Latitude             *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude            *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	GeofenceRadiusMeters *float64 `gorm:"column:geofence_radius_meters" json:"geofenceRadiusMeters,omitempty"`

	Status              ClientStatus `gorm:"column:status;type:varchar(20);not null;default:prospect" json:"status"`
	StartOfCare         *time.Time   `gorm:"column:start_of_care" json:"startOfCare,omitempty"`
	ServiceHoursPerWeek *float64     `gorm:"column:service_hours_per_week" json:"serviceHoursPerWeek,omitempty"`
	EVVRequired         bool         `gorm:"column:evv_required;not null;default:true" json:"evvRequired"`
	MedicaidID          string       `gorm:"column:medicaid_id;type:varchar(50)" json:"medicaidId,omitempty"`
	Notes               string       `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

// TableName sets the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// ResourceType implements ProtectedResource
func (Client) ResourceType() string { return ResourceTypeClient }

// ResourceID implements ProtectedResource
func (c *Client) ResourceID() uuid.UUID { return c.ID }

// OwnerUserID implements ProtectedResource
func (c *Client) OwnerUserID() *uuid.UUID { return c.UserID }

// CarePlan belongs to exactly one client and is destroyed only via
// cascade when the owning client is hard-removed.
type CarePlan struct {
	BaseModel
	ClientID      uuid.UUID  `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	StartDate     *time.Time `gorm:"column:start_date" json:"startDate,omitempty"`
	EndDate       *time.Time `gorm:"column:end_date" json:"endDate,omitempty"`
	Goals         string     `gorm:"column:goals;type:text" json:"goals,omitempty"`
	Interventions string     `gorm:"column:interventions;type:text" json:"interventions,omitempty"`

	Client *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name for GORM
func (CarePlan) TableName() string {
	return "care_plans"
}

// ResourceType implements ProtectedResource
func (CarePlan) ResourceType() string { return ResourceTypeCarePlan }

// ResourceID implements ProtectedResource
func (p *CarePlan) ResourceID() uuid.UUID { return p.ID }

// OwnerUserID implements ProtectedResource; ownership follows the client
func (p *CarePlan) OwnerUserID() *uuid.UUID { return nil }
