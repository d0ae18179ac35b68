package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user roles for role-based access control
type Role string

const (
	RoleAdmin     Role = "admin"     // Full system access
	RoleStaff     Role = "staff"     // Office staff, schedulers, clinical users
	RoleCaregiver Role = "caregiver" // Field caregivers
	RoleClient    Role = "client"    // Service recipients
	RoleFamily    Role = "family"    // Family members of clients
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the closed set
func (r Role) IsValid() bool {
	_, exists := RoleGrants[r]
	return exists
}

// User is the account record behind every actor. The locking and
// failed-attempt columns are the only hot shared-mutation points in the
// system; they are updated with atomic SQL expressions, never
// read-modify-write in application memory.
type User struct {
	BaseModel
	Email               string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	HashedPassword      string     `gorm:"column:hashed_password;not null" json:"-"`
	FirstName           string     `gorm:"column:first_name;not null" json:"firstName"`
	LastName            string     `gorm:"column:last_name;not null" json:"lastName"`
	Role                Role       `gorm:"column:role;type:varchar(20);not null" json:"role"`
	IsActive            bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`
	IsLocked            bool       `gorm:"column:is_locked;not null;default:false" json:"isLocked"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts;not null;default:0" json:"-"`
	LastLoginAt         *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	LastLoginIP         string     `gorm:"column:last_login_ip;type:varchar(50)" json:"-"`
	PasswordChangedAt   *time.Time `gorm:"column:password_changed_at" json:"-"`
	Timezone            string     `gorm:"column:timezone;type:varchar(50);default:UTC" json:"timezone,omitempty"`
}

// TableName sets the table name for GORM
func (User) TableName() string {
	return "users"
}

// ResourceType implements ProtectedResource
func (User) ResourceType() string { return "User" }

// ResourceID implements ProtectedResource
func (u *User) ResourceID() uuid.UUID { return u.ID }

// OwnerUserID implements ProtectedResource; a user record owns itself
func (u *User) OwnerUserID() *uuid.UUID { return &u.ID }

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
