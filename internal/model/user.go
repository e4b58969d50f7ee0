package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold. Role gating on routes is expressed in these values.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// Account statuses shared by users and clients.
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusPending   = "PENDING"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleAdmin
}

// ValidStatus reports whether status is one of the known statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

// NormalizeEmail folds an email address to its canonical form. Every write
// and every lookup goes through this, so the unique index on the email
// column is effectively case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is an authenticated identity: a stored principal with email,
// credential hash, role and status.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName    string    `json:"first_name" gorm:"size:50;not null"`
	LastName     string    `json:"last_name" gorm:"size:50;not null;index"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string    `json:"phone,omitempty" gorm:"size:20"`
	CompanyName  string    `json:"company_name,omitempty" gorm:"size:100"`
	Role         string    `json:"role" gorm:"size:20;not null;default:'CLIENT';index"`
	Status       string    `json:"status" gorm:"size:20;not null;default:'ACTIVE';index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets the UUID and folds the email before inserting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// BeforeSave keeps the stored email canonical on updates as well.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
