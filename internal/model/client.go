package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client types.
const (
	TypeIndividual   = "INDIVIDUAL"
	TypeProfessional = "PROFESSIONAL"
	TypeDistributor  = "DISTRIBUTOR"
)

// ValidClientType reports whether t is one of the known client types.
func ValidClientType(t string) bool {
	switch t {
	case TypeIndividual, TypeProfessional, TypeDistributor:
		return true
	}
	return false
}

// Client is a directory record for a customer, distinct from the User
// identity used for authentication.
type Client struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName  string    `json:"first_name" gorm:"size:50;not null"`
	LastName   string    `json:"last_name" gorm:"size:50;not null;index"`
	Email      string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Phone      string    `json:"phone,omitempty" gorm:"size:20"`
	Address    string    `json:"address,omitempty" gorm:"size:200"`
	City       string    `json:"city,omitempty" gorm:"size:50;index"`
	PostalCode string    `json:"postal_code,omitempty" gorm:"size:10"`
	Country    string    `json:"country,omitempty" gorm:"size:50"`
	Type       string    `json:"type" gorm:"size:20;not null;default:'INDIVIDUAL';index"`
	Status     string    `json:"status" gorm:"size:20;not null;default:'ACTIVE';index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate sets the UUID and folds the email before inserting.
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Email = NormalizeEmail(c.Email)
	return nil
}

// BeforeSave keeps the stored email canonical on updates as well.
func (c *Client) BeforeSave(tx *gorm.DB) error {
	c.Email = NormalizeEmail(c.Email)
	return nil
}
