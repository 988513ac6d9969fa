package entity

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a patient registered in the health system
type Client struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName         string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName          string     `gorm:"type:varchar(100);not null;index" json:"last_name"`
	DateOfBirth       time.Time  `gorm:"type:date;not null" json:"date_of_birth"`
	Gender            string     `gorm:"type:char(1);not null" json:"gender"`
	Email             string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PhoneNumber       string     `gorm:"type:varchar(20);not null" json:"phone_number"`
	Address           string     `gorm:"type:text;not null" json:"address"`
	NationalID        *string    `gorm:"type:varchar(20);uniqueIndex" json:"national_id,omitempty"`
	BloodType         *string    `gorm:"type:varchar(5)" json:"blood_type,omitempty"`
	Allergies         *string    `gorm:"type:text" json:"allergies,omitempty"`
	ChronicConditions *string    `gorm:"type:text" json:"chronic_conditions,omitempty"`
	RegisteredByID    *uuid.UUID `gorm:"column:registered_by;type:uuid;index" json:"registered_by,omitempty"`
	RegisteredAt      time.Time  `gorm:"autoCreateTime" json:"registered_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	RegisteredBy *User        `gorm:"foreignKey:RegisteredByID" json:"-"`
	Enrollments  []Enrollment `gorm:"foreignKey:ClientID" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ClientWithCount is a client projected with its enrollment count.
type ClientWithCount struct {
	Client
	EnrollmentCount int64 `gorm:"column:enrollment_count"`
}

// Gender constants
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)
