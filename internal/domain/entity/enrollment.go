package entity

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment links a client to a health program. A (client, program) pair is unique.
type Enrollment struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_client_program" json:"client_id"`
	ProgramID      int64      `gorm:"not null;uniqueIndex:idx_enrollment_client_program;index" json:"program_id"`
	EnrollmentDate time.Time  `gorm:"type:date;not null;index" json:"enrollment_date"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	Notes          *string    `gorm:"type:text" json:"notes,omitempty"`
	EnrolledByID   *uuid.UUID `gorm:"column:enrolled_by;type:uuid" json:"enrolled_by,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Client     Client        `gorm:"foreignKey:ClientID" json:"-"`
	Program    HealthProgram `gorm:"foreignKey:ProgramID" json:"-"`
	EnrolledBy *User         `gorm:"foreignKey:EnrolledByID" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// Toggle flips the active flag.
func (e *Enrollment) Toggle() {
	e.IsActive = !e.IsActive
}
