package entity

import (
	"time"

	"github.com/google/uuid"
)

// HealthProgram represents a program clients can be enrolled in (TB, Malaria, HIV, ...)
type HealthProgram struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Code        string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Description string     `gorm:"type:text;not null" json:"description"`
	CreatedByID *uuid.UUID `gorm:"column:created_by;type:uuid;index" json:"created_by,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:ProgramID" json:"-"`
}

func (HealthProgram) TableName() string {
	return "health_programs"
}

// ProgramWithCount is a program projected with its enrollment count.
type ProgramWithCount struct {
	HealthProgram
	EnrollmentCount int64 `gorm:"column:enrollment_count"`
}
