package entity

import "github.com/google/uuid"

// ProgramFilter is a domain-level filter for listing programs.
type ProgramFilter struct {
	Search   string // substring over name, code, description (ILIKE)
	Ordering string // validated ORDER BY clause
}

// ClientFilter is a domain-level filter for listing and searching clients.
type ClientFilter struct {
	Query     string // substring over name, email, phone, national ID (ILIKE)
	ProgramID *int64 // only clients actively enrolled in this program
	Ordering  string // validated ORDER BY clause
}

// EnrollmentFilter is a domain-level filter for listing enrollments.
type EnrollmentFilter struct {
	ClientID  *uuid.UUID
	ProgramID *int64
	IsActive  *bool
}

// MonthlyCount is one sparse bucket of the enrollment trend.
type MonthlyCount struct {
	Month string `gorm:"column:month"` // YYYY-MM
	Count int64  `gorm:"column:count"`
}
