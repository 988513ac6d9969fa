package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEnrollmentRequest struct {
	ClientID  string  `json:"client_id" validate:"required,uuid"`
	ProgramID int64   `json:"program_id" validate:"required,gt=0"`
	Notes     *string `json:"notes"`
}

type UpdateEnrollmentRequest struct {
	IsActive *bool   `json:"is_active" validate:"required"`
	Notes    *string `json:"notes"`
}

type EnrollmentListParams struct {
	ClientID  *uuid.UUID
	ProgramID *int64
	IsActive  *bool
	Page      int
	Limit     int
}

type EnrollmentResponse struct {
	ID                 int64      `json:"id"`
	ClientID           uuid.UUID  `json:"client_id"`
	ClientName         string     `json:"client_name,omitempty"`
	ProgramID          int64      `json:"program_id"`
	ProgramName        string     `json:"program_name,omitempty"`
	ProgramCode        string     `json:"program_code,omitempty"`
	EnrollmentDate     string     `json:"enrollment_date"`
	IsActive           bool       `json:"is_active"`
	Notes              *string    `json:"notes"`
	EnrolledBy         *uuid.UUID `json:"enrolled_by"`
	EnrolledByUsername string     `json:"enrolled_by_username,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
