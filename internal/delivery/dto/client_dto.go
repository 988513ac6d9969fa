package dto

import (
	"time"

	"github.com/google/uuid"
)

// ClientRequest is used for both create and full update.
type ClientRequest struct {
	FirstName         string  `json:"first_name" validate:"required,max=100"`
	LastName          string  `json:"last_name" validate:"required,max=100"`
	DateOfBirth       string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender            string  `json:"gender" validate:"required,oneof=M F O"`
	Email             string  `json:"email" validate:"required,email,max=254"`
	PhoneNumber       string  `json:"phone_number" validate:"required,max=20"`
	Address           string  `json:"address" validate:"required"`
	NationalID        *string `json:"national_id" validate:"omitempty,max=20"`
	BloodType         *string `json:"blood_type" validate:"omitempty,max=5"`
	Allergies         *string `json:"allergies"`
	ChronicConditions *string `json:"chronic_conditions"`
}

type ClientSearchRequest struct {
	Query     string `json:"query" validate:"max=200"`
	ProgramID *int64 `json:"program_id" validate:"omitempty,gt=0"`
}

type EnrollClientRequest struct {
	ProgramID int64   `json:"program_id" validate:"required,gt=0"`
	Notes     *string `json:"notes"`
}

type ClientListParams struct {
	Search    string
	ProgramID *int64
	Ordering  string
	Page      int
	Limit     int
}

type ClientResponse struct {
	ID                   uuid.UUID  `json:"id"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	FullName             string     `json:"full_name"`
	DateOfBirth          string     `json:"date_of_birth"`
	Gender               string     `json:"gender"`
	Email                string     `json:"email"`
	PhoneNumber          string     `json:"phone_number"`
	Address              string     `json:"address"`
	NationalID           *string    `json:"national_id"`
	BloodType            *string    `json:"blood_type"`
	Allergies            *string    `json:"allergies"`
	ChronicConditions    *string    `json:"chronic_conditions"`
	RegisteredBy         *uuid.UUID `json:"registered_by"`
	RegisteredByUsername string     `json:"registered_by_username,omitempty"`
	RegisteredAt         time.Time  `json:"registered_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ClientDetailResponse is the retrieve and profile payload.
type ClientDetailResponse struct {
	ClientResponse
	Enrollments []EnrollmentResponse `json:"enrollments"`
}
