package dto

import (
	"time"

	"github.com/google/uuid"
)

// ProgramRequest is used for both create and full update.
type ProgramRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,max=20"`
	Description string `json:"description" validate:"required"`
}

type ProgramListParams struct {
	Search   string
	Ordering string
	Page     int
	Limit    int
}

type ProgramResponse struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Code              string     `json:"code"`
	Description       string     `json:"description"`
	CreatedBy         *uuid.UUID `json:"created_by"`
	CreatedByUsername string     `json:"created_by_username,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
