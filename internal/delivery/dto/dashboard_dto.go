package dto

import (
	"time"

	"github.com/google/uuid"
)

type DashboardResponse struct {
	TotalClients    int64              `json:"total_clients"`
	TotalPrograms   int64              `json:"total_programs"`
	EnrolledClients int64              `json:"enrolled_clients"`
	EnrollmentRate  string             `json:"enrollment_rate"` // percentage, two decimals
	RecentClients   []DashboardClient  `json:"recent_clients"`
	RecentPrograms  []DashboardProgram `json:"recent_programs"`
	TopPrograms     []DashboardProgram `json:"top_programs"`
	EnrollmentTrend []TrendPoint       `json:"enrollment_trend"`
}

type DashboardClient struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	RegisteredAt    time.Time `json:"registered_at"`
	EnrollmentCount int64     `json:"enrollment_count"`
}

type DashboardProgram struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	CreatedAt       time.Time `json:"created_at"`
	EnrollmentCount int64     `json:"enrollment_count"`
}

type TrendPoint struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}
