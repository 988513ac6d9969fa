package repository

import (
	"context"
	"time"

	"health-program-api/internal/domain/entity"

	"github.com/google/uuid"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindAll(ctx context.Context, filter entity.EnrollmentFilter, limit, offset int) ([]entity.Enrollment, int64, error)
	FindByID(ctx context.Context, id int64) (*entity.Enrollment, error)
	FindByClientAndProgram(ctx context.Context, clientID uuid.UUID, programID int64) (*entity.Enrollment, error)
	Update(ctx context.Context, enrollment *entity.Enrollment) error
	Delete(ctx context.Context, id int64) (int64, error)
	CountByMonthSince(ctx context.Context, since time.Time) ([]entity.MonthlyCount, error)
}
