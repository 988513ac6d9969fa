package repository

import (
	"context"

	"health-program-api/internal/domain/entity"
)

type HealthProgramRepository interface {
	Create(ctx context.Context, program *entity.HealthProgram) error
	FindAll(ctx context.Context, filter entity.ProgramFilter, limit, offset int) ([]entity.HealthProgram, int64, error)
	FindByID(ctx context.Context, id int64) (*entity.HealthProgram, error)
	Update(ctx context.Context, program *entity.HealthProgram) error
	Delete(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	FindRecentWithCounts(ctx context.Context, limit int) ([]entity.ProgramWithCount, error)
	FindTopByEnrollments(ctx context.Context, limit int) ([]entity.ProgramWithCount, error)
}
