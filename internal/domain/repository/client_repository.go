package repository

import (
	"context"

	"health-program-api/internal/domain/entity"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	FindAll(ctx context.Context, filter entity.ClientFilter, limit, offset int) ([]entity.Client, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	// FindByIDWithEnrollments preloads enrollments with their program and enroller.
	FindByIDWithEnrollments(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountEnrolled(ctx context.Context) (int64, error)
	FindRecentWithCounts(ctx context.Context, limit int) ([]entity.ClientWithCount, error)
}
