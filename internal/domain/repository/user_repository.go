package repository

import (
	"context"

	"health-program-api/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository stores staff accounts. Finders return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
