package repository

import (
	"context"

	"health-program-api/internal/domain/entity"

	"github.com/google/uuid"
)

type AuthTokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AuthToken, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthToken, error)
}
