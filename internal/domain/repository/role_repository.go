package repository

import (
	"context"

	"health-program-api/internal/domain/entity"
)

// RoleRepository resolves the fixed staff roles seeded by migrations.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*entity.Role, error)
}
