package repository

import (
	"context"
	"errors"

	"health-program-api/internal/domain/entity"
	domainRepo "health-program-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type authTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) domainRepo.AuthTokenRepository {
	return &authTokenRepository{db: db}
}

func (r *authTokenRepository) Create(ctx context.Context, token *entity.AuthToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

func (r *authTokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AuthToken, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *authTokenRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthToken, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *authTokenRepository) findOne(ctx context.Context, query string, arg any) (*entity.AuthToken, error) {
	var token entity.AuthToken
	err := r.db.WithContext(ctx).Where(query, arg).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}
