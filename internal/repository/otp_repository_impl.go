package repository

import (
	"context"
	"errors"

	"health-program-api/internal/domain/entity"
	domainRepo "health-program-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) domainRepo.OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Replace(ctx context.Context, otp *entity.OTP) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", otp.UserID).Delete(&entity.OTP{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(otp).Error
	})
}

func (r *otpRepository) FindUnused(ctx context.Context, userID uuid.UUID, codeHash string) (*entity.OTP, error) {
	var otp entity.OTP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code_hash = ? AND is_used = ?", userID, codeHash, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.OTP{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	return result.RowsAffected == 1, result.Error
}
