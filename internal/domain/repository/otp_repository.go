package repository

import (
	"context"

	"health-program-api/internal/domain/entity"

	"github.com/google/uuid"
)

type OTPRepository interface {
	// Replace deletes every OTP of the user and stores otp in one transaction.
	Replace(ctx context.Context, otp *entity.OTP) error
	FindUnused(ctx context.Context, userID uuid.UUID, codeHash string) (*entity.OTP, error)
	// MarkUsed flips is_used only when it is still false; it reports whether a row changed.
	MarkUsed(ctx context.Context, id int64) (bool, error)
}
