package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is the single persistent bearer token of a user. It is created on
// the first successful OTP verification and reused afterwards.
type AuthToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Key       string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
