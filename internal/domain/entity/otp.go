package entity

import (
	"time"

	"github.com/google/uuid"
)

// OTP is a one-time login code. Only the SHA-256 hash of the code is stored.
type OTP struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CodeHash  string    `gorm:"type:char(64);not null" json:"-"`
	IsUsed    bool      `gorm:"not null;default:false" json:"is_used"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (OTP) TableName() string {
	return "otps"
}

// ExpiresAt returns the instant after which the code can no longer be verified.
func (o *OTP) ExpiresAt(window time.Duration) time.Time {
	return o.CreatedAt.Add(window)
}

// IsExpired is computed at check time; expiry is never persisted.
func (o *OTP) IsExpired(now time.Time, window time.Duration) bool {
	return now.After(o.ExpiresAt(window))
}

// IsValid reports whether the code is unused and inside its window.
func (o *OTP) IsValid(now time.Time, window time.Duration) bool {
	return !o.IsUsed && !o.IsExpired(now, window)
}
