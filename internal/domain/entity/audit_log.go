package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionLoginRequested   = "auth.login_requested"
	AuditActionOTPVerified      = "auth.otp_verified"
	AuditActionUserCreate       = "user.create"
	AuditActionProgramCreate    = "program.create"
	AuditActionProgramUpdate    = "program.update"
	AuditActionProgramDelete    = "program.delete"
	AuditActionClientCreate     = "client.create"
	AuditActionClientUpdate     = "client.update"
	AuditActionClientDelete     = "client.delete"
	AuditActionEnrollmentCreate = "enrollment.create"
	AuditActionEnrollmentUpdate = "enrollment.update"
	AuditActionEnrollmentDelete = "enrollment.delete"
	AuditActionEnrollmentToggle = "enrollment.toggle"
)
