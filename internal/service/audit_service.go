package service

import (
	"context"

	"health-program-api/internal/domain/entity"
	"health-program-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// AuditService records an append-only trail of authentication events and
// resource mutations. Recording is best-effort: failures are logged and never
// returned to the caller.
type AuditService interface {
	LogAction(ctx context.Context, userID *uuid.UUID, action string, metadata map[string]any)
	LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue any)
	LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue any)
	LogDelete(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue any)
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogAction(ctx context.Context, userID *uuid.UUID, action string, metadata map[string]any) {
	s.record(ctx, userID, action, datatypes.JSONMap(metadata))
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue any) {
	s.record(ctx, userID, action, datatypes.JSONMap{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue any) {
	s.record(ctx, userID, action, datatypes.JSONMap{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue any) {
	s.record(ctx, userID, action, datatypes.JSONMap{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": nil,
	})
}

func (s *auditService) record(ctx context.Context, userID *uuid.UUID, action string, metadata datatypes.JSONMap) {
	auditLog := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s: %+v", action, err)
	}
}
