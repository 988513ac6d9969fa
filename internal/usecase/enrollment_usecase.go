package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"health-program-api/internal/converter"
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/domain/repository"
	"health-program-api/internal/event"
	"health-program-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

type EnrollmentUsecase interface {
	List(ctx context.Context, params dto.EnrollmentListParams) ([]dto.EnrollmentResponse, int64, error)
	Get(ctx context.Context, id int64) (*dto.EnrollmentResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, id int64, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, actorID uuid.UUID, id int64) error
	ToggleActive(ctx context.Context, actorID uuid.UUID, id int64) (*dto.EnrollmentResponse, error)
}

type enrollmentUsecase struct {
	log            *logrus.Logger
	enrollmentRepo repository.EnrollmentRepository
	clientRepo     repository.ClientRepository
	programRepo    repository.HealthProgramRepository
	auditService   service.AuditService
	enroller       *enrollmentCreator
}

func NewEnrollmentUsecase(
	log *logrus.Logger,
	enrollmentRepo repository.EnrollmentRepository,
	clientRepo repository.ClientRepository,
	programRepo repository.HealthProgramRepository,
	auditService service.AuditService,
	publisher event.Publisher,
) EnrollmentUsecase {
	return &enrollmentUsecase{
		log:            log,
		enrollmentRepo: enrollmentRepo,
		clientRepo:     clientRepo,
		programRepo:    programRepo,
		auditService:   auditService,
		enroller: &enrollmentCreator{
			log:            log,
			enrollmentRepo: enrollmentRepo,
			auditService:   auditService,
			publisher:      publisher,
			now:            time.Now,
		},
	}
}

func (u *enrollmentUsecase) List(ctx context.Context, params dto.EnrollmentListParams) ([]dto.EnrollmentResponse, int64, error) {
	filter := entity.EnrollmentFilter{
		ClientID:  params.ClientID,
		ProgramID: params.ProgramID,
		IsActive:  params.IsActive,
	}

	enrollments, total, err := u.enrollmentRepo.FindAll(ctx, filter, params.Limit, offset(params.Page, params.Limit))
	if err != nil {
		u.log.Warnf("Failed to list enrollments: %+v", err)
		return nil, 0, err
	}

	return converter.EnrollmentsToResponses(enrollments), total, nil
}

func (u *enrollmentUsecase) Get(ctx context.Context, id int64) (*dto.EnrollmentResponse, error) {
	enrollment, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.EnrollmentToResponse(enrollment), nil
}

// Create enrolls a client by ID. Both lookups are reported as not found
// errors for the handler to attach to the request fields.
func (u *enrollmentUsecase) Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, ErrClientNotFound
	}

	client, err := u.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		u.log.Warnf("Failed to find client: %+v", err)
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	program, err := u.programRepo.FindByID(ctx, req.ProgramID)
	if err != nil {
		u.log.Warnf("Failed to find health program: %+v", err)
		return nil, err
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}

	enrollment, err := u.enroller.create(ctx, actorID, client, program, req.Notes)
	if err != nil {
		return nil, err
	}

	return converter.EnrollmentToResponse(enrollment), nil
}

func (u *enrollmentUsecase) Update(ctx context.Context, actorID uuid.UUID, id int64, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	enrollment, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	oldValue := converter.EnrollmentToResponse(enrollment)
	if req.IsActive != nil {
		enrollment.IsActive = *req.IsActive
	}
	enrollment.Notes = trimmedOrNil(req.Notes)

	if err := u.enrollmentRepo.Update(ctx, enrollment); err != nil {
		u.log.Warnf("Failed to update enrollment: %+v", err)
		return nil, err
	}

	resp := converter.EnrollmentToResponse(enrollment)
	u.auditService.LogUpdate(ctx, &actorID, entity.AuditActionEnrollmentUpdate, "enrollment", strconv.FormatInt(id, 10), oldValue, resp)

	return resp, nil
}

func (u *enrollmentUsecase) Delete(ctx context.Context, actorID uuid.UUID, id int64) error {
	affected, err := u.enrollmentRepo.Delete(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to delete enrollment: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrEnrollmentNotFound
	}

	u.auditService.LogDelete(ctx, &actorID, entity.AuditActionEnrollmentDelete, "enrollment", strconv.FormatInt(id, 10), nil)
	return nil
}

// ToggleActive flips is_active and persists it.
func (u *enrollmentUsecase) ToggleActive(ctx context.Context, actorID uuid.UUID, id int64) (*dto.EnrollmentResponse, error) {
	enrollment, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	enrollment.Toggle()
	if err := u.enrollmentRepo.Update(ctx, enrollment); err != nil {
		u.log.Warnf("Failed to toggle enrollment: %+v", err)
		return nil, err
	}

	u.auditService.LogAction(ctx, &actorID, entity.AuditActionEnrollmentToggle, map[string]any{
		"entity":    "enrollment",
		"entity_id": strconv.FormatInt(id, 10),
		"is_active": enrollment.IsActive,
	})

	return converter.EnrollmentToResponse(enrollment), nil
}

func (u *enrollmentUsecase) find(ctx context.Context, id int64) (*entity.Enrollment, error) {
	enrollment, err := u.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find enrollment: %+v", err)
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}
	return enrollment, nil
}
