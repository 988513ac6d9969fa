package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"health-program-api/internal/converter"
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/domain/repository"
	"health-program-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrProgramNotFound   = errors.New("health program not found")
	ErrProgramNameExists = errors.New("health program with this name already exists")
	ErrProgramCodeExists = errors.New("health program with this code already exists")
)

var programOrderings = map[string]string{
	"name":       "name",
	"code":       "code",
	"created_at": "created_at",
}

type ProgramUsecase interface {
	List(ctx context.Context, params dto.ProgramListParams) ([]dto.ProgramResponse, int64, error)
	Get(ctx context.Context, id int64) (*dto.ProgramResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, req *dto.ProgramRequest) (*dto.ProgramResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, id int64, req *dto.ProgramRequest) (*dto.ProgramResponse, error)
	Delete(ctx context.Context, actorID uuid.UUID, id int64) error
}

type programUsecase struct {
	log          *logrus.Logger
	programRepo  repository.HealthProgramRepository
	auditService service.AuditService
}

func NewProgramUsecase(log *logrus.Logger, programRepo repository.HealthProgramRepository, auditService service.AuditService) ProgramUsecase {
	return &programUsecase{
		log:          log,
		programRepo:  programRepo,
		auditService: auditService,
	}
}

func (u *programUsecase) List(ctx context.Context, params dto.ProgramListParams) ([]dto.ProgramResponse, int64, error) {
	filter := entity.ProgramFilter{
		Search:   strings.TrimSpace(params.Search),
		Ordering: resolveOrdering(params.Ordering, programOrderings, "name ASC"),
	}

	programs, total, err := u.programRepo.FindAll(ctx, filter, params.Limit, offset(params.Page, params.Limit))
	if err != nil {
		u.log.Warnf("Failed to list health programs: %+v", err)
		return nil, 0, err
	}

	return converter.ProgramsToResponses(programs), total, nil
}

func (u *programUsecase) Get(ctx context.Context, id int64) (*dto.ProgramResponse, error) {
	program, err := u.programRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find health program: %+v", err)
		return nil, err
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}

	return converter.ProgramToResponse(program), nil
}

func (u *programUsecase) Create(ctx context.Context, actorID uuid.UUID, req *dto.ProgramRequest) (*dto.ProgramResponse, error) {
	program := &entity.HealthProgram{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.TrimSpace(req.Code),
		Description: strings.TrimSpace(req.Description),
		CreatedByID: &actorID,
	}

	if err := u.programRepo.Create(ctx, program); err != nil {
		if mapped := mapProgramWriteError(err); mapped != nil {
			return nil, mapped
		}
		u.log.Warnf("Failed to create health program: %+v", err)
		return nil, err
	}

	resp := converter.ProgramToResponse(program)
	u.auditService.LogCreate(ctx, &actorID, entity.AuditActionProgramCreate, "health_program", strconv.FormatInt(program.ID, 10), resp)

	return resp, nil
}

func (u *programUsecase) Update(ctx context.Context, actorID uuid.UUID, id int64, req *dto.ProgramRequest) (*dto.ProgramResponse, error) {
	program, err := u.programRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find health program: %+v", err)
		return nil, err
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}

	oldValue := converter.ProgramToResponse(program)

	program.Name = strings.TrimSpace(req.Name)
	program.Code = strings.TrimSpace(req.Code)
	program.Description = strings.TrimSpace(req.Description)

	if err := u.programRepo.Update(ctx, program); err != nil {
		if mapped := mapProgramWriteError(err); mapped != nil {
			return nil, mapped
		}
		u.log.Warnf("Failed to update health program: %+v", err)
		return nil, err
	}

	resp := converter.ProgramToResponse(program)
	u.auditService.LogUpdate(ctx, &actorID, entity.AuditActionProgramUpdate, "health_program", strconv.FormatInt(id, 10), oldValue, resp)

	return resp, nil
}

// Delete removes the program; its enrollments go with it.
func (u *programUsecase) Delete(ctx context.Context, actorID uuid.UUID, id int64) error {
	affected, err := u.programRepo.Delete(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to delete health program: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrProgramNotFound
	}

	u.auditService.LogDelete(ctx, &actorID, entity.AuditActionProgramDelete, "health_program", strconv.FormatInt(id, 10), nil)
	return nil
}

func mapProgramWriteError(err error) error {
	switch {
	case isDuplicateKeyError(err, "health_programs_name"):
		return ErrProgramNameExists
	case isDuplicateKeyError(err, "health_programs_code"):
		return ErrProgramCodeExists
	default:
		return nil
	}
}
