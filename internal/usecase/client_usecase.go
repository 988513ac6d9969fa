package usecase

import (
	"context"
	"errors"
	"strings"
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

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientEmailExists  = errors.New("client with this email already exists")
	ErrNationalIDExists   = errors.New("client with this national ID already exists")
	ErrInvalidDateOfBirth = errors.New("date of birth must be a past date in format YYYY-MM-DD")
)

var clientOrderings = map[string]string{
	"last_name":     "last_name",
	"first_name":    "first_name",
	"registered_at": "registered_at",
}

const defaultClientOrdering = "last_name ASC, first_name ASC"

type ClientUsecase interface {
	List(ctx context.Context, params dto.ClientListParams) ([]dto.ClientResponse, int64, error)
	Search(ctx context.Context, req *dto.ClientSearchRequest, page, limit int) ([]dto.ClientResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientDetailResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, req *dto.ClientRequest) (*dto.ClientResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *dto.ClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
	Enroll(ctx context.Context, actorID uuid.UUID, clientID uuid.UUID, req *dto.EnrollClientRequest) (*dto.EnrollmentResponse, error)
}

type clientUsecase struct {
	log          *logrus.Logger
	clientRepo   repository.ClientRepository
	programRepo  repository.HealthProgramRepository
	auditService service.AuditService
	publisher    event.Publisher
	enroller     *enrollmentCreator
	now          func() time.Time
}

func NewClientUsecase(
	log *logrus.Logger,
	clientRepo repository.ClientRepository,
	programRepo repository.HealthProgramRepository,
	enrollmentRepo repository.EnrollmentRepository,
	auditService service.AuditService,
	publisher event.Publisher,
) ClientUsecase {
	return &clientUsecase{
		log:          log,
		clientRepo:   clientRepo,
		programRepo:  programRepo,
		auditService: auditService,
		publisher:    publisher,
		enroller: &enrollmentCreator{
			log:            log,
			enrollmentRepo: enrollmentRepo,
			auditService:   auditService,
			publisher:      publisher,
			now:            time.Now,
		},
		now: time.Now,
	}
}

func (u *clientUsecase) List(ctx context.Context, params dto.ClientListParams) ([]dto.ClientResponse, int64, error) {
	filter := entity.ClientFilter{
		Query:     strings.TrimSpace(params.Search),
		ProgramID: params.ProgramID,
		Ordering:  resolveOrdering(params.Ordering, clientOrderings, defaultClientOrdering),
	}
	return u.find(ctx, filter, params.Page, params.Limit)
}

// Search matches the query against the client's names, email, phone number
// and national ID, optionally narrowed to active members of one program.
func (u *clientUsecase) Search(ctx context.Context, req *dto.ClientSearchRequest, page, limit int) ([]dto.ClientResponse, int64, error) {
	filter := entity.ClientFilter{
		Query:     strings.TrimSpace(req.Query),
		ProgramID: req.ProgramID,
		Ordering:  defaultClientOrdering,
	}
	return u.find(ctx, filter, page, limit)
}

func (u *clientUsecase) find(ctx context.Context, filter entity.ClientFilter, page, limit int) ([]dto.ClientResponse, int64, error) {
	clients, total, err := u.clientRepo.FindAll(ctx, filter, limit, offset(page, limit))
	if err != nil {
		u.log.Warnf("Failed to list clients: %+v", err)
		return nil, 0, err
	}
	return converter.ClientsToResponses(clients), total, nil
}

func (u *clientUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.ClientDetailResponse, error) {
	client, err := u.clientRepo.FindByIDWithEnrollments(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find client: %+v", err)
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	return converter.ClientToDetailResponse(client), nil
}

func (u *clientUsecase) Create(ctx context.Context, actorID uuid.UUID, req *dto.ClientRequest) (*dto.ClientResponse, error) {
	client := &entity.Client{RegisteredByID: &actorID}
	if err := u.applyRequest(client, req); err != nil {
		return nil, err
	}

	if err := u.clientRepo.Create(ctx, client); err != nil {
		if mapped := mapClientWriteError(err); mapped != nil {
			return nil, mapped
		}
		u.log.Warnf("Failed to create client: %+v", err)
		return nil, err
	}

	publishEvent(ctx, u.publisher, u.log, event.ClientRegistered, event.ClientRegisteredEvent{
		ClientID:  client.ID.String(),
		FirstName: client.FirstName,
		FullName:  client.FullName(),
		Email:     client.Email,
	})

	resp := converter.ClientToResponse(client)
	u.auditService.LogCreate(ctx, &actorID, entity.AuditActionClientCreate, "client", client.ID.String(), resp)

	return resp, nil
}

func (u *clientUsecase) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *dto.ClientRequest) (*dto.ClientResponse, error) {
	client, err := u.clientRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find client: %+v", err)
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	oldValue := converter.ClientToResponse(client)
	if err := u.applyRequest(client, req); err != nil {
		return nil, err
	}

	if err := u.clientRepo.Update(ctx, client); err != nil {
		if mapped := mapClientWriteError(err); mapped != nil {
			return nil, mapped
		}
		u.log.Warnf("Failed to update client: %+v", err)
		return nil, err
	}

	resp := converter.ClientToResponse(client)
	u.auditService.LogUpdate(ctx, &actorID, entity.AuditActionClientUpdate, "client", id.String(), oldValue, resp)

	return resp, nil
}

// Delete removes the client; its enrollments go with it.
func (u *clientUsecase) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	affected, err := u.clientRepo.Delete(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to delete client: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrClientNotFound
	}

	u.auditService.LogDelete(ctx, &actorID, entity.AuditActionClientDelete, "client", id.String(), nil)
	return nil
}

// Enroll adds the client to a program. An unknown client is ErrClientNotFound,
// an unknown program ErrProgramNotFound and an existing pair ErrAlreadyEnrolled.
func (u *clientUsecase) Enroll(ctx context.Context, actorID uuid.UUID, clientID uuid.UUID, req *dto.EnrollClientRequest) (*dto.EnrollmentResponse, error) {
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

func (u *clientUsecase) applyRequest(client *entity.Client, req *dto.ClientRequest) error {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil || dob.After(u.now()) {
		return ErrInvalidDateOfBirth
	}

	client.FirstName = strings.TrimSpace(req.FirstName)
	client.LastName = strings.TrimSpace(req.LastName)
	client.DateOfBirth = dob
	client.Gender = req.Gender
	client.Email = strings.TrimSpace(req.Email)
	client.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	client.Address = strings.TrimSpace(req.Address)
	client.NationalID = trimmedOrNil(req.NationalID)
	client.BloodType = trimmedOrNil(req.BloodType)
	client.Allergies = trimmedOrNil(req.Allergies)
	client.ChronicConditions = trimmedOrNil(req.ChronicConditions)
	return nil
}

func mapClientWriteError(err error) error {
	switch {
	case isDuplicateKeyError(err, "clients_email"):
		return ErrClientEmailExists
	case isDuplicateKeyError(err, "clients_national_id"):
		return ErrNationalIDExists
	default:
		return nil
	}
}
