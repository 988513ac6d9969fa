package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"health-program-api/internal/converter"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/domain/repository"
	"health-program-api/internal/event"
	"health-program-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyEnrolled = errors.New("client is already enrolled in this program")

// enrollmentCreator holds the enrollment rules shared by the client enroll
// action and the enrollments resource.
type enrollmentCreator struct {
	log            *logrus.Logger
	enrollmentRepo repository.EnrollmentRepository
	auditService   service.AuditService
	publisher      event.Publisher
	now            func() time.Time
}

func (c *enrollmentCreator) create(ctx context.Context, actorID uuid.UUID, client *entity.Client, program *entity.HealthProgram, notes *string) (*entity.Enrollment, error) {
	existing, err := c.enrollmentRepo.FindByClientAndProgram(ctx, client.ID, program.ID)
	if err != nil {
		c.log.Warnf("Failed to check existing enrollment: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	now := c.now()
	enrollment := &entity.Enrollment{
		ClientID:       client.ID,
		ProgramID:      program.ID,
		EnrollmentDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		IsActive:       true,
		Notes:          trimmedOrNil(notes),
		EnrolledByID:   &actorID,
	}

	if err := c.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if isDuplicateKeyError(err, "enrollments_client_id_program_id") {
			return nil, ErrAlreadyEnrolled
		}
		c.log.Warnf("Failed to create enrollment: %+v", err)
		return nil, err
	}

	enrollment.Client = *client
	enrollment.Program = *program

	publishEvent(ctx, c.publisher, c.log, event.EnrollmentCreated, event.EnrollmentCreatedEvent{
		EnrollmentID:   enrollment.ID,
		ClientID:       client.ID.String(),
		ClientName:     client.FullName(),
		ClientEmail:    client.Email,
		ProgramName:    program.Name,
		ProgramCode:    program.Code,
		EnrollmentDate: enrollment.EnrollmentDate.Format("2006-01-02"),
	})
	c.auditService.LogCreate(ctx, &actorID, entity.AuditActionEnrollmentCreate, "enrollment",
		strconv.FormatInt(enrollment.ID, 10), converter.EnrollmentToResponse(enrollment))

	return enrollment, nil
}
