package repository

import (
	"context"
	"errors"
	"time"

	"health-program-api/internal/domain/entity"
	domainRepo "health-program-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) domainRepo.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
}

func (r *enrollmentRepository) FindAll(ctx context.Context, filter entity.EnrollmentFilter, limit, offset int) ([]entity.Enrollment, int64, error) {
	var enrollments []entity.Enrollment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Enrollment{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProgramID != nil {
		query = query.Where("program_id = ?", *filter.ProgramID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Client").Preload("Program").Preload("EnrolledBy").
		Order("enrollment_date DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id int64) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Program").Preload("EnrolledBy").
		Where("id = ?", id).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByClientAndProgram(ctx context.Context, clientID uuid.UUID, programID int64) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).Where("client_id = ? AND program_id = ?", clientID, programID).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(enrollment).Error
}

func (r *enrollmentRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Enrollment{})
	return result.RowsAffected, result.Error
}

// CountByMonthSince groups enrollments by calendar month of enrollment_date.
// Months without enrollments are absent from the result.
func (r *enrollmentRepository) CountByMonthSince(ctx context.Context, since time.Time) ([]entity.MonthlyCount, error) {
	var results []entity.MonthlyCount
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Select("to_char(date_trunc('month', enrollment_date), 'YYYY-MM') AS month, COUNT(*) AS count").
		Where("enrollment_date >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
