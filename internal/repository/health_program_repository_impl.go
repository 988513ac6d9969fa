package repository

import (
	"context"
	"errors"

	"health-program-api/internal/domain/entity"
	domainRepo "health-program-api/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type healthProgramRepository struct {
	db *gorm.DB
}

func NewHealthProgramRepository(db *gorm.DB) domainRepo.HealthProgramRepository {
	return &healthProgramRepository{db: db}
}

func (r *healthProgramRepository) Create(ctx context.Context, program *entity.HealthProgram) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(program).Error
}

func (r *healthProgramRepository) FindAll(ctx context.Context, filter entity.ProgramFilter, limit, offset int) ([]entity.HealthProgram, int64, error) {
	var programs []entity.HealthProgram
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.HealthProgram{})
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where("(name ILIKE ? OR code ILIKE ? OR description ILIKE ?)", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = "name ASC"
	}

	err := query.Preload("CreatedBy").
		Order(ordering).Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&programs).Error
	if err != nil {
		return nil, 0, err
	}

	return programs, total, nil
}

func (r *healthProgramRepository) FindByID(ctx context.Context, id int64) (*entity.HealthProgram, error) {
	var program entity.HealthProgram
	err := r.db.WithContext(ctx).Preload("CreatedBy").Where("id = ?", id).First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

func (r *healthProgramRepository) Update(ctx context.Context, program *entity.HealthProgram) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(program).Error
}

func (r *healthProgramRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.HealthProgram{})
	return result.RowsAffected, result.Error
}

func (r *healthProgramRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.HealthProgram{}).Count(&total).Error
	return total, err
}

func (r *healthProgramRepository) FindRecentWithCounts(ctx context.Context, limit int) ([]entity.ProgramWithCount, error) {
	var results []entity.ProgramWithCount
	err := r.withEnrollmentCount(ctx).
		Order("health_programs.created_at DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *healthProgramRepository) FindTopByEnrollments(ctx context.Context, limit int) ([]entity.ProgramWithCount, error) {
	var results []entity.ProgramWithCount
	err := r.withEnrollmentCount(ctx).
		Order("enrollment_count DESC, health_programs.name ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *healthProgramRepository) withEnrollmentCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entity.HealthProgram{}).
		Select("health_programs.*, COUNT(enrollments.id) AS enrollment_count").
		Joins("LEFT JOIN enrollments ON enrollments.program_id = health_programs.id").
		Group("health_programs.id")
}
