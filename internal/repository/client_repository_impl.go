package repository

import (
	"context"
	"errors"

	"health-program-api/internal/domain/entity"
	domainRepo "health-program-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(client).Error
}

// FindAll serves both the list and the search endpoints. Query matches any of
// the searchable columns; ProgramID narrows to clients with an active
// enrollment in that program.
func (r *clientRepository) FindAll(ctx context.Context, filter entity.ClientFilter, limit, offset int) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{})
	if filter.Query != "" {
		like := containsPattern(filter.Query)
		query = query.Where(
			"(clients.first_name ILIKE ? OR clients.last_name ILIKE ? OR (clients.first_name || ' ' || clients.last_name) ILIKE ? "+
				"OR clients.email ILIKE ? OR clients.phone_number ILIKE ? OR clients.national_id ILIKE ?)",
			like, like, like, like, like, like,
		)
	}
	if filter.ProgramID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM enrollments e WHERE e.client_id = clients.id AND e.program_id = ? AND e.is_active = ?)",
			*filter.ProgramID, true,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = "last_name ASC, first_name ASC"
	}

	err := query.Preload("RegisteredBy").
		Order(ordering).Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return r.findOne(r.db.WithContext(ctx).Preload("RegisteredBy"), id)
}

func (r *clientRepository) FindByIDWithEnrollments(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	db := r.db.WithContext(ctx).
		Preload("RegisteredBy").
		Preload("Enrollments", func(db *gorm.DB) *gorm.DB {
			return db.Order("enrollment_date DESC, id DESC")
		}).
		Preload("Enrollments.Program").
		Preload("Enrollments.EnrolledBy")
	return r.findOne(db, id)
}

func (r *clientRepository) findOne(db *gorm.DB, id uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := db.Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Client{})
	return result.RowsAffected, result.Error
}

func (r *clientRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Client{}).Count(&total).Error
	return total, err
}

func (r *clientRepository) CountEnrolled(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Distinct("client_id").Count(&total).Error
	return total, err
}

func (r *clientRepository) FindRecentWithCounts(ctx context.Context, limit int) ([]entity.ClientWithCount, error) {
	var results []entity.ClientWithCount
	err := r.db.WithContext(ctx).Model(&entity.Client{}).
		Select("clients.*, COUNT(enrollments.id) AS enrollment_count").
		Joins("LEFT JOIN enrollments ON enrollments.client_id = clients.id").
		Group("clients.id").
		Order("clients.registered_at DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
