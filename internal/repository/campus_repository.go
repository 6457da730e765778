package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/model"
)

// CampusRepository defines campus persistence operations.
type CampusRepository interface {
	Create(ctx context.Context, campus *model.Campus) error
	Update(ctx context.Context, campus *model.Campus) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Campus, error)
	FindByNameAndState(ctx context.Context, name, state string) (*model.Campus, error)
	ListAll(ctx context.Context) ([]model.Campus, error)
}

type campusRepository struct {
	db *gorm.DB
}

// NewCampusRepository creates a new campus repository.
func NewCampusRepository(db *gorm.DB) CampusRepository {
	return &campusRepository{db: db}
}

// Create creates a new campus.
func (r *campusRepository) Create(ctx context.Context, campus *model.Campus) error {
	return r.db.WithContext(ctx).Create(campus).Error
}

// Update updates an existing campus.
func (r *campusRepository) Update(ctx context.Context, campus *model.Campus) error {
	return r.db.WithContext(ctx).Save(campus).Error
}

// FindByID finds a campus by ID.
func (r *campusRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Campus, error) {
	var campus model.Campus
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&campus).Error; err != nil {
		return nil, err
	}
	return &campus, nil
}

// FindByNameAndState finds a campus by its unique (name, state) pair.
func (r *campusRepository) FindByNameAndState(ctx context.Context, name, state string) (*model.Campus, error) {
	var campus model.Campus
	if err := r.db.WithContext(ctx).Where("name = ? AND state = ?", name, state).First(&campus).Error; err != nil {
		return nil, err
	}
	return &campus, nil
}

// ListAll lists every campus, ordered by name.
func (r *campusRepository) ListAll(ctx context.Context) ([]model.Campus, error) {
	var campuses []model.Campus
	if err := r.db.WithContext(ctx).Order("name asc").Find(&campuses).Error; err != nil {
		return nil, err
	}
	return campuses, nil
}
