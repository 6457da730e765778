package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/model"
)

// FoodPostRepository defines food post persistence operations.
type FoodPostRepository interface {
	Create(ctx context.Context, post *model.FoodPost) error
	Update(ctx context.Context, post *model.FoodPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FoodPost, error)
	ListActiveByCampus(ctx context.Context, campusID uuid.UUID, nowMillis int64) ([]model.FoodPost, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.FoodPost, error)
	// WithTransaction runs fn against a transactional copy of the repository.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo FoodPostRepository) error) error
	// NotificationRepo returns a notification repository bound to the same
	// transaction, so report fan-out commits atomically with the post patch.
	NotificationRepo() NotificationRepository
}

type foodPostRepository struct {
	db *gorm.DB
}

// NewFoodPostRepository creates a new food post repository.
func NewFoodPostRepository(db *gorm.DB) FoodPostRepository {
	return &foodPostRepository{db: db}
}

// Create creates a new food post.
func (r *foodPostRepository) Create(ctx context.Context, post *model.FoodPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates an existing food post.
func (r *foodPostRepository) Update(ctx context.Context, post *model.FoodPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// FindByID finds a food post by ID.
func (r *foodPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FoodPost, error) {
	var post model.FoodPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListActiveByCampus lists active, unexpired posts for a campus. Expiry is
// evaluated here, at read time; nothing in storage flips expired posts.
func (r *foodPostRepository) ListActiveByCampus(ctx context.Context, campusID uuid.UUID, nowMillis int64) ([]model.FoodPost, error) {
	var posts []model.FoodPost
	err := r.db.WithContext(ctx).
		Where("campus_id = ? AND is_active = ? AND expires_at > ?", campusID, true, nowMillis).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByCreator lists a user's own posts, newest first, regardless of state.
func (r *foodPostRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.FoodPost, error) {
	var posts []model.FoodPost
	err := r.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// WithTransaction executes a function within a database transaction.
func (r *foodPostRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo FoodPostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &foodPostRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// NotificationRepo returns a notification repository on the same DB handle.
func (r *foodPostRepository) NotificationRepo() NotificationRepository {
	return NewNotificationRepository(r.db)
}
