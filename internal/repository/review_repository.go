package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/model"
)

// PostRating aggregates review ratings for one post.
type PostRating struct {
	FoodPostID uuid.UUID
	Average    float64
	Count      int
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*model.Review, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Review, error)
	AverageRatings(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]PostRating, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create creates a new review.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// Update updates an existing review.
func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

// Delete removes a review by ID.
func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Review{}, "id = ?", id).Error
}

// FindByPostAndUser finds the review a user left on a post, if any.
func (r *reviewRepository) FindByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).
		Where("food_post_id = ? AND user_id = ?", postID, userID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByPost lists a post's reviews, newest first.
func (r *reviewRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("food_post_id = ?", postID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageRatings computes mean rating and review count per post in one
// grouped query. Posts without reviews are absent from the result.
func (r *reviewRepository) AverageRatings(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]PostRating, error) {
	result := make(map[uuid.UUID]PostRating, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		FoodPostID uuid.UUID
		Average    float64
		Count      int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("food_post_id, AVG(rating) as average, COUNT(*) as count").
		Where("food_post_id IN ?", postIDs).
		Group("food_post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.FoodPostID] = PostRating{
			FoodPostID: row.FoodPostID,
			Average:    row.Average,
			Count:      row.Count,
		}
	}
	return result, nil
}
