package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/repository"
	"campuseats/internal/storage"
)

// UpsertReviewInput carries a review submission.
type UpsertReviewInput struct {
	Rating  int
	Comment string
	ImageID string
}

// ReviewView is a review decorated with the reviewer's public profile and
// a resolved image URL.
type ReviewView struct {
	model.Review
	ImageURL     string `json:"image_url,omitempty"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	ReviewerIcon string `json:"reviewer_icon,omitempty"`
}

// ReviewService manages the one-review-per-(post,user) rating records.
type ReviewService interface {
	Upsert(ctx context.Context, actor *model.User, postID uuid.UUID, input UpsertReviewInput) (*model.Review, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]ReviewView, error)
	Delete(ctx context.Context, actor *model.User, postID uuid.UUID) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	postRepo   repository.FoodPostRepository
	userRepo   repository.UserRepository
	store      storage.ObjectStore
	cleaner    ImageCleaner
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	postRepo repository.FoodPostRepository,
	userRepo repository.UserRepository,
	store storage.ObjectStore,
	cleaner ImageCleaner,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		postRepo:   postRepo,
		userRepo:   userRepo,
		store:      store,
		cleaner:    cleaner,
	}
}

// Upsert creates the actor's review of a post, or replaces the one they
// already left. Creators cannot review their own posts.
func (s *reviewService) Upsert(ctx context.Context, actor *model.User, postID uuid.UUID, input UpsertReviewInput) (*model.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.ErrInvalidRating
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPostNotFound
		}
		return nil, err
	}
	if post.CreatedBy == actor.ID {
		return nil, errors.ErrSelfReview
	}

	existing, err := s.reviewRepo.FindByPostAndUser(ctx, postID, actor.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if existing == nil {
		review := &model.Review{
			FoodPostID: postID,
			UserID:     actor.ID,
			Rating:     input.Rating,
			Comment:    input.Comment,
			ImageID:    input.ImageID,
		}
		if err := s.reviewRepo.Create(ctx, review); err != nil {
			return nil, fmt.Errorf("create review: %w", err)
		}
		return review, nil
	}

	if input.ImageID != "" && input.ImageID != existing.ImageID && existing.ImageID != "" {
		s.cleaner.Enqueue(ctx, existing.ImageID)
	}
	existing.Rating = input.Rating
	existing.Comment = input.Comment
	if input.ImageID != "" {
		existing.ImageID = input.ImageID
	}
	if err := s.reviewRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return existing, nil
}

// ListByPost lists a post's reviews with reviewer names and avatars.
func (s *reviewService) ListByPost(ctx context.Context, postID uuid.UUID) ([]ReviewView, error) {
	reviews, err := s.reviewRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(reviews))
	seen := make(map[uuid.UUID]bool, len(reviews))
	for _, r := range reviews {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			userIDs = append(userIDs, r.UserID)
		}
	}
	reviewers, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ReviewView, len(reviews))
	for i, r := range reviews {
		view := ReviewView{Review: r}
		if reviewer, ok := reviewers[r.UserID]; ok {
			view.ReviewerName = reviewer.Name
			view.ReviewerIcon = reviewer.ImageURL
		}
		if r.ImageID != "" {
			url, err := s.store.ResolveURL(ctx, r.ImageID)
			if err != nil {
				log.Printf("resolve review image %s: %v", r.ImageID, err)
			} else {
				view.ImageURL = url
			}
		}
		views[i] = view
	}
	return views, nil
}

// Delete removes the actor's review of a post along with its image.
func (s *reviewService) Delete(ctx context.Context, actor *model.User, postID uuid.UUID) error {
	existing, err := s.reviewRepo.FindByPostAndUser(ctx, postID, actor.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrReviewNotFound
		}
		return err
	}

	if err := s.reviewRepo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if existing.ImageID != "" {
		s.cleaner.Enqueue(ctx, existing.ImageID)
	}
	return nil
}
