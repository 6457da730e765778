package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/repository"
	"campuseats/internal/storage"
)

// ImageCleaner schedules image blobs for deletion when the record that
// referenced them is edited or removed.
type ImageCleaner interface {
	Enqueue(ctx context.Context, key string)
}

// CreatePostInput carries the fields of a new food post.
type CreatePostInput struct {
	Title           string
	Description     string
	FoodType        string
	CampusID        uuid.UUID
	LocationName    string
	Latitude        float64
	Longitude       float64
	DurationMinutes int
	ImageID         string
	DietaryTags     []string
}

// UpdatePostInput is a partial patch of a post. Nil fields are untouched.
type UpdatePostInput struct {
	Title         *string
	Description   *string
	FoodType      *string
	LocationName  *string
	Latitude      *float64
	Longitude     *float64
	ImageID       *string
	DietaryTags   []string
	ExtendMinutes int
}

// PostView is a post decorated for display: resolved image URL, community
// rating, and the creator's public profile bits.
type PostView struct {
	model.FoodPost
	ImageURL      string   `json:"image_url,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
	CreatorName   string   `json:"creator_name,omitempty"`
}

// PostService owns the food post lifecycle: moderation-gated creation, the
// ranked feed, creator edits, and the gone/report transitions.
type PostService interface {
	Create(ctx context.Context, creator *model.User, input CreatePostInput) (*model.FoodPost, error)
	Feed(ctx context.Context, campusID uuid.UUID, viewer *model.User) ([]PostView, error)
	Get(ctx context.Context, id uuid.UUID) (*PostView, error)
	ListMine(ctx context.Context, creator *model.User) ([]PostView, error)
	Update(ctx context.Context, actor *model.User, postID uuid.UUID, input UpdatePostInput) (*model.FoodPost, error)
	MarkGone(ctx context.Context, actor *model.User, postID uuid.UUID) (*model.FoodPost, error)
	ReportGone(ctx context.Context, actor *model.User, postID uuid.UUID) (*model.FoodPost, error)
}

type postService struct {
	postRepo   repository.FoodPostRepository
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	campusRepo repository.CampusRepository
	moderator  Moderator
	store      storage.ObjectStore
	cleaner    ImageCleaner
	// Mutex map for per-post locking on report toggles
	postMutexes sync.Map
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.FoodPostRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	campusRepo repository.CampusRepository,
	moderator Moderator,
	store storage.ObjectStore,
	cleaner ImageCleaner,
) PostService {
	return &postService{
		postRepo:   postRepo,
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		campusRepo: campusRepo,
		moderator:  moderator,
		store:      store,
		cleaner:    cleaner,
	}
}

// getMutex returns a mutex for a specific post ID.
func (s *postService) getMutex(postID uuid.UUID) *sync.Mutex {
	value, _ := s.postMutexes.LoadOrStore(postID.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

// Create runs the moderation gate and, only on approval, persists the post.
// Moderation sits before the insert so a rejection never leaves partial
// state behind.
func (s *postService) Create(ctx context.Context, creator *model.User, input CreatePostInput) (*model.FoodPost, error) {
	if !model.ValidFoodType(input.FoodType) {
		return nil, errors.ErrInvalidFoodType
	}
	for _, tag := range input.DietaryTags {
		if !model.ValidDietaryTag(tag) {
			return nil, errors.ErrInvalidDietaryTag
		}
	}

	if _, err := s.campusRepo.FindByID(ctx, input.CampusID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCampusNotFound
		}
		return nil, err
	}

	verdict := s.moderator.Check(ctx, input.Title, input.Description, input.ImageID)
	if !verdict.Allowed {
		return nil, errors.NewModerationError(verdict.Reason)
	}

	expiresAt := time.Now().Add(time.Duration(input.DurationMinutes) * time.Minute).UnixMilli()
	post := &model.FoodPost{
		Title:        input.Title,
		Description:  input.Description,
		FoodType:     model.FoodType(input.FoodType),
		CampusID:     input.CampusID,
		LocationName: input.LocationName,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		ExpiresAt:    expiresAt,
		ImageID:      input.ImageID,
		CreatedBy:    creator.ID,
		IsActive:     true,
		DietaryTags:  input.DietaryTags,
		ReportedBy:   model.StringSet{},
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Feed returns a campus's available posts in preference-weighted order.
// The order is recomputed from the current snapshot on every call.
func (s *postService) Feed(ctx context.Context, campusID uuid.UUID, viewer *model.User) ([]PostView, error) {
	posts, err := s.postRepo.ListActiveByCampus(ctx, campusID, time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	ratings, err := s.reviewRepo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, err
	}

	rankPosts(posts, ratings, viewer)
	return s.decorate(ctx, posts, ratings)
}

// Get returns a single post, whatever its state. Expired or gone posts are
// still readable so creators can review their history.
func (s *postService) Get(ctx context.Context, id uuid.UUID) (*PostView, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPostNotFound
		}
		return nil, err
	}

	ratings, err := s.reviewRepo.AverageRatings(ctx, []uuid.UUID{post.ID})
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, []model.FoodPost{*post}, ratings)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListMine returns the creator's own posts, newest first.
func (s *postService) ListMine(ctx context.Context, creator *model.User) ([]PostView, error) {
	posts, err := s.postRepo.ListByCreator(ctx, creator.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	ratings, err := s.reviewRepo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, ratings)
}

// Update applies a creator's partial patch. Swapping the image schedules
// the old blob for deletion; ExtendMinutes pushes expiry forward from
// max(current expiry, now).
func (s *postService) Update(ctx context.Context, actor *model.User, postID uuid.UUID, input UpdatePostInput) (*model.FoodPost, error) {
	post, err := s.findForCreator(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	if input.FoodType != nil {
		if !model.ValidFoodType(*input.FoodType) {
			return nil, errors.ErrInvalidFoodType
		}
		post.FoodType = model.FoodType(*input.FoodType)
	}
	if input.DietaryTags != nil {
		for _, tag := range input.DietaryTags {
			if !model.ValidDietaryTag(tag) {
				return nil, errors.ErrInvalidDietaryTag
			}
		}
		post.DietaryTags = input.DietaryTags
	}
	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Description != nil {
		post.Description = *input.Description
	}
	if input.LocationName != nil {
		post.LocationName = *input.LocationName
	}
	if input.Latitude != nil {
		post.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		post.Longitude = *input.Longitude
	}

	var replacedImage string
	if input.ImageID != nil && *input.ImageID != post.ImageID {
		replacedImage = post.ImageID
		post.ImageID = *input.ImageID
	}

	if input.ExtendMinutes > 0 {
		base := post.ExpiresAt
		if now := time.Now().UnixMilli(); now > base {
			base = now
		}
		post.ExpiresAt = base + int64(input.ExtendMinutes)*time.Minute.Milliseconds()
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if replacedImage != "" {
		s.cleaner.Enqueue(ctx, replacedImage)
	}
	return post, nil
}

// MarkGone deactivates a post. Creator only; terminal.
func (s *postService) MarkGone(ctx context.Context, actor *model.User, postID uuid.UUID) (*model.FoodPost, error) {
	post, err := s.findForCreator(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsActive {
		return nil, errors.ErrPostInactive
	}

	post.IsActive = false
	post.MarkedGoneBy = &actor.ID
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("mark gone: %w", err)
	}
	return post, nil
}

// ReportGone toggles the actor's gone-report on a post and keeps the
// creator's notification in step with the count. The whole read-modify-write
// runs under a per-post mutex and a DB transaction; goneReports always
// equals the size of reportedBy when it commits.
func (s *postService) ReportGone(ctx context.Context, actor *model.User, postID uuid.UUID) (*model.FoodPost, error) {
	mutex := s.getMutex(postID)
	mutex.Lock()
	defer mutex.Unlock()

	var updated *model.FoodPost
	err := s.postRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.FoodPostRepository) error {
		post, err := repo.FindByID(ctx, postID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPostNotFound
			}
			return err
		}
		if post.CreatedBy == actor.ID {
			return errors.ErrOwnPost
		}

		actorKey := actor.ID.String()
		notifRepo := repo.NotificationRepo()

		if post.ReportedBy.Contains(actorKey) {
			post.ReportedBy = post.ReportedBy.Remove(actorKey)
			post.GoneReports = len(post.ReportedBy)
			if err := s.retractNotification(ctx, notifRepo, post); err != nil {
				return err
			}
		} else {
			post.ReportedBy = post.ReportedBy.Add(actorKey)
			post.GoneReports = len(post.ReportedBy)
			if err := s.raiseNotification(ctx, notifRepo, post); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, post); err != nil {
			return fmt.Errorf("update report state: %w", err)
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// raiseNotification upserts the creator's gone-report notice and marks it
// unread for the new report.
func (s *postService) raiseNotification(ctx context.Context, notifRepo repository.NotificationRepository, post *model.FoodPost) error {
	existing, err := notifRepo.FindByUserAndPost(ctx, post.CreatedBy, post.ID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return notifRepo.Create(ctx, &model.Notification{
			UserID:      post.CreatedBy,
			Type:        model.NotificationFoodGoneReported,
			FoodPostID:  post.ID,
			FoodTitle:   post.Title,
			ReportCount: post.GoneReports,
			IsRead:      false,
		})
	}

	existing.ReportCount = post.GoneReports
	existing.IsRead = false
	return notifRepo.Update(ctx, existing)
}

// retractNotification lowers the report count on the creator's notice, and
// deletes it entirely once the count returns to zero.
func (s *postService) retractNotification(ctx context.Context, notifRepo repository.NotificationRepository, post *model.FoodPost) error {
	existing, err := notifRepo.FindByUserAndPost(ctx, post.CreatedBy, post.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// nothing to retract
			return nil
		}
		return err
	}

	if post.GoneReports == 0 {
		return notifRepo.Delete(ctx, existing.ID)
	}
	existing.ReportCount = post.GoneReports
	return notifRepo.Update(ctx, existing)
}

// findForCreator loads a post and enforces that actor created it.
func (s *postService) findForCreator(ctx context.Context, actor *model.User, postID uuid.UUID) (*model.FoodPost, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPostNotFound
		}
		return nil, err
	}
	if post.CreatedBy != actor.ID {
		return nil, errors.ErrNotPostCreator
	}
	return post, nil
}

// decorate resolves image URLs, attaches rating aggregates, and fills in
// creator names for a ranked slice of posts.
func (s *postService) decorate(ctx context.Context, posts []model.FoodPost, ratings map[uuid.UUID]repository.PostRating) ([]PostView, error) {
	creatorIDs := make([]uuid.UUID, 0, len(posts))
	seen := make(map[uuid.UUID]bool, len(posts))
	for _, p := range posts {
		if !seen[p.CreatedBy] {
			seen[p.CreatedBy] = true
			creatorIDs = append(creatorIDs, p.CreatedBy)
		}
	}
	creators, err := s.userRepo.FindByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		view := PostView{FoodPost: p}
		if r, ok := ratings[p.ID]; ok && r.Count > 0 {
			avg := r.Average
			view.AverageRating = &avg
			view.ReviewCount = r.Count
		}
		if creator, ok := creators[p.CreatedBy]; ok {
			view.CreatorName = creator.Name
		}
		if p.ImageID != "" {
			url, err := s.store.ResolveURL(ctx, p.ImageID)
			if err != nil {
				// a broken image URL should not sink the feed
				log.Printf("resolve image %s: %v", p.ImageID, err)
			} else {
				view.ImageURL = url
			}
		}
		views[i] = view
	}
	return views, nil
}
