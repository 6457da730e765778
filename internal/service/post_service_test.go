package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/repository"
)

// MockFoodPostRepository is a mock implementation of FoodPostRepository.
type MockFoodPostRepository struct {
	mock.Mock
	notifRepo repository.NotificationRepository
}

func (m *MockFoodPostRepository) Create(ctx context.Context, post *model.FoodPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockFoodPostRepository) Update(ctx context.Context, post *model.FoodPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockFoodPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FoodPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FoodPost), args.Error(1)
}

func (m *MockFoodPostRepository) ListActiveByCampus(ctx context.Context, campusID uuid.UUID, nowMillis int64) ([]model.FoodPost, error) {
	args := m.Called(ctx, campusID, nowMillis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FoodPost), args.Error(1)
}

func (m *MockFoodPostRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.FoodPost, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FoodPost), args.Error(1)
}

// WithTransaction runs fn against the mock itself, standing in for the
// transactional copy.
func (m *MockFoodPostRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.FoodPostRepository) error) error {
	return fn(ctx, m)
}

func (m *MockFoodPostRepository) NotificationRepo() repository.NotificationRepository {
	return m.notifRepo
}

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByUserAndPost(ctx context.Context, userID, postID uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *model.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) FindByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*model.Review, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Review, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Review), args.Error(1)
}

func (m *MockReviewRepository) AverageRatings(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]repository.PostRating, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]repository.PostRating), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]model.User), args.Error(1)
}

// MockObjectStore is a mock implementation of storage.ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PresignUpload(ctx context.Context, fileName string) (string, string, error) {
	args := m.Called(ctx, fileName)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockObjectStore) ResolveURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// stubModerator returns a fixed verdict.
type stubModerator struct {
	result ModerationResult
}

func (s stubModerator) Check(ctx context.Context, title, description, imageID string) ModerationResult {
	return s.result
}

// recordingCleaner captures enqueued image keys.
type recordingCleaner struct {
	keys []string
}

func (c *recordingCleaner) Enqueue(ctx context.Context, key string) {
	c.keys = append(c.keys, key)
}

type postServiceFixture struct {
	postRepo   *MockFoodPostRepository
	reviewRepo *MockReviewRepository
	userRepo   *MockUserRepository
	campusRepo *MockCampusRepository
	notifRepo  *MockNotificationRepository
	store      *MockObjectStore
	cleaner    *recordingCleaner
	moderator  stubModerator
}

func newPostServiceFixture() *postServiceFixture {
	notifRepo := new(MockNotificationRepository)
	return &postServiceFixture{
		postRepo:   &MockFoodPostRepository{notifRepo: notifRepo},
		reviewRepo: new(MockReviewRepository),
		userRepo:   new(MockUserRepository),
		campusRepo: new(MockCampusRepository),
		notifRepo:  notifRepo,
		store:      new(MockObjectStore),
		cleaner:    &recordingCleaner{},
		moderator:  stubModerator{result: ModerationResult{Allowed: true}},
	}
}

func (f *postServiceFixture) service() PostService {
	return NewPostService(f.postRepo, f.reviewRepo, f.userRepo, f.campusRepo, f.moderator, f.store, f.cleaner)
}

func TestPostService_Create(t *testing.T) {
	creator := &model.User{ID: uuid.New(), Name: "Sam"}
	campusID := uuid.New()

	t.Run("successful creation sets expiry from duration", func(t *testing.T) {
		f := newPostServiceFixture()
		f.campusRepo.On("FindByID", mock.Anything, campusID).Return(&model.Campus{ID: campusID}, nil)
		f.postRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		before := time.Now().UnixMilli()
		post, err := f.service().Create(context.Background(), creator, CreatePostInput{
			Title:           "Free pizza in the lounge",
			FoodType:        "pizza",
			CampusID:        campusID,
			LocationName:    "Student Center",
			DurationMinutes: 60,
			DietaryTags:     []string{"vegetarian"},
		})
		after := time.Now().UnixMilli()

		assert.NoError(t, err)
		assert.True(t, post.IsActive)
		assert.Equal(t, creator.ID, post.CreatedBy)
		assert.GreaterOrEqual(t, post.ExpiresAt, before+60*time.Minute.Milliseconds())
		assert.LessOrEqual(t, post.ExpiresAt, after+60*time.Minute.Milliseconds())
		f.postRepo.AssertExpectations(t)
	})

	t.Run("moderation rejection persists nothing", func(t *testing.T) {
		f := newPostServiceFixture()
		f.campusRepo.On("FindByID", mock.Anything, campusID).Return(&model.Campus{ID: campusID}, nil)
		f.moderator = stubModerator{result: ModerationResult{Allowed: false, Reason: "not food"}}

		post, err := f.service().Create(context.Background(), creator, CreatePostInput{
			Title:           "Buy my textbook",
			FoodType:        "other",
			CampusID:        campusID,
			DurationMinutes: 30,
		})

		assert.Nil(t, post)
		var modErr *errors.ModerationError
		assert.ErrorAs(t, err, &modErr)
		assert.Equal(t, "not food", modErr.Reason)
		f.postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown food type", func(t *testing.T) {
		f := newPostServiceFixture()

		post, err := f.service().Create(context.Background(), creator, CreatePostInput{
			Title:           "Mystery meal",
			FoodType:        "sushi-boat",
			CampusID:        campusID,
			DurationMinutes: 30,
		})

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrInvalidFoodType, err)
	})

	t.Run("unknown dietary tag", func(t *testing.T) {
		f := newPostServiceFixture()

		post, err := f.service().Create(context.Background(), creator, CreatePostInput{
			Title:           "Snacks",
			FoodType:        "snacks",
			CampusID:        campusID,
			DurationMinutes: 30,
			DietaryTags:     []string{"keto"},
		})

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrInvalidDietaryTag, err)
	})

	t.Run("unknown campus", func(t *testing.T) {
		f := newPostServiceFixture()
		f.campusRepo.On("FindByID", mock.Anything, campusID).Return(nil, gorm.ErrRecordNotFound)

		post, err := f.service().Create(context.Background(), creator, CreatePostInput{
			Title:           "Bagels",
			FoodType:        "other",
			CampusID:        campusID,
			DurationMinutes: 30,
		})

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrCampusNotFound, err)
	})
}

func TestPostService_ReportGone(t *testing.T) {
	creatorID := uuid.New()
	reporter := &model.User{ID: uuid.New()}
	postID := uuid.New()

	t.Run("first report raises a notification", func(t *testing.T) {
		f := newPostServiceFixture()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:         postID,
			CreatedBy:  creatorID,
			Title:      "Donuts",
			IsActive:   true,
			ReportedBy: model.StringSet{},
		}, nil)
		f.notifRepo.On("FindByUserAndPost", mock.Anything, creatorID, postID).Return(nil, gorm.ErrRecordNotFound)
		f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Notification")).Return(nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().ReportGone(context.Background(), reporter, postID)

		assert.NoError(t, err)
		assert.Equal(t, 1, post.GoneReports)
		assert.Len(t, post.ReportedBy, post.GoneReports)
		assert.True(t, post.ReportedBy.Contains(reporter.ID.String()))
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("second toggle retracts the report and deletes the notification", func(t *testing.T) {
		f := newPostServiceFixture()
		notifID := uuid.New()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:          postID,
			CreatedBy:   creatorID,
			Title:       "Donuts",
			IsActive:    true,
			GoneReports: 1,
			ReportedBy:  model.StringSet{reporter.ID.String()},
		}, nil)
		f.notifRepo.On("FindByUserAndPost", mock.Anything, creatorID, postID).Return(&model.Notification{
			ID:          notifID,
			UserID:      creatorID,
			FoodPostID:  postID,
			ReportCount: 1,
		}, nil)
		f.notifRepo.On("Delete", mock.Anything, notifID).Return(nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().ReportGone(context.Background(), reporter, postID)

		assert.NoError(t, err)
		assert.Equal(t, 0, post.GoneReports)
		assert.Empty(t, post.ReportedBy)
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("retract with other reporters keeps the notification", func(t *testing.T) {
		f := newPostServiceFixture()
		other := uuid.New().String()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:          postID,
			CreatedBy:   creatorID,
			IsActive:    true,
			GoneReports: 2,
			ReportedBy:  model.StringSet{reporter.ID.String(), other},
		}, nil)
		f.notifRepo.On("FindByUserAndPost", mock.Anything, creatorID, postID).Return(&model.Notification{
			ID:          uuid.New(),
			UserID:      creatorID,
			FoodPostID:  postID,
			ReportCount: 2,
		}, nil)
		f.notifRepo.On("Update", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
			return n.ReportCount == 1
		})).Return(nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().ReportGone(context.Background(), reporter, postID)

		assert.NoError(t, err)
		assert.Equal(t, 1, post.GoneReports)
		assert.Len(t, post.ReportedBy, post.GoneReports)
		f.notifRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("creator cannot report their own post", func(t *testing.T) {
		f := newPostServiceFixture()
		creator := &model.User{ID: creatorID}
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creatorID,
			IsActive:  true,
		}, nil)

		post, err := f.service().ReportGone(context.Background(), creator, postID)

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrOwnPost, err)
		f.postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing post", func(t *testing.T) {
		f := newPostServiceFixture()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(nil, gorm.ErrRecordNotFound)

		post, err := f.service().ReportGone(context.Background(), reporter, postID)

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrPostNotFound, err)
	})
}

func TestPostService_MarkGone(t *testing.T) {
	creator := &model.User{ID: uuid.New()}
	postID := uuid.New()

	t.Run("creator deactivates the post", func(t *testing.T) {
		f := newPostServiceFixture()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creator.ID,
			IsActive:  true,
		}, nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().MarkGone(context.Background(), creator, postID)

		assert.NoError(t, err)
		assert.False(t, post.IsActive)
		assert.Equal(t, creator.ID, *post.MarkedGoneBy)
	})

	t.Run("non-creator is rejected without touching state", func(t *testing.T) {
		f := newPostServiceFixture()
		stranger := &model.User{ID: uuid.New()}
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creator.ID,
			IsActive:  true,
		}, nil)

		post, err := f.service().MarkGone(context.Background(), stranger, postID)

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrNotPostCreator, err)
		f.postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("already inactive", func(t *testing.T) {
		f := newPostServiceFixture()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creator.ID,
			IsActive:  false,
		}, nil)

		post, err := f.service().MarkGone(context.Background(), creator, postID)

		assert.Nil(t, post)
		assert.Equal(t, errors.ErrPostInactive, err)
	})
}

func TestPostService_Update(t *testing.T) {
	creator := &model.User{ID: uuid.New()}
	postID := uuid.New()

	t.Run("extending an expired post restarts from now", func(t *testing.T) {
		f := newPostServiceFixture()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creator.ID,
			IsActive:  true,
			ExpiresAt: time.Now().Add(-time.Hour).UnixMilli(),
		}, nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		before := time.Now().UnixMilli()
		post, err := f.service().Update(context.Background(), creator, postID, UpdatePostInput{ExtendMinutes: 30})
		after := time.Now().UnixMilli()

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, post.ExpiresAt, before+30*time.Minute.Milliseconds())
		assert.LessOrEqual(t, post.ExpiresAt, after+30*time.Minute.Milliseconds())
	})

	t.Run("extending a live post adds to the current expiry", func(t *testing.T) {
		f := newPostServiceFixture()
		current := time.Now().Add(time.Hour).UnixMilli()
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creator.ID,
			IsActive:  true,
			ExpiresAt: current,
		}, nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().Update(context.Background(), creator, postID, UpdatePostInput{ExtendMinutes: 15})

		assert.NoError(t, err)
		assert.Equal(t, current+15*time.Minute.Milliseconds(), post.ExpiresAt)
	})

	t.Run("swapping the image schedules the old blob for deletion", func(t *testing.T) {
		f := newPostServiceFixture()
		newImage := "images/new.jpg"
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:        postID,
			CreatedBy: creator.ID,
			IsActive:  true,
			ImageID:   "images/old.jpg",
		}, nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().Update(context.Background(), creator, postID, UpdatePostInput{ImageID: &newImage})

		assert.NoError(t, err)
		assert.Equal(t, newImage, post.ImageID)
		assert.Equal(t, []string{"images/old.jpg"}, f.cleaner.keys)
	})

	t.Run("partial patch leaves other fields alone", func(t *testing.T) {
		f := newPostServiceFixture()
		title := "Updated title"
		f.postRepo.On("FindByID", mock.Anything, postID).Return(&model.FoodPost{
			ID:          postID,
			CreatedBy:   creator.ID,
			IsActive:    true,
			Title:       "Old title",
			Description: "Still here",
			FoodType:    model.FoodTypePizza,
		}, nil)
		f.postRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.FoodPost")).Return(nil)

		post, err := f.service().Update(context.Background(), creator, postID, UpdatePostInput{Title: &title})

		assert.NoError(t, err)
		assert.Equal(t, title, post.Title)
		assert.Equal(t, "Still here", post.Description)
		assert.Equal(t, model.FoodTypePizza, post.FoodType)
	})
}

func TestPostService_Feed(t *testing.T) {
	campusID := uuid.New()
	creatorID := uuid.New()

	highRated := model.FoodPost{ID: uuid.New(), CampusID: campusID, CreatedBy: creatorID, FoodType: model.FoodTypeSnacks, CreatedAt: time.Now().Add(-2 * time.Hour)}
	lowRated := model.FoodPost{ID: uuid.New(), CampusID: campusID, CreatedBy: creatorID, FoodType: model.FoodTypePizza, CreatedAt: time.Now()}

	f := newPostServiceFixture()
	f.postRepo.On("ListActiveByCampus", mock.Anything, campusID, mock.AnythingOfType("int64")).
		Return([]model.FoodPost{lowRated, highRated}, nil)
	f.reviewRepo.On("AverageRatings", mock.Anything, mock.Anything).Return(map[uuid.UUID]repository.PostRating{
		highRated.ID: {FoodPostID: highRated.ID, Average: 4.6, Count: 5},
		lowRated.ID:  {FoodPostID: lowRated.ID, Average: 3.1, Count: 2},
	}, nil)
	f.userRepo.On("FindByIDs", mock.Anything, []uuid.UUID{creatorID}).Return(map[uuid.UUID]model.User{
		creatorID: {ID: creatorID, Name: "Alex"},
	}, nil)

	views, err := f.service().Feed(context.Background(), campusID, nil)

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, highRated.ID, views[0].ID)
	assert.Equal(t, "Alex", views[0].CreatorName)
	assert.NotNil(t, views[0].AverageRating)
	assert.Equal(t, 4.6, *views[0].AverageRating)
	assert.Equal(t, 5, views[0].ReviewCount)
}
