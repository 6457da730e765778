package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"campuseats/internal/auth"
	"campuseats/internal/errors"
	"campuseats/internal/model"
)

// MockIdentityCache is a mock implementation of auth.IdentityCacheInterface.
type MockIdentityCache struct {
	mock.Mock
}

func (m *MockIdentityCache) GetUserID(ctx context.Context, subject string) (uuid.UUID, bool) {
	args := m.Called(ctx, subject)
	return args.Get(0).(uuid.UUID), args.Bool(1)
}

func (m *MockIdentityCache) StoreUserID(ctx context.Context, subject string, userID uuid.UUID) error {
	args := m.Called(ctx, subject, userID)
	return args.Error(0)
}

func (m *MockIdentityCache) Invalidate(ctx context.Context, subject string) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func TestUserService_EnsureUser(t *testing.T) {
	identity := &auth.Identity{
		Subject:  "provider|12345",
		Name:     "Jordan Lee",
		Email:    "jordan@example.edu",
		ImageURL: "https://avatars/jordan.png",
	}

	t.Run("first sight creates the record", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		campusRepo := new(MockCampusRepository)
		idCache := new(MockIdentityCache)

		idCache.On("GetUserID", mock.Anything, identity.Subject).Return(uuid.Nil, false)
		userRepo.On("FindByExternalID", mock.Anything, identity.Subject).Return(nil, gorm.ErrRecordNotFound)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		idCache.On("StoreUserID", mock.Anything, identity.Subject, mock.Anything).Return(nil)

		service := NewUserService(userRepo, campusRepo, idCache)
		user, err := service.EnsureUser(context.Background(), identity)

		assert.NoError(t, err)
		assert.Equal(t, identity.Subject, user.ExternalID)
		assert.Equal(t, "Jordan Lee", user.Name)
		assert.False(t, user.HasCompletedOnboarding)
		userRepo.AssertExpectations(t)
	})

	t.Run("cached subject is fetched by id, skipping the sync", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		campusRepo := new(MockCampusRepository)
		idCache := new(MockIdentityCache)
		existing := &model.User{ID: uuid.New(), ExternalID: identity.Subject, Name: "Old Name"}

		idCache.On("GetUserID", mock.Anything, identity.Subject).Return(existing.ID, true)
		userRepo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		service := NewUserService(userRepo, campusRepo, idCache)
		user, err := service.EnsureUser(context.Background(), identity)

		assert.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		userRepo.AssertNotCalled(t, "FindByExternalID", mock.Anything, mock.Anything)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("stale cached id falls back to the full sync", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		campusRepo := new(MockCampusRepository)
		idCache := new(MockIdentityCache)
		staleID := uuid.New()
		existing := &model.User{ID: uuid.New(), ExternalID: identity.Subject, Name: identity.Name, Email: identity.Email, ImageURL: identity.ImageURL}

		idCache.On("GetUserID", mock.Anything, identity.Subject).Return(staleID, true)
		userRepo.On("FindByID", mock.Anything, staleID).Return(nil, gorm.ErrRecordNotFound)
		idCache.On("Invalidate", mock.Anything, identity.Subject).Return(nil)
		userRepo.On("FindByExternalID", mock.Anything, identity.Subject).Return(existing, nil)
		idCache.On("StoreUserID", mock.Anything, identity.Subject, existing.ID).Return(nil)

		service := NewUserService(userRepo, campusRepo, idCache)
		user, err := service.EnsureUser(context.Background(), identity)

		assert.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		idCache.AssertExpectations(t)
	})

	t.Run("known subject syncs provider-owned fields", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		campusRepo := new(MockCampusRepository)
		idCache := new(MockIdentityCache)
		existing := &model.User{ID: uuid.New(), ExternalID: identity.Subject, Name: "Old Name"}

		idCache.On("GetUserID", mock.Anything, identity.Subject).Return(uuid.Nil, false)
		userRepo.On("FindByExternalID", mock.Anything, identity.Subject).Return(existing, nil)
		userRepo.On("Update", mock.Anything, existing).Return(nil)
		idCache.On("StoreUserID", mock.Anything, identity.Subject, existing.ID).Return(nil)

		service := NewUserService(userRepo, campusRepo, idCache)
		user, err := service.EnsureUser(context.Background(), identity)

		assert.NoError(t, err)
		assert.Equal(t, "Jordan Lee", user.Name)
		assert.Equal(t, "jordan@example.edu", user.Email)
		userRepo.AssertExpectations(t)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("unknown campus is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		campusRepo := new(MockCampusRepository)
		idCache := new(MockIdentityCache)
		campusID := uuid.New()

		campusRepo.On("FindByID", mock.Anything, campusID).Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(userRepo, campusRepo, idCache)
		user, err := service.UpdateProfile(context.Background(), &model.User{ID: uuid.New()}, UpdateProfileInput{
			CampusID: &campusID,
		})

		assert.Nil(t, user)
		assert.Equal(t, errors.ErrCampusNotFound, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("sets name and campus", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		campusRepo := new(MockCampusRepository)
		idCache := new(MockIdentityCache)
		campusID := uuid.New()
		name := "New Name"

		campusRepo.On("FindByID", mock.Anything, campusID).Return(&model.Campus{ID: campusID}, nil)
		userRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		service := NewUserService(userRepo, campusRepo, idCache)
		user, err := service.UpdateProfile(context.Background(), &model.User{ID: uuid.New()}, UpdateProfileInput{
			Name:     &name,
			CampusID: &campusID,
		})

		assert.NoError(t, err)
		assert.Equal(t, name, user.Name)
		assert.Equal(t, campusID, *user.CampusID)
	})
}

func TestUserService_UpdatePreferences(t *testing.T) {
	newService := func() (UserService, *MockUserRepository) {
		userRepo := new(MockUserRepository)
		return NewUserService(userRepo, new(MockCampusRepository), new(MockIdentityCache)), userRepo
	}

	t.Run("valid preferences complete onboarding", func(t *testing.T) {
		service, userRepo := newService()
		userRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := service.UpdatePreferences(context.Background(), &model.User{ID: uuid.New()}, UpdatePreferencesInput{
			CuisinePreferences:  map[string]int{"pizza": 5, "desserts": 2},
			DietaryRestrictions: []string{"vegan", "nut-free"},
		})

		assert.NoError(t, err)
		assert.True(t, user.HasCompletedOnboarding)
		assert.Equal(t, 5, user.PreferenceFor(model.FoodTypePizza))
		assert.Equal(t, model.DefaultPreference, user.PreferenceFor(model.FoodTypeAsian))
	})

	t.Run("unknown food type", func(t *testing.T) {
		service, userRepo := newService()

		user, err := service.UpdatePreferences(context.Background(), &model.User{ID: uuid.New()}, UpdatePreferencesInput{
			CuisinePreferences: map[string]int{"tapas": 4},
		})

		assert.Nil(t, user)
		assert.Equal(t, errors.ErrInvalidFoodType, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("score out of range", func(t *testing.T) {
		service, _ := newService()

		user, err := service.UpdatePreferences(context.Background(), &model.User{ID: uuid.New()}, UpdatePreferencesInput{
			CuisinePreferences: map[string]int{"pizza": 9},
		})

		assert.Nil(t, user)
		assert.Equal(t, errors.ErrInvalidRating, err)
	})

	t.Run("unknown dietary restriction", func(t *testing.T) {
		service, _ := newService()

		user, err := service.UpdatePreferences(context.Background(), &model.User{ID: uuid.New()}, UpdatePreferencesInput{
			DietaryRestrictions: []string{"pescatarian"},
		})

		assert.Nil(t, user)
		assert.Equal(t, errors.ErrInvalidDietaryTag, err)
	})
}
