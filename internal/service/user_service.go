package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/auth"
	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/repository"
)

// UpdateProfileInput patches a user's profile. Nil fields are untouched.
type UpdateProfileInput struct {
	Name     *string
	CampusID *uuid.UUID
}

// UpdatePreferencesInput replaces a user's taste profile. Submitting it
// completes onboarding.
type UpdatePreferencesInput struct {
	CuisinePreferences  map[string]int
	DietaryRestrictions []string
}

// UserService provisions and maintains user records. Accounts live at the
// identity provider; this service only mirrors profile fields locally.
type UserService interface {
	EnsureUser(ctx context.Context, identity *auth.Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, input UpdateProfileInput) (*model.User, error)
	UpdatePreferences(ctx context.Context, user *model.User, input UpdatePreferencesInput) (*model.User, error)
}

type userService struct {
	userRepo      repository.UserRepository
	campusRepo    repository.CampusRepository
	identityCache auth.IdentityCacheInterface
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	campusRepo repository.CampusRepository,
	identityCache auth.IdentityCacheInterface,
) UserService {
	return &userService{
		userRepo:      userRepo,
		campusRepo:    campusRepo,
		identityCache: identityCache,
	}
}

// EnsureUser returns the user for an identity, creating the record on
// first sight and refreshing profile fields the provider owns. The identity
// cache short-circuits the sync for recently seen subjects.
func (s *userService) EnsureUser(ctx context.Context, identity *auth.Identity) (*model.User, error) {
	if userID, cached := s.identityCache.GetUserID(ctx, identity.Subject); cached {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		// stale mapping; fall through to the full sync
		_ = s.identityCache.Invalidate(ctx, identity.Subject)
	}

	user, err := s.userRepo.FindByExternalID(ctx, identity.Subject)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		user = &model.User{
			ExternalID: identity.Subject,
			Name:       identity.Name,
			Email:      identity.Email,
			ImageURL:   identity.ImageURL,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		_ = s.identityCache.StoreUserID(ctx, identity.Subject, user.ID)
		return user, nil
	}

	// keep provider-owned fields in sync
	changed := false
	if identity.Name != "" && identity.Name != user.Name {
		user.Name = identity.Name
		changed = true
	}
	if identity.Email != "" && identity.Email != user.Email {
		user.Email = identity.Email
		changed = true
	}
	if identity.ImageURL != "" && identity.ImageURL != user.ImageURL {
		user.ImageURL = identity.ImageURL
		changed = true
	}
	if changed {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("sync user profile: %w", err)
		}
	}
	_ = s.identityCache.StoreUserID(ctx, identity.Subject, user.ID)
	return user, nil
}

// UpdateProfile applies a partial profile patch.
func (s *userService) UpdateProfile(ctx context.Context, user *model.User, input UpdateProfileInput) (*model.User, error) {
	if input.Name != nil && *input.Name != "" {
		user.Name = *input.Name
	}
	if input.CampusID != nil {
		if _, err := s.campusRepo.FindByID(ctx, *input.CampusID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrCampusNotFound
			}
			return nil, err
		}
		user.CampusID = input.CampusID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// UpdatePreferences replaces the user's cuisine scores and dietary
// restrictions and marks onboarding complete.
func (s *userService) UpdatePreferences(ctx context.Context, user *model.User, input UpdatePreferencesInput) (*model.User, error) {
	prefs := make(model.PreferenceMap, len(input.CuisinePreferences))
	for foodType, score := range input.CuisinePreferences {
		if !model.ValidFoodType(foodType) {
			return nil, errors.ErrInvalidFoodType
		}
		if score < 1 || score > 5 {
			return nil, errors.ErrInvalidRating
		}
		prefs[foodType] = score
	}
	for _, tag := range input.DietaryRestrictions {
		if !model.ValidDietaryTag(tag) {
			return nil, errors.ErrInvalidDietaryTag
		}
	}

	user.CuisinePreferences = prefs
	user.DietaryRestrictions = input.DietaryRestrictions
	user.HasCompletedOnboarding = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return user, nil
}
