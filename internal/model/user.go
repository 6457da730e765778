package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPreference is the cuisine score assumed when a user has not
// rated a food type.
const DefaultPreference = 3

// User represents an authenticated student. Records are created lazily on
// the first request carrying a new identity-provider subject.
type User struct {
	ID                     uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	ExternalID             string        `json:"external_id" gorm:"uniqueIndex;size:255;not null"`
	Name                   string        `json:"name" gorm:"size:255;not null"`
	Email                  string        `json:"email,omitempty" gorm:"size:255"`
	ImageURL               string        `json:"image_url,omitempty" gorm:"size:512"`
	CampusID               *uuid.UUID    `json:"campus_id,omitempty" gorm:"type:char(36);index"`
	CuisinePreferences     PreferenceMap `json:"cuisine_preferences,omitempty" gorm:"type:json"`
	DietaryRestrictions    StringSet     `json:"dietary_restrictions,omitempty" gorm:"type:json"`
	HasCompletedOnboarding bool          `json:"has_completed_onboarding" gorm:"default:false"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`

	// Relations
	Campus *Campus `json:"-" gorm:"foreignKey:CampusID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PreferenceFor returns the user's stored score for a food type, or
// DefaultPreference when unrated. A nil user ranks everything neutrally.
func (u *User) PreferenceFor(ft FoodType) int {
	if u == nil || u.CuisinePreferences == nil {
		return DefaultPreference
	}
	if score, ok := u.CuisinePreferences[string(ft)]; ok && score >= 1 && score <= 5 {
		return score
	}
	return DefaultPreference
}
