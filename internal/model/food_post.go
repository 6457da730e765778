package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodType categorizes a food post for preference-weighted ranking.
type FoodType string

const (
	FoodTypePizza      FoodType = "pizza"
	FoodTypeSandwiches FoodType = "sandwiches"
	FoodTypeAsian      FoodType = "asian"
	FoodTypeMexican    FoodType = "mexican"
	FoodTypeDesserts   FoodType = "desserts"
	FoodTypeSnacks     FoodType = "snacks"
	FoodTypeBeverages  FoodType = "beverages"
	FoodTypeOther      FoodType = "other"
)

// FoodTypes lists every known food type. Order matters for onboarding UIs.
var FoodTypes = []FoodType{
	FoodTypePizza,
	FoodTypeSandwiches,
	FoodTypeAsian,
	FoodTypeMexican,
	FoodTypeDesserts,
	FoodTypeSnacks,
	FoodTypeBeverages,
	FoodTypeOther,
}

// ValidFoodType reports whether s is a known food type.
func ValidFoodType(s string) bool {
	for _, ft := range FoodTypes {
		if string(ft) == s {
			return true
		}
	}
	return false
}

// DietaryTags lists the tags a post may carry and a user may filter by.
var DietaryTags = []string{
	"vegetarian",
	"vegan",
	"gluten-free",
	"dairy-free",
	"nut-free",
	"halal",
	"kosher",
}

// ValidDietaryTag reports whether s is a known dietary tag.
func ValidDietaryTag(s string) bool {
	for _, t := range DietaryTags {
		if t == s {
			return true
		}
	}
	return false
}

// FoodPost represents a time-bounded listing of available free food.
//
// Expiry is lazy: a post with ExpiresAt in the past is treated as inactive
// by every reader, without a background sweep.
type FoodPost struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description,omitempty" gorm:"type:text"`
	FoodType     FoodType  `json:"food_type" gorm:"type:varchar(20);not null;index"`
	CampusID     uuid.UUID `json:"campus_id" gorm:"type:char(36);not null;index"`
	LocationName string    `json:"location_name" gorm:"size:255;not null"`
	Latitude     float64   `json:"latitude" gorm:"not null"`
	Longitude    float64   `json:"longitude" gorm:"not null"`
	// ExpiresAt is epoch milliseconds, matching the client wire contract.
	ExpiresAt    int64      `json:"expires_at" gorm:"not null;index"`
	ImageID      string     `json:"image_id,omitempty" gorm:"size:512"`
	CreatedBy    uuid.UUID  `json:"created_by" gorm:"type:char(36);not null;index"`
	IsActive     bool       `json:"is_active" gorm:"default:true;index"`
	DietaryTags  StringSet  `json:"dietary_tags,omitempty" gorm:"type:json"`
	MarkedGoneBy *uuid.UUID `json:"marked_gone_by,omitempty" gorm:"type:char(36)"`
	GoneReports  int        `json:"gone_reports" gorm:"default:0"`
	ReportedBy   StringSet  `json:"reported_by,omitempty" gorm:"type:json"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Campus  Campus `json:"-" gorm:"foreignKey:CampusID"`
	Creator User   `json:"-" gorm:"foreignKey:CreatedBy"`
}

// BeforeCreate sets UUID before creating the record.
func (p *FoodPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the post's time-to-live has elapsed at now.
func (p *FoodPost) Expired(now time.Time) bool {
	return now.UnixMilli() >= p.ExpiresAt
}

// Available reports whether the post is active and not expired.
func (p *FoodPost) Available(now time.Time) bool {
	return p.IsActive && !p.Expired(now)
}
