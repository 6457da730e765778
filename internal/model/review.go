package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a 1-5 rating of a food post. One review per (post, user);
// re-submitting replaces the previous one.
type Review struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	FoodPostID uuid.UUID `json:"food_post_id" gorm:"type:char(36);not null;uniqueIndex:idx_review_post_user"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_review_post_user"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment,omitempty" gorm:"type:text"`
	ImageID    string    `json:"image_id,omitempty" gorm:"size:512"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	FoodPost FoodPost `json:"-" gorm:"foreignKey:FoodPostID"`
	User     User     `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
