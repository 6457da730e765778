package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	// NotificationFoodGoneReported is raised for a post creator when other
	// users flag the food as gone.
	NotificationFoodGoneReported NotificationType = "food_gone_reported"
)

// Notification is a per-(recipient, post) notice. The gone-report notice is
// upserted in place as the report count changes and deleted when the count
// returns to zero.
type Notification struct {
	ID          uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID        `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_notif_user_post"`
	Type        NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	FoodPostID  uuid.UUID        `json:"food_post_id" gorm:"type:char(36);not null;uniqueIndex:idx_notif_user_post"`
	FoodTitle   string           `json:"food_title" gorm:"size:255;not null"`
	ReportCount int              `json:"report_count" gorm:"default:0"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
