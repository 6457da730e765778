package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campus is a static reference record for a university. Seeded once,
// never mutated by request handlers.
type Campus struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:idx_campus_name_state"`
	City      string    `json:"city" gorm:"size:255;not null"`
	State     string    `json:"state" gorm:"size:2;not null;uniqueIndex:idx_campus_name_state;index"`
	Latitude  float64   `json:"latitude" gorm:"not null"`
	Longitude float64   `json:"longitude" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Campus) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
