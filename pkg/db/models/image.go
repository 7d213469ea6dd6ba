package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image references a stored picture attached to a wishboard.
type Image struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	URL         string    `gorm:"column:url;not null"`
	Caption     *string   `gorm:"column:caption"`
	WishboardID uuid.UUID `gorm:"type:uuid;column:wishboard_id;not null;index:idx_images_wishboard_position,priority:1"`
	Position    int       `gorm:"column:position;not null;default:0;index:idx_images_wishboard_position,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Image) TableName() string { return "images" }

func (i *Image) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
