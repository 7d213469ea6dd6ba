package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultWishboardName is applied when a board is created without a name.
const DefaultWishboardName = "Birthday Wishboard"

// Wishboard is a named collection of images owned by one user.
type Wishboard struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_wishboards_user_created,priority:1"`
	Images    []Image   `gorm:"foreignKey:WishboardID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_wishboards_user_created,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Wishboard) TableName() string { return "wishboards" }

func (w *Wishboard) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
