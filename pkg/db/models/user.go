package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity handed to us by the sign-in provider.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            *string   `gorm:"column:name"`
	Email           string    `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email"`
	Image           *string   `gorm:"column:image"`
	Provider        string    `gorm:"column:provider;not null;uniqueIndex:idx_users_provider_subject,priority:1"`
	ProviderSubject string    `gorm:"column:provider_subject;not null;uniqueIndex:idx_users_provider_subject,priority:2"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
