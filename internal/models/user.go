package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"name"`
	Password  string    `gorm:"not null;default:''" json:"-"`     // bcrypt hash, empty for Google-only accounts
	GoogleID  string    `gorm:"type:varchar(64);index" json:"-"` // Google OAuth subject
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
