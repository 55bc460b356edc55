package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is a host's AMA for one calendar day.
type Session struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_host_day" json:"user_id"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Day       string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_host_day" json:"day"` // YYYY-MM-DD in the host timezone
	Questions []Question `json:"questions,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// not a column; filled by list queries
	QuestionCount int `gorm:"-" json:"question_count"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
