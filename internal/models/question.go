package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID   string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_session_asker_content" json:"session_id"`
	Session     *Session  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"session,omitempty"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_session_asker_content" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ContentHash string    `gorm:"type:char(64);not null;uniqueIndex:idx_session_asker_content" json:"-"`
	Answer      *string   `gorm:"type:text" json:"answer"` // nil until the host answers
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.ContentHash = HashContent(q.Content)
	return nil
}

func (q *Question) IsAnswered() bool {
	return q.Answer != nil
}

// HashContent is the indexed form of question text; text columns cannot carry
// a unique index on every driver.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
