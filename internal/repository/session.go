package repository

import (
	"context"
	"fmt"
	"time"

	"ama/internal/models"

	"gorm.io/gorm"
)

// SessionFilter selects sessions created inside [From, To], optionally for one host.
type SessionFilter struct {
	From   time.Time
	To     time.Time
	HostID string
}

type SessionRepository interface {
	FindSessions(ctx context.Context, filter SessionFilter) ([]models.Session, error)
	// FindSession loads the host and every question with its asker.
	FindSession(ctx context.Context, id string) (*models.Session, error)
	CreateSession(ctx context.Context, hostID, content, day string) (*models.Session, error)
	// RecentSessions feeds the sitemap.
	RecentSessions(ctx context.Context, limit int) ([]models.Session, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) FindSessions(ctx context.Context, filter SessionFilter) ([]models.Session, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("created_at >= ? AND created_at <= ?", filter.From, filter.To)
	if filter.HostID != "" {
		query = query.Where("user_id = ?", filter.HostID)
	}

	var sessions []models.Session
	if err := query.Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}

	if err := r.fillQuestionCounts(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// fillQuestionCounts counts questions for a page of sessions in one query.
func (r *sessionRepo) fillQuestionCounts(ctx context.Context, sessions []models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	type countResult struct {
		SessionID string
		Count     int
	}
	var results []countResult
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Select("session_id, COUNT(*) as count").
		Where("session_id IN ?", ids).
		Group("session_id").
		Scan(&results).Error
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}

	counts := make(map[string]int, len(results))
	for _, res := range results {
		counts[res.SessionID] = res.Count
	}
	for i := range sessions {
		sessions[i].QuestionCount = counts[sessions[i].ID]
	}
	return nil
}

func (r *sessionRepo) FindSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Questions.User").
		Where("id = ?", id).
		First(&session).Error
	found, err := handleNotFound(&session, err)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if found != nil {
		found.QuestionCount = len(found.Questions)
	}
	return found, nil
}

func (r *sessionRepo) CreateSession(ctx context.Context, hostID, content, day string) (*models.Session, error) {
	session := models.Session{
		UserID:  hostID,
		Content: content,
		Day:     day,
	}
	if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, translateWriteError("create session", err)
	}
	return &session, nil
}

func (r *sessionRepo) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Select("id", "updated_at", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	return sessions, nil
}
