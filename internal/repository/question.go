package repository

import (
	"context"
	"fmt"

	"ama/internal/models"

	"gorm.io/gorm"
)

type QuestionRepository interface {
	// FindQuestion returns the question with its session and asker loaded.
	FindQuestion(ctx context.Context, id string) (*models.Question, error)
	// FindAsked returns the question askerID already asked in the session with
	// exactly this content. Every field takes part in the match, empty ones included.
	FindAsked(ctx context.Context, sessionID, askerID, content string) (*models.Question, error)
	CreateQuestion(ctx context.Context, sessionID, askerID, content string) (*models.Question, error)
	// UpdateQuestionAnswer overwrites the answer; nil when the question does not exist.
	UpdateQuestionAnswer(ctx context.Context, id, answer string) (*models.Question, error)
}

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) FindQuestion(ctx context.Context, id string) (*models.Question, error) {
	if id == "" {
		return nil, nil
	}

	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Session").
		Preload("User").
		Where("id = ?", id).
		First(&question).Error
	found, err := handleNotFound(&question, err)
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	return found, nil
}

func (r *questionRepo) FindAsked(ctx context.Context, sessionID, askerID, content string) (*models.Question, error) {
	var question models.Question
	// the hash column carries the index; content is compared too to rule out collisions
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ? AND content_hash = ? AND content = ?",
			sessionID, askerID, models.HashContent(content), content).
		First(&question).Error
	found, err := handleNotFound(&question, err)
	if err != nil {
		return nil, fmt.Errorf("find asked question: %w", err)
	}
	return found, nil
}

func (r *questionRepo) CreateQuestion(ctx context.Context, sessionID, askerID, content string) (*models.Question, error) {
	question := models.Question{
		SessionID: sessionID,
		UserID:    askerID,
		Content:   content,
	}
	if err := r.db.WithContext(ctx).Create(&question).Error; err != nil {
		return nil, translateWriteError("create question", err)
	}
	return &question, nil
}

func (r *questionRepo) UpdateQuestionAnswer(ctx context.Context, id, answer string) (*models.Question, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Update("answer", answer)
	if res.Error != nil {
		return nil, translateWriteError("update answer", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindQuestion(ctx, id)
}
