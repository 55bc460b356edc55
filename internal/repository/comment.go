package repository

import (
	"context"
	"fmt"

	"ama/internal/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	CreateComment(ctx context.Context, questionID, authorID, content string) (*models.Comment, error)
	FindComments(ctx context.Context, questionID string) ([]models.Comment, error)
}

type commentRepo struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) CreateComment(ctx context.Context, questionID, authorID, content string) (*models.Comment, error) {
	comment := models.Comment{
		QuestionID: questionID,
		UserID:     authorID,
		Content:    content,
	}
	if err := r.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, translateWriteError("create comment", err)
	}
	return &comment, nil
}

func (r *commentRepo) FindComments(ctx context.Context, questionID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	return comments, nil
}
