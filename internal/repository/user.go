package repository

import (
	"context"
	"fmt"

	"ama/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepo) FindByName(ctx context.Context, name string) (*models.User, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *userRepo) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

func (r *userRepo) findOne(ctx context.Context, cond string, arg string) (*models.User, error) {
	var user models.User
	found, err := handleNotFound(&user, r.db.WithContext(ctx).Where(cond, arg).First(&user).Error)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return found, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return translateWriteError("create user", r.db.WithContext(ctx).Create(user).Error)
}
