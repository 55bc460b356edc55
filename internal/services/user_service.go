package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	apperrors "ama/internal/errors"
	"ama/internal/models"
	"ama/internal/repository"
	"ama/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinNameLength     = 2
	MaxNameLength     = 32
	MinPasswordLength = 6
)

var errInvalidCredentials = apperrors.Unauthorized("Invalid name or password")

type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger.Named("users")}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return user, nil
}

// Register creates a password account. Names are unique and compared as typed.
func (s *UserService) Register(ctx context.Context, name, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < MinNameLength || n > MaxNameLength {
		return nil, apperrors.Validation("Name must be between 2 and 32 characters.")
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.Validation("Password must be at least 6 characters.")
	}

	existing, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("That name is already taken.")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "hash password", err)
	}

	user := &models.User{Name: name, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("That name is already taken.")
		}
		return nil, apperrors.Database(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	user, err := s.users.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// GoogleLogin returns the account bound to googleID, creating one on first
// login. The display name is derived from the Google profile and made unique.
func (s *UserService) GoogleLogin(ctx context.Context, googleID, displayName string) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, googleID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user != nil {
		return user, nil
	}

	base := sanitizeName(displayName)
	for attempt := 0; attempt < 5; attempt++ {
		name := base
		if attempt > 0 {
			name = truncateName(base, MaxNameLength-5) + "-" + uuid.NewString()[:4]
		}
		user = &models.User{Name: name, GoogleID: googleID}
		err = s.users.Create(ctx, user)
		if err == nil {
			s.logger.Info("google user created", zap.String("user_id", user.ID))
			return user, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Database(err)
		}
	}
	return nil, apperrors.Conflict("Could not pick a unique name, try again.")
}

func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_', r == '.':
			b.WriteRune('_')
		}
	}
	name := truncateName(b.String(), MaxNameLength)
	if len([]rune(name)) < MinNameLength {
		name = "guest"
	}
	return name
}

func truncateName(name string, max int) string {
	r := []rune(name)
	if len(r) > max {
		return string(r[:max])
	}
	return name
}
