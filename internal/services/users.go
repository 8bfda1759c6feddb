package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"panda/internal/apperrors"
	"panda/internal/models"
	"panda/internal/utils"

	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

// UserInput is a registration request.
type UserInput struct {
	Email    string
	Password string
}

// UserService manages accounts and resolves token subjects to users.
type UserService struct {
	db     *gorm.DB
	cache  *utils.Cache[uint, models.User]
	logger *slog.Logger
}

// NewUserService builds the service. cache may be nil, in which case every
// Resolve reads the store.
func NewUserService(db *gorm.DB, cache *utils.Cache[uint, models.User], logger *slog.Logger) *UserService {
	return &UserService{db: db, cache: cache, logger: resolveLogger(logger)}
}

// Create registers a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: %q is not a valid email address", apperrors.ErrInvalidArgument, in.Email)
	}
	if n := len(in.Password); n < minPasswordLength || n > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be %d to %d characters", apperrors.ErrInvalidArgument, minPasswordLength, maxPasswordLength)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, Password: hashed}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrConflict, email)
		}
		return nil, logError(s.logger, "user_create", err)
	}
	return &user, nil
}

// List returns every account in registration order.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, logError(s.logger, "user_list", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: user with id %d does not exist", apperrors.ErrNotFound, id)
		}
		return nil, logError(s.logger, "user_get", err, "user_id", id)
	}
	return &user, nil
}

// Resolve maps a verified token subject to its account. A subject without
// an account is unauthenticated, not missing.
func (s *UserService) Resolve(ctx context.Context, id uint) (*models.User, error) {
	if s.cache != nil {
		if user, ok := s.cache.Get(id); ok {
			return &user, nil
		}
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject %d", apperrors.ErrUnauthenticated, id)
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(id, *user)
	}
	return user, nil
}

// Authenticate checks an email and password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthenticated)
		}
		return nil, logError(s.logger, "user_authenticate", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthenticated)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
