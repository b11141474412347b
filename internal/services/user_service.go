package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movies-catalog/internal/apperr"
	"movies-catalog/internal/auth"
	"movies-catalog/internal/config"
	"movies-catalog/internal/models"
	"movies-catalog/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type ProfileUpdateInput struct {
	Username       *string
	Email          *string
	ProfilePicture *string
	Ratings        []RatingInput
}

type RatingInput struct {
	MovieID uint    `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

type Profile struct {
	User          models.PublicUser     `json:"user"`
	RecentRatings []models.RecentRating `json:"recent_ratings"`
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (uint, error)
	Login(ctx context.Context, username, password string) (string, models.PublicUser, error)
	Logout(token string)
	Profile(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uint, input ProfileUpdateInput) (models.PublicUser, error)
	SeedAdmin(ctx context.Context, cfg config.AdminConfig) error
}

type userService struct {
	users    repository.UserRepository
	ratings  repository.RatingRepository
	sessions auth.SessionStore
	storage  *StorageService
	logger   *logrus.Logger
}

func NewUserService(users repository.UserRepository, ratings repository.RatingRepository, sessions auth.SessionStore, storage *StorageService, logger *logrus.Logger) UserService {
	return &userService{
		users:    users,
		ratings:  ratings,
		sessions: sessions,
		storage:  storage,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (uint, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" || email == "" || input.Password == "" {
		return 0, apperr.Validation("username, email and password are required")
	}
	if !auth.ValidateEmail(email) {
		return 0, apperr.Validation("invalid email format")
	}
	if ok, reason := auth.ValidatePassword(input.Password); !ok {
		return 0, apperr.Validation(reason)
	}

	if existing, err := s.users.FindByUsername(ctx, username); err != nil {
		return 0, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return 0, apperr.Conflict("username already exists")
	}
	if existing, err := s.users.FindByEmail(ctx, email); err != nil {
		return 0, fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return 0, apperr.Conflict("email already exists")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflict("username or email already exists")
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("User registered")
	return user.ID, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, models.PublicUser, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return "", models.PublicUser{}, apperr.Unauthorized("Invalid username or password")
	}

	token, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return token, user.Public(), nil
}

func (s *userService) Logout(token string) {
	s.sessions.Revoke(token)
}

func (s *userService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	recent, err := s.ratings.RecentForUser(ctx, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent ratings: %w", err)
	}
	if recent == nil {
		recent = []models.RecentRating{}
	}

	return &Profile{User: user.Public(), RecentRatings: recent}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, input ProfileUpdateInput) (models.PublicUser, error) {
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PublicUser{}, apperr.NotFound("user not found")
		}
		return models.PublicUser{}, fmt.Errorf("failed to load user: %w", err)
	}

	fields := make(map[string]interface{})

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return models.PublicUser{}, apperr.Validation("username cannot be empty")
		}
		if username != current.Username {
			existing, err := s.users.FindByUsername(ctx, username)
			if err != nil {
				return models.PublicUser{}, fmt.Errorf("failed to check username: %w", err)
			}
			if existing != nil {
				return models.PublicUser{}, apperr.Conflict("username already exists")
			}
			fields["username"] = username
		}
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if !auth.ValidateEmail(email) {
			return models.PublicUser{}, apperr.Validation("invalid email format")
		}
		if email != current.Email {
			existing, err := s.users.FindByEmail(ctx, email)
			if err != nil {
				return models.PublicUser{}, fmt.Errorf("failed to check email: %w", err)
			}
			if existing != nil {
				return models.PublicUser{}, apperr.Conflict("email already exists")
			}
			fields["email"] = email
		}
	}

	if input.ProfilePicture != nil {
		picture := strings.TrimSpace(*input.ProfilePicture)
		if picture != current.ProfilePicture {
			fields["profile_picture"] = picture
			// Replaced bucket-hosted pictures are cleaned up best effort.
			if s.storage != nil && s.storage.OwnsURL(current.ProfilePicture) {
				if err := s.storage.DeleteObject(current.ProfilePicture); err != nil {
					s.logger.WithError(err).Warn("Failed to delete old profile picture")
				}
			}
		}
	}

	ratings := make([]models.Rating, 0, len(input.Ratings))
	for _, in := range input.Ratings {
		if in.Rating < 0 || in.Rating > 10 {
			return models.PublicUser{}, apperr.Validation("rating must be between 0 and 10")
		}
		ratings = append(ratings, models.Rating{MovieID: in.MovieID, Rating: in.Rating})
	}

	if err := s.users.UpdateProfile(ctx, userID, fields, ratings); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.PublicUser{}, apperr.Conflict("username or email already exists")
		}
		if errors.Is(err, repository.ErrMovieNotFound) {
			return models.PublicUser{}, apperr.NotFound("movie not found")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PublicUser{}, apperr.NotFound("user not found")
		}
		return models.PublicUser{}, fmt.Errorf("failed to update profile: %w", err)
	}

	updated, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to reload user: %w", err)
	}
	return updated.Public(), nil
}

// SeedAdmin gets or creates the bootstrap admin account. A no-op when no
// admin username is configured.
func (s *userService) SeedAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Username == "" {
		return nil
	}

	existing, err := s.users.FindByUsername(ctx, cfg.Username)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.WithField("username", cfg.Username).Info("Admin user seeded")
	return nil
}
