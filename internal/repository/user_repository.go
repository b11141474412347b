package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movies-catalog/internal/database"
	"movies-catalog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMovieNotFound reports a rating upsert referencing a movie id with no
// backing row.
var ErrMovieNotFound = errors.New("movie not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile applies the field updates and upserts the batch of
	// ratings in a single transaction.
	UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}, ratings []models.Rating) error
}

type userRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *userRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}, ratings []models.Rating) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		for i := range ratings {
			rating := ratings[i]
			rating.UserID = userID

			var movieCount int64
			if err := tx.Model(&models.Movie{}).Where("id = ?", rating.MovieID).Count(&movieCount).Error; err != nil {
				return err
			}
			if movieCount == 0 {
				return fmt.Errorf("movie %d: %w", rating.MovieID, ErrMovieNotFound)
			}

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"rating":     rating.Rating,
					"updated_at": time.Now().UTC(),
				}),
			}).Create(&rating).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}
