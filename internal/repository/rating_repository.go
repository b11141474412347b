package repository

import (
	"context"
	"database/sql"
	"time"

	"movies-catalog/internal/database"
	"movies-catalog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(ctx context.Context, userID, movieID uint, value float64) (*models.Rating, error)
	Delete(ctx context.Context, userID, movieID uint) error
	Stats(ctx context.Context, movieID uint) (*models.RatingStats, error)
	ListForMovie(ctx context.Context, movieID uint, page, limit int) ([]models.RatingWithUser, error)
	RecentForUser(ctx context.Context, userID uint, limit int) ([]models.RecentRating, error)
	ValuesForUser(ctx context.Context, userID uint, movieIDs []uint) (map[uint]float64, error)
}

type ratingRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewRatingRepository(db *database.Database) RatingRepository {
	return &ratingRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *ratingRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Upsert inserts the rating or, when the (user, movie) pair already exists,
// replaces its value. The saved row is re-read so callers always get the
// definitive id and timestamps.
func (r *ratingRepository) Upsert(ctx context.Context, userID, movieID uint, value float64) (*models.Rating, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)

	rating := models.Rating{UserID: userID, MovieID: movieID, Rating: value}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     value,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&rating).Error
	if err != nil {
		return nil, err
	}

	var saved models.Rating
	if err := db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ratingRepository) Delete(ctx context.Context, userID, movieID uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&models.Rating{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Stats computes the average rating and a histogram of rounded values in one
// pass over the movie's ratings. Buckets 1..10 are always present.
func (r *ratingRepository) Stats(ctx context.Context, movieID uint) (*models.RatingStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)

	var avg sql.NullFloat64
	row := db.Model(&models.Rating{}).Where("movie_id = ?", movieID).Select("AVG(rating)").Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}

	type bucketCount struct {
		Bucket int
		Count  int64
	}
	var rows []bucketCount
	err := db.Model(&models.Rating{}).
		Select("CAST(ROUND(rating) AS INTEGER) AS bucket, COUNT(*) AS count").
		Where("movie_id = ?", movieID).
		Group("bucket").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &models.RatingStats{Counts: make(map[int]int64, 10)}
	for b := 1; b <= 10; b++ {
		stats.Counts[b] = 0
	}
	for _, rc := range rows {
		if rc.Bucket >= 1 && rc.Bucket <= 10 {
			stats.Counts[rc.Bucket] = rc.Count
		}
	}
	if avg.Valid {
		stats.Average = &avg.Float64
	}
	return stats, nil
}

func (r *ratingRepository) ListForMovie(ctx context.Context, movieID uint, page, limit int) ([]models.RatingWithUser, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var ratings []models.RatingWithUser
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("ratings.id, ratings.user_id, users.username, ratings.rating, ratings.updated_at AS rated_at").
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.movie_id = ?", movieID).
		Order("ratings.updated_at DESC, ratings.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) RecentForUser(ctx context.Context, userID uint, limit int) ([]models.RecentRating, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var ratings []models.RecentRating
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("ratings.movie_id, movies.title AS movie_title, ratings.rating, ratings.updated_at AS rated_at, movies.poster_path").
		Joins("JOIN movies ON movies.id = ratings.movie_id").
		Where("ratings.user_id = ?", userID).
		Order("ratings.updated_at DESC, ratings.id DESC").
		Limit(limit).
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) ValuesForUser(ctx context.Context, userID uint, movieIDs []uint) (map[uint]float64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	values := make(map[uint]float64, len(movieIDs))
	if len(movieIDs) == 0 {
		return values, nil
	}

	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id IN ?", userID, movieIDs).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}

	for _, rating := range ratings {
		values[rating.MovieID] = rating.Rating
	}
	return values, nil
}
