package repository

import (
	"context"
	"strings"
	"time"

	"movies-catalog/internal/database"
	"movies-catalog/internal/models"

	"gorm.io/gorm"
)

// ListParams are the recognized catalog listing parameters. Page and Limit
// are clamped by Normalize; Sort values outside the whitelist fall back to
// popularity.
type ListParams struct {
	Page  int
	Limit int
	Genre string
	Sort  string
	Query string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// undatedLast pushes movies without a release date to the end of date
// sorts. NULL ordering differs between drivers, so it is made explicit.
const undatedLast = "CASE WHEN release_date IS NULL OR release_date = '' THEN 1 ELSE 0 END"

// sortClauses is the whitelist mapping sort keys to fixed ORDER BY
// expressions. Only values from this map ever reach the ORDER BY clause.
var sortClauses = map[string]string{
	"title_asc":   "title ASC",
	"title_desc":  "title DESC",
	"rating_asc":  "vote_average ASC",
	"rating_desc": "vote_average DESC",
	"date_new":    undatedLast + ", release_date DESC",
	"date_old":    undatedLast + ", release_date ASC",
	"popularity":  "popularity DESC",
}

const defaultSortClause = "popularity DESC"

func sortClause(sort string) string {
	if clause, ok := sortClauses[sort]; ok {
		return clause
	}
	return defaultSortClause
}

type MovieRepository interface {
	Create(ctx context.Context, movie *models.Movie) error
	FindByID(ctx context.Context, id uint) (*models.Movie, error)
	List(ctx context.Context, params ListParams) ([]models.Movie, int64, error)
	ListRatedBy(ctx context.Context, userID uint, params ListParams) ([]models.Movie, int64, error)
	UpdateColumns(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteCascade(ctx context.Context, id uint) error

	Popular(ctx context.Context, limit int) ([]models.Movie, error)
	Recent(ctx context.Context, limit int) ([]models.Movie, error)
	RecommendedFor(ctx context.Context, userID uint, minRating float64, limit int) ([]models.Movie, error)
}

type movieRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewMovieRepository(db *database.Database) MovieRepository {
	return &movieRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *movieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *movieRepository) Create(ctx context.Context, movie *models.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(movie).Error
}

func (r *movieRepository) FindByID(ctx context.Context, id uint) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.db.WithContext(ctx).Preload("Genres").Preload("Companies").First(&movie, id).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// applyFilters adds the search predicate and genre join shared by the main
// query and its count query.
func applyFilters(query *gorm.DB, params ListParams) *gorm.DB {
	if params.Query != "" {
		pattern := "%" + strings.ToLower(params.Query) + "%"
		query = query.Where("LOWER(movies.title) LIKE ? OR LOWER(movies.original_title) LIKE ?", pattern, pattern)
	}

	genre := strings.TrimSpace(params.Genre)
	if genre != "" && !strings.EqualFold(genre, "all") {
		query = query.
			Joins("JOIN movie_genres ON movie_genres.movie_id = movies.id").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("LOWER(genres.name) = LOWER(?)", genre)
	}

	return query
}

func (r *movieRepository) List(ctx context.Context, params ListParams) ([]models.Movie, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	params.Normalize()

	query := applyFilters(r.db.WithContext(ctx).Model(&models.Movie{}), params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movies []models.Movie
	err := query.
		Order(sortClause(params.Sort)).
		Order("movies.id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Preload("Genres").
		Find(&movies).Error
	if err != nil {
		return nil, 0, err
	}

	return movies, total, nil
}

func (r *movieRepository) ListRatedBy(ctx context.Context, userID uint, params ListParams) ([]models.Movie, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	params.Normalize()

	query := applyFilters(r.db.WithContext(ctx).Model(&models.Movie{}), params).
		Joins("JOIN ratings ON ratings.movie_id = movies.id").
		Where("ratings.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movies []models.Movie
	err := query.
		Order(sortClause(params.Sort)).
		Order("movies.id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Preload("Genres").
		Find(&movies).Error
	if err != nil {
		return nil, 0, err
	}

	return movies, total, nil
}

// UpdateColumns applies a partial update. Callers are responsible for
// filtering fields against the allow-list before this point.
func (r *movieRepository) UpdateColumns(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.Movie{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade removes the movie together with its genre links, company
// links, and ratings in one transaction.
func (r *movieRepository) DeleteCascade(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movie models.Movie
		if err := tx.First(&movie, id).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&models.MovieGenre{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&models.MovieCompany{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Movie{}, id).Error
	})
}

func (r *movieRepository) Popular(ctx context.Context, limit int) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	err := r.db.WithContext(ctx).Model(&models.Movie{}).
		Order("popularity DESC, id DESC").
		Limit(limit).
		Preload("Genres").
		Find(&movies).Error
	return movies, err
}

func (r *movieRepository) Recent(ctx context.Context, limit int) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	err := r.db.WithContext(ctx).Model(&models.Movie{}).
		Where("release_date IS NOT NULL AND release_date != ''").
		Order("release_date DESC, id DESC").
		Limit(limit).
		Preload("Genres").
		Find(&movies).Error
	return movies, err
}

// RecommendedFor returns movies sharing a genre with any movie the user
// rated at or above minRating, excluding movies the user already rated.
func (r *movieRepository) RecommendedFor(ctx context.Context, userID uint, minRating float64, limit int) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)

	likedGenres := db.Table("movie_genres").
		Select("movie_genres.genre_id").
		Joins("JOIN ratings ON ratings.movie_id = movie_genres.movie_id").
		Where("ratings.user_id = ? AND ratings.rating >= ?", userID, minRating)

	alreadyRated := db.Table("ratings").
		Select("ratings.movie_id").
		Where("ratings.user_id = ?", userID)

	var movies []models.Movie
	err := db.Model(&models.Movie{}).
		Joins("JOIN movie_genres ON movie_genres.movie_id = movies.id").
		Where("movie_genres.genre_id IN (?)", likedGenres).
		Where("movies.id NOT IN (?)", alreadyRated).
		Group("movies.id").
		Order("popularity DESC, movies.id DESC").
		Limit(limit).
		Preload("Genres").
		Find(&movies).Error
	return movies, err
}
