package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	"movies-catalog/internal/apperr"
	"movies-catalog/internal/models"
	"movies-catalog/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// updatableColumns is the allow-list for admin partial updates. Client keys
// outside this set are silently dropped, never interpolated into SQL.
var updatableColumns = map[string]bool{
	"imdb_id":           true,
	"title":             true,
	"original_title":    true,
	"overview":          true,
	"tagline":           true,
	"homepage":          true,
	"status":            true,
	"release_date":      true,
	"adult":             true,
	"budget":            true,
	"revenue":           true,
	"runtime":           true,
	"popularity":        true,
	"vote_average":      true,
	"vote_count":        true,
	"original_language": true,
	"poster_path":       true,
}

type MovieList struct {
	Movies     []models.Movie `json:"movies"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

type MovieService interface {
	List(ctx context.Context, params repository.ListParams) (*MovieList, error)
	Get(ctx context.Context, id uint) (*models.Movie, error)
	Create(ctx context.Context, movie *models.Movie, genreNames, companyNames []string) (uint, error)
	Update(ctx context.Context, id uint, body map[string]interface{}) ([]string, error)
	Delete(ctx context.Context, id uint) error
}

type movieService struct {
	movies    repository.MovieRepository
	genres    repository.GenreRepository
	companies repository.CompanyRepository
	logger    *logrus.Logger
}

func NewMovieService(movies repository.MovieRepository, genres repository.GenreRepository, companies repository.CompanyRepository, logger *logrus.Logger) MovieService {
	return &movieService{
		movies:    movies,
		genres:    genres,
		companies: companies,
		logger:    logger,
	}
}

func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func (s *movieService) List(ctx context.Context, params repository.ListParams) (*MovieList, error) {
	params.Normalize()

	movies, total, err := s.movies.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	if movies == nil {
		movies = []models.Movie{}
	}

	return &MovieList{
		Movies:     movies,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: TotalPages(total, params.Limit),
	}, nil
}

func (s *movieService) Get(ctx context.Context, id uint) (*models.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("movie not found")
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}
	return movie, nil
}

func (s *movieService) Create(ctx context.Context, movie *models.Movie, genreNames, companyNames []string) (uint, error) {
	if movie.Title == "" {
		return 0, apperr.Validation("title is required")
	}
	if movie.ReleaseDate != nil && *movie.ReleaseDate != "" && !dateFormat.MatchString(*movie.ReleaseDate) {
		return 0, apperr.Validation("release_date must be YYYY-MM-DD")
	}

	for _, name := range genreNames {
		if name == "" {
			continue
		}
		genre, err := s.genres.FindOrCreateByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve genre %q: %w", name, err)
		}
		movie.Genres = append(movie.Genres, *genre)
	}

	for _, name := range companyNames {
		if name == "" {
			continue
		}
		company, err := s.companies.FindOrCreateByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve production company %q: %w", name, err)
		}
		movie.Companies = append(movie.Companies, *company)
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return 0, fmt.Errorf("failed to create movie: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"movie_id": movie.ID, "title": movie.Title}).Info("Movie created")
	return movie.ID, nil
}

func filterUpdatable(body map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(body))
	for key, value := range body {
		if updatableColumns[key] {
			fields[key] = value
		}
	}
	return fields
}

func (s *movieService) Update(ctx context.Context, id uint, body map[string]interface{}) ([]string, error) {
	fields := filterUpdatable(body)
	if len(fields) == 0 {
		return nil, apperr.Validation("no valid fields to update")
	}

	if value, ok := fields["release_date"]; ok {
		if str, ok := value.(string); ok && str != "" && !dateFormat.MatchString(str) {
			return nil, apperr.Validation("release_date must be YYYY-MM-DD")
		}
	}

	if err := s.movies.UpdateColumns(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("movie not found")
		}
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	updated := make([]string, 0, len(fields))
	for key := range fields {
		updated = append(updated, key)
	}
	sort.Strings(updated)

	s.logger.WithFields(logrus.Fields{"movie_id": id, "fields": updated}).Info("Movie updated")
	return updated, nil
}

func (s *movieService) Delete(ctx context.Context, id uint) error {
	if err := s.movies.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("movie not found")
		}
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	s.logger.WithField("movie_id", id).Info("Movie deleted")
	return nil
}
