package services

import (
	"context"
	"fmt"

	"movies-catalog/internal/models"
	"movies-catalog/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	feedSize = 20

	// recommendMinRating is the rating threshold a movie must have received
	// from the user before its genres feed recommendations.
	recommendMinRating = 7
)

type HomeFeed struct {
	Popular []models.Movie `json:"popular"`
	Recent  []models.Movie `json:"recent"`
}

type MyMoviesList struct {
	Movies     []models.MovieListItem `json:"movies"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"total_pages"`
}

type FeedService interface {
	Home(ctx context.Context) (*HomeFeed, error)
	Recommendations(ctx context.Context, userID uint) ([]models.Movie, string, error)
	MyMovies(ctx context.Context, userID uint, params repository.ListParams) (*MyMoviesList, error)
}

type feedService struct {
	movies  repository.MovieRepository
	ratings repository.RatingRepository
	logger  *logrus.Logger
}

func NewFeedService(movies repository.MovieRepository, ratings repository.RatingRepository, logger *logrus.Logger) FeedService {
	return &feedService{
		movies:  movies,
		ratings: ratings,
		logger:  logger,
	}
}

func (s *feedService) Home(ctx context.Context) (*HomeFeed, error) {
	popular, err := s.movies.Popular(ctx, feedSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular movies: %w", err)
	}
	recent, err := s.movies.Recent(ctx, feedSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent movies: %w", err)
	}

	if popular == nil {
		popular = []models.Movie{}
	}
	if recent == nil {
		recent = []models.Movie{}
	}
	return &HomeFeed{Popular: popular, Recent: recent}, nil
}

// Recommendations returns a personalized list, or a message when the user
// has no qualifying ratings to recommend from.
func (s *feedService) Recommendations(ctx context.Context, userID uint) ([]models.Movie, string, error) {
	movies, err := s.movies.RecommendedFor(ctx, userID, recommendMinRating, feedSize)
	if err != nil {
		return nil, "", fmt.Errorf("failed to compute recommendations: %w", err)
	}
	if len(movies) == 0 {
		return nil, "Rate some movies to get personalized recommendations", nil
	}
	return movies, "", nil
}

func (s *feedService) MyMovies(ctx context.Context, userID uint, params repository.ListParams) (*MyMoviesList, error) {
	params.Normalize()

	movies, total, err := s.movies.ListRatedBy(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated movies: %w", err)
	}

	ids := make([]uint, 0, len(movies))
	for _, movie := range movies {
		ids = append(ids, movie.ID)
	}
	values, err := s.ratings.ValuesForUser(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating values: %w", err)
	}

	items := make([]models.MovieListItem, 0, len(movies))
	for _, movie := range movies {
		item := models.MovieListItem{Movie: movie}
		if value, ok := values[movie.ID]; ok {
			v := value
			item.UserRating = &v
		}
		items = append(items, item)
	}

	return &MyMoviesList{
		Movies:     items,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: TotalPages(total, params.Limit),
	}, nil
}
