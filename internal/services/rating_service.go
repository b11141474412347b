package services

import (
	"context"
	"errors"
	"fmt"

	"movies-catalog/internal/apperr"
	"movies-catalog/internal/models"
	"movies-catalog/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MovieRatings combines the full-set rating stats with one page of
// individual ratings.
type MovieRatings struct {
	MovieID       uint                    `json:"movie_id"`
	AverageRating *float64                `json:"average_rating"`
	RatingCounts  map[int]int64           `json:"rating_counts"`
	Ratings       []models.RatingWithUser `json:"ratings"`
}

type RatingService interface {
	Submit(ctx context.Context, userID, movieID uint, value float64) (*models.Rating, error)
	Remove(ctx context.Context, userID, movieID uint) error
	ForMovie(ctx context.Context, movieID uint, page, limit int) (*MovieRatings, error)
}

type ratingService struct {
	ratings repository.RatingRepository
	movies  repository.MovieRepository
	logger  *logrus.Logger
}

func NewRatingService(ratings repository.RatingRepository, movies repository.MovieRepository, logger *logrus.Logger) RatingService {
	return &ratingService{
		ratings: ratings,
		movies:  movies,
		logger:  logger,
	}
}

func (s *ratingService) Submit(ctx context.Context, userID, movieID uint, value float64) (*models.Rating, error) {
	if value < 0 || value > 10 {
		return nil, apperr.Validation("rating must be between 0 and 10")
	}

	if _, err := s.movies.FindByID(ctx, movieID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("movie not found")
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}

	rating, err := s.ratings.Upsert(ctx, userID, movieID, value)
	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"movie_id": movieID,
		"rating":   value,
	}).Info("Rating saved")
	return rating, nil
}

func (s *ratingService) Remove(ctx context.Context, userID, movieID uint) error {
	if err := s.ratings.Delete(ctx, userID, movieID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("rating not found")
		}
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "movie_id": movieID}).Info("Rating deleted")
	return nil
}

func (s *ratingService) ForMovie(ctx context.Context, movieID uint, page, limit int) (*MovieRatings, error) {
	if _, err := s.movies.FindByID(ctx, movieID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("movie not found")
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}

	stats, err := s.ratings.Stats(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating stats: %w", err)
	}

	list, err := s.ratings.ListForMovie(ctx, movieID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	if list == nil {
		list = []models.RatingWithUser{}
	}

	return &MovieRatings{
		MovieID:       movieID,
		AverageRating: stats.Average,
		RatingCounts:  stats.Counts,
		Ratings:       list,
	}, nil
}
