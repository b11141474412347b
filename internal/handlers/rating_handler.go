package handlers

import (
	"movies-catalog/internal/apperr"
	"movies-catalog/internal/middleware"
	"movies-catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RatingHandler struct {
	ratings  services.RatingService
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewRatingHandler(ratings services.RatingService, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{
		ratings:  ratings,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit godoc
// @Summary Submit or update the caller's rating for a movie
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param body body RatingRequest true "Rating between 0 and 10"
// @Success 201 {object} map[string]interface{} "rating_id, movie_id, rating"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /movie/{id}/rating [post]
func (h *RatingHandler) Submit(c *fiber.Ctx) error {
	movieID, err := movieIDParam(c)
	if err != nil {
		return err
	}

	var req RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperr.Validation("rating is required")
	}

	rating, err := h.ratings.Submit(c.Context(), middleware.UserID(c), movieID, *req.Rating)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"rating_id": rating.ID,
		"movie_id":  rating.MovieID,
		"rating":    rating.Rating,
	})
}

// Remove godoc
// @Summary Delete the caller's rating for a movie
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /movie/{id}/rating [delete]
func (h *RatingHandler) Remove(c *fiber.Ctx) error {
	movieID, err := movieIDParam(c)
	if err != nil {
		return err
	}

	if err := h.ratings.Remove(c.Context(), middleware.UserID(c), movieID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Rating deleted successfully"})
}

// ForMovie godoc
// @Summary Rating stats and paginated individual ratings for a movie
// @Tags ratings
// @Produce json
// @Param id path int true "Movie ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} services.MovieRatings
// @Failure 404 {object} map[string]string
// @Router /movies/{id}/ratings [get]
func (h *RatingHandler) ForMovie(c *fiber.Ctx) error {
	movieID, err := movieIDParam(c)
	if err != nil {
		return err
	}

	ratings, err := h.ratings.ForMovie(c.Context(), movieID, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(ratings)
}
