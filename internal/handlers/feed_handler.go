package handlers

import (
	"movies-catalog/internal/middleware"
	"movies-catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type FeedHandler struct {
	feed   services.FeedService
	logger *logrus.Logger
}

func NewFeedHandler(feed services.FeedService, logger *logrus.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger,
	}
}

// Home godoc
// @Summary Popular and recent movie lists
// @Tags feed
// @Produce json
// @Success 200 {object} services.HomeFeed
// @Router /home [get]
func (h *FeedHandler) Home(c *fiber.Ctx) error {
	feed, err := h.feed.Home(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(feed)
}

// Recommendations godoc
// @Summary Personalized genre-based recommendations
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "recommended, or message"
// @Failure 401 {object} map[string]string
// @Router /home/recommendations [get]
func (h *FeedHandler) Recommendations(c *fiber.Ctx) error {
	recommended, message, err := h.feed.Recommendations(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	if message != "" {
		return c.JSON(fiber.Map{"message": message})
	}
	return c.JSON(fiber.Map{"recommended": recommended})
}

// MyMovies godoc
// @Summary Movies the caller has rated
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param genre query string false "Genre name filter"
// @Param sort query string false "Sort key"
// @Success 200 {object} services.MyMoviesList
// @Router /my-movies [get]
func (h *FeedHandler) MyMovies(c *fiber.Ctx) error {
	list, err := h.feed.MyMovies(c.Context(), middleware.UserID(c), listParams(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}
