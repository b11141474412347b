package handlers

import (
	"encoding/json"
	"strconv"

	"movies-catalog/internal/apperr"
	"movies-catalog/internal/models"
	"movies-catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	movies   services.MovieService
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewMovieHandler(movies services.MovieService, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		movies:   movies,
		validate: validator.New(),
		logger:   logger,
	}
}

func marshalEntities(list []NamedEntity) string {
	if len(list) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func movieIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid movie id")
	}
	return uint(id), nil
}

// List godoc
// @Summary Browse the movie catalog
// @Tags movies
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param genre query string false "Genre name filter, or 'all'"
// @Param sort query string false "title_asc|title_desc|rating_asc|rating_desc|date_new|date_old|popularity"
// @Success 200 {object} services.MovieList
// @Failure 500 {object} map[string]string
// @Router /movies [get]
func (h *MovieHandler) List(c *fiber.Ctx) error {
	list, err := h.movies.List(c.Context(), listParams(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Search godoc
// @Summary Search movies by title substring
// @Tags movies
// @Produce json
// @Param q query string false "Search term"
// @Param genre query string false "Genre name filter"
// @Param sort query string false "Sort key"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} services.MovieList
// @Router /movies/search [get]
func (h *MovieHandler) Search(c *fiber.Ctx) error {
	list, err := h.movies.List(c.Context(), listParams(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Get godoc
// @Summary Get a movie by id
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} models.Movie
// @Failure 404 {object} map[string]string
// @Router /movies/{id} [get]
func (h *MovieHandler) Get(c *fiber.Ctx) error {
	id, err := movieIDParam(c)
	if err != nil {
		return err
	}

	movie, err := h.movies.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(movie)
}

// Create godoc
// @Summary Create a movie (admin)
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MovieRequest true "Movie data"
// @Success 201 {object} map[string]interface{} "movie_id"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /movies [post]
func (h *MovieHandler) Create(c *fiber.Ctx) error {
	var req MovieRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperr.Validation("title is required")
	}

	movie := &models.Movie{
		ImdbID:           req.ImdbID,
		Title:            req.Title,
		OriginalTitle:    req.OriginalTitle,
		Overview:         req.Overview,
		Tagline:          req.Tagline,
		ReleaseDate:      req.ReleaseDate,
		Adult:            req.Adult,
		Budget:           req.Budget,
		Revenue:          req.Revenue,
		Runtime:          req.Runtime,
		Popularity:       req.Popularity,
		VoteAverage:      req.VoteAverage,
		VoteCount:        req.VoteCount,
		OriginalLanguage: req.OriginalLanguage,
		Status:           req.Status,
	}
	if req.Homepage != nil {
		movie.Homepage = *req.Homepage
	}
	if req.PosterPath != nil {
		movie.PosterPath = *req.PosterPath
	}

	// The raw entity lists are kept verbatim alongside the normalized links.
	movie.RawGenres = marshalEntities(req.RawGenres)
	movie.RawProductionCompanies = marshalEntities(req.RawProductionCompanies)

	genreNames := make([]string, 0, len(req.RawGenres))
	for _, entity := range req.RawGenres {
		genreNames = append(genreNames, entity.Name)
	}
	companyNames := make([]string, 0, len(req.RawProductionCompanies))
	for _, entity := range req.RawProductionCompanies {
		companyNames = append(companyNames, entity.Name)
	}

	movieID, err := h.movies.Create(c.Context(), movie, genreNames, companyNames)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movie_id": movieID})
}

// Update godoc
// @Summary Partially update a movie (admin)
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param body body map[string]interface{} true "Fields to update"
// @Success 200 {object} map[string]interface{} "movie_id and updated_fields"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/movies/{id} [put]
func (h *MovieHandler) Update(c *fiber.Ctx) error {
	id, err := movieIDParam(c)
	if err != nil {
		return err
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid request body")
	}

	updated, err := h.movies.Update(c.Context(), id, body)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"movie_id": id, "updated_fields": updated})
}

// Delete godoc
// @Summary Delete a movie and its related rows (admin)
// @Tags movies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/movies/{id} [delete]
func (h *MovieHandler) Delete(c *fiber.Ctx) error {
	id, err := movieIDParam(c)
	if err != nil {
		return err
	}

	if err := h.movies.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Movie deleted successfully"})
}
