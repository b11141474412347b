package handlers

import (
	"strconv"

	"movies-catalog/internal/repository"
	"movies-catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NamedEntity is the shape of raw_genres / raw_production_companies entries
// as produced by the dataset ("[{id, name}, ...]").
type NamedEntity struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

type MovieRequest struct {
	ImdbID                 string        `json:"imdb_id"`
	Title                  string        `json:"title" validate:"required"`
	OriginalTitle          string        `json:"original_title"`
	Overview               string        `json:"overview"`
	Tagline                string        `json:"tagline"`
	Homepage               *string       `json:"homepage"`
	ReleaseDate            *string       `json:"release_date"`
	Adult                  bool          `json:"adult"`
	Budget                 int64         `json:"budget"`
	Revenue                int64         `json:"revenue"`
	Runtime                float64       `json:"runtime"`
	Popularity             float64       `json:"popularity"`
	VoteAverage            float64       `json:"vote_average"`
	VoteCount              int64         `json:"vote_count"`
	OriginalLanguage       string        `json:"original_language"`
	Status                 string        `json:"status"`
	PosterPath             *string       `json:"poster_path"`
	RawGenres              []NamedEntity `json:"raw_genres"`
	RawProductionCompanies []NamedEntity `json:"raw_production_companies"`
}

type RatingRequest struct {
	Rating *float64 `json:"rating" validate:"required"`
}

type ProfileUpdateRequest struct {
	Username       *string                `json:"username"`
	Email          *string                `json:"email"`
	ProfilePicture *string                `json:"profile_picture"`
	Ratings        []services.RatingInput `json:"ratings"`
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func listParams(c *fiber.Ctx) repository.ListParams {
	return repository.ListParams{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
		Genre: c.Query("genre"),
		Sort:  c.Query("sort"),
		Query: c.Query("q"),
	}
}
