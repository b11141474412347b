package routes

import (
	"movies-catalog/internal/auth"
	"movies-catalog/internal/handlers"
	"movies-catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Movies  *handlers.MovieHandler
	Ratings *handlers.RatingHandler
	Feed    *handlers.FeedHandler
	Profile *handlers.ProfileHandler
}

func Setup(app *fiber.App, h Handlers, sessions auth.SessionStore) {
	api := app.Group("/api")

	requireAuth := middleware.RequireAuth(sessions)
	requireAdmin := middleware.RequireAdmin()
	optionalAuth := middleware.OptionalAuth(sessions)

	authGroup := api.Group("/auth")
	{
		authGroup.Post("/register", h.Auth.Register)
		authGroup.Post("/login", h.Auth.Login)
		// Logout is idempotent, so it never sits behind RequireAuth: revoking
		// an already-revoked token still reports success.
		authGroup.Post("/logout", h.Auth.Logout)
	}

	movies := api.Group("/movies")
	{
		movies.Get("/", h.Movies.List)
		movies.Get("/search", h.Movies.Search)
		movies.Post("/", requireAuth, requireAdmin, h.Movies.Create)
		movies.Get("/:id", h.Movies.Get)
		movies.Get("/:id/ratings", h.Ratings.ForMovie)
	}

	admin := api.Group("/admin", requireAuth, requireAdmin)
	{
		admin.Put("/movies/:id", h.Movies.Update)
		admin.Delete("/movies/:id", h.Movies.Delete)
	}

	movie := api.Group("/movie", requireAuth)
	{
		movie.Post("/:id/rating", h.Ratings.Submit)
		movie.Delete("/:id/rating", h.Ratings.Remove)
	}

	home := api.Group("/home")
	{
		home.Get("/", optionalAuth, h.Feed.Home)
		home.Get("/recommendations", requireAuth, h.Feed.Recommendations)
	}

	api.Get("/my-movies", requireAuth, h.Feed.MyMovies)

	profile := api.Group("/profile", requireAuth)
	{
		profile.Get("/", h.Profile.Get)
		profile.Put("/", h.Profile.Update)
		profile.Get("/picture-upload", h.Profile.PictureUploadURL)
	}
}
