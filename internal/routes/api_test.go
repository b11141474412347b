package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"movies-catalog/internal/auth"
	"movies-catalog/internal/database"
	"movies-catalog/internal/handlers"
	"movies-catalog/internal/models"
	"movies-catalog/internal/repository"
	"movies-catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	app *fiber.App
	db  *database.Database
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(gdb))
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.NewWithDB(gdb, 5*time.Second)

	log := logrus.New()
	log.SetOutput(io.Discard)

	sessions := auth.NewMemorySessionStore()

	userRepo := repository.NewUserRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	userService := services.NewUserService(userRepo, ratingRepo, sessions, nil, log)
	movieService := services.NewMovieService(movieRepo, genreRepo, companyRepo, log)
	ratingService := services.NewRatingService(ratingRepo, movieRepo, log)
	feedService := services.NewFeedService(movieRepo, ratingRepo, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
	})

	Setup(app, Handlers{
		Auth:    handlers.NewAuthHandler(userService, log),
		Movies:  handlers.NewMovieHandler(movieService, log),
		Ratings: handlers.NewRatingHandler(ratingService, log),
		Feed:    handlers.NewFeedHandler(feedService, log),
		Profile: handlers.NewProfileHandler(userService, nil, log),
	}, sessions)

	return &testApp{app: app, db: db}
}

func (ta *testApp) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (ta *testApp) register(t *testing.T, username string) {
	t.Helper()
	resp := ta.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "GoodPass1!",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (ta *testApp) login(t *testing.T, username string) string {
	t.Helper()
	resp := ta.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": "GoodPass1!",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (ta *testApp) loginAdmin(t *testing.T) string {
	t.Helper()
	ta.register(t, "admin")
	require.NoError(t, ta.db.Model(&models.User{}).
		Where("username = ?", "admin").
		Update("role", models.RoleAdmin).Error)
	return ta.login(t, "admin")
}

func (ta *testApp) createMovie(t *testing.T, token string, body fiber.Map) uint {
	t.Helper()
	resp := ta.request(t, fiber.MethodPost, "/api/movies", token, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	out := decodeJSON(t, resp)
	return uint(out["movie_id"].(float64))
}

func TestRegisterValidation(t *testing.T) {
	ta := newTestApp(t)

	cases := []struct {
		name    string
		body    fiber.Map
		status  int
		message string
	}{
		{
			name:   "valid",
			body:   fiber.Map{"username": "neo", "email": "neo@example.com", "password": "GoodPass1!"},
			status: fiber.StatusCreated,
		},
		{
			name:    "duplicate username",
			body:    fiber.Map{"username": "neo", "email": "other@example.com", "password": "GoodPass1!"},
			status:  fiber.StatusConflict,
			message: "username already exists",
		},
		{
			name:    "duplicate email",
			body:    fiber.Map{"username": "trinity", "email": "neo@example.com", "password": "GoodPass1!"},
			status:  fiber.StatusConflict,
			message: "email already exists",
		},
		{
			name:   "bad email",
			body:   fiber.Map{"username": "smith", "email": "not-an-email", "password": "GoodPass1!"},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "short password",
			body:   fiber.Map{"username": "smith", "email": "smith@example.com", "password": "Ab1!"},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "no uppercase",
			body:   fiber.Map{"username": "smith", "email": "smith@example.com", "password": "alllower1!"},
			status: fiber.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ta.request(t, fiber.MethodPost, "/api/auth/register", "", tc.body)
			require.Equal(t, tc.status, resp.StatusCode)
			body := decodeJSON(t, resp)
			if tc.message != "" {
				require.Equal(t, tc.message, body["error"])
			}
		})
	}
}

func TestLoginLogoutFlow(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "morpheus")

	resp := ta.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "morpheus",
		"password": "WrongPass1!",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid username or password", decodeJSON(t, resp)["error"])

	token := ta.login(t, "morpheus")

	resp = ta.request(t, fiber.MethodGet, "/api/profile/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := decodeJSON(t, resp)
	user := profile["user"].(map[string]interface{})
	require.Equal(t, "morpheus", user["username"])

	resp = ta.request(t, fiber.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Logout successful", decodeJSON(t, resp)["message"])

	resp = ta.request(t, fiber.MethodGet, "/api/profile/", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Logout is idempotent: a revoked token and no token at all both succeed.
	resp = ta.request(t, fiber.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Logout successful", decodeJSON(t, resp)["message"])

	resp = ta.request(t, fiber.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)

	paths := []struct {
		method string
		path   string
	}{
		{fiber.MethodPost, "/api/movie/1/rating"},
		{fiber.MethodDelete, "/api/movie/1/rating"},
		{fiber.MethodGet, "/api/profile/"},
		{fiber.MethodGet, "/api/my-movies"},
		{fiber.MethodGet, "/api/home/recommendations"},
		{fiber.MethodPost, "/api/movies"},
	}
	for _, p := range paths {
		resp := ta.request(t, p.method, p.path, "", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
		resp.Body.Close()
	}
}

func TestAdminGating(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "regular")
	userToken := ta.login(t, "regular")

	resp := ta.request(t, fiber.MethodPost, "/api/movies", userToken, fiber.Map{"title": "Blocked"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Admin access required", decodeJSON(t, resp)["error"])

	adminToken := ta.loginAdmin(t)
	movieID := ta.createMovie(t, adminToken, fiber.Map{
		"title":      "Metropolis",
		"raw_genres": []fiber.Map{{"name": "Sci-Fi"}},
	})
	require.NotZero(t, movieID)
}

func TestMovieListingAndSearch(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)

	ta.createMovie(t, adminToken, fiber.Map{"title": "Seven Samurai", "popularity": 80.0})
	ta.createMovie(t, adminToken, fiber.Map{"title": "The Seventh Seal", "popularity": 60.0})
	ta.createMovie(t, adminToken, fiber.Map{"title": "Persona", "popularity": 40.0})

	resp := ta.request(t, fiber.MethodGet, "/api/movies/?page=0&limit=2", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeJSON(t, resp)
	require.EqualValues(t, 1, list["page"])
	require.EqualValues(t, 3, list["total"])
	require.EqualValues(t, 2, list["total_pages"])
	require.Len(t, list["movies"], 2)

	resp = ta.request(t, fiber.MethodGet, "/api/movies/search?q=seven", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	search := decodeJSON(t, resp)
	require.EqualValues(t, 2, search["total"])
}

func TestGetMovieNotFound(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, fiber.MethodGet, "/api/movies/9999", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, "/api/movies/not-a-number", "", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRatingValidation(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)
	movieID := ta.createMovie(t, adminToken, fiber.Map{"title": "Rashomon"})

	ta.register(t, "rater")
	token := ta.login(t, "rater")
	path := "/api/movie/" + itoa(movieID) + "/rating"

	for _, invalid := range []float64{-1, 10.5, 11} {
		resp := ta.request(t, fiber.MethodPost, path, token, fiber.Map{"rating": invalid})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	resp := ta.request(t, fiber.MethodPost, "/api/movie/9999/rating", token, fiber.Map{"rating": 5})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodPost, path, token, fiber.Map{"rating": 8})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeJSON(t, resp)
	require.EqualValues(t, 8, created["rating"])
}

func TestRatingLifecycle(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)
	movieID := ta.createMovie(t, adminToken, fiber.Map{"title": "Tokyo Story"})

	ta.register(t, "ozu")
	token := ta.login(t, "ozu")
	ratePath := "/api/movie/" + itoa(movieID) + "/rating"
	statsPath := "/api/movies/" + itoa(movieID) + "/ratings"

	resp := ta.request(t, fiber.MethodPost, ratePath, token, fiber.Map{"rating": 8})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, statsPath, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stats := decodeJSON(t, resp)
	require.EqualValues(t, 8, stats["average_rating"])
	counts := stats["rating_counts"].(map[string]interface{})
	require.EqualValues(t, 1, counts["8"])
	require.Len(t, stats["ratings"], 1)

	// Re-rating replaces, never duplicates.
	resp = ta.request(t, fiber.MethodPost, ratePath, token, fiber.Map{"rating": 4})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, statsPath, "", nil)
	stats = decodeJSON(t, resp)
	require.EqualValues(t, 4, stats["average_rating"])
	require.Len(t, stats["ratings"], 1)

	resp = ta.request(t, fiber.MethodDelete, ratePath, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, statsPath, "", nil)
	stats = decodeJSON(t, resp)
	require.Nil(t, stats["average_rating"])
	counts = stats["rating_counts"].(map[string]interface{})
	for bucket := range counts {
		require.EqualValues(t, 0, counts[bucket])
	}

	resp = ta.request(t, fiber.MethodDelete, ratePath, token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminMovieUpdateAndDelete(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)
	movieID := ta.createMovie(t, adminToken, fiber.Map{"title": "Original Title", "budget": 1000})
	path := "/api/admin/movies/" + itoa(movieID)

	resp := ta.request(t, fiber.MethodPut, path, adminToken, fiber.Map{
		"title":     "New Title",
		"vote_hack": "ignored",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeJSON(t, resp)
	require.Equal(t, []interface{}{"title"}, updated["updated_fields"])

	resp = ta.request(t, fiber.MethodPut, path, adminToken, fiber.Map{"vote_hack": "only"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, "/api/movies/"+itoa(movieID), "", nil)
	movie := decodeJSON(t, resp)
	require.Equal(t, "New Title", movie["title"])

	resp = ta.request(t, fiber.MethodDelete, path, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, "/api/movies/"+itoa(movieID), "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHomeFeedAndRecommendations(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)

	scifi := []fiber.Map{{"name": "Sci-Fi"}}
	liked := ta.createMovie(t, adminToken, fiber.Map{"title": "Solaris", "popularity": 30.0, "raw_genres": scifi})
	ta.createMovie(t, adminToken, fiber.Map{"title": "Blade Runner", "popularity": 90.0, "raw_genres": scifi})
	ta.createMovie(t, adminToken, fiber.Map{"title": "Amelie", "popularity": 50.0, "raw_genres": []fiber.Map{{"name": "Romance"}}})

	resp := ta.request(t, fiber.MethodGet, "/api/home/", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The home feed resolves a token when present but never rejects one.
	resp = ta.request(t, fiber.MethodGet, "/api/home/", "stale-or-garbage-token", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	ta.register(t, "fan")
	token := ta.login(t, "fan")

	resp = ta.request(t, fiber.MethodGet, "/api/home/recommendations", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	require.Equal(t, "Rate some movies to get personalized recommendations", body["message"])

	resp = ta.request(t, fiber.MethodPost, "/api/movie/"+itoa(liked)+"/rating", token, fiber.Map{"rating": 9})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, "/api/home/recommendations", token, nil)
	body = decodeJSON(t, resp)
	recommended := body["recommended"].([]interface{})
	require.Len(t, recommended, 1)
	first := recommended[0].(map[string]interface{})
	require.Equal(t, "Blade Runner", first["title"])
}

func TestMyMovies(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)
	movieID := ta.createMovie(t, adminToken, fiber.Map{"title": "La Haine"})

	ta.register(t, "collector")
	token := ta.login(t, "collector")

	resp := ta.request(t, fiber.MethodGet, "/api/my-movies", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeJSON(t, resp)
	require.EqualValues(t, 0, list["total"])

	resp = ta.request(t, fiber.MethodPost, "/api/movie/"+itoa(movieID)+"/rating", token, fiber.Map{"rating": 7})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, "/api/my-movies", token, nil)
	list = decodeJSON(t, resp)
	require.EqualValues(t, 1, list["total"])
	movies := list["movies"].([]interface{})
	entry := movies[0].(map[string]interface{})
	require.Equal(t, "La Haine", entry["title"])
	require.EqualValues(t, 7, entry["user_rating"])
}

func TestProfileUpdateAndRecentRatings(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.loginAdmin(t)
	movieID := ta.createMovie(t, adminToken, fiber.Map{"title": "Le Samourai", "poster_path": "/melville.jpg"})

	ta.register(t, "jef")
	token := ta.login(t, "jef")

	resp := ta.request(t, fiber.MethodPost, "/api/movie/"+itoa(movieID)+"/rating", token, fiber.Map{"rating": 9})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, fiber.MethodGet, "/api/profile/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := decodeJSON(t, resp)
	recent := profile["recent_ratings"].([]interface{})
	require.Len(t, recent, 1)
	entry := recent[0].(map[string]interface{})
	require.Equal(t, "Le Samourai", entry["movie_title"])
	require.Equal(t, "/melville.jpg", entry["poster_path"])
	require.EqualValues(t, 9, entry["rating"])

	resp = ta.request(t, fiber.MethodPut, "/api/profile/", token, fiber.Map{
		"email":   "jef@example.net",
		"ratings": []fiber.Map{{"movie_id": movieID, "rating": 6}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeJSON(t, resp)
	user := updated["user"].(map[string]interface{})
	require.Equal(t, "jef@example.net", user["email"])

	resp = ta.request(t, fiber.MethodGet, "/api/movies/"+itoa(movieID)+"/ratings", "", nil)
	stats := decodeJSON(t, resp)
	require.EqualValues(t, 6, stats["average_rating"])

	// Batch rating updates reject unknown movie ids.
	resp = ta.request(t, fiber.MethodPut, "/api/profile/", token, fiber.Map{
		"ratings": []fiber.Map{{"movie_id": 9999, "rating": 5}},
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "movie not found", decodeJSON(t, resp)["error"])
}

func TestPictureUploadWithoutStorage(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "nopics")
	token := ta.login(t, "nopics")

	resp := ta.request(t, fiber.MethodGet, "/api/profile/picture-upload", token, nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
