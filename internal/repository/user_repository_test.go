package repository

import (
	"context"
	"testing"

	"movies-catalog/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{
		Username:     "margarita",
		Email:        "margarita@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)

	byName, err := repo.FindByUsername(context.Background(), "margarita")
	require.NoError(t, err)
	require.NotNil(t, byName)
	require.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.FindByEmail(context.Background(), "margarita@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, user.ID, byEmail.ID)
}

func TestFindByUsernameMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.FindByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	first := &models.User{Username: "dup", Email: "dup@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, repo.Create(context.Background(), first))

	second := &models.User{Username: "dup", Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser}
	err := repo.Create(context.Background(), second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUpdateProfileFieldsAndRatings(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "behemoth")
	movie := seedMovie(t, db, models.Movie{Title: "The Master and Margarita"})

	require.NoError(t, db.Create(&models.Rating{UserID: user.ID, MovieID: movie.ID, Rating: 5}).Error)

	fields := map[string]interface{}{"email": "cat@example.com", "profile_picture": "/cats/behemoth.png"}
	ratings := []models.Rating{{UserID: user.ID, MovieID: movie.ID, Rating: 10}}
	require.NoError(t, repo.UpdateProfile(context.Background(), user.ID, fields, ratings))

	updated, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "cat@example.com", updated.Email)
	require.Equal(t, "/cats/behemoth.png", updated.ProfilePicture)

	var rating models.Rating
	require.NoError(t, db.Where("user_id = ? AND movie_id = ?", user.ID, movie.ID).First(&rating).Error)
	require.Equal(t, 10.0, rating.Rating)
}

func TestUpdateProfileUnknownMovieRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "koroviev")

	fields := map[string]interface{}{"email": "choir@example.com"}
	ratings := []models.Rating{{UserID: user.ID, MovieID: 9999, Rating: 7}}
	err := repo.UpdateProfile(context.Background(), user.ID, fields, ratings)
	require.ErrorIs(t, err, ErrMovieNotFound)

	// The whole transaction rolls back, field updates included.
	unchanged, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "koroviev@example.com", unchanged.Email)

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateProfileRatingsOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "woland")
	movie := seedMovie(t, db, models.Movie{Title: "Faust"})

	ratings := []models.Rating{{UserID: user.ID, MovieID: movie.ID, Rating: 9}}
	require.NoError(t, repo.UpdateProfile(context.Background(), user.ID, nil, ratings))

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
