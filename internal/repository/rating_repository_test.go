package repository

import (
	"context"
	"testing"

	"movies-catalog/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpsertCreatesThenReplaces(t *testing.T) {
	db := newTestDB(t)
	movie := seedMovie(t, db, models.Movie{Title: "Solaris"})
	user := seedUser(t, db, "kelvin")
	repo := NewRatingRepository(db)

	first, err := repo.Upsert(context.Background(), user.ID, movie.ID, 6)
	require.NoError(t, err)
	require.Equal(t, 6.0, first.Rating)

	second, err := repo.Upsert(context.Background(), user.ID, movie.ID, 9)
	require.NoError(t, err)
	require.Equal(t, 9.0, second.Rating)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).
		Where("user_id = ? AND movie_id = ?", user.ID, movie.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUpsertKeepsRatingsPerUserSeparate(t *testing.T) {
	db := newTestDB(t)
	movie := seedMovie(t, db, models.Movie{Title: "Stalker"})
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	repo := NewRatingRepository(db)

	_, err := repo.Upsert(context.Background(), alice.ID, movie.ID, 8)
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), bob.ID, movie.ID, 4)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Where("movie_id = ?", movie.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestDeleteRating(t *testing.T) {
	db := newTestDB(t)
	movie := seedMovie(t, db, models.Movie{Title: "Mirror"})
	user := seedUser(t, db, "andrei")
	repo := NewRatingRepository(db)

	_, err := repo.Upsert(context.Background(), user.ID, movie.ID, 7)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), user.ID, movie.ID))

	err = repo.Delete(context.Background(), user.ID, movie.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStatsWithNoRatings(t *testing.T) {
	db := newTestDB(t)
	movie := seedMovie(t, db, models.Movie{Title: "Nostalghia"})
	repo := NewRatingRepository(db)

	stats, err := repo.Stats(context.Background(), movie.ID)
	require.NoError(t, err)
	require.Nil(t, stats.Average)
	require.Len(t, stats.Counts, 10)
	for bucket := 1; bucket <= 10; bucket++ {
		require.Zero(t, stats.Counts[bucket])
	}
}

func TestStatsAverageAndBuckets(t *testing.T) {
	db := newTestDB(t)
	movie := seedMovie(t, db, models.Movie{Title: "Ikiru"})
	repo := NewRatingRepository(db)

	for i, value := range []float64{8, 8, 6.4, 9.6} {
		user := seedUser(t, db, "viewer"+string(rune('a'+i)))
		_, err := repo.Upsert(context.Background(), user.ID, movie.ID, value)
		require.NoError(t, err)
	}

	stats, err := repo.Stats(context.Background(), movie.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.Average)
	require.InDelta(t, 8.0, *stats.Average, 0.001)

	// 6.4 rounds to 6, 9.6 rounds to 10, the two 8s share a bucket.
	require.EqualValues(t, 2, stats.Counts[8])
	require.EqualValues(t, 1, stats.Counts[6])
	require.EqualValues(t, 1, stats.Counts[10])
	require.Zero(t, stats.Counts[7])
}

func TestListForMovie(t *testing.T) {
	db := newTestDB(t)
	movie := seedMovie(t, db, models.Movie{Title: "Ran"})
	user := seedUser(t, db, "akira")
	repo := NewRatingRepository(db)

	_, err := repo.Upsert(context.Background(), user.ID, movie.ID, 10)
	require.NoError(t, err)

	ratings, err := repo.ListForMovie(context.Background(), movie.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	require.Equal(t, "akira", ratings[0].Username)
	require.Equal(t, 10.0, ratings[0].Rating)
}

func TestRecentForUser(t *testing.T) {
	db := newTestDB(t)
	first := seedMovie(t, db, models.Movie{Title: "Yojimbo", PosterPath: "/yojimbo.jpg"})
	second := seedMovie(t, db, models.Movie{Title: "Sanjuro"})
	user := seedUser(t, db, "ronin")
	repo := NewRatingRepository(db)

	_, err := repo.Upsert(context.Background(), user.ID, first.ID, 9)
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), user.ID, second.ID, 7)
	require.NoError(t, err)

	recent, err := repo.RecentForUser(context.Background(), user.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	titles := []string{recent[0].MovieTitle, recent[1].MovieTitle}
	require.Contains(t, titles, "Yojimbo")
	require.Contains(t, titles, "Sanjuro")
}

func TestValuesForUser(t *testing.T) {
	db := newTestDB(t)
	first := seedMovie(t, db, models.Movie{Title: "Dersu Uzala"})
	second := seedMovie(t, db, models.Movie{Title: "Kagemusha"})
	user := seedUser(t, db, "scout")
	repo := NewRatingRepository(db)

	_, err := repo.Upsert(context.Background(), user.ID, first.ID, 8)
	require.NoError(t, err)

	values, err := repo.ValuesForUser(context.Background(), user.ID, []uint{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, 8.0, values[first.ID])
}
