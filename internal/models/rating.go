package models

import "time"

type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_movie" json:"user_id"`
	MovieID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_movie;index" json:"movie_id"`
	Rating    float64   `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingWithUser is an individual rating joined with the rater's username,
// returned by the per-movie ratings listing.
type RatingWithUser struct {
	ID       uint      `json:"id"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Rating   float64   `json:"rating"`
	RatedAt  time.Time `json:"rated_at"`
}

// RatingStats aggregates all ratings of one movie. Average is nil when the
// movie has no ratings; Counts always carries buckets 1 through 10.
type RatingStats struct {
	Average *float64      `json:"average_rating"`
	Counts  map[int]int64 `json:"rating_counts"`
}

// RecentRating is a profile feed entry joined with movie metadata.
type RecentRating struct {
	MovieID    uint      `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	Rating     float64   `json:"rating"`
	RatedAt    time.Time `json:"rated_at"`
	PosterPath string    `json:"poster_path"`
}
