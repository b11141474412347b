package models

import (
	"time"
)

type Movie struct {
	ID                     uint                `gorm:"primaryKey" json:"id" example:"1"`
	ImdbID                 string              `gorm:"index" json:"imdb_id" example:"tt0137523"`
	Title                  string              `gorm:"not null;index" json:"title" example:"Fight Club"`
	OriginalTitle          string              `json:"original_title" example:"Fight Club"`
	Overview               string              `gorm:"type:text" json:"overview"`
	Tagline                string              `json:"tagline"`
	Homepage               string              `json:"homepage"`
	ReleaseDate            *string             `gorm:"index" json:"release_date" example:"1999-10-15"`
	Adult                  bool                `json:"adult" example:"false"`
	Budget                 int64               `json:"budget" example:"63000000"`
	Revenue                int64               `json:"revenue" example:"100853753"`
	Runtime                float64             `json:"runtime" example:"139"`
	Popularity             float64             `gorm:"index" json:"popularity" example:"61.416"`
	VoteAverage            float64             `gorm:"index" json:"vote_average" example:"8.4"`
	VoteCount              int64               `json:"vote_count" example:"26280"`
	OriginalLanguage       string              `json:"original_language" example:"en"`
	Status                 string              `json:"status" example:"Released"`
	PosterPath             string              `json:"poster_path"`
	RawGenres              string              `gorm:"type:text" json:"raw_genres,omitempty"`
	RawProductionCompanies string              `gorm:"type:text" json:"raw_production_companies,omitempty"`
	Genres                 []Genre             `gorm:"many2many:movie_genres;" json:"genres,omitempty"`
	Companies              []ProductionCompany `gorm:"many2many:movie_companies;" json:"production_companies,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

func (Movie) TableName() string {
	return "movies"
}

// MovieListItem is a catalog row together with the caller's own rating,
// used by the my-movies listing.
type MovieListItem struct {
	Movie
	UserRating *float64 `json:"user_rating,omitempty"`
}
