package models

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Genre) TableName() string {
	return "genres"
}

type ProductionCompany struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (ProductionCompany) TableName() string {
	return "production_companies"
}

type MovieGenre struct {
	MovieID uint `gorm:"primaryKey" json:"movie_id"`
	GenreID uint `gorm:"primaryKey" json:"genre_id"`
}

func (MovieGenre) TableName() string {
	return "movie_genres"
}

type MovieCompany struct {
	MovieID   uint `gorm:"primaryKey" json:"movie_id"`
	CompanyID uint `gorm:"primaryKey;column:production_company_id" json:"company_id"`
}

func (MovieCompany) TableName() string {
	return "movie_companies"
}
