package models

import "slices"

const (
	GenreRPG       = "rpg"
	GenreAction    = "action"
	GenreArcade    = "arcade"
	GenreStrategy  = "strategy"
	GenreSimulator = "simulator"
	GenreAdventure = "adventure"
	GenreOther     = "other"
)

var Genres = []string{GenreRPG, GenreAction, GenreArcade, GenreStrategy, GenreSimulator, GenreAdventure, GenreOther}

func ValidGenre(g string) bool {
	return slices.Contains(Genres, g)
}

type Game struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null;index" json:"name"`
	Type        string     `gorm:"size:32;check:type IN ('rpg','action','arcade','strategy','simulator','adventure','other')" json:"type"`
	Year        int        `gorm:"not null" json:"year"`
	Platforms   string     `gorm:"not null" json:"platforms"`
	PublisherID *uint      `json:"publisher_id"`
	Publisher   *Publisher `gorm:"foreignKey:PublisherID" json:"-"`
	DeveloperID *uint      `json:"developer_id"`
	Developer   *Developer `gorm:"foreignKey:DeveloperID" json:"-"`
	Rating      float64    `gorm:"not null;default:0" json:"rating"`
	Description string     `gorm:"type:text" json:"description"`
	ImageURL    string     `json:"image_url"`
}

// GameSummary is a listing row; it carries display names but no image url.
type GameSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Year          int     `json:"year"`
	Platforms     string  `json:"platforms"`
	PublisherID   *uint   `json:"publisher_id"`
	DeveloperID   *uint   `json:"developer_id"`
	Rating        float64 `json:"rating"`
	Description   string  `json:"description"`
	PublisherName *string `json:"publisher_name"`
	DeveloperName *string `json:"developer_name"`
}

// GameDetail is a single game enriched with publisher and developer names.
type GameDetail struct {
	GameSummary
	ImageURL string `json:"image_url"`
}

// GamePage is the paginated listing response.
type GamePage struct {
	Games       []GameSummary `json:"games"`
	TotalGames  int64         `json:"totalGames"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}
