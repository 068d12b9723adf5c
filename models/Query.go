package models

// GameListQuery holds the raw query string of GET /games.
type GameListQuery struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Search    string `form:"search"`
	Year      string `form:"year"`
	Publisher string `form:"publisher"`
	Developer string `form:"developer"`
	Genre     string `form:"genre"`
	MinRating string `form:"minRating"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// GameFilter is the normalized form of GameListQuery handed to the store.
type GameFilter struct {
	Offset      int
	Limit       int
	Search      string
	Year        *int
	Genre       string
	PublisherID *uint
	DeveloperID *uint
	MinRating   *float64
	SortBy      string
	Desc        bool
	// NoMatch is set when a name filter could not be resolved.
	NoMatch bool
}

// DashboardStats aggregates catalog and moderation counters for admins.
type DashboardStats struct {
	TotalUsers       int64   `json:"total_users"`
	ActiveUsers      int64   `json:"active_users"`
	BlockedUsers     int64   `json:"blocked_users"`
	TotalGames       int64   `json:"total_games"`
	PendingReviews   int64   `json:"pending_reviews"`
	ApprovedReviews  int64   `json:"approved_reviews"`
	RejectedReviews  int64   `json:"rejected_reviews"`
	AverageGameScore float64 `json:"average_game_rating"`
}
