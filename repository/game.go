package repository

import (
	"context"
	"fmt"
	"strings"

	"gamecatalog/models"

	"gorm.io/gorm"
)

// Sort keys accepted by GameRepository.List.
const (
	SortByName      = "name"
	SortByYear      = "year"
	SortByRating    = "rating"
	SortByPublisher = "publisher"
	SortByDeveloper = "developer"
)

var sortColumns = map[string]string{
	SortByName:      "games.name",
	SortByYear:      "games.year",
	SortByRating:    "games.rating",
	SortByPublisher: "publishers.name",
	SortByDeveloper: "developers.name",

	// Column-style keys sent by the web client.
	"g.name":         "games.name",
	"g.year":         "games.year",
	"g.rating":       "games.rating",
	"publisher_name": "publishers.name",
	"developer_name": "developers.name",
}

// GameRepository defines read access to the catalog.
type GameRepository interface {
	List(ctx context.Context, filter models.GameFilter) ([]models.GameSummary, int64, error)
	FindByID(ctx context.Context, id uint) (*models.GameDetail, error)
	FindPublisherByName(ctx context.Context, name string) (*models.Publisher, error)
	FindDeveloperByName(ctx context.Context, name string) (*models.Developer, error)
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

const gameColumns = "games.id, games.name, games.type, games.year, games.platforms, " +
	"games.publisher_id, games.developer_id, games.rating, games.description, " +
	"publishers.name AS publisher_name, developers.name AS developer_name"

func (r *gameRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Game{}).
		Joins("LEFT JOIN publishers ON publishers.id = games.publisher_id").
		Joins("LEFT JOIN developers ON developers.id = games.developer_id")
}

func applyGameFilter(q *gorm.DB, f models.GameFilter) *gorm.DB {
	if f.NoMatch {
		return q.Where("1 = 0")
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		q = q.Where(`(LOWER(games.name) LIKE ? ESCAPE '\' OR LOWER(games.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.Year != nil {
		q = q.Where("games.year = ?", *f.Year)
	}
	if f.Genre != "" {
		q = q.Where("games.type = ?", f.Genre)
	}
	if f.PublisherID != nil {
		q = q.Where("games.publisher_id = ?", *f.PublisherID)
	}
	if f.DeveloperID != nil {
		q = q.Where("games.developer_id = ?", *f.DeveloperID)
	}
	if f.MinRating != nil {
		q = q.Where("games.rating >= ?", *f.MinRating)
	}
	return q
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns one page of games and the total number of matches. Rows are
// ordered by the requested column with games.id as tie-breaker so pages never
// overlap.
func (r *gameRepository) List(ctx context.Context, f models.GameFilter) ([]models.GameSummary, int64, error) {
	var total int64
	if err := applyGameFilter(r.base(ctx), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count games: %w", err)
	}

	games := []models.GameSummary{}
	if total == 0 {
		return games, 0, nil
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[SortByName]
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}

	err := applyGameFilter(r.base(ctx), f).
		Select(gameColumns).
		Order(column + " " + direction).
		Order("games.id " + direction).
		Offset(f.Offset).
		Limit(f.Limit).
		Scan(&games).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list games: %w", err)
	}
	return games, total, nil
}

func (r *gameRepository) FindByID(ctx context.Context, id uint) (*models.GameDetail, error) {
	var detail models.GameDetail
	res := r.base(ctx).
		Select(gameColumns+", games.image_url").
		Where("games.id = ?", id).
		Limit(1).
		Scan(&detail)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to find game %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}
	return &detail, nil
}

func (r *gameRepository) FindPublisherByName(ctx context.Context, name string) (*models.Publisher, error) {
	var p models.Publisher
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to find publisher %q: %w", name, translateError(err))
	}
	return &p, nil
}

func (r *gameRepository) FindDeveloperByName(ctx context.Context, name string) (*models.Developer, error) {
	var d models.Developer
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&d).Error; err != nil {
		return nil, fmt.Errorf("failed to find developer %q: %w", name, translateError(err))
	}
	return &d, nil
}
