package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"gamecatalog/cache"
	"gamecatalog/models"
	"gamecatalog/repository"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// GameService answers catalog queries.
type GameService interface {
	ListGames(ctx context.Context, q models.GameListQuery) (*models.GamePage, error)
	GetGame(ctx context.Context, id uint) (*models.GameDetail, error)
}

type gameService struct {
	games repository.GameRepository
	cache *cache.Cache
	log   logrus.FieldLogger
}

// NewGameService creates a GameService. c may be nil, in which case name
// lookups always go to the store.
func NewGameService(games repository.GameRepository, c *cache.Cache, log logrus.FieldLogger) GameService {
	return &gameService{games: games, cache: c, log: log}
}

// ParseID parses a path id; anything other than a positive integer is a
// validation error.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 || uint64(id) > math.MaxUint32 {
		return 0, validationError("Invalid id %q", raw)
	}
	return uint(id), nil
}

func parsePositive(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *gameService) buildFilter(ctx context.Context, q models.GameListQuery) (models.GameFilter, int, error) {
	page := parsePositive(q.Page, DefaultPage)
	limit := parsePositive(q.Limit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// Keeps (page-1)*limit from overflowing into a negative offset.
	if page > math.MaxInt32/limit {
		return models.GameFilter{}, 0, validationError("Page is out of range")
	}

	f := models.GameFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Search: strings.TrimSpace(q.Search),
		Genre:  strings.ToLower(strings.TrimSpace(q.Genre)),
		SortBy: strings.ToLower(strings.TrimSpace(q.SortBy)),
		Desc:   strings.EqualFold(strings.TrimSpace(q.SortOrder), "DESC"),
	}

	if v := strings.TrimSpace(q.Year); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, 0, validationError("Year must be an integer")
		}
		f.Year = &year
	}
	if v := strings.TrimSpace(q.MinRating); v != "" {
		minRating, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(minRating) {
			return f, 0, validationError("minRating must be a number")
		}
		f.MinRating = &minRating
	}

	var err error
	if f.PublisherID, err = s.resolvePublisher(ctx, q.Publisher); err != nil {
		return f, 0, err
	}
	if f.DeveloperID, err = s.resolveDeveloper(ctx, q.Developer); err != nil {
		return f, 0, err
	}
	// An unknown genre or unresolved name filters everything out rather
	// than failing.
	if f.Genre != "" && !models.ValidGenre(f.Genre) {
		f.NoMatch = true
	}
	if (q.Publisher != "" && f.PublisherID == nil) || (q.Developer != "" && f.DeveloperID == nil) {
		f.NoMatch = true
	}
	return f, page, nil
}

// resolveReference turns a numeric id or a display name into an id. It
// returns nil for an empty value or a name that does not exist.
func (s *gameService) resolveReference(
	ctx context.Context,
	raw, kind string,
	fromCache func(context.Context, string) (uint, error),
	toCache func(context.Context, string, uint) error,
	fromStore func(context.Context, string) (uint, error),
) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
		v := uint(id)
		return &v, nil
	}

	if id, err := fromCache(ctx, raw); err == nil {
		return &id, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.WithError(err).WithField(kind, raw).Warn("Reference cache lookup failed")
	}

	id, err := fromStore(ctx, raw)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toCache(ctx, raw, id); err != nil {
		s.log.WithError(err).WithField(kind, raw).Warn("Failed to cache reference")
	}
	return &id, nil
}

func (s *gameService) resolvePublisher(ctx context.Context, raw string) (*uint, error) {
	return s.resolveReference(ctx, raw, "publisher", s.cache.GetPublisherID, s.cache.SetPublisherID,
		func(ctx context.Context, name string) (uint, error) {
			p, err := s.games.FindPublisherByName(ctx, name)
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		})
}

func (s *gameService) resolveDeveloper(ctx context.Context, raw string) (*uint, error) {
	return s.resolveReference(ctx, raw, "developer", s.cache.GetDeveloperID, s.cache.SetDeveloperID,
		func(ctx context.Context, name string) (uint, error) {
			d, err := s.games.FindDeveloperByName(ctx, name)
			if err != nil {
				return 0, err
			}
			return d.ID, nil
		})
}

func (s *gameService) ListGames(ctx context.Context, q models.GameListQuery) (*models.GamePage, error) {
	f, page, err := s.buildFilter(ctx, q)
	if err != nil {
		return nil, err
	}

	games, total, err := s.games.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return &models.GamePage{
		Games:       games,
		TotalGames:  total,
		TotalPages:  int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		CurrentPage: page,
	}, nil
}

func (s *gameService) GetGame(ctx context.Context, id uint) (*models.GameDetail, error) {
	if id == 0 {
		return nil, validationError("Invalid id")
	}
	game, err := s.games.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Game not found")
		}
		return nil, err
	}
	return game, nil
}
