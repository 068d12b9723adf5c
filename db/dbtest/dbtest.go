// Package dbtest provides an in-memory store and fixtures for tests.
package dbtest

import (
	"testing"

	"gamecatalog/config"
	"gamecatalog/db"
	"gamecatalog/models"

	"gorm.io/gorm"
)

// New opens a migrated in-memory SQLite database that is closed when the
// test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(&config.Config{DBDriver: db.DriverSQLite, DatabaseURL: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func CreateUser(t testing.TB, gdb *gorm.DB, login, role string) *models.User {
	t.Helper()
	user := &models.User{Login: login, PasswordHash: "x", Role: role, Status: models.UserStatusActive}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", login, err)
	}
	return user
}

func CreatePublisher(t testing.TB, gdb *gorm.DB, name string) *models.Publisher {
	t.Helper()
	p := &models.Publisher{Name: name}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("failed to create publisher %s: %v", name, err)
	}
	return p
}

func CreateDeveloper(t testing.TB, gdb *gorm.DB, name string) *models.Developer {
	t.Helper()
	d := &models.Developer{Name: name}
	if err := gdb.Create(d).Error; err != nil {
		t.Fatalf("failed to create developer %s: %v", name, err)
	}
	return d
}

// CreateGame inserts game, defaulting the fields the schema requires.
func CreateGame(t testing.TB, gdb *gorm.DB, game models.Game) *models.Game {
	t.Helper()
	if game.Type == "" {
		game.Type = models.GenreOther
	}
	if game.Year == 0 {
		game.Year = 2020
	}
	if game.Platforms == "" {
		game.Platforms = "PC"
	}
	if err := gdb.Create(&game).Error; err != nil {
		t.Fatalf("failed to create game %s: %v", game.Name, err)
	}
	return &game
}

func CreateReview(t testing.TB, gdb *gorm.DB, userID, gameID uint, rank int, status string) *models.Review {
	t.Helper()
	r := &models.Review{UserID: userID, GameID: gameID, Rank: rank, Status: status}
	if err := gdb.Create(r).Error; err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	return r
}

func GameRating(t testing.TB, gdb *gorm.DB, gameID uint) float64 {
	t.Helper()
	var game models.Game
	if err := gdb.First(&game, gameID).Error; err != nil {
		t.Fatalf("failed to load game %d: %v", gameID, err)
	}
	return game.Rating
}
