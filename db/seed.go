package db

import (
	"fmt"

	"gamecatalog/models"

	"gorm.io/gorm"
)

type seedGame struct {
	Name        string
	Type        string
	Year        int
	Platforms   string
	Publisher   string
	Developer   string
	Description string
	ImageURL    string
}

var seedGames = []seedGame{
	{"The Witcher 3: Wild Hunt", models.GenreRPG, 2015, "PC, PS4, Xbox One, Switch", "CD Projekt", "CD Projekt Red", "Geralt of Rivia hunts monsters and searches for his adopted daughter.", "/images/games/witcher3.jpg"},
	{"Cyberpunk 2077", models.GenreRPG, 2020, "PC, PS5, Xbox Series X", "CD Projekt", "CD Projekt Red", "An open-world action adventure set in Night City.", "/images/games/cyberpunk2077.jpg"},
	{"Half-Life 2", models.GenreAction, 2004, "PC", "Valve", "Valve", "Gordon Freeman fights the Combine in City 17.", "/images/games/hl2.jpg"},
	{"Portal 2", models.GenreAdventure, 2011, "PC, PS3, Xbox 360", "Valve", "Valve", "A puzzle game built around a portal gun.", "/images/games/portal2.jpg"},
	{"Civilization VI", models.GenreStrategy, 2016, "PC, PS4, Switch", "2K", "Firaxis Games", "Build an empire to stand the test of time.", "/images/games/civ6.jpg"},
	{"XCOM 2", models.GenreStrategy, 2016, "PC, PS4, Xbox One", "2K", "Firaxis Games", "Lead the resistance against an alien occupation.", "/images/games/xcom2.jpg"},
	{"Microsoft Flight Simulator", models.GenreSimulator, 2020, "PC, Xbox Series X", "Xbox Game Studios", "Asobo Studio", "Fly anywhere on a photorealistic planet.", "/images/games/msfs.jpg"},
	{"A Plague Tale: Innocence", models.GenreAdventure, 2019, "PC, PS4, Xbox One", "Focus Entertainment", "Asobo Studio", "Two siblings flee the Inquisition through plague-ridden France.", "/images/games/plaguetale.jpg"},
	{"Pac-Man Championship Edition 2", models.GenreArcade, 2016, "PC, PS4, Xbox One", "Bandai Namco", "Bandai Namco", "A modern take on the maze chase classic.", "/images/games/pacman-ce2.jpg"},
	{"Elden Ring", models.GenreRPG, 2022, "PC, PS5, Xbox Series X", "Bandai Namco", "FromSoftware", "An action RPG set in the Lands Between.", "/images/games/eldenring.jpg"},
	{"Dark Souls III", models.GenreRPG, 2016, "PC, PS4, Xbox One", "Bandai Namco", "FromSoftware", "The fire fades in the kingdom of Lothric.", "/images/games/ds3.jpg"},
	{"Tetris Effect", models.GenreOther, 2018, "PC, PS4, Quest", "Enhance", "Monstars", "Tetris set to light and sound.", "/images/games/tetris-effect.jpg"},
}

// Seed inserts reference publishers, developers and a sample catalog.
// It is idempotent: rows are matched by name.
func Seed(gdb *gorm.DB) (int, error) {
	created := 0
	err := gdb.Transaction(func(tx *gorm.DB) error {
		for _, g := range seedGames {
			publisher := models.Publisher{Name: g.Publisher}
			if err := tx.Where(models.Publisher{Name: g.Publisher}).FirstOrCreate(&publisher).Error; err != nil {
				return fmt.Errorf("publisher %s: %w", g.Publisher, err)
			}
			developer := models.Developer{Name: g.Developer}
			if err := tx.Where(models.Developer{Name: g.Developer}).FirstOrCreate(&developer).Error; err != nil {
				return fmt.Errorf("developer %s: %w", g.Developer, err)
			}

			var count int64
			if err := tx.Model(&models.Game{}).Where("name = ?", g.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			game := models.Game{
				Name:        g.Name,
				Type:        g.Type,
				Year:        g.Year,
				Platforms:   g.Platforms,
				PublisherID: &publisher.ID,
				DeveloperID: &developer.ID,
				Description: g.Description,
				ImageURL:    g.ImageURL,
			}
			if err := tx.Create(&game).Error; err != nil {
				return fmt.Errorf("game %s: %w", g.Name, err)
			}
			created++
		}
		return nil
	})
	return created, err
}
