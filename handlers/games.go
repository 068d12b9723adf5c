package handlers

import (
	"net/http"

	"gamecatalog/models"
	"gamecatalog/service"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	games service.GameService
}

func NewGameHandler(games service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

// GetGames - GET /games
func (h *GameHandler) GetGames(c *gin.Context) {
	var q models.GameListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.games.ListGames(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetGame - GET /games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	game, err := h.games.GetGame(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}
