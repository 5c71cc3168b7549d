package handler

import (
	"net/http"

	"github.com/mcoot/killergame/internal/api/middleware"
	"github.com/mcoot/killergame/internal/api/response"
	"github.com/mcoot/killergame/internal/services/game"
)

// GameHandler handles game transition endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Kill handles POST /api/v1/kill
func (h *GameHandler) Kill(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	result, err := h.gameController.Kill(r.Context(), session.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.KillResponseFromModel(result))
}

// Killed handles POST /api/v1/killed
func (h *GameHandler) Killed(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	if err := h.gameController.ReportKilled(r.Context(), session.Nickname); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatusResponse{Status: "dead"})
}

// GiveUp handles POST /api/v1/giveup
func (h *GameHandler) GiveUp(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	if err := h.gameController.GiveUp(r.Context(), session.Nickname); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatusResponse{Status: "gaveup"})
}
