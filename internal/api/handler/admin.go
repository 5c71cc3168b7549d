package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/killergame/internal/api/middleware"
	"github.com/mcoot/killergame/internal/api/response"
	"github.com/mcoot/killergame/internal/services/game"
)

// AdminHandler handles admin-only maintenance endpoints
type AdminHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(gameController *game.Controller, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		gameController: gameController,
		logger:         logger,
	}
}

// Players handles GET /api/v1/admin/players
func (h *AdminHandler) Players(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	players, err := h.gameController.Players(r.Context(), actor)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AdminPlayersFromModel(players))
}

// Chain handles GET /api/v1/admin/chain
func (h *AdminHandler) Chain(w http.ResponseWriter, r *http.Request) {
	report, err := h.gameController.ChainReport(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ChainReportFromModel(report))
}

// SeedChain handles POST /api/v1/admin/chain/seed
func (h *AdminHandler) SeedChain(w http.ResponseWriter, r *http.Request) {
	plan, err := h.gameController.SeedChain(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SeedFromModel(plan))
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if err := h.gameController.InvalidateCache(actor); err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Info("snapshot cache invalidated", slog.String("by", actor.Nickname))
	response.NoContent(w)
}
