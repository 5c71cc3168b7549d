package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/killergame/internal/api/middleware"
	"github.com/mcoot/killergame/internal/api/response"
	"github.com/mcoot/killergame/internal/services/standings"
)

// StandingsHandler handles leaderboard, podium and roster endpoints
type StandingsHandler struct {
	standings *standings.Service
}

// NewStandingsHandler creates a new standings handler
func NewStandingsHandler(standings *standings.Service) *StandingsHandler {
	return &StandingsHandler{
		standings: standings,
	}
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *StandingsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.standings.Leaderboard(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}

// Podium handles GET /api/v1/podium
func (h *StandingsHandler) Podium(w http.ResponseWriter, r *http.Request) {
	podium, err := h.standings.Podium(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PodiumFromModel(podium))
}

// KillsPodium handles GET /api/v1/podium/kills
func (h *StandingsHandler) KillsPodium(w http.ResponseWriter, r *http.Request) {
	groups, err := h.standings.KillsPodium(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.KillsPodiumFromModel(groups))
}

// Roster handles GET /api/v1/roster
func (h *StandingsHandler) Roster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.standings.Roster(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RosterFromModel(roster))
}
