package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/killergame/internal/api/middleware"
	"github.com/mcoot/killergame/internal/api/request"
	"github.com/mcoot/killergame/internal/api/response"
	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/auth"
	"github.com/mcoot/killergame/internal/services/game"
)

// PlayerHandler handles session and self-service endpoints
type PlayerHandler struct {
	authService    *auth.Service
	gameController *game.Controller
	secureCookies  bool
	logger         *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, gameController *game.Controller, secureCookies bool, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		authService:    authService,
		gameController: gameController,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

// Login handles POST /api/v1/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Nickname) == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Nickname, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	var profile *model.Profile
	if !session.Maintenance {
		profile, err = h.gameController.Me(r.Context(), session.Nickname)
		if err != nil {
			// The session is valid, the client can fetch /me later
			h.logger.Warn("failed to load profile after login",
				slog.String("nickname", session.Nickname),
				slog.String("error", err.Error()))
			profile = nil
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session, profile))
}

// Logout handles POST /api/v1/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Revoke(middleware.MustGetSession(r.Context()))

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	response.NoContent(w)
}

// GetMe handles GET /api/v1/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	if session.Maintenance {
		response.JSON(w, http.StatusOK, response.Profile{
			Player: response.Player{Nickname: session.Nickname, IsAdmin: true},
		})
		return
	}

	profile, err := h.gameController.Me(r.Context(), session.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}
