package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/mcoot/killergame/internal/api/response"
	"github.com/mcoot/killergame/internal/services/directory"
)

const (
	qrSize       = 320
	inviteMaxAge = time.Hour
)

// SystemHandler handles health and invite endpoints
type SystemHandler struct {
	directory *directory.Service
	publicURL string
	logger    *slog.Logger
}

// NewSystemHandler creates a new system handler. An empty publicURL makes the
// invite code point at the host the request came in on.
func NewSystemHandler(directory *directory.Service, publicURL string, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		directory: directory,
		publicURL: publicURL,
		logger:    logger,
	}
}

// Health handles GET /api/v1/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	players, err := h.directory.ListAllPlayers(r.Context())
	if err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{
			Status:  "degraded",
			Backend: "unavailable",
		})
		return
	}
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:  "ok",
		Players: len(players),
		Backend: "ok",
	})
}

// Invite handles GET /api/v1/invite.png
func (h *SystemHandler) Invite(w http.ResponseWriter, r *http.Request) {
	url := h.publicURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		url = scheme + "://" + r.Host + "/"
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr generation failed", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	response.PNG(w, png, inviteMaxAge)
}
