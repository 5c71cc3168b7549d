package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeTargetNotFound     = "TARGET_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyDead        = "ALREADY_DEAD"
	CodeNoActiveTarget     = "NO_ACTIVE_TARGET"
	CodeTargetAlreadyDead  = "TARGET_ALREADY_DEAD"
	CodeNotEnoughPlayers   = "NOT_ENOUGH_PLAYERS"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeConflict           = "CONFLICT"
	CodeUnavailable        = "BACKEND_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	if he.apiError.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Conflicts wrap the
// precondition that failed under the lock, so they are matched first.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "The game changed while processing the request, try again", true}}
	case errors.Is(err, model.ErrBackendUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "The player records are unavailable, try again shortly", true}}

	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found", false}}
	case errors.Is(err, model.ErrTargetNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTargetNotFound, "Target not found", false}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found", false}}

	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session", false}}
	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid nickname or password", false}}

	case errors.Is(err, model.ErrAlreadyDead):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeAlreadyDead, "You are already out of the game", false}}
	case errors.Is(err, model.ErrNoActiveTarget):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeNoActiveTarget, "You have no active target", false}}
	case errors.Is(err, model.ErrTargetAlreadyDead):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeTargetAlreadyDead, "Your target is already dead", false}}
	case errors.Is(err, model.ErrNotEnoughPlayers):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeNotEnoughPlayers, "At least two alive players are needed", false}}
	case errors.Is(err, model.ErrPreconditionFailed):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodePreconditionFailed, "Action not allowed in the current game state", false}}

	case errors.Is(err, model.ErrAccessDenied):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Admin only", false}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error", false}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message, false}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required", false}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error", false}}
}
