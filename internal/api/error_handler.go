package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrLobbyNotFound):
		return http.StatusNotFound, "lobby not found"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return http.StatusNotFound, "identity not found"
	case errors.Is(err, domain.ErrLobbyInProgress):
		return http.StatusConflict, "lobby already in progress"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "concurrent modification, retry"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNotHost),
		errors.Is(err, domain.ErrNotChooser),
		errors.Is(err, domain.ErrNotMember):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidWord),
		errors.Is(err, domain.ErrInvalidVote):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrCodeSpaceExhausted):
		return http.StatusServiceUnavailable, "no lobby codes available, try again"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
