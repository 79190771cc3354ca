package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an application error onto an HTTP status.
// Internal details are logged, never returned to the client.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, messageOf(err, "not found"))
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, messageOf(err, "invalid request"))
	default:
		observability.LoggerFromContext(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg(fallback)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func messageOf(err error, def string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return def
}
