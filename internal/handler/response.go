package handler

// RESPONSE HELPERS:
// Every JSON response goes through writeJSON, every failure through
// writeError, so all endpoints share one error shape:
//
//	{"error": "not_found", "message": "project not found with id abc123"}
//
// Domain errors from the service layer are mapped to status codes here and
// nowhere else. Anything that is not an *apperror.AppError is a storage
// failure: it becomes a generic 500 and its text never reaches the client
// (it may contain SQL or filesystem paths). The service layer has already
// logged it.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ide-server/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends data as JSON with the given status code.
// Headers must be set before WriteHeader; anything set afterwards is dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrTooLarge):
			status = http.StatusRequestEntityTooLarge
			errorType = "too_large"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON decodes the request body into v. A malformed body is a
// validation error, reported before any side effect takes place.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body: "+err.Error())
	}
	return nil
}

// pathID returns the {id} URL segment, or a validation error if it is blank.
func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", apperror.ValidationFailed("id", "resource ID is required")
	}
	return id, nil
}
