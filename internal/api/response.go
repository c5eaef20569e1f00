package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bloghub/internal/auth"
	"bloghub/internal/db"
)

// ErrorsMessagesResponse is the field-scoped error body for 400 responses.
// Validation failures are the only category that names the offending field.
type ErrorsMessagesResponse struct {
	ErrorsMessages []auth.FieldError `json:"errorsMessages"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeFieldErrors(w http.ResponseWriter, fieldErrors []auth.FieldError) {
	writeJSON(w, http.StatusBadRequest, ErrorsMessagesResponse{ErrorsMessages: fieldErrors})
}

func badRequest(w http.ResponseWriter, message, field string) {
	writeFieldErrors(w, []auth.FieldError{{Message: message, Field: field}})
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
}

func forbidden(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, map[string]string{"message": message})
}

func notFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": message})
}

func tooManyRequests(w http.ResponseWriter) {
	writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "Too many requests"})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "An internal error occurred"})
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError translates orchestrator failures into the HTTP contract:
// field errors become 400, uniform auth failures 401, missing resources 404.
func writeServiceError(w http.ResponseWriter, err error) {
	var badReq *auth.BadRequestError
	switch {
	case errors.As(err, &badReq):
		writeFieldErrors(w, badReq.Errors)
	case errors.Is(err, auth.ErrUnauthenticated):
		unauthorized(w)
	case errors.Is(err, db.ErrNotFound):
		notFound(w, "Not found")
	default:
		slog.Error("unexpected service error", "error", err)
		internalError(w)
	}
}
