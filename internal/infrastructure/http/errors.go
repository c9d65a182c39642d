package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the standardized error envelope: a human-readable
// message plus the individual error details.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteError writes a standardized JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string, errs []string, log *slog.Logger) {
	response := ErrorResponse{
		Message: message,
		Errors:  errs,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		// The status code is already written; only log.
		if log != nil {
			log.Error("failed to encode error response", "error", err)
		}
	}
}

// WriteJSON writes a JSON success response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		if log != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}
