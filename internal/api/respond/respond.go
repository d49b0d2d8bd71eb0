// Package respond centralises JSON response writing and the mapping from
// domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ptlog/ptlog/internal/model"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	}
	WriteJSON(w, statusCode, response)
}

// WriteDomainError maps typed domain errors onto HTTP statuses. Unclassified
// errors become 500 without leaking internals.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, err.Error())
	case model.IsNotFoundError(err):
		WriteError(w, http.StatusNotFound, err.Error())
	case model.IsConflictError(err):
		WriteError(w, http.StatusConflict, err.Error())
	case model.IsInsufficientTokens(err):
		WriteError(w, http.StatusPaymentRequired, err.Error())
	case model.IsInvalidStateTransition(err):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		if ee, ok := model.AsEnhancementError(err); ok {
			switch ee.Kind {
			case model.MissingCredential:
				WriteError(w, http.StatusServiceUnavailable, ee.Error())
			default:
				WriteError(w, http.StatusBadGateway, ee.Error())
			}
			return
		}
		log.Error().Err(err).Msg("Unhandled error in HTTP handler")
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error response
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
