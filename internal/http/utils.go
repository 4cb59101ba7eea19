package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/Notifuse/emailbuilder/pkg/export"
	"github.com/Notifuse/emailbuilder/pkg/logger"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps service errors to HTTP status codes. Unknown errors are
// internal failures.
func statusForError(err error) int {
	var notFound *domain.ErrDocumentNotFound
	var exists *domain.ErrDocumentExists
	var validationErr domain.ValidationError
	var compileErr *export.CompileError

	switch {
	case errors.As(err, &notFound), errors.Is(err, blocks.ErrTargetNotFound):
		return http.StatusNotFound
	case errors.As(err, &exists):
		return http.StatusConflict
	case errors.As(err, &validationErr),
		errors.Is(err, blocks.ErrMoveIntoSelf),
		errors.Is(err, blocks.ErrUnknownBlockType),
		errors.Is(err, blocks.ErrInvalidHierarchy):
		return http.StatusBadRequest
	case errors.As(err, &compileErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the status of err. Internal failures are
// logged and reported with the generic message.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error, message string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.WithField("error", err.Error()).Error(message)
		WriteJSONError(w, message, status)
		return
	}
	WriteJSONError(w, err.Error(), status)
}

// decodeJSON reads a request body into v and reports a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, log logger.Logger, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.WithField("error", err.Error()).Error("Failed to decode request body")
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
