// Package respond writes the JSON envelopes every storefront handler returns.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront/internal/domain"
)

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	JSON(w, logger, status, map[string]string{"error": message})
}

// Message writes a {"message": ...} body, the shape used for acknowledgements.
func Message(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	JSON(w, logger, status, map[string]string{"message": message})
}

// FromError maps a domain error class to its status. Unclassified errors are
// storage failures: they are logged and returned as 500 with the cause attached.
func FromError(w http.ResponseWriter, logger *slog.Logger, err error, msg string, attrs ...any) {
	status := StatusOf(err)
	if status != http.StatusInternalServerError {
		Error(w, logger, status, err.Error())
		return
	}

	logger.Error(msg, append([]any{"error", err}, attrs...)...)
	JSON(w, logger, status, map[string]string{
		"error":  "internal server error",
		"detail": err.Error(),
	})
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON body into dst, reporting malformed input as a validation error.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("invalid request body")
	}
	return nil
}
