// Package respond writes JSON bodies and maps domain errors to HTTP status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrBadRequest marks malformed input that never reached the domain.
var ErrBadRequest = errors.New("bad request")

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes err with the status its kind maps to. Unexpected errors are
// logged and reported without detail.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, kind := Classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		message = http.StatusText(status)
	}
	JSON(w, status, errorBody{Error: errorDetail{Message: message, Type: kind}})
}

// Classify maps an error to an HTTP status and a short machine-readable kind.
// The kind doubles as the code of live-connection error events.
func Classify(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrInvalidParticipant):
		return http.StatusBadRequest, "invalid_participant"
	case errors.Is(err, apperrors.ErrEmptyMessage),
		errors.Is(err, apperrors.ErrMessageTooLong),
		errors.Is(err, apperrors.ErrInvalidVerb),
		errors.Is(err, ErrBadRequest),
		errors.As(err, &verrs):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, apperrors.ErrPersistenceFailure):
		return http.StatusServiceUnavailable, "persistence_failure"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
