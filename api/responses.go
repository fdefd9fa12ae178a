package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"teto/application"
	"teto/domain/entities"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error    string `json:"error"`
	Balance  *int64 `json:"balance,omitempty"`
	Required *int64 `json:"required,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, entities.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrGuildNotFound),
		errors.Is(err, entities.ErrRelationshipNotFound),
		errors.Is(err, entities.ErrChannelNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidPayload),
		errors.Is(err, entities.ErrInvalidAmount),
		errors.Is(err, entities.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrFeedCooldown),
		errors.Is(err, entities.ErrUniqueViolation),
		errors.Is(err, application.ErrResetInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithDomainError writes the mapped status; internal errors are logged and hidden
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":   r.URL.Path,
			"method": r.Method,
			"error":  err,
		}).Error("Request failed")
		writeError(w, status, "internal server error")
		return
	}

	body := ErrorResponse{Error: err.Error()}

	var insufficient *entities.InsufficientCreditsError
	if errors.As(err, &insufficient) {
		body.Error = entities.ErrInsufficientCredits.Error()
		body.Balance = &insufficient.Balance
		body.Required = &insufficient.Required
	}

	var invalid *entities.InvalidPayloadError
	if errors.As(err, &invalid) {
		body.Error = invalid.Reason
	}

	writeJSON(w, status, body)
}
