package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vyruchaiBack/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// callerID reads the authenticated user's ID set by the JWT middleware.
func callerID(r *http.Request) int {
	id, _ := r.Context().Value("user_id").(int)
	return id
}

func intParam(r *http.Request, name string) (int, bool) {
	val, err := strconv.Atoi(getParam(r, name))
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}

// writeServiceError maps the services' named outcomes onto HTTP
// statuses. Unknown errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"field":   vErr.Field,
			"message": vErr.Message,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrTaskNotFound),
		errors.Is(err, models.ErrChatNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrResponseNotFound),
		errors.Is(err, models.ErrOfferNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrAlreadyOffered),
		errors.Is(err, models.ErrAlreadyResponded),
		errors.Is(err, models.ErrDuplicateReview),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrDuplicatePhone),
		errors.Is(err, models.ErrRequestClosed),
		errors.Is(err, models.ErrTaskNotOpen),
		errors.Is(err, models.ErrTaskNotCompleted),
		errors.Is(err, models.ErrInvalidStatusChange):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrCannotOfferOwnRequest),
		errors.Is(err, models.ErrCannotRespondOwnTask),
		errors.Is(err, models.ErrNotRequestAuthor),
		errors.Is(err, models.ErrNotTaskOwner),
		errors.Is(err, models.ErrNotTaskParticipant):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidPassword),
		errors.Is(err, models.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
