package handlers

import (
	"encoding/json"
	"net/http"

	"vyruchaiBack/internal/services"
)

type PushTokenHandler struct {
	Notification *services.NotificationService
}

func (h *PushTokenHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Notification.RegisterToken(r.Context(), callerID(r), req.Token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *PushTokenHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := h.Notification.UnregisterToken(r.Context(), callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
