package handlers

import (
	"encoding/json"
	"net/http"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
)

type ReviewHandler struct {
	ReviewService *services.ReviewService
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ReviewService.CreateReview(r.Context(), callerID(r), review)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReviewHandler) GetReviewsByUserID(w http.ResponseWriter, r *http.Request) {
	userID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	reviews, err := h.ReviewService.GetReviewsByUserID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}
