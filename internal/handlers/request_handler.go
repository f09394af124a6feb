package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
)

type RequestHandler struct {
	RequestService *services.RequestService
}

// ListRequests is the open-requests board with district filter. With
// no pagination parameters the full board is returned as a flat list;
// page or page_size switches to the paginated envelope.
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.RequestFilter{
		District: q.Get("district"),
	}

	if q.Get("page") == "" && q.Get("page_size") == "" {
		requests, err := h.RequestService.ListAllRequests(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
		return
	}

	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	page, err := h.RequestService.ListRequests(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *RequestHandler) GetRequestByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	req, err := h.RequestService.GetRequestByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		models.Request
		ContactValue string `json:"contact_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req := payload.Request
	req.ContactValue = payload.ContactValue

	created, err := h.RequestService.CreateRequest(r.Context(), callerID(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *RequestHandler) CloseRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	if err := h.RequestService.CloseRequest(r.Context(), id, callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RequestHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.RequestService.GetRequestsByAuthorID(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// GetRequestContact returns the contact only to the author or an
// offerer; everyone else gets 403.
func (h *RequestHandler) GetRequestContact(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	contact, err := h.RequestService.GetRequestContact(r.Context(), id, callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if contact == nil {
		http.Error(w, "Contact is available after you offer to help", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *RequestHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	offer, err := h.RequestService.CreateOffer(r.Context(), id, callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (h *RequestHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	offers, err := h.RequestService.GetOffers(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

func (h *RequestHandler) GetMyOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.RequestService.GetOffersByHelperID(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}
