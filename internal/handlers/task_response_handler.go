package handlers

import (
	"encoding/json"
	"net/http"

	"vyruchaiBack/internal/services"
)

type TaskResponseHandler struct {
	TaskService *services.TaskService
}

func (h *TaskResponseHandler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	taskID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Message *string `json:"message"`
	}
	if r.Body != nil {
		// An empty body is a bid without a message.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	resp, err := h.TaskService.CreateResponse(r.Context(), taskID, callerID(r), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TaskResponseHandler) GetResponses(w http.ResponseWriter, r *http.Request) {
	taskID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	responses, err := h.TaskService.GetResponses(r.Context(), taskID, callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}

func (h *TaskResponseHandler) AcceptResponse(w http.ResponseWriter, r *http.Request) {
	taskID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	executorID, ok := intParam(r, "user_id")
	if !ok {
		http.Error(w, "Invalid executor ID", http.StatusBadRequest)
		return
	}

	if err := h.TaskService.AcceptResponse(r.Context(), taskID, callerID(r), executorID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskResponseHandler) RejectResponse(w http.ResponseWriter, r *http.Request) {
	taskID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	executorID, ok := intParam(r, "user_id")
	if !ok {
		http.Error(w, "Invalid executor ID", http.StatusBadRequest)
		return
	}

	if err := h.TaskService.RejectResponse(r.Context(), taskID, callerID(r), executorID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
