package handlers

import (
	"encoding/json"
	"net/http"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
)

// Deliverer hands a persisted message to the recipient's live
// websocket connection. Returns false when the user is offline.
type Deliverer interface {
	Deliver(userID int, msg models.Message) bool
}

type ChatHandler struct {
	ChatService  *services.ChatService
	Notification services.Notifier
	Hub          Deliverer
}

// StartChat opens (or returns) the caller's chat on a task.
func (h *ChatHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID int `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID <= 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.StartChat(r.Context(), req.TaskID, callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.ChatService.GetChats(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	chat, messages, err := h.ChatService.GetChat(r.Context(), id, callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chat":     chat,
		"messages": messages,
	})
}

// SendMessage is the REST fallback for clients without a live
// websocket. The recipient still gets the message over their socket
// when they are online; only offline peers get a push.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, recipientID, err := h.ChatService.SendMessage(r.Context(), id, callerID(r), req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	delivered := false
	if h.Hub != nil {
		delivered = h.Hub.Deliver(recipientID, msg)
	}
	if !delivered && h.Notification != nil {
		_ = h.Notification.Push(r.Context(), recipientID, "Новое сообщение", msg.Content, map[string]string{
			"type":    "chat_message",
			"chat_id": getParam(r, "id"),
		})
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.MarkRead(r.Context(), id, callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	count, err := h.ChatService.CountUnread(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), id, callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
