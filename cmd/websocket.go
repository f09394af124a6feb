package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
)

const (
	wsReadLimit     = 4096
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 5 * time.Second
)

// wsInbound is what a connected client sends to post a message.
type wsInbound struct {
	ChatID  int    `json:"chat_id"`
	Content string `json:"content"`
}

// wsOutbound wraps frames pushed to clients.
type wsOutbound struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
	UserID  int             `json:"user_id,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ChatHub keeps one live connection per user. Messages posted over the
// socket are persisted first; delivery to an offline peer degrades to
// an FCM push.
type ChatHub struct {
	upgrader websocket.Upgrader

	chatService  *services.ChatService
	notification *services.NotificationService

	mu    sync.RWMutex
	conns map[int]*websocket.Conn
	wmu   map[int]*sync.Mutex
}

func NewChatHub(chatService *services.ChatService, notification *services.NotificationService) *ChatHub {
	return &ChatHub{
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		chatService:  chatService,
		notification: notification,
		conns:        make(map[int]*websocket.Conn),
		wmu:          make(map[int]*sync.Mutex),
	}
}

// ServeWS upgrades an authenticated request. The JWT middleware has
// already put user_id into the context.
func (h *ChatHub) ServeWS(app *application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value("user_id").(int)
		if userID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			app.errorLog.Printf("ws upgrade failed: %v", err)
			return
		}

		h.mu.Lock()
		if old, ok := h.conns[userID]; ok {
			_ = old.Close()
		}
		h.conns[userID] = conn
		if _, ok := h.wmu[userID]; !ok {
			h.wmu[userID] = &sync.Mutex{}
		}
		h.mu.Unlock()

		app.infoLog.Printf("ws: user %d connected", userID)
		h.writeFrame(userID, wsOutbound{Type: "hello", UserID: userID})

		go h.readLoop(app, userID, conn)
	}
}

func (h *ChatHub) readLoop(app *application, userID int, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		h.mu.Lock()
		if h.conns[userID] == conn {
			delete(h.conns, userID)
			delete(h.wmu, userID)
		}
		h.mu.Unlock()
		app.infoLog.Printf("ws: user %d disconnected", userID)
	}()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))

		if mt == websocket.TextMessage {
			trimmed := strings.TrimSpace(string(raw))
			if strings.EqualFold(trimmed, "ping") {
				_ = conn.WriteMessage(websocket.TextMessage, []byte("pong"))
				continue
			}
		}

		var inbound wsInbound
		if err := json.Unmarshal(raw, &inbound); err != nil {
			h.writeFrame(userID, wsOutbound{Type: "error", Error: "invalid payload"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		msg, recipientID, err := h.chatService.SendMessage(ctx, inbound.ChatID, userID, inbound.Content)
		cancel()
		if err != nil {
			h.writeFrame(userID, wsOutbound{Type: "error", Error: err.Error()})
			continue
		}

		// Echo to the sender so all clients converge on stored state.
		h.writeFrame(userID, wsOutbound{Type: "message", Message: &msg})

		if h.Deliver(recipientID, msg) {
			continue
		}
		if h.notification != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = h.notification.Push(ctx, recipientID, "Новое сообщение", msg.Content, map[string]string{
				"type":    "chat_message",
				"chat_id": strconv.Itoa(msg.ChatID),
			})
			cancel()
		}
	}
}

// Deliver writes the message to the user's live connection. Returns
// false when the user is offline.
func (h *ChatHub) Deliver(userID int, msg models.Message) bool {
	h.mu.RLock()
	_, online := h.conns[userID]
	h.mu.RUnlock()
	if !online {
		return false
	}
	h.writeFrame(userID, wsOutbound{Type: "message", Message: &msg})
	return true
}

func (h *ChatHub) writeFrame(userID int, frame wsOutbound) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.RLock()
	conn := h.conns[userID]
	mu := h.wmu[userID]
	h.mu.RUnlock()
	if conn == nil || mu == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	_ = conn.WriteMessage(websocket.TextMessage, data)
}
