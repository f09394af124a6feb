package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
)

type chatStoreStub struct {
	chat models.Chat
}

func (s *chatStoreStub) GetOrCreateChat(ctx context.Context, taskID, customerID, executorID int) (int, bool, error) {
	return s.chat.ID, false, nil
}

func (s *chatStoreStub) GetChatByID(ctx context.Context, id int) (models.Chat, error) {
	if id != s.chat.ID {
		return models.Chat{}, models.ErrChatNotFound
	}
	return s.chat, nil
}

func (s *chatStoreStub) GetChatsByUserID(ctx context.Context, userID int) ([]models.Chat, error) {
	return nil, nil
}

func (s *chatStoreStub) DeleteChat(ctx context.Context, id int) error {
	return nil
}

type messageStoreStub struct {
	nextID int
}

func (s *messageStoreStub) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	s.nextID++
	msg.ID = s.nextID
	return msg, nil
}

func (s *messageStoreStub) GetMessagesByChatID(ctx context.Context, chatID int) ([]models.Message, error) {
	return nil, nil
}

func (s *messageStoreStub) MarkRead(ctx context.Context, chatID, readerID int) error {
	return nil
}

func (s *messageStoreStub) CountUnread(ctx context.Context, userID int) (int, error) {
	return 0, nil
}

type chatTaskStoreStub struct{}

func (s *chatTaskStoreStub) GetTaskByID(ctx context.Context, id int) (models.Task, error) {
	return models.Task{}, models.ErrTaskNotFound
}

type hubStub struct {
	online    bool
	delivered []int
}

func (h *hubStub) Deliver(userID int, msg models.Message) bool {
	if !h.online {
		return false
	}
	h.delivered = append(h.delivered, userID)
	return true
}

type pushStub struct {
	pushed []int
}

func (p *pushStub) Push(ctx context.Context, userID int, title, body string, data map[string]string) error {
	p.pushed = append(p.pushed, userID)
	return nil
}

func newTestChatHandler(peerOnline bool) (*ChatHandler, *hubStub, *pushStub) {
	svc := &services.ChatService{
		ChatRepo:    &chatStoreStub{chat: models.Chat{ID: 5, TaskID: 7, CustomerID: 1, ExecutorID: 2}},
		MessageRepo: &messageStoreStub{},
		TaskRepo:    &chatTaskStoreStub{},
	}
	hub := &hubStub{online: peerOnline}
	push := &pushStub{}
	return &ChatHandler{ChatService: svc, Notification: push, Hub: hub}, hub, push
}

func sendMessageRequest(senderID int) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/chats/5/messages?:id=5", strings.NewReader(`{"content":"Привет"}`))
	return r.WithContext(context.WithValue(r.Context(), "user_id", senderID))
}

func TestSendMessageDeliversToOnlinePeerWithoutPush(t *testing.T) {
	h, hub, push := newTestChatHandler(true)

	w := httptest.NewRecorder()
	h.SendMessage(w, sendMessageRequest(1))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(hub.delivered) != 1 || hub.delivered[0] != 2 {
		t.Fatalf("expected delivery to user 2, got %v", hub.delivered)
	}
	if len(push.pushed) != 0 {
		t.Fatalf("online peer must not be pushed, got %v", push.pushed)
	}
}

func TestSendMessagePushesOfflinePeer(t *testing.T) {
	h, hub, push := newTestChatHandler(false)

	w := httptest.NewRecorder()
	h.SendMessage(w, sendMessageRequest(2))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(hub.delivered) != 0 {
		t.Fatalf("offline peer must not receive a socket frame, got %v", hub.delivered)
	}
	if len(push.pushed) != 1 || push.pushed[0] != 1 {
		t.Fatalf("expected push to user 1, got %v", push.pushed)
	}
}
