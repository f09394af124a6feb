package services

import (
	"context"
	"errors"
	"testing"

	"vyruchaiBack/internal/models"
)

func newTestChatService() (*ChatService, *stubTaskStore, *stubChatStore, *stubMessageStore) {
	tasks := newStubTaskStore()
	chats := newStubChatStore()
	messages := &stubMessageStore{}
	svc := &ChatService{
		ChatRepo:    chats,
		MessageRepo: messages,
		TaskRepo:    tasks,
	}
	return svc, tasks, chats, messages
}

func TestStartChatSeedsGreetingOnce(t *testing.T) {
	svc, tasks, _, messages := newTestChatService()
	ctx := context.Background()

	task, err := tasks.CreateTask(ctx, taskOwnedBy(1))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	owner := task.UserID

	if _, err := svc.StartChat(ctx, task.ID, owner); !errors.Is(err, models.ErrCannotRespondOwnTask) {
		t.Fatalf("expected ErrCannotRespondOwnTask, got %v", err)
	}

	chat, err := svc.StartChat(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("StartChat: %v", err)
	}
	if len(messages.messages) != 1 {
		t.Fatalf("expected 1 greeting message, got %d", len(messages.messages))
	}
	greeting := messages.messages[0]
	if greeting.Content != chatGreeting || greeting.SenderID != 2 || greeting.ChatID != chat.ID {
		t.Fatalf("unexpected greeting: %#v", greeting)
	}

	// Reopening the same chat must not add a second greeting.
	again, err := svc.StartChat(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("StartChat (existing): %v", err)
	}
	if again.ID != chat.ID {
		t.Fatalf("expected same chat, got %d and %d", chat.ID, again.ID)
	}
	if len(messages.messages) != 1 {
		t.Fatalf("greeting duplicated: %d messages", len(messages.messages))
	}
}

func TestSendMessageResolvesRecipient(t *testing.T) {
	svc, tasks, _, _ := newTestChatService()
	ctx := context.Background()

	task, err := tasks.CreateTask(ctx, taskOwnedBy(1))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	chat, err := svc.StartChat(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("StartChat: %v", err)
	}

	msg, recipient, err := svc.SendMessage(ctx, chat.ID, 1, "Когда сможете приступить?")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if recipient != 2 {
		t.Fatalf("expected recipient 2, got %d", recipient)
	}
	if msg.SenderID != 1 {
		t.Fatalf("expected sender 1, got %d", msg.SenderID)
	}

	_, recipient, err = svc.SendMessage(ctx, chat.ID, 2, "Завтра утром")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if recipient != 1 {
		t.Fatalf("expected recipient 1, got %d", recipient)
	}

	if _, _, err := svc.SendMessage(ctx, chat.ID, 1, "   "); err == nil {
		t.Fatal("expected validation error for blank message")
	}
	if _, _, err := svc.SendMessage(ctx, chat.ID, 9, "я посторонний"); !errors.Is(err, models.ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound for outsider, got %v", err)
	}
}

func TestGetChatMarksForeignMessagesRead(t *testing.T) {
	svc, tasks, _, messages := newTestChatService()
	ctx := context.Background()

	task, err := tasks.CreateTask(ctx, taskOwnedBy(1))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	chat, err := svc.StartChat(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("StartChat: %v", err)
	}

	if _, _, err := svc.GetChat(ctx, chat.ID, 9); !errors.Is(err, models.ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound for outsider, got %v", err)
	}

	_, history, err := svc.GetChat(ctx, chat.ID, 1)
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 message in history, got %d", len(history))
	}
	if !messages.messages[0].Read {
		t.Fatal("greeting not marked read after the owner opened the chat")
	}
}

func taskOwnedBy(userID int) models.Task {
	task := validTask()
	task.UserID = userID
	return task
}
