package services

import (
	"context"
	"strings"

	"vyruchaiBack/internal/models"
)

// First message of every chat, sent on behalf of the executor.
const chatGreeting = "Здравствуйте! Готов выполнить Ваше поручение."

const messageMaxLen = 2000

type ChatStore interface {
	GetOrCreateChat(ctx context.Context, taskID, customerID, executorID int) (int, bool, error)
	GetChatByID(ctx context.Context, id int) (models.Chat, error)
	GetChatsByUserID(ctx context.Context, userID int) ([]models.Chat, error)
	DeleteChat(ctx context.Context, id int) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	GetMessagesByChatID(ctx context.Context, chatID int) ([]models.Message, error)
	MarkRead(ctx context.Context, chatID, readerID int) error
	CountUnread(ctx context.Context, userID int) (int, error)
}

type ChatTaskStore interface {
	GetTaskByID(ctx context.Context, id int) (models.Task, error)
}

type ChatService struct {
	ChatRepo    ChatStore
	MessageRepo MessageStore
	TaskRepo    ChatTaskStore
}

// StartChat opens (or returns) the chat between the caller and the
// task owner. A freshly created chat is seeded with the canned
// greeting from the executor, so the owner always sees an opener.
func (s *ChatService) StartChat(ctx context.Context, taskID, callerID int) (models.Chat, error) {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.Chat{}, err
	}
	if task.UserID == callerID {
		return models.Chat{}, models.ErrCannotRespondOwnTask
	}

	chatID, created, err := s.ChatRepo.GetOrCreateChat(ctx, taskID, task.UserID, callerID)
	if err != nil {
		return models.Chat{}, err
	}
	if created {
		if _, err := s.MessageRepo.CreateMessage(ctx, models.Message{
			ChatID:   chatID,
			SenderID: callerID,
			Content:  chatGreeting,
		}); err != nil {
			return models.Chat{}, err
		}
	}

	return s.ChatRepo.GetChatByID(ctx, chatID)
}

// GetChat returns the chat with its full ordered history. The other
// side's unread messages are marked read as a side effect.
func (s *ChatService) GetChat(ctx context.Context, chatID, callerID int) (models.Chat, []models.Message, error) {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return models.Chat{}, nil, err
	}
	if chat.CustomerID != callerID && chat.ExecutorID != callerID {
		return models.Chat{}, nil, models.ErrChatNotFound
	}

	messages, err := s.MessageRepo.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		return models.Chat{}, nil, err
	}
	if err := s.MessageRepo.MarkRead(ctx, chatID, callerID); err != nil {
		return models.Chat{}, nil, err
	}
	return chat, messages, nil
}

func (s *ChatService) GetChats(ctx context.Context, userID int) ([]models.Chat, error) {
	return s.ChatRepo.GetChatsByUserID(ctx, userID)
}

// SendMessage persists one message and reports the recipient, so the
// caller can pick realtime delivery or a push.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID int, content string) (models.Message, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, 0, models.NewValidationError("content", "Сообщение не может быть пустым")
	}
	if len([]rune(content)) > messageMaxLen {
		return models.Message{}, 0, models.NewValidationError("content", "Сообщение не должно превышать 2000 символов")
	}

	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return models.Message{}, 0, err
	}
	if chat.CustomerID != senderID && chat.ExecutorID != senderID {
		return models.Message{}, 0, models.ErrChatNotFound
	}

	msg, err := s.MessageRepo.CreateMessage(ctx, models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	})
	if err != nil {
		return models.Message{}, 0, err
	}

	recipientID := chat.CustomerID
	if senderID == chat.CustomerID {
		recipientID = chat.ExecutorID
	}
	return msg, recipientID, nil
}

func (s *ChatService) MarkRead(ctx context.Context, chatID, readerID int) error {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.CustomerID != readerID && chat.ExecutorID != readerID {
		return models.ErrChatNotFound
	}
	return s.MessageRepo.MarkRead(ctx, chatID, readerID)
}

func (s *ChatService) CountUnread(ctx context.Context, userID int) (int, error) {
	return s.MessageRepo.CountUnread(ctx, userID)
}

func (s *ChatService) DeleteChat(ctx context.Context, chatID, callerID int) error {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.CustomerID != callerID && chat.ExecutorID != callerID {
		return models.ErrChatNotFound
	}
	return s.ChatRepo.DeleteChat(ctx, chatID)
}
