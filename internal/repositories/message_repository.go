package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	query := "INSERT INTO messages (chat_id, sender_id, content, `read`, created_at) VALUES (?, ?, ?, ?, ?)"
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	result, err := r.DB.ExecContext(ctx, query, msg.ChatID, msg.SenderID, msg.Content, msg.Read, msg.CreatedAt)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return models.Message{}, models.ErrChatNotFound
		}
		return models.Message{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	msg.ID = int(lastID)
	return msg, nil
}

// CreateMessages inserts a batch of system notices in one statement.
func (r *MessageRepository) CreateMessages(ctx context.Context, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	query := "INSERT INTO messages (chat_id, sender_id, content, `read`, created_at) VALUES "
	var params []interface{}
	now := time.Now()
	for i, msg := range msgs {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?, ?, ?)"
		params = append(params, msg.ChatID, msg.SenderID, msg.Content, msg.Read, now)
	}
	_, err := r.DB.ExecContext(ctx, query, params...)
	return err
}

func (r *MessageRepository) GetMessagesByChatID(ctx context.Context, chatID int) ([]models.Message, error) {
	query := "SELECT id, chat_id, sender_id, content, `read`, created_at FROM messages WHERE chat_id = ? ORDER BY created_at ASC"
	rows, err := r.DB.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead flags every foreign unread message of a chat as read.
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, readerID int) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET `read` = TRUE WHERE chat_id = ? AND sender_id <> ? AND `read` = FALSE",
		chatID, readerID,
	)
	return err
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	query := `
        SELECT COUNT(*)
        FROM messages m
        JOIN chats c ON m.chat_id = c.id
        WHERE (c.customer_id = ? OR c.executor_id = ?) AND m.sender_id <> ? AND m.` + "`read`" + ` = FALSE
    `
	var count int
	err := r.DB.QueryRowContext(ctx, query, userID, userID, userID).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return count, nil
}
