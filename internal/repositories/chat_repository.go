package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type ChatRepository struct {
	DB *sql.DB
}

// GetOrCreateChat finds the (task, executor) chat or inserts it. The
// unique key on (task_id, executor_id) decides concurrent creation
// races; the loser re-reads the winner's row.
func (r *ChatRepository) GetOrCreateChat(ctx context.Context, taskID, customerID, executorID int) (int, bool, error) {
	var chatID int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM chats WHERE task_id = ? AND executor_id = ?`,
		taskID, executorID,
	).Scan(&chatID)
	if err == nil {
		return chatID, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO chats (task_id, customer_id, executor_id, created_at) VALUES (?, ?, ?, ?)`,
		taskID, customerID, executorID, time.Now(),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			err = r.DB.QueryRowContext(ctx,
				`SELECT id FROM chats WHERE task_id = ? AND executor_id = ?`,
				taskID, executorID,
			).Scan(&chatID)
			if err != nil {
				return 0, false, err
			}
			return chatID, false, nil
		}
		if isForeignKeyConstraintError(err) {
			return 0, false, models.ErrTaskNotFound
		}
		return 0, false, err
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return int(newID), true, nil
}

func (r *ChatRepository) GetChatByID(ctx context.Context, id int) (models.Chat, error) {
	query := `
        SELECT c.id, c.task_id, c.customer_id, c.executor_id, t.title,
               cu.id, cu.name, cu.district, cu.avatar_path, cu.rating, cu.reviews_count,
               ex.id, ex.name, ex.district, ex.avatar_path, ex.rating, ex.reviews_count,
               c.created_at
        FROM chats c
        JOIN tasks t ON c.task_id = t.id
        JOIN users cu ON c.customer_id = cu.id
        JOIN users ex ON c.executor_id = ex.id
        WHERE c.id = ?
    `
	var chat models.Chat
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&chat.ID, &chat.TaskID, &chat.CustomerID, &chat.ExecutorID, &chat.TaskTitle,
		&chat.Customer.ID, &chat.Customer.Name, &chat.Customer.District, &chat.Customer.AvatarPath,
		&chat.Customer.Rating, &chat.Customer.ReviewsCount,
		&chat.Executor.ID, &chat.Executor.Name, &chat.Executor.District, &chat.Executor.AvatarPath,
		&chat.Executor.Rating, &chat.Executor.ReviewsCount,
		&chat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Chat{}, models.ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChatsByUserID lists the caller's chats with the last message and
// the caller's unread count resolved in the same query.
func (r *ChatRepository) GetChatsByUserID(ctx context.Context, userID int) ([]models.Chat, error) {
	query := `
        SELECT c.id, c.task_id, c.customer_id, c.executor_id, t.title,
               cu.id, cu.name, cu.district, cu.avatar_path, cu.rating, cu.reviews_count,
               ex.id, ex.name, ex.district, ex.avatar_path, ex.rating, ex.reviews_count,
               (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id AND m.` + "`read`" + ` = FALSE AND m.sender_id <> ?) AS unread_count,
               c.created_at
        FROM chats c
        JOIN tasks t ON c.task_id = t.id
        JOIN users cu ON c.customer_id = cu.id
        JOIN users ex ON c.executor_id = ex.id
        WHERE c.customer_id = ? OR c.executor_id = ?
        ORDER BY c.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(
			&chat.ID, &chat.TaskID, &chat.CustomerID, &chat.ExecutorID, &chat.TaskTitle,
			&chat.Customer.ID, &chat.Customer.Name, &chat.Customer.District, &chat.Customer.AvatarPath,
			&chat.Customer.Rating, &chat.Customer.ReviewsCount,
			&chat.Executor.ID, &chat.Executor.Name, &chat.Executor.District, &chat.Executor.AvatarPath,
			&chat.Executor.Rating, &chat.Executor.ReviewsCount,
			&chat.UnreadCount, &chat.CreatedAt,
		); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chats {
		last, err := r.lastMessage(ctx, chats[i].ID)
		if err != nil {
			return nil, err
		}
		chats[i].LastMessage = last
	}
	return chats, nil
}

func (r *ChatRepository) lastMessage(ctx context.Context, chatID int) (*models.Message, error) {
	var m models.Message
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, chat_id, sender_id, content, `+"`read`"+`, created_at
        FROM messages
        WHERE chat_id = ?
        ORDER BY created_at DESC
        LIMIT 1
    `, chatID).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetChatIDsByTask returns each chat of a task, optionally skipping
// one executor. Used to fan out system notices when an executor is
// chosen.
func (r *ChatRepository) GetChatIDsByTask(ctx context.Context, taskID int, excludeExecutorID int) ([]int, error) {
	query := `SELECT id FROM chats WHERE task_id = ?`
	params := []interface{}{taskID}
	if excludeExecutorID > 0 {
		query += ` AND executor_id <> ?`
		params = append(params, excludeExecutorID)
	}

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ChatRepository) GetChatIDByTaskAndExecutor(ctx context.Context, taskID, executorID int) (int, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM chats WHERE task_id = ? AND executor_id = ?`,
		taskID, executorID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, models.ErrChatNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ChatRepository) DeleteChat(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrChatNotFound
	}
	return nil
}
