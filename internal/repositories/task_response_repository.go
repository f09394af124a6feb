package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type TaskResponseRepository struct {
	DB *sql.DB
}

// CreateResponse inserts a pending response. A unique key on
// (task_id, user_id) backs the at-most-one-response invariant.
func (r *TaskResponseRepository) CreateResponse(ctx context.Context, resp models.TaskResponse) (models.TaskResponse, error) {
	query := `
        INSERT INTO task_responses (task_id, user_id, message, status, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	resp.Status = models.ResponsePending
	resp.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query, resp.TaskID, resp.UserID, resp.Message, resp.Status, resp.CreatedAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return models.TaskResponse{}, models.ErrAlreadyResponded
		}
		if isForeignKeyConstraintError(err) {
			return models.TaskResponse{}, models.ErrTaskNotFound
		}
		return models.TaskResponse{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.TaskResponse{}, err
	}
	resp.ID = int(lastID)
	return resp, nil
}

func (r *TaskResponseRepository) HasResponse(ctx context.Context, taskID, userID int) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM task_responses WHERE task_id = ? AND user_id = ?`,
		taskID, userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *TaskResponseRepository) GetResponsesByTaskID(ctx context.Context, taskID int) ([]models.TaskResponse, error) {
	query := `
        SELECT tr.id, tr.task_id, tr.user_id, tr.message, tr.status,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               tr.created_at
        FROM task_responses tr
        JOIN users u ON tr.user_id = u.id
        WHERE tr.task_id = ?
        ORDER BY tr.created_at ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []models.TaskResponse
	for rows.Next() {
		var resp models.TaskResponse
		if err := rows.Scan(
			&resp.ID, &resp.TaskID, &resp.UserID, &resp.Message, &resp.Status,
			&resp.User.ID, &resp.User.Name, &resp.User.District, &resp.User.AvatarPath,
			&resp.User.Rating, &resp.User.ReviewsCount,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (r *TaskResponseRepository) UpdateResponseStatus(ctx context.Context, taskID, userID int, status string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE task_responses SET status = ? WHERE task_id = ? AND user_id = ?`,
		status, taskID, userID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrResponseNotFound
	}
	return nil
}

// RejectOthers marks every pending response except the accepted one
// rejected in a single statement.
func (r *TaskResponseRepository) RejectOthers(ctx context.Context, taskID, acceptedUserID int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE task_responses SET status = ? WHERE task_id = ? AND user_id <> ? AND status = ?`,
		models.ResponseRejected, taskID, acceptedUserID, models.ResponsePending,
	)
	return err
}
