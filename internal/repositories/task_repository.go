package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
)

type TaskRepository struct {
	DB *sql.DB
}

// normalizePhotos decodes the photos column into a clean string list.
// Legacy rows carry brace-delimited text ({"a","b"}) or a bare URL
// instead of a JSON array; everything is parsed here once so the rest
// of the code only ever sees []string.
func normalizePhotos(raw []byte) []string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var photos []string
		if err := json.Unmarshal([]byte(s), &photos); err == nil {
			out := photos[:0]
			for _, p := range photos {
				if strings.TrimSpace(p) != "" {
					out = append(out, p)
				}
			}
			return out
		}
		return []string{s}
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		var photos []string
		for _, part := range strings.Split(s[1:len(s)-1], ",") {
			p := strings.Trim(strings.TrimSpace(part), `"`)
			if p != "" {
				photos = append(photos, p)
			}
		}
		return photos
	}

	return []string{s}
}

func (r *TaskRepository) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	query := `
        INSERT INTO tasks (user_id, title, description, budget, address, latitude, longitude, category, status, photos, phone, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	photosJSON, err := json.Marshal(task.Photos)
	if err != nil {
		return models.Task{}, err
	}
	task.Status = fsm.StatusOpen
	task.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Budget, task.Address,
		task.Latitude, task.Longitude, task.Category, task.Status,
		string(photosJSON), task.Phone, task.CreatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}
	task.ID = int(lastID)
	return task, nil
}

func (r *TaskRepository) GetTaskByID(ctx context.Context, id int) (models.Task, error) {
	query := `
        SELECT t.id, t.user_id, t.executor_id, t.title, t.description, t.budget,
               t.address, t.latitude, t.longitude, t.category, t.status, t.photos, t.phone,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               (SELECT COUNT(*) FROM task_responses tr WHERE tr.task_id = t.id AND tr.status = 'pending') AS responses_count,
               t.created_at, t.updated_at
        FROM tasks t
        JOIN users u ON t.user_id = u.id
        WHERE t.id = ?
    `

	var task models.Task
	var photosRaw []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.UserID, &task.ExecutorID, &task.Title, &task.Description, &task.Budget,
		&task.Address, &task.Latitude, &task.Longitude, &task.Category, &task.Status, &photosRaw, &task.Phone,
		&task.User.ID, &task.User.Name, &task.User.District, &task.User.AvatarPath,
		&task.User.Rating, &task.User.ReviewsCount,
		&task.ResponsesCount, &task.CreatedAt, &task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Task{}, models.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	task.Photos = normalizePhotos(photosRaw)
	return task, nil
}

// ListOpenTasks returns open tasks, optionally restricted to a map
// bounding box, newest first. Pending-response counts come from the
// correlated subquery rather than one query per row.
func (r *TaskRepository) ListOpenTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var (
		conditions = "WHERE t.status = ? AND t.latitude IS NOT NULL AND t.longitude IS NOT NULL"
		params     = []interface{}{fsm.StatusOpen}
	)

	if b := filter.Bounds; b != nil {
		conditions += " AND t.latitude BETWEEN ? AND ? AND t.longitude BETWEEN ? AND ?"
		params = append(params, b.South, b.North, b.West, b.East)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `
        SELECT t.id, t.user_id, t.executor_id, t.title, t.description, t.budget,
               t.address, t.latitude, t.longitude, t.category, t.status, t.photos, t.phone,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               (SELECT COUNT(*) FROM task_responses tr WHERE tr.task_id = t.id AND tr.status = 'pending') AS responses_count,
               t.created_at, t.updated_at
        FROM tasks t
        JOIN users u ON t.user_id = u.id
        ` + conditions + `
        ORDER BY t.created_at DESC
        LIMIT ?
    `
	params = append(params, limit)

	return r.queryTasks(ctx, query, params...)
}

func (r *TaskRepository) GetTasksByUserID(ctx context.Context, userID int) ([]models.Task, error) {
	query := `
        SELECT t.id, t.user_id, t.executor_id, t.title, t.description, t.budget,
               t.address, t.latitude, t.longitude, t.category, t.status, t.photos, t.phone,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               (SELECT COUNT(*) FROM task_responses tr WHERE tr.task_id = t.id AND tr.status = 'pending') AS responses_count,
               t.created_at, t.updated_at
        FROM tasks t
        JOIN users u ON t.user_id = u.id
        WHERE t.user_id = ?
        ORDER BY t.created_at DESC
    `
	return r.queryTasks(ctx, query, userID)
}

func (r *TaskRepository) GetTasksByExecutorID(ctx context.Context, executorID int) ([]models.Task, error) {
	query := `
        SELECT t.id, t.user_id, t.executor_id, t.title, t.description, t.budget,
               t.address, t.latitude, t.longitude, t.category, t.status, t.photos, t.phone,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               (SELECT COUNT(*) FROM task_responses tr WHERE tr.task_id = t.id AND tr.status = 'pending') AS responses_count,
               t.created_at, t.updated_at
        FROM tasks t
        JOIN users u ON t.user_id = u.id
        WHERE t.executor_id = ?
        ORDER BY t.created_at DESC
    `
	return r.queryTasks(ctx, query, executorID)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, params ...interface{}) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		var photosRaw []byte
		if err := rows.Scan(
			&task.ID, &task.UserID, &task.ExecutorID, &task.Title, &task.Description, &task.Budget,
			&task.Address, &task.Latitude, &task.Longitude, &task.Category, &task.Status, &photosRaw, &task.Phone,
			&task.User.ID, &task.User.Name, &task.User.District, &task.User.AvatarPath,
			&task.User.Rating, &task.User.ReviewsCount,
			&task.ResponsesCount, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		task.Photos = normalizePhotos(photosRaw)
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	query := `
        UPDATE tasks
        SET title = ?, description = ?, budget = ?, address = ?, latitude = ?, longitude = ?,
            category = ?, photos = ?, phone = ?, updated_at = ?
        WHERE id = ?
    `
	photosJSON, err := json.Marshal(task.Photos)
	if err != nil {
		return models.Task{}, err
	}
	updatedAt := time.Now()
	task.UpdatedAt = &updatedAt
	result, err := r.DB.ExecContext(ctx, query,
		task.Title, task.Description, task.Budget, task.Address, task.Latitude, task.Longitude,
		task.Category, string(photosJSON), task.Phone, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return models.Task{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if rowsAffected == 0 {
		return models.Task{}, models.ErrTaskNotFound
	}
	return r.GetTaskByID(ctx, task.ID)
}

func (r *TaskRepository) DeleteTask(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

// AssignExecutor moves an open task to in_progress with the chosen
// executor in one optimistic update.
func (r *TaskRepository) AssignExecutor(ctx context.Context, taskID, executorID int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET executor_id = ?, status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		executorID, fsm.StatusInProgress, taskID, fsm.StatusOpen,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrTaskNotOpen
	}
	return nil
}

// UpdateStatus applies a validated status transition optimistically.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int, fromStatus, toStatus string) error {
	return fsm.Apply(ctx, r.DB, "tasks", id, fromStatus, toStatus)
}
