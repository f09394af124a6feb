package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

// CreateReview inserts a review. The unique key on
// (task_id, from_user_id, to_user_id) keeps reviews one per direction
// per task.
func (r *ReviewRepository) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	query := `
        INSERT INTO reviews (task_id, from_user_id, to_user_id, rating, comment, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	review.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		review.TaskID, review.FromUserID, review.ToUserID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return models.Review{}, models.ErrDuplicateReview
		}
		if isForeignKeyConstraintError(err) {
			return models.Review{}, models.ErrTaskNotFound
		}
		return models.Review{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Review{}, err
	}
	review.ID = int(lastID)
	return review, nil
}

func (r *ReviewRepository) HasReview(ctx context.Context, taskID, fromUserID, toUserID int) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM reviews WHERE task_id = ? AND from_user_id = ? AND to_user_id = ?`,
		taskID, fromUserID, toUserID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReviewRepository) GetReviewsByUserID(ctx context.Context, toUserID int) ([]models.Review, error) {
	query := `
        SELECT rv.id, rv.task_id, rv.from_user_id, rv.to_user_id, rv.rating, rv.comment,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               rv.created_at
        FROM reviews rv
        JOIN users u ON rv.from_user_id = u.id
        WHERE rv.to_user_id = ?
        ORDER BY rv.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, toUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID, &review.TaskID, &review.FromUserID, &review.ToUserID,
			&review.Rating, &review.Comment,
			&review.FromUser.ID, &review.FromUser.Name, &review.FromUser.District,
			&review.FromUser.AvatarPath, &review.FromUser.Rating, &review.FromUser.ReviewsCount,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
