package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type PushTokenRepository struct {
	DB *sql.DB
}

func (r *PushTokenRepository) SaveToken(ctx context.Context, userID int, token string) error {
	query := `
        INSERT INTO push_tokens (user_id, token, created_at)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE token = VALUES(token), created_at = VALUES(created_at)
    `
	_, err := r.DB.ExecContext(ctx, query, userID, token, time.Now())
	return err
}

func (r *PushTokenRepository) GetTokenByUserID(ctx context.Context, userID int) (string, error) {
	var token string
	err := r.DB.QueryRowContext(ctx, `SELECT token FROM push_tokens WHERE user_id = ?`, userID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", models.ErrPushTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *PushTokenRepository) DeleteToken(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM push_tokens WHERE user_id = ?`, userID)
	return err
}
