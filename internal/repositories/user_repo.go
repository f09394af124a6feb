package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (name, phone, email, password, district, telegram, avatar_path, about_me, show_phone, rating, reviews_count, role, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	user.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Phone, user.Email, user.Password, user.District, user.Telegram,
		user.AvatarPath, user.AboutMe, user.ShowPhone, user.Rating, user.ReviewsCount,
		user.Role, user.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return models.User{}, duplicateUserError(err)
		}
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(id)
	return user, nil
}

// duplicateUserError translates a users unique-key violation into the
// sentinel for the key that was actually hit.
func duplicateUserError(err error) error {
	if isDuplicateKeyOn(err, "phone") {
		return models.ErrDuplicatePhone
	}
	return models.ErrDuplicateEmail
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, phone, email, password, district, telegram, avatar_path, about_me, show_phone, rating, reviews_count, role, created_at, updated_at
        FROM users
        WHERE id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password, &user.District,
		&user.Telegram, &user.AvatarPath, &user.AboutMe, &user.ShowPhone,
		&user.Rating, &user.ReviewsCount, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, phone, email, password, district, telegram, avatar_path, about_me, show_phone, rating, reviews_count, role, created_at, updated_at
        FROM users
        WHERE email = ?
    `
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password, &user.District,
		&user.Telegram, &user.AvatarPath, &user.AboutMe, &user.ShowPhone,
		&user.Rating, &user.ReviewsCount, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, phone, email, password, district, telegram, avatar_path, about_me, show_phone, rating, reviews_count, role, created_at, updated_at
        FROM users
        WHERE phone = ?
    `
	err := r.DB.QueryRowContext(ctx, query, phone).Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password, &user.District,
		&user.Telegram, &user.AvatarPath, &user.AboutMe, &user.ShowPhone,
		&user.Rating, &user.ReviewsCount, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	query := `
        UPDATE users
        SET name = ?, district = ?, telegram = ?, avatar_path = ?, about_me = ?, show_phone = ?, updated_at = ?
        WHERE id = ?
    `
	updatedAt := time.Now()
	user.UpdatedAt = &updatedAt
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.District, user.Telegram, user.AvatarPath, user.AboutMe,
		user.ShowPhone, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return models.User{}, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if rowsAffected == 0 {
		return models.User{}, models.ErrUserNotFound
	}
	return r.GetUserByID(ctx, user.ID)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, hashed string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET password = ?, updated_at = ? WHERE id = ?`, hashed, time.Now(), userID)
	return err
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int, avatarPath *string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET avatar_path = ?, updated_at = ? WHERE id = ?`, avatarPath, time.Now(), userID)
	return err
}

// RefreshRating recomputes the aggregate rating and review count from
// the reviews table. Called after every review insert.
func (r *UserRepository) RefreshRating(ctx context.Context, userID int) error {
	query := `
        UPDATE users u
        SET u.rating = COALESCE((SELECT AVG(rv.rating) FROM reviews rv WHERE rv.to_user_id = u.id), 0),
            u.reviews_count = (SELECT COUNT(*) FROM reviews rv WHERE rv.to_user_id = u.id)
        WHERE u.id = ?
    `
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

// GetProfilesByIDs loads the profile slice for a distinct set of user
// IDs in one query, so listings never fetch profiles row by row.
func (r *UserRepository) GetProfilesByIDs(ctx context.Context, ids []int) (map[int]models.UserBrief, error) {
	profiles := make(map[int]models.UserBrief, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	query := `
        SELECT id, name, district, avatar_path, rating, reviews_count
        FROM users
        WHERE id IN (` + placeholders(len(ids)) + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.UserBrief
		if err := rows.Scan(&p.ID, &p.Name, &p.District, &p.AvatarPath, &p.Rating, &p.ReviewsCount); err != nil {
			return nil, err
		}
		profiles[p.ID] = p
	}
	return profiles, rows.Err()
}

// Sessions ------------------------------------------------------------

func (r *UserRepository) SetSession(ctx context.Context, session models.Session) error {
	query := `
        INSERT INTO sessions (user_id, role, refresh_token, expires_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at), role = VALUES(role)
    `
	_, err := r.DB.ExecContext(ctx, query, session.UserID, session.Role, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var session models.Session
	query := `SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(
		&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return models.Session{}, models.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *UserRepository) DeleteSession(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}
