package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	query := `
        INSERT INTO requests (author_id, title, description, category, urgency, reward_type, reward_amount, district, status, contact_type, contact_value, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	req.Status = fsm.StatusOpen
	req.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		req.AuthorID, req.Title, req.Description, req.Category, req.Urgency,
		req.RewardType, req.RewardAmount, req.District, req.Status,
		req.ContactType, req.ContactValue, req.CreatedAt,
	)
	if err != nil {
		return models.Request{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Request{}, err
	}
	req.ID = int(lastID)
	return req, nil
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id int) (models.Request, error) {
	query := `
        SELECT r.id, r.author_id, r.title, r.description, r.category, r.urgency,
               r.reward_type, r.reward_amount, r.district, r.status,
               r.contact_type, r.contact_value,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               (SELECT COUNT(*) FROM offers o WHERE o.request_id = r.id) AS offers_count,
               r.created_at, r.updated_at
        FROM requests r
        JOIN users u ON r.author_id = u.id
        WHERE r.id = ?
    `

	var req models.Request
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.AuthorID, &req.Title, &req.Description, &req.Category, &req.Urgency,
		&req.RewardType, &req.RewardAmount, &req.District, &req.Status,
		&req.ContactType, &req.ContactValue,
		&req.Author.ID, &req.Author.Name, &req.Author.District, &req.Author.AvatarPath,
		&req.Author.Rating, &req.Author.ReviewsCount,
		&req.OffersCount, &req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Request{}, models.ErrRequestNotFound
	}
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// ListRequests returns one page of requests matching the filter plus
// the total match count. Clamping of page/page size happens in the
// service; the repository trusts its arguments.
func (r *RequestRepository) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	var (
		conditions = "WHERE 1=1"
		params     []interface{}
	)

	if filter.Status != "" {
		conditions += " AND r.status = ?"
		params = append(params, filter.Status)
	}
	if filter.District != "" {
		conditions += " AND r.district = ?"
		params = append(params, filter.District)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM requests r ` + conditions
	if err := r.DB.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT r.id, r.author_id, r.title, r.description, r.category, r.urgency,
               r.reward_type, r.reward_amount, r.district, r.status, r.contact_type,
               u.id, u.name, u.district, u.avatar_path, u.rating, u.reviews_count,
               (SELECT COUNT(*) FROM offers o WHERE o.request_id = r.id) AS offers_count,
               r.created_at, r.updated_at
        FROM requests r
        JOIN users u ON r.author_id = u.id
        ` + conditions + `
        ORDER BY r.created_at DESC
    `
	// PageSize 0 means the unpaged board listing.
	if filter.PageSize > 0 {
		query += ` LIMIT ? OFFSET ?`
		offset := (filter.Page - 1) * filter.PageSize
		params = append(params, filter.PageSize, offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var req models.Request
		if err := rows.Scan(
			&req.ID, &req.AuthorID, &req.Title, &req.Description, &req.Category, &req.Urgency,
			&req.RewardType, &req.RewardAmount, &req.District, &req.Status, &req.ContactType,
			&req.Author.ID, &req.Author.Name, &req.Author.District, &req.Author.AvatarPath,
			&req.Author.Rating, &req.Author.ReviewsCount,
			&req.OffersCount, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (r *RequestRepository) GetRequestsByAuthorID(ctx context.Context, authorID int) ([]models.Request, error) {
	query := `
        SELECT r.id, r.author_id, r.title, r.description, r.category, r.urgency,
               r.reward_type, r.reward_amount, r.district, r.status, r.contact_type,
               (SELECT COUNT(*) FROM offers o WHERE o.request_id = r.id) AS offers_count,
               r.created_at, r.updated_at
        FROM requests r
        WHERE r.author_id = ?
        ORDER BY r.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var req models.Request
		if err := rows.Scan(
			&req.ID, &req.AuthorID, &req.Title, &req.Description, &req.Category, &req.Urgency,
			&req.RewardType, &req.RewardAmount, &req.District, &req.Status, &req.ContactType,
			&req.OffersCount, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateStatus applies a validated status transition optimistically.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int, fromStatus, toStatus string) error {
	return fsm.Apply(ctx, r.DB, "requests", id, fromStatus, toStatus)
}

// CloseStale moves open requests older than the cutoff to closed and
// returns how many rows changed. Used by the background cleaner.
func (r *RequestRepository) CloseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE requests SET status = ?, updated_at = NOW() WHERE status = ? AND created_at < ?`,
		fsm.StatusClosed, fsm.StatusOpen, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
