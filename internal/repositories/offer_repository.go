package repositories

import (
	"context"
	"database/sql"
	"time"

	"vyruchaiBack/internal/models"
)

type OfferRepository struct {
	DB *sql.DB
}

// CreateOffer inserts an offer. The offers table carries a unique key
// on (request_id, helper_id); a violation surfaces as ErrAlreadyOffered
// so concurrent duplicates lose deterministically.
func (r *OfferRepository) CreateOffer(ctx context.Context, offer models.Offer) (models.Offer, error) {
	query := `
        INSERT INTO offers (request_id, helper_id, created_at)
        VALUES (?, ?, ?)
    `
	offer.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query, offer.RequestID, offer.HelperID, offer.CreatedAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return models.Offer{}, models.ErrAlreadyOffered
		}
		if isForeignKeyConstraintError(err) {
			return models.Offer{}, models.ErrRequestNotFound
		}
		return models.Offer{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Offer{}, err
	}
	offer.ID = int(lastID)
	return offer, nil
}

func (r *OfferRepository) HasOffer(ctx context.Context, requestID, helperID int) (bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM offers WHERE request_id = ? AND helper_id = ?`,
		requestID, helperID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *OfferRepository) GetOffersByRequestID(ctx context.Context, requestID int) ([]models.Offer, error) {
	query := `
        SELECT id, request_id, helper_id, created_at
        FROM offers
        WHERE request_id = ?
        ORDER BY created_at ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.RequestID, &o.HelperID, &o.CreatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *OfferRepository) GetOffersByHelperID(ctx context.Context, helperID int) ([]models.Offer, error) {
	query := `
        SELECT id, request_id, helper_id, created_at
        FROM offers
        WHERE helper_id = ?
        ORDER BY created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, helperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.RequestID, &o.HelperID, &o.CreatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
