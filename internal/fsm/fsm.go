package fsm

import (
	"context"
	"database/sql"

	"vyruchaiBack/internal/models"
)

// Status constants shared by requests and tasks.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Transitions are one-directional: once a posting leaves open there is
// no path back, and the terminal states have no outgoing edges.
var transitions = map[string]map[string]struct{}{
	StatusOpen: {
		StatusInProgress: {},
		StatusClosed:     {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusClosed:    {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsTerminal reports whether a posting can never leave the given status.
func IsTerminal(status string) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}

// CanTransition returns whether a posting can move from the current
// status to the target status. Same-status "transitions" are allowed so
// repeated close calls stay idempotent.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Apply updates a row's status using optimistic validation: the UPDATE
// only matches when the row is still in fromStatus, so a concurrent
// transition loses cleanly instead of overwriting.
func Apply(ctx context.Context, db *sql.DB, table string, id int, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidStatusChange
	}
	if fromStatus == toStatus {
		return nil
	}
	res, err := db.ExecContext(ctx, `UPDATE `+table+` SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`, toStatus, id, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
