package models

import (
	"time"
)

// Offer is a helper's response to a Request. At most one offer exists
// per (request, helper) pair, enforced by a unique key in storage.
type Offer struct {
	ID        int       `json:"id"`
	RequestID int       `json:"request_id"`
	HelperID  int       `json:"helper_id"`
	Helper    UserBrief `json:"helper,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
