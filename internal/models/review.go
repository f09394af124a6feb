package models

import (
	"time"
)

// Review is a rating left by one participant of a completed task for
// the other. Unique per (task, from_user, to_user).
type Review struct {
	ID         int       `json:"id"`
	TaskID     int       `json:"task_id"`
	FromUserID int       `json:"from_user_id"`
	ToUserID   int       `json:"to_user_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	FromUser   UserBrief `json:"from_user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
