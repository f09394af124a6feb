package models

import (
	"time"
)

// TaskResponse statuses.
const (
	ResponsePending  = "pending"
	ResponseAccepted = "accepted"
	ResponseRejected = "rejected"
)

// TaskResponse is an executor's bid on a task, unique per (task, user).
type TaskResponse struct {
	ID        int       `json:"id"`
	TaskID    int       `json:"task_id"`
	UserID    int       `json:"user_id"`
	Message   *string   `json:"message,omitempty"`
	Status    string    `json:"status"`
	User      UserBrief `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
