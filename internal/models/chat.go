package models

import "time"

// Chat groups a task, its customer and one executor. At most one chat
// exists per (task, executor) pair.
type Chat struct {
	ID          int       `json:"id"`
	TaskID      int       `json:"task_id"`
	CustomerID  int       `json:"customer_id"`
	ExecutorID  int       `json:"executor_id"`
	Customer    UserBrief `json:"customer,omitempty"`
	Executor    UserBrief `json:"executor,omitempty"`
	TaskTitle   string    `json:"task_title,omitempty"`
	LastMessage *Message  `json:"last_message,omitempty"`
	UnreadCount int       `json:"unread_count"`
	CreatedAt   time.Time `json:"created_at"`
}
