package models

import (
	"time"
)

// Task is a geo-located errand on the mobile surface.
type Task struct {
	ID             int        `json:"id"`
	UserID         int        `json:"user_id"`
	ExecutorID     *int       `json:"executor_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Budget         float64    `json:"budget"`
	Address        string     `json:"address"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	Photos         []string   `json:"photos"`
	Phone          *string    `json:"phone,omitempty"`
	User           UserBrief  `json:"user,omitempty"`
	ResponsesCount int        `json:"responses_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// MapBounds is a bounding box the map screen sends when fetching tasks.
type MapBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

type TaskFilter struct {
	Bounds *MapBounds
	Limit  int
}
