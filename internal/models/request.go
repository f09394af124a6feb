package models

import (
	"time"
)

// Reward modes for a help request.
const (
	RewardThanks = "thanks"
	RewardMoney  = "money"
)

// Contact channels a request author can expose.
const (
	ContactTelegram = "telegram"
	ContactPhone    = "phone"
)

// Request is a help-wanted posting on the district-based (web) surface.
type Request struct {
	ID           int        `json:"id"`
	AuthorID     int        `json:"author_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Urgency      string     `json:"urgency,omitempty"`
	RewardType   string     `json:"reward_type"`
	RewardAmount *float64   `json:"reward_amount,omitempty"`
	District     string     `json:"district"`
	Status       string     `json:"status"`
	ContactType  string     `json:"contact_type"`
	ContactValue string     `json:"-"`
	Author       UserBrief  `json:"author,omitempty"`
	OffersCount  int        `json:"offers_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// UserBrief is the profile slice embedded into request/offer listings.
type UserBrief struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	District     string  `json:"district,omitempty"`
	AvatarPath   *string `json:"avatar_path,omitempty"`
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviews_count"`
}

// RequestContact is the capability-gated contact payload of a request.
type RequestContact struct {
	ContactType  string `json:"contact_type"`
	ContactValue string `json:"contact_value"`
}

type RequestFilter struct {
	District string
	Status   string
	Page     int
	PageSize int
}

// RequestPage is the paginated envelope returned when page parameters
// were supplied; Requests alone is returned otherwise.
type RequestPage struct {
	Requests   []Request `json:"requests"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}
