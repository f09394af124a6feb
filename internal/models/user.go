package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Password     string     `json:"password,omitempty"`
	District     string     `json:"district"`
	Telegram     string     `json:"telegram,omitempty"`
	AvatarPath   *string    `json:"avatar_path,omitempty"`
	AboutMe      *string    `json:"about_me,omitempty"`
	ShowPhone    bool       `json:"show_phone"`
	Rating       float64    `json:"rating"`
	ReviewsCount int        `json:"reviews_count"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// NewClaims builds the access token claims for a user.
func NewClaims(userID int, role string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		UserID: uint(userID),
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int       `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignInRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type UpdatePasswordRequest struct {
	UserID      int    `json:"user_id"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// PushToken binds an FCM device token to a user.
type PushToken struct {
	UserID    int       `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
