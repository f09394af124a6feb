package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/repositories"
	"vyruchaiBack/utils"
)

const (
	tokenTTL        = 120 * time.Minute
	refreshTokenTTL = 24 * 30 * 2 * time.Hour
)

type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
}

// SignUp registers a user and returns the profile with a fresh token
// pair. The database unique keys on email and phone have the final
// word on duplicates; the lookups before insert only shorten the
// feedback path.
func (s *UserService) SignUp(ctx context.Context, user models.User) (models.SignUpResponse, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	user.Phone = strings.TrimSpace(user.Phone)

	if len([]rune(user.Name)) < 2 {
		return models.SignUpResponse{}, models.NewValidationError("name", "Укажите имя")
	}
	if user.Email == "" && user.Phone == "" {
		return models.SignUpResponse{}, models.NewValidationError("email", "Укажите email или телефон")
	}
	if len(user.Password) < 6 {
		return models.SignUpResponse{}, models.NewValidationError("password", "Пароль должен содержать не менее 6 символов")
	}

	if user.Email != "" {
		existing, err := s.UserRepo.GetUserByEmail(ctx, user.Email)
		if err != nil && !errors.Is(err, models.ErrUserNotFound) {
			return models.SignUpResponse{}, err
		}
		if existing.ID != 0 {
			return models.SignUpResponse{}, models.ErrDuplicateEmail
		}
	}
	if user.Phone != "" {
		existing, err := s.UserRepo.GetUserByPhone(ctx, user.Phone)
		if err != nil && !errors.Is(err, models.ErrUserNotFound) {
			return models.SignUpResponse{}, err
		}
		if existing.ID != 0 {
			return models.SignUpResponse{}, models.ErrDuplicatePhone
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.SignUpResponse{}, err
	}
	user.Password = string(hashedPassword)
	if user.Role == "" {
		user.Role = "user"
	}

	created, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.SignUpResponse{}, err
	}

	tokens, err := s.createSession(ctx, created)
	if err != nil {
		return models.SignUpResponse{}, err
	}

	created.Password = ""
	return models.SignUpResponse{User: created, Tokens: tokens}, nil
}

// SignIn accepts either phone or email plus password.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, error) {
	var (
		user models.User
		err  error
	)
	switch {
	case req.Phone != "":
		user, err = s.UserRepo.GetUserByPhone(ctx, req.Phone)
	case req.Email != "":
		user, err = s.UserRepo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	default:
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Tokens{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Printf("invalid password for user %d", user.ID)
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	return s.createSession(ctx, user)
}

// RefreshTokens exchanges a valid refresh token for a fresh pair. The
// old token is invalidated by the session upsert.
func (s *UserService) RefreshTokens(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		return models.Tokens{}, models.ErrSessionNotFound
	}

	user, err := s.UserRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.createSession(ctx, user)
}

func (s *UserService) createSession(ctx context.Context, user models.User) (models.Tokens, error) {
	var res models.Tokens

	accessToken, err := s.TokenManager.NewJWT(user.ID, user.Role, tokenTTL)
	if err != nil {
		return models.Tokens{}, err
	}
	res.AccessToken = accessToken

	res.RefreshToken, err = s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	err = s.UserRepo.SetSession(ctx, models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}

	return res, nil
}

func (s *UserService) LogOut(ctx context.Context, userID int) error {
	return s.UserRepo.DeleteSession(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

// GetPublicProfile hides contact fields unless the user opted in with
// show_phone.
func (s *UserService) GetPublicProfile(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	user.Email = ""
	if !user.ShowPhone {
		user.Phone = ""
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	if len([]rune(user.Name)) < 2 {
		return models.User{}, models.NewValidationError("name", "Укажите имя")
	}
	if len([]rune(*orEmpty(user.AboutMe))) > 1000 {
		return models.User{}, models.NewValidationError("about_me", "Описание не должно превышать 1000 символов")
	}

	updated, err := s.UserRepo.UpdateProfile(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	updated.Password = ""
	return updated, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return models.NewValidationError("password", "Пароль должен содержать не менее 6 символов")
	}

	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return models.ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID int, avatarPath *string) error {
	return s.UserRepo.UpdateAvatar(ctx, userID, avatarPath)
}

func orEmpty(s *string) *string {
	if s == nil {
		empty := ""
		return &empty
	}
	return s
}
