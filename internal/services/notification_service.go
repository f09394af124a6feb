package services

import (
	"context"
	"errors"
	"log"

	"firebase.google.com/go/messaging"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/repositories"
)

// NotificationService delivers FCM pushes to registered device tokens.
// A nil Client turns the service into a no-op, so the backend runs
// without Firebase credentials in development.
type NotificationService struct {
	Client    *messaging.Client
	TokenRepo *repositories.PushTokenRepository
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID int, token string) error {
	if token == "" {
		return models.NewValidationError("token", "Укажите токен устройства")
	}
	return s.TokenRepo.SaveToken(ctx, userID, token)
}

func (s *NotificationService) UnregisterToken(ctx context.Context, userID int) error {
	return s.TokenRepo.DeleteToken(ctx, userID)
}

// Push sends one high-priority notification to the user's device. A
// user without a registered token is not an error.
func (s *NotificationService) Push(ctx context.Context, userID int, title, body string, data map[string]string) error {
	if s.Client == nil {
		return nil
	}

	token, err := s.TokenRepo.GetTokenByUserID(ctx, userID)
	if errors.Is(err, models.ErrPushTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := s.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("push delivered: %s", response)
	return nil
}
